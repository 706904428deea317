package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/model"
	"github.com/colegiosync/colegiosync/internal/store"
)

// recordingNotifier captures broadcasts instead of pushing them to clients.
type recordingNotifier struct {
	actions []string
	ids     []int64
}

func (n *recordingNotifier) NotifyEvent(action string, eventID int64) {
	n.actions = append(n.actions, action)
	n.ids = append(n.ids, eventID)
}

type eventFixture struct {
	handler  *EventHandler
	notifier *recordingNotifier
	db       *sql.DB
	courseID int64
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	db := openTestDB(t)
	course, err := store.NewCourseStore(db).Create("Sala 5", "#10B981", 2025)
	if err != nil {
		t.Fatalf("seed course: %v", err)
	}
	n := &recordingNotifier{}
	return &eventFixture{
		handler:  NewEventHandler(store.NewEventStore(db), n, testLogger()),
		notifier: n,
		db:       db,
		courseID: course.ID,
	}
}

func (f *eventFixture) user(t *testing.T, email string, role auth.Role) auth.Identity {
	t.Helper()
	u, err := store.NewUserStore(f.db).Create(email, "Test", "hash", role)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u.Identity()
}

func asUser(r *http.Request, id auth.Identity) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), id))
}

func (f *eventFixture) create(t *testing.T, creator auth.Identity) int64 {
	t.Helper()
	body := fmt.Sprintf(`{"title":"Acto","event_date":"2025-05-25","event_type":"event","course_ids":[%d]}`, f.courseID)
	rec := httptest.NewRecorder()
	f.handler.Create(rec, asUser(postJSON("/events", body), creator))
	if rec.Code != http.StatusOK {
		t.Fatalf("create event: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Event struct {
			ID int64 `json:"id"`
		} `json:"event"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	return resp.Event.ID
}

// idRequest builds a request whose {id} path parameter resolves to id.
func idRequest(method string, id int64, body string, viewer auth.Identity) *http.Request {
	path := "/events/" + strconv.FormatInt(id, 10)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	r.SetPathValue("id", strconv.FormatInt(id, 10))
	return asUser(r, viewer)
}

func TestEventCreateValidation(t *testing.T) {
	f := newEventFixture(t)
	coord := f.user(t, "coord@example.com", auth.RoleCoordinator)

	cases := []struct {
		name, body, wantErr string
	}{
		{"missing title", `{"event_date":"2025-05-25","event_type":"event","course_ids":[1]}`, "Título, fecha y tipo son requeridos"},
		{"no courses", `{"title":"Acto","event_date":"2025-05-25","event_type":"event"}`, "Debe seleccionar al menos un curso"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.handler.Create(rec, asUser(postJSON("/events", tc.body), coord))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if got := errorBody(t, rec); got != tc.wantErr {
				t.Errorf("error = %q, want %q", got, tc.wantErr)
			}
		})
	}
}

func TestEventCreateDefaultsAndBroadcast(t *testing.T) {
	f := newEventFixture(t)
	coord := f.user(t, "coord@example.com", auth.RoleCoordinator)

	id := f.create(t, coord)
	if id == 0 {
		t.Fatal("create returned id 0")
	}

	event, err := store.NewEventStore(f.db).GetByID(id)
	if err != nil || event == nil {
		t.Fatalf("load created event: %v", err)
	}
	if event.Priority != model.PriorityNormal || event.Visibility != model.VisibilityPublic {
		t.Errorf("defaults: priority=%q visibility=%q", event.Priority, event.Visibility)
	}

	if len(f.notifier.actions) != 1 || f.notifier.actions[0] != "created" || f.notifier.ids[0] != id {
		t.Errorf("broadcasts = %v %v", f.notifier.actions, f.notifier.ids)
	}
}

func TestEventUpdateRequiresCreatorOrAdmin(t *testing.T) {
	f := newEventFixture(t)
	creator := f.user(t, "creator@example.com", auth.RoleCoordinator)
	other := f.user(t, "other@example.com", auth.RoleCoordinator)
	admin := f.user(t, "admin@example.com", auth.RoleAdmin)

	id := f.create(t, creator)
	body := fmt.Sprintf(`{"title":"Acto patrio","event_date":"2025-05-25","event_type":"event","course_ids":[%d]}`, f.courseID)

	// Another coordinator may not edit someone else's event.
	rec := httptest.NewRecorder()
	f.handler.Update(rec, idRequest(http.MethodPut, id, body, other))
	if rec.Code != http.StatusForbidden {
		t.Errorf("other coordinator: status = %d, want 403", rec.Code)
	}
	if got := errorBody(t, rec); got != "No tienes permiso para editar este evento" {
		t.Errorf("error = %q", got)
	}

	for _, viewer := range []auth.Identity{creator, admin} {
		rec = httptest.NewRecorder()
		f.handler.Update(rec, idRequest(http.MethodPut, id, body, viewer))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", viewer.Email, rec.Code)
		}
	}
}

func TestEventDeleteOwnership(t *testing.T) {
	f := newEventFixture(t)
	creator := f.user(t, "creator@example.com", auth.RoleCoordinator)
	other := f.user(t, "other@example.com", auth.RoleCoordinator)

	id := f.create(t, creator)

	rec := httptest.NewRecorder()
	f.handler.Delete(rec, idRequest(http.MethodDelete, id, "", other))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	f.handler.Delete(rec, idRequest(http.MethodDelete, id, "", creator))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	// Deleting a gone event reports not found, not an internal error.
	rec = httptest.NewRecorder()
	f.handler.Delete(rec, idRequest(http.MethodDelete, id, "", creator))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", rec.Code)
	}
}

func TestEventGetNotFound(t *testing.T) {
	f := newEventFixture(t)
	parent := f.user(t, "parent@example.com", auth.RoleParent)

	rec := httptest.NewRecorder()
	f.handler.Get(rec, idRequest(http.MethodGet, 9999, "", parent))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := errorBody(t, rec); got != "Evento no encontrado" {
		t.Errorf("error = %q", got)
	}
}

func TestEventMarkReadReportsAlreadyRead(t *testing.T) {
	f := newEventFixture(t)
	coord := f.user(t, "coord@example.com", auth.RoleCoordinator)
	id := f.create(t, coord)

	rec := httptest.NewRecorder()
	f.handler.MarkRead(rec, idRequest(http.MethodPost, id, "", coord))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var first map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &first)
	if first["already_read"] {
		t.Error("first mark reported already_read")
	}

	rec = httptest.NewRecorder()
	f.handler.MarkRead(rec, idRequest(http.MethodPost, id, "", coord))
	var second map[string]bool
	json.Unmarshal(rec.Body.Bytes(), &second)
	if !second["success"] || !second["already_read"] {
		t.Errorf("second mark body = %s", rec.Body.String())
	}
}
