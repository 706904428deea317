package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/dates"
	"github.com/colegiosync/colegiosync/internal/model"
	"github.com/colegiosync/colegiosync/internal/store"
)

// Notifier receives event-change broadcasts for live dashboard clients.
type Notifier interface {
	NotifyEvent(action string, eventID int64)
}

type EventHandler struct {
	events   *store.EventStore
	notifier Notifier
	logger   *slog.Logger
}

// NewEventHandler constructs the handler; notifier may be nil when live
// updates are disabled.
func NewEventHandler(es *store.EventStore, notifier Notifier, logger *slog.Logger) *EventHandler {
	return &EventHandler{events: es, notifier: notifier, logger: logger}
}

func (h *EventHandler) notify(action string, eventID int64) {
	if h.notifier != nil {
		h.notifier.NotifyEvent(action, eventID)
	}
}

func (h *EventHandler) list(w http.ResponseWriter, r *http.Request, f store.EventFilter) {
	identity, _ := auth.FromContext(r.Context())
	events, err := h.events.ListVisible(identity, f)
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener eventos")
		return
	}
	if events == nil {
		events = []model.EventSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}

// List handles GET /events: every event the caller may see.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.EventFilter{})
}

// Today handles GET /events/today.
func (h *EventHandler) Today(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.EventFilter{Date: dates.Today()})
}

// Week handles GET /events/week: Monday through Sunday of the current week.
func (h *EventHandler) Week(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.EventFilter{From: dates.WeekStart(), To: dates.WeekEnd()})
}

// Upcoming handles GET /events/upcoming: the next 5 events from today on.
func (h *EventHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.EventFilter{From: dates.Today(), Limit: 5})
}

// Get handles GET /events/{id}: the event with its courses, materials and
// the caller's read state.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Evento no encontrado")
		return
	}

	detail, err := h.events.Detail(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("event detail", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener evento")
		return
	}
	if detail == nil {
		writeError(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	if detail.Courses == nil {
		detail.Courses = []model.CourseRef{}
	}
	if detail.Materials == nil {
		detail.Materials = []model.EventMaterial{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"event": detail})
}

// Create handles POST /events (coordinator/admin).
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input model.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if input.Title == "" || input.EventDate == "" || input.EventType == "" {
		writeError(w, http.StatusBadRequest, "Título, fecha y tipo son requeridos")
		return
	}
	if len(input.CourseIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Debe seleccionar al menos un curso")
		return
	}
	if input.Priority == "" {
		input.Priority = model.PriorityNormal
	}
	if input.Visibility == "" {
		input.Visibility = model.VisibilityPublic
	}

	id, err := h.events.Create(input, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al crear evento")
		return
	}
	h.notify("created", id)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"event":   map[string]int64{"id": id},
	})
}

// checkOwnership loads the event and enforces creator-or-admin. Writes the
// failure response itself and reports whether the caller may proceed.
func (h *EventHandler) checkOwnership(w http.ResponseWriter, r *http.Request, id int64, action string) bool {
	existing, err := h.events.GetByID(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener evento")
		return false
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Evento no encontrado")
		return false
	}
	if existing.CreatedBy != auth.UserID(r.Context()) && !auth.IsAdmin(r.Context()) {
		writeError(w, http.StatusForbidden, "No tienes permiso para "+action+" este evento")
		return false
	}
	return true
}

// Update handles PUT /events/{id} (creator or admin).
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	if !h.checkOwnership(w, r, id, "editar") {
		return
	}

	var input model.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if input.Priority == "" {
		input.Priority = model.PriorityNormal
	}

	if err := h.events.Update(id, input); err != nil {
		h.logger.Error("update event", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al actualizar evento")
		return
	}
	h.notify("updated", id)
	writeSuccess(w)
}

// Delete handles DELETE /events/{id} (creator or admin).
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Evento no encontrado")
		return
	}
	if !h.checkOwnership(w, r, id, "eliminar") {
		return
	}

	if err := h.events.Delete(id); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al eliminar evento")
		return
	}
	h.notify("deleted", id)
	writeSuccess(w)
}

// MarkRead handles POST /events/{id}/read. Idempotent: re-marking reports
// already_read instead of failing.
func (h *EventHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Evento no encontrado")
		return
	}

	already, err := h.events.MarkRead(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("mark event read", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al marcar como leído")
		return
	}
	if already {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true, "already_read": true})
		return
	}
	writeSuccess(w)
}
