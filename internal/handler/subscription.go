package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/model"
	"github.com/colegiosync/colegiosync/internal/store"
)

type SubscriptionHandler struct {
	subscriptions *store.SubscriptionStore
	courses       *store.CourseStore
	logger        *slog.Logger
}

func NewSubscriptionHandler(ss *store.SubscriptionStore, cs *store.CourseStore, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: ss, courses: cs, logger: logger}
}

// List handles GET /subscriptions: the caller's subscriptions joined with
// their active courses.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.ListForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener suscripciones")
		return
	}
	if subs == nil {
		subs = []model.SubscriptionWithCourse{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

type subscribeRequest struct {
	CourseID   int64   `json:"course_id"`
	ChildAlias *string `json:"child_alias"`
}

// Create handles POST /subscriptions. Subscribing twice to the same course
// is a 409; concurrent duplicates hit the unique index and surface the same
// way.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.CourseID == 0 {
		writeError(w, http.StatusBadRequest, "course_id es requerido")
		return
	}

	course, err := h.courses.GetByID(req.CourseID)
	if err != nil {
		h.logger.Error("get course for subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al suscribirse")
		return
	}
	if course == nil || course.Active != 1 {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}

	sub, err := h.subscriptions.Create(auth.UserID(r.Context()), req.CourseID, req.ChildAlias)
	if err == store.ErrDuplicate {
		writeError(w, http.StatusConflict, "Ya estás suscrito a este curso")
		return
	}
	if err != nil {
		h.logger.Error("create subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al suscribirse")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"subscription": sub,
	})
}

// Delete handles DELETE /subscriptions/{id}. Owner only: someone else's
// subscription ID answers 404, not 403, to avoid confirming it exists.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Suscripción no encontrada")
		return
	}

	deleted, err := h.subscriptions.Delete(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("delete subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al desuscribirse")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "Suscripción no encontrada")
		return
	}
	writeSuccess(w)
}
