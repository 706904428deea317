package handler

import (
	"log/slog"
	"net/http"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/dates"
	"github.com/colegiosync/colegiosync/internal/model"
	"github.com/colegiosync/colegiosync/internal/store"
)

type MaterialHandler struct {
	materials *store.MaterialStore
	logger    *slog.Logger
}

func NewMaterialHandler(ms *store.MaterialStore, logger *slog.Logger) *MaterialHandler {
	return &MaterialHandler{materials: ms, logger: logger}
}

// List handles GET /materials: materials of visible events within the next
// 7 days, with the caller's check state.
func (h *MaterialHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.FromContext(r.Context())
	today := dates.Today()

	materials, err := h.materials.ListUpcoming(identity, today, dates.AddDays(today, 7))
	if err != nil {
		h.logger.Error("list materials", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener materiales")
		return
	}
	if materials == nil {
		materials = []model.UpcomingMaterial{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

// ToggleCheck handles POST /materials/{id}/check: flips the caller's check
// state, creating it checked on first touch.
func (h *MaterialHandler) ToggleCheck(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Material no encontrado")
		return
	}

	checked, err := h.materials.ToggleCheck(id, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("toggle material check", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al actualizar material")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"checked": checked,
	})
}
