package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/colegiosync/colegiosync/internal/model"
	"github.com/colegiosync/colegiosync/internal/store"
)

type CourseHandler struct {
	courses *store.CourseStore
	logger  *slog.Logger
}

func NewCourseHandler(cs *store.CourseStore, logger *slog.Logger) *CourseHandler {
	return &CourseHandler{courses: cs, logger: logger}
}

// List handles GET /courses. Only active courses are listed; soft-deleted
// ones stay in the schema for historical references.
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.ListActive()
	if err != nil {
		h.logger.Error("list courses", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener cursos")
		return
	}
	if courses == nil {
		courses = []model.Course{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

type courseRequest struct {
	Name   string `json:"name"`
	Color  string `json:"color"`
	Year   int    `json:"year"`
	Active *int   `json:"active"`
}

// Create handles POST /courses (admin).
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Name == "" || req.Color == "" || req.Year == 0 {
		writeError(w, http.StatusBadRequest, "Nombre, color y año son requeridos")
		return
	}

	course, err := h.courses.Create(req.Name, req.Color, req.Year)
	if err != nil {
		h.logger.Error("create course", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al crear curso")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"course":  course,
	})
}

// Update handles PUT /courses/{id} (admin). Setting active back to 1
// reactivates a soft-deleted course.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}

	existing, err := h.courses.GetByID(id)
	if err != nil {
		h.logger.Error("get course", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al actualizar curso")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}

	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	active := 1
	if req.Active != nil {
		active = *req.Active
	}

	course, err := h.courses.Update(id, req.Name, req.Color, req.Year, active)
	if err != nil {
		h.logger.Error("update course", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al actualizar curso")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"course":  course,
	})
}

// Delete handles DELETE /courses/{id} (admin). Soft delete: subscriptions
// and past event links survive.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "Curso no encontrado")
		return
	}
	if err := h.courses.SoftDelete(id); err != nil {
		h.logger.Error("soft delete course", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al eliminar curso")
		return
	}
	writeSuccess(w)
}
