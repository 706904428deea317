package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/model"
	"github.com/colegiosync/colegiosync/internal/push"
	"github.com/colegiosync/colegiosync/internal/store"
)

type PushHandler struct {
	users   *store.UserStore
	service *push.Service
	logger  *slog.Logger
}

func NewPushHandler(us *store.UserStore, svc *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{users: us, service: svc, logger: logger}
}

type pushSubscribeRequest struct {
	Subscription json.RawMessage `json:"subscription"`
}

// Subscribe handles POST /push/subscribe: stores the browser's
// PushSubscription JSON on the user row. One endpoint per user; a new
// subscription replaces the old one.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req pushSubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if len(req.Subscription) == 0 || string(req.Subscription) == "null" {
		writeError(w, http.StatusBadRequest, "subscription es requerido")
		return
	}

	raw := string(req.Subscription)
	if err := h.users.SetPushSubscription(auth.UserID(r.Context()), &raw); err != nil {
		h.logger.Error("save push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al suscribirse a notificaciones")
		return
	}
	writeSuccess(w)
}

// Unsubscribe handles DELETE /push/unsubscribe.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := h.users.SetPushSubscription(auth.UserID(r.Context()), nil); err != nil {
		h.logger.Error("clear push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al desuscribirse")
		return
	}
	writeSuccess(w)
}

type preferencesRequest struct {
	Evening       *int    `json:"notification_evening"`
	Morning       *int    `json:"notification_morning"`
	TimeEvening   *string `json:"notification_time_evening"`
	TimeMorning   *string `json:"notification_time_morning"`
	OnlyImportant *int    `json:"notification_only_important"`
}

// UpdatePreferences handles PUT /push/preferences. Omitted fields fall back
// to the defaults rather than being preserved, matching the frontend which
// always sends the full form.
func (h *PushHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	prefs := model.NotificationPrefs{
		Evening:       1,
		Morning:       1,
		TimeEvening:   "20:00",
		TimeMorning:   "07:00",
		OnlyImportant: 0,
	}
	if req.Evening != nil {
		prefs.Evening = *req.Evening
	}
	if req.Morning != nil {
		prefs.Morning = *req.Morning
	}
	if req.TimeEvening != nil && *req.TimeEvening != "" {
		prefs.TimeEvening = *req.TimeEvening
	}
	if req.TimeMorning != nil && *req.TimeMorning != "" {
		prefs.TimeMorning = *req.TimeMorning
	}
	if req.OnlyImportant != nil {
		prefs.OnlyImportant = *req.OnlyImportant
	}

	if err := h.users.UpdateNotificationPrefs(auth.UserID(r.Context()), prefs); err != nil {
		h.logger.Error("update notification preferences", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al actualizar preferencias")
		return
	}
	writeSuccess(w)
}

// VAPIDKey handles GET /push/vapid-key.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.service.VAPIDPublicKey()})
}
