package server

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/colegiosync/colegiosync/internal/backup"
	"github.com/colegiosync/colegiosync/internal/handler"
	"github.com/colegiosync/colegiosync/internal/middleware"
	"github.com/colegiosync/colegiosync/internal/push"
	"github.com/colegiosync/colegiosync/internal/store"
	"github.com/colegiosync/colegiosync/internal/token"
	ws "github.com/colegiosync/colegiosync/internal/websocket"
)

// Config carries everything the HTTP layer needs beyond the database handle.
type Config struct {
	JWTSecret       string
	CORSOrigins     []string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Backup          backup.Config
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	courseH       *handler.CourseHandler
	eventH        *handler.EventHandler
	subscriptionH *handler.SubscriptionHandler
	materialH     *handler.MaterialHandler
	pushH         *handler.PushHandler
	tokens        *token.Service
	rateLimiter   *middleware.RateLimiter
	corsOrigins   []string
	pushScheduler *push.Scheduler
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	tokens := token.NewService(cfg.JWTSecret)

	userStore := store.NewUserStore(db)
	courseStore := store.NewCourseStore(db)
	eventStore := store.NewEventStore(db)
	subscriptionStore := store.NewSubscriptionStore(db)
	materialStore := store.NewMaterialStore(db)
	notificationStore := store.NewNotificationStore(db)

	// Push service + digest scheduler only run when VAPID keys are present.
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushLogger := logger.With("component", "push")
		pushSvc = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, userStore, eventStore, notificationStore, pushLogger)
		pushH = handler.NewPushHandler(userStore, pushSvc, pushLogger)
	}

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, tokens, logger.With("component", "auth")),
		courseH:       handler.NewCourseHandler(courseStore, logger.With("component", "course")),
		eventH:        handler.NewEventHandler(eventStore, hub, logger.With("component", "event")),
		subscriptionH: handler.NewSubscriptionHandler(subscriptionStore, courseStore, logger.With("component", "subscription")),
		materialH:     handler.NewMaterialHandler(materialStore, logger.With("component", "material")),
		pushH:         pushH,
		tokens:        tokens,
		rateLimiter:   middleware.NewRateLimiter(),
		corsOrigins:   cfg.CORSOrigins,
		pushScheduler: pushSched,
		backupManager: backup.NewManager(cfg.Backup, db, logger.With("component", "backup")),
		logger:        logger,
	}
}

// PushScheduler returns the digest scheduler, or nil when push is disabled.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// BackupManager returns the nightly backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes. Credential endpoints sit behind a per-IP rate limit.
	outerMux.HandleFunc("POST /auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /{$}", s.indexHandler)

	// Everything else requires a valid session cookie.
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.tokens)
	outerMux.Handle("/", authMiddleware(protectedMux))

	cors := middleware.CORS(s.corsOrigins)
	logging := middleware.RequestLogger(s.logger.With("component", "http"))
	return logging(cors(outerMux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"name":"ColegioSync API","version":"1.0"}`))
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	adminOnly := middleware.RequireAdmin
	staffOnly := middleware.RequireCoordinator

	// Session
	mux.HandleFunc("POST /auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /auth/me", s.authH.Me)

	// Courses — reads for everyone, writes for admins
	mux.HandleFunc("GET /courses", s.courseH.List)
	mux.Handle("POST /courses", adminOnly(http.HandlerFunc(s.courseH.Create)))
	mux.Handle("PUT /courses/{id}", adminOnly(http.HandlerFunc(s.courseH.Update)))
	mux.Handle("DELETE /courses/{id}", adminOnly(http.HandlerFunc(s.courseH.Delete)))

	// Events — creation needs coordinator or admin; edit and delete are
	// creator-or-admin, enforced inside the handler
	mux.HandleFunc("GET /events", s.eventH.List)
	mux.HandleFunc("GET /events/today", s.eventH.Today)
	mux.HandleFunc("GET /events/week", s.eventH.Week)
	mux.HandleFunc("GET /events/upcoming", s.eventH.Upcoming)
	mux.HandleFunc("GET /events/{id}", s.eventH.Get)
	mux.Handle("POST /events", staffOnly(http.HandlerFunc(s.eventH.Create)))
	mux.HandleFunc("PUT /events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /events/{id}", s.eventH.Delete)
	mux.HandleFunc("POST /events/{id}/read", s.eventH.MarkRead)

	// Course subscriptions
	mux.HandleFunc("GET /subscriptions", s.subscriptionH.List)
	mux.HandleFunc("POST /subscriptions", s.subscriptionH.Create)
	mux.HandleFunc("DELETE /subscriptions/{id}", s.subscriptionH.Delete)

	// Upcoming materials checklist
	mux.HandleFunc("GET /materials", s.materialH.List)
	mux.HandleFunc("POST /materials/{id}/check", s.materialH.ToggleCheck)

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("POST /push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("PUT /push/preferences", s.pushH.UpdatePreferences)
		mux.HandleFunc("GET /push/vapid-key", s.pushH.VAPIDKey)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, wsOriginPatterns(s.corsOrigins), s.logger.With("component", "websocket")))
}

// wsOriginPatterns converts the CORS origin allow-list into host patterns
// for the websocket accept check, which matches hosts without scheme.
func wsOriginPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		if o != "" {
			patterns = append(patterns, o)
		}
	}
	return patterns
}
