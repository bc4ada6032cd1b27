package http

import (
	"MailTrack-Backend/internal/auth"
	"MailTrack-Backend/internal/identity"
	"MailTrack-Backend/internal/repository"
	"MailTrack-Backend/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	authHandler    *AuthHandler
	linksHandler   *LinksHandler
	pixelHandler   *PixelHandler
	healthHandler  *HealthHandler
	authMiddleware *auth.Middleware
	render         *Renderer
	log            *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	storage repository.Storage,
	tracker *service.TrackerService,
	provider identity.Provider,
	sessions *auth.SessionService,
	log *zap.Logger,
	baseURL string,
) (*Server, error) {
	render, err := NewRenderer(log)
	if err != nil {
		return nil, err
	}

	authHandler := NewAuthHandler(storage, provider, sessions, render, log)
	linksHandler := NewLinksHandler(storage, tracker, render, log, baseURL)
	pixelHandler := NewPixelHandler(storage, tracker, log)
	healthHandler := NewHealthHandler(log)

	authMiddleware := auth.NewMiddleware(sessions, log)
	// Отозванный cookie получает страничный 401 вместо plain text
	authMiddleware.RevokedHandler = authHandler.RenderRevoked

	return &Server{
		authHandler:    authHandler,
		linksHandler:   linksHandler,
		pixelHandler:   pixelHandler,
		healthHandler:  healthHandler,
		authMiddleware: authMiddleware,
		render:         render,
		log:            log,
	}, nil
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health check (без аутентификации)
	mux.HandleFunc("/apphealth", s.healthHandler.AppHealth)

	// Auth endpoints (без аутентификации)
	mux.HandleFunc("/login", s.authHandler.Login)
	mux.HandleFunc("/logout", s.authHandler.Logout)

	// Пиксель: сессия опциональна - она только исключает self-view
	mux.HandleFunc("/track", s.authMiddleware.OptionalSession(s.pixelHandler.Track))

	// Страницы владельца (с аутентификацией)
	mux.HandleFunc("/tracklist", s.authMiddleware.RequireSession(s.linksHandler.TrackList))
	mux.HandleFunc("/tracking-data/", s.authMiddleware.RequireSession(s.linksHandler.TrackingData))
	mux.HandleFunc("/index/", s.authMiddleware.RequireSession(s.linksHandler.Index))

	// Корень обслуживает форму генерации; все прочие пути - 404
	index := s.authMiddleware.RequireSession(s.linksHandler.Index)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			s.notFound(w, r)
			return
		}
		index(w, r)
	})

	return mux
}

// notFound рендерит 404 страницу для неизвестных путей
func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.log.Warn("invalid url requested", zap.String("path", r.URL.Path))
	s.render.Render(w, r, http.StatusNotFound, "404", nil)
}
