package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"homiio/internal/core/domain"
	"homiio/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers - все обработчики API.
type Handlers struct {
	Health        *HealthHandler
	Properties    *PropertyHandler
	Rooms         *RoomHandler
	Leases        *LeaseHandler
	Profiles      *ProfileHandler
	Viewings      *ViewingHandler
	Notifications *NotificationHandler
	Billing       *BillingHandler
	Chat          *ChatHandler
}

type ServerOptions struct {
	Port           string
	AllowedOrigins []string
	Auth           *AuthMiddleware
	// Limiter и Metrics необязательны.
	Limiter        port.RateLimiterPort
	Metrics        HTTPMetrics
	MetricsHandler http.Handler
}

// Server - REST API сервер homiio.
type Server struct {
	httpServer *http.Server
	logger     port.LoggerPort
}

// NewRouter собирает маршруты. Вынесен отдельно, чтобы тесты гоняли запросы без сети.
func NewRouter(h Handlers, opts ServerOptions, baseLogger port.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(baseLogger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if opts.Metrics != nil {
		r.Use(MetricsMiddleware(opts.Metrics))
	}

	r.Get("/health", h.Health.Health)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	auth := opts.Auth

	r.Route("/api", func(r chi.Router) {
		if opts.Limiter != nil {
			r.Use(RateLimitMiddleware(opts.Limiter))
		}

		// вебхук подписан Stripe, токена пользователя у него нет
		r.Post("/billing/webhook", h.Billing.Webhook)

		// --- публичные маршруты, пользователь опционален ---
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuthenticate)

			r.Get("/amenities", h.Properties.ListAmenities)
			r.Get("/properties", h.Properties.ListProperties)
			r.Get("/properties/{propertyID}", h.Properties.GetProperty)
			r.Get("/properties/{propertyID}/pricing", h.Properties.GetPricing)
			r.Get("/properties/{propertyID}/rooms", h.Rooms.ListRooms)
			r.Post("/properties/{propertyID}/views", h.Properties.RecordView)
			r.Get("/rooms/{roomID}", h.Rooms.GetRoom)
		})

		// --- приватные маршруты ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/properties", h.Properties.CreateProperty)
			r.Get("/properties/owner/me", h.Properties.ListMyProperties)
			r.Put("/properties/{propertyID}", h.Properties.UpdateProperty)
			r.Delete("/properties/{propertyID}", h.Properties.DeleteProperty)
			r.Post("/properties/{propertyID}/rooms", h.Rooms.CreateRoom)
			r.Get("/properties/{propertyID}/viewings", h.Viewings.ListPropertyViewings)

			r.Put("/rooms/{roomID}", h.Rooms.UpdateRoom)
			r.Delete("/rooms/{roomID}", h.Rooms.DeleteRoom)

			r.Route("/leases", func(r chi.Router) {
				r.Post("/", h.Leases.CreateLease)
				r.Get("/", h.Leases.ListLeases)
				r.Get("/{leaseID}", h.Leases.GetLease)
				r.Put("/{leaseID}", h.Leases.UpdateLease)
				r.Post("/{leaseID}/submit", h.Leases.SubmitLease)
				r.Post("/{leaseID}/sign", h.Leases.SignLease)
				r.Post("/{leaseID}/terminate", h.Leases.TerminateLease)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", h.Profiles.Me)
				r.Get("/me/saved", h.Profiles.ListSaved)
				r.Post("/me/saved/{propertyID}", h.Profiles.SaveProperty)
				r.Delete("/me/saved/{propertyID}", h.Profiles.UnsaveProperty)
				r.Get("/me/recent", h.Profiles.ListRecent)

				r.Get("/profiles", h.Profiles.ListProfiles)
				r.Post("/profiles", h.Profiles.CreateProfile)
				r.Get("/profiles/{profileID}", h.Profiles.GetProfile)
				r.Put("/profiles/{profileID}", h.Profiles.UpdateProfile)
				r.Delete("/profiles/{profileID}", h.Profiles.DeleteProfile)
				r.Post("/profiles/{profileID}/activate", h.Profiles.ActivateProfile)
			})

			r.Route("/viewings", func(r chi.Router) {
				r.Post("/", h.Viewings.CreateViewing)
				r.Get("/me", h.Viewings.ListMyViewings)
				r.Get("/{viewingID}", h.Viewings.GetViewing)
				r.Post("/{viewingID}/approve", h.Viewings.ApproveViewing)
				r.Post("/{viewingID}/decline", h.Viewings.DeclineViewing)
				r.Post("/{viewingID}/cancel", h.Viewings.CancelViewing)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notifications.ListNotifications)
				r.Get("/stream", h.Notifications.Subscribe)
				r.Patch("/read-all", h.Notifications.MarkAllRead)
				r.Patch("/{notificationID}/read", h.Notifications.MarkRead)
				r.Delete("/{notificationID}", h.Notifications.DeleteNotification)
			})

			r.Route("/billing", func(r chi.Router) {
				r.Post("/checkout", h.Billing.CreateCheckout)
				r.Post("/confirm", h.Billing.ConfirmCheckout)
				r.Get("/status", h.Billing.Status)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Post("/messages", h.Chat.SendMessage)
				r.Get("/conversations", h.Chat.ListConversations)
				r.Get("/conversations/{conversationID}", h.Chat.GetConversation)
				r.Delete("/conversations/{conversationID}", h.Chat.DeleteConversation)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, domain.NewNotFound("route"))
	})

	return r
}

func NewServer(h Handlers, opts ServerOptions, baseLogger port.LoggerPort) *Server {
	srv := &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           NewRouter(h, opts, baseLogger),
		ReadHeaderTimeout: 10 * time.Second,
		// WriteTimeout не задан: SSE-подключения живут долго
		IdleTimeout: 120 * time.Second,
	}
	if h.Notifications != nil {
		srv.RegisterOnShutdown(h.Notifications.CloseStreams)
	}

	return &Server{
		httpServer: srv,
		logger:     baseLogger.WithFields(port.Fields{"component": "rest_server"}),
	}
}

// Start запускает HTTP-сервер.
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", port.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Server shutdown failed", err, nil)
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("REST API server stopped.", nil)
	return nil
}
