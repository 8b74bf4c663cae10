package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/seaStamp/YOUng-chat-backend/internal/api/middleware"
	"github.com/seaStamp/YOUng-chat-backend/internal/auth"
	"github.com/seaStamp/YOUng-chat-backend/internal/chat"
	"github.com/seaStamp/YOUng-chat-backend/internal/chatroom"
	"github.com/seaStamp/YOUng-chat-backend/internal/handlers"
	"github.com/seaStamp/YOUng-chat-backend/internal/store"
)

// NewRouter creates and configures the HTTP router. redisStore may be nil,
// in which case rate limiting is disabled and health reports only the store.
func NewRouter(logger zerolog.Logger, st store.Store, redisStore *store.RedisStore, rooms *chatroom.Service, chats *chat.Service, authSvc *auth.Service, rlCfg middleware.RateLimiterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max body
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// CORS - allow all origins (clients call from anywhere)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(st, redisStore, rooms, chats, authSvc, logger)
	authmw := middleware.NewAuthMiddleware(authSvc.Tokens(), st)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Rate limiting needs Redis; routes stay up without it.
		if redisStore != nil {
			limiter := middleware.NewRateLimiter(redisStore.Client(), logger, rlCfg)
			r.Use(limiter.Middleware)
		}

		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)

		// Authenticated routes (require bearer token)
		r.Group(func(r chi.Router) {
			r.Use(authmw.RequireAuth)

			r.Get("/users/me", h.Me)

			r.Route("/chat-rooms", func(r chi.Router) {
				r.Post("/personal", h.CreatePersonalRoom)
				r.Post("/group", h.CreateGroupRoom)
				r.Get("/", h.ListRooms)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetRoomDetail)
					r.Get("/messages", h.GetRoomMessages)
					r.Post("/messages", h.PostMessage)
					r.Patch("/", h.EditRoom)
					r.Delete("/members/me", h.LeaveRoom)
				})
			})

			r.Delete("/chats/{id}", h.DeleteChat)
		})
	})

	return r
}
