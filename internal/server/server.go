package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lmguild/lootkeeper/internal/auth"
	"github.com/lmguild/lootkeeper/internal/catalog"
	"github.com/lmguild/lootkeeper/internal/database"
	"github.com/lmguild/lootkeeper/internal/handler"
	"github.com/lmguild/lootkeeper/internal/inventory"
	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/member"
	"github.com/lmguild/lootkeeper/internal/metrics"
	"github.com/lmguild/lootkeeper/internal/rank"
	"github.com/lmguild/lootkeeper/internal/registry"
)

type Server struct {
	httpServer       *http.Server
	dbPool           database.Pool
	catalogService   catalog.Service
	rankService      rank.Service
	memberService    member.Service
	inventoryService inventory.Service
	registryService  registry.Service
}

// NewServer creates a new Server instance
func NewServer(port int, apiKey string, trustedProxies []string, dbPool database.Pool, authService auth.Service, catalogService catalog.Service, rankService rank.Service, memberService member.Service, inventoryService inventory.Service, registryService registry.Service) *Server {
	r := chi.NewRouter()

	// Middleware stack
	// Chi middleware executes in order defined (outermost to innermost)
	detector := NewSuspiciousActivityDetector()

	r.Use(SecurityHeadersMiddleware())
	r.Use(AuthMiddleware(apiKey, trustedProxies, detector))
	r.Use(SecurityLoggingMiddleware(trustedProxies, detector))
	r.Use(RequestSizeLimitMiddleware(1 << 20)) // 1MB limit
	r.Use(metrics.Middleware)
	r.Use(loggingMiddleware)

	// Mutations require a registered admin in X-Admin-ID.
	adminOnly := AdminMiddleware(authService)

	// Health check routes (unversioned)
	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(dbPool))

	// Version endpoint (public, for deployment verification)
	r.Get("/version", handler.HandleVersion())

	// Metrics endpoint (public, for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", handler.HandleListItems(catalogService))
			r.With(adminOnly).Post("/", handler.HandleCreateItem(catalogService))

			r.Route("/{itemID}", func(r chi.Router) {
				r.Get("/", handler.HandleGetItem(catalogService))
				r.With(adminOnly).Put("/", handler.HandleUpdateItem(catalogService))
				r.With(adminOnly).Delete("/", handler.HandleDeleteItem(catalogService))
				r.Get("/owners", handler.HandleGetItemOwners(inventoryService))
			})
		})

		r.Route("/ranks", func(r chi.Router) {
			r.Get("/", handler.HandleListRanks(rankService))
			r.With(adminOnly).Post("/", handler.HandleSaveRank(rankService))

			r.Route("/{rankID}", func(r chi.Router) {
				r.Get("/", handler.HandleGetRank(rankService))
				r.With(adminOnly).Delete("/", handler.HandleDeleteRank(rankService))
			})
		})

		r.Route("/members", func(r chi.Router) {
			r.Get("/", handler.HandleListMembers(memberService))
			r.With(adminOnly).Post("/", handler.HandleSaveMember(memberService))

			r.Route("/{memberID}", func(r chi.Router) {
				r.Get("/", handler.HandleGetMember(memberService))
				r.With(adminOnly).Delete("/", handler.HandleDeleteMember(memberService))

				r.Route("/inventory", func(r chi.Router) {
					r.Get("/", handler.HandleGetMemberInventory(inventoryService))
					r.With(adminOnly).Post("/", handler.HandleAdjustEntry(inventoryService))
					r.With(adminOnly).Delete("/", handler.HandleClearMemberInventory(inventoryService))
				})

				r.Get("/registries", handler.HandleGetMemberRegistries(registryService))
			})
		})

		r.Get("/inventories", handler.HandleSearchInventories(inventoryService))

		r.Route("/registries", func(r chi.Router) {
			r.With(adminOnly).Post("/", handler.HandleSubmitRegistry(registryService))
			r.Get("/{registryID}", handler.HandleGetRegistry(registryService))
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		dbPool:           dbPool,
		catalogService:   catalogService,
		rankService:      rankService,
		memberService:    memberService,
		inventoryService: inventoryService,
		registryService:  registryService,
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // default status
	}
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health check endpoints and metrics
		for _, path := range PublicPaths {
			if strings.HasPrefix(r.URL.Path, path) {
				next.ServeHTTP(w, r)
				return
			}
		}

		requestID := logger.GenerateRequestID()
		ctx := logger.WithRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_length", r.ContentLength,
			"user_agent", r.UserAgent())

		// Sanitize headers for logging
		sanitizedHeaders := make(http.Header)
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, "Authorization") {
				sanitizedHeaders[k] = []string{RedactedValue}
			} else {
				sanitizedHeaders[k] = v
			}
		}
		log.Debug("Request headers", "headers", sanitizedHeaders)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"duration", duration)
	})
}

// Start starts the server
func (s *Server) Start() error {
	slog.Default().Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
