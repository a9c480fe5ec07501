package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wellywell/monopay/internal/auth"
	"github.com/wellywell/monopay/internal/compress"
	"github.com/wellywell/monopay/internal/config"
	"github.com/wellywell/monopay/internal/handlers"
)

const (
	compressLevel = 5
	corsMaxAge    = 86400
)

type Middleware interface {
	Handle(h http.Handler) http.Handler
}

type Router struct {
	server *http.Server
	router *chi.Mux
}

func NewRouter(conf *config.ServerConfig, h *handlers.HandlerSet, middlewares ...Middleware) *Router {

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, m := range middlewares {
		r.Use(m.Handle)
	}
	if len(conf.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: conf.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         corsMaxAge,
		}))
	}
	r.Use(middleware.Compress(compressLevel))

	r.Get("/health", h.HandleHealth)
	r.Get("/mono/webhook/health", h.HandleHealth)

	// signatures are computed over the bytes as sent, so no body decoding here
	r.Post("/mono/webhook", h.HandleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(compress.RequestUngzipper{}.Handle)

		r.Post("/api/create-invoice", h.HandleCreateInvoice)
		r.Get("/mono/invoice/{orderId}", h.HandleGetOrderStatus)
		r.Get("/mono/invoice-by-id/{invoiceId}", h.HandleGetInvoiceStatus)

		if conf.AdminEnabled() {
			r.Post("/api/admin/login", h.HandleLogin)

			authMiddleware := &auth.AuthenticateMiddleware{Secret: []byte(conf.Secret)}
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Handle)
				r.Get("/api/orders", h.HandleListOrders)
			})
		}
	})

	return &Router{
		router: r,
		server: &http.Server{
			Addr:              conf.RunAddress,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (r *Router) Handler() http.Handler {
	return r.router
}

func (r *Router) ListenAndServe() error {
	err := r.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (r *Router) Shutdown(ctx context.Context) error {
	return r.server.Shutdown(ctx)
}
