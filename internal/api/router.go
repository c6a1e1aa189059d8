// internal/api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"workid-wallet/internal/api/handler"
	apimw "workid-wallet/internal/api/middleware"
)

// DefaultTimeout is the request deadline used when none is configured.
const DefaultTimeout = 15 * time.Second

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Wallet  *handler.WalletHandler
	Escrow  *handler.EscrowHandler
	Payment *handler.PaymentHandler
}

// Options configures the router.
type Options struct {
	RequestTimeout     time.Duration
	WebhookLimiter     *apimw.RateLimiter // nil disables webhook rate limiting
	MockGatewayEnabled bool
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, opts Options) http.Handler {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)        // Add a request ID to the context
	r.Use(middleware.RealIP)           // Use the real IP address
	r.Use(middleware.Logger)           // Log HTTP requests
	r.Use(middleware.Recoverer)        // Recover from panics and return 500
	r.Use(apimw.Metrics)               // Count requests by route pattern
	r.Use(middleware.Timeout(timeout)) // Storage calls inherit this deadline

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Wallet API routes
	r.Route("/wallets/{userID}", func(r chi.Router) {
		r.Get("/", h.Wallet.GetWallet)
		r.Get("/summary", h.Wallet.GetSummary)
		r.Get("/transactions", h.Wallet.GetTransactionHistory)
		r.Post("/deposit", h.Wallet.Deposit)
		r.Post("/withdraw", h.Wallet.Withdraw)
	})

	// Transfer is a separate top-level endpoint as it involves two wallets
	r.Post("/transfers", h.Wallet.Transfer)

	r.Route("/escrows", func(r chi.Router) {
		r.Post("/", h.Escrow.Fund)
		r.Get("/{escrowID}", h.Escrow.Get)
		r.Post("/{escrowID}/release", h.Escrow.Release)
		r.Post("/{escrowID}/refund", h.Escrow.Refund)
	})
	r.Get("/jobs/{jobID}/escrows", h.Escrow.ListByJob)

	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.Payment.Create)
		r.Get("/{paymentID}", h.Payment.Get)
		r.Group(func(r chi.Router) {
			if opts.WebhookLimiter != nil {
				r.Use(opts.WebhookLimiter.Handler)
			}
			r.Post("/webhook", h.Payment.Webhook)
		})
		if opts.MockGatewayEnabled {
			r.Post("/{paymentID}/simulate-success", h.Payment.SimulateSuccess)
		}
	})

	return r
}
