package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spending/internal/core"
	"spending/internal/log"
	"spending/internal/middleware/ratelimit"
	"spending/internal/middleware/security"
	"spending/internal/middleware/trace"
)

// ExpenseManager performs the admin writes.
type ExpenseManager interface {
	Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	Update(ctx context.Context, id int64, patch core.ExpensePatch) (core.Expense, error)
	Delete(ctx context.Context, id int64) (core.Expense, error)
}

// SummaryReader answers the public reads.
type SummaryReader interface {
	GetChildren(ctx context.Context) ([]core.Child, error)
	GetChild(ctx context.Context, id int64) (core.Child, error)
	GetExpensesByChild(ctx context.Context, childID int64) ([]core.Expense, error)
	GetTotals(ctx context.Context, childID int64) (core.ChildSummary, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the API server.
type Deps struct {
	Expenses   ExpenseManager
	Summaries  SummaryReader
	Store      Pinger
	Currencies *core.CurrencyTable
	Logger     *log.Logger

	AdminPIN           string
	AllowedOrigins     []string
	RateLimitPerMinute int
	// TrustedProxies extend the networks whose X-Forwarded-For is believed.
	TrustedProxies []string
}

type Server struct {
	http.Server
	expenses   ExpenseManager
	summaries  SummaryReader
	store      Pinger
	currencies *core.CurrencyTable
	logger     *log.Logger

	tracer      *trace.Middleware
	rateLimiter *ratelimit.Limiter
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger.WithComponent(log.ComponentHTTP)
	ips := security.NewIPExtractor()
	for _, cidr := range deps.TrustedProxies {
		if err := ips.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	s := &Server{
		expenses:    deps.Expenses,
		summaries:   deps.Summaries,
		store:       deps.Store,
		currencies:  deps.Currencies,
		logger:      logger,
		tracer:      trace.NewMiddleware(deps.Logger, ips.ClientIP),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		started:     time.Now(),
	}

	admin := security.RequirePIN(deps.AdminPIN, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusUnauthorized, "Invalid Admin PIN")
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /children", s.handleListChildren)
	mux.HandleFunc("GET /children/{id}", s.handleGetChild)
	mux.HandleFunc("GET /children/{id}/expenses", s.handleChildExpenses)
	mux.HandleFunc("GET /children/{id}/total", s.handleChildTotal)
	mux.HandleFunc("GET /currencies", s.handleCurrencies)

	mux.Handle("POST /expenses", admin(http.HandlerFunc(s.handleCreateExpense)))
	mux.Handle("PUT /expenses/{id}", admin(http.HandlerFunc(s.handleUpdateExpense)))
	mux.Handle("DELETE /expenses/{id}", admin(http.HandlerFunc(s.handleDeleteExpense)))
	mux.Handle("POST /verify-pin", admin(http.HandlerFunc(s.handleVerifyPIN)))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})

	cors := security.DefaultCORSConfig()
	if len(deps.AllowedOrigins) > 0 {
		cors.AllowedOrigins = deps.AllowedOrigins
	}
	limit := s.rateLimiter.Middleware(ips.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, ips.ClientIP(r),
			log.FieldComponent, log.ComponentRateLimit)
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
	})

	var handler http.Handler = mux
	handler = limit(handler)
	handler = security.CORS(cors)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
