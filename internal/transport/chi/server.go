package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/elodash/internal/domain"
	"github.com/kailas-cloud/elodash/internal/domain/metric"
	logpkg "github.com/kailas-cloud/elodash/internal/logger"
	healthuc "github.com/kailas-cloud/elodash/internal/usecase/health"
	lbuc "github.com/kailas-cloud/elodash/internal/usecase/leaderboard"
	reguc "github.com/kailas-cloud/elodash/internal/usecase/registration"
)

const maxRegistrationBody = 4 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Calculator holds the shirt estimate constants.
type Calculator struct {
	Target   float64
	PerMonth float64
}

// Server serves the leaderboard HTTP API.
type Server struct {
	leaderboards  *lbuc.Service
	registrations *reguc.Service
	health        *healthuc.Service
	calculator    Calculator
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	leaderboards *lbuc.Service,
	registrations *reguc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		leaderboards:  leaderboards,
		registrations: registrations,
		health:        health,
		calculator:    Calculator{Target: metric.ShirtPrice, PerMonth: metric.CoinsPerMonth},
		logger:        logger,
	}
	s.errorHandlers = []errorHandler{
		fieldErrorHandler,
		sentinelHandler(domain.ErrBoardNotFound, http.StatusNotFound, ErrorCodeBoardNotFound),
		sentinelHandler(domain.ErrEmptyBoard, http.StatusNotFound, ErrorCodeEmptyBoard),
		sentinelHandler(domain.ErrInvalidSortKey, http.StatusBadRequest, ErrorCodeInvalidSortKey),
		sentinelHandler(domain.ErrInvalidCriteria, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrAlreadyRegistered, http.StatusConflict, ErrorCodeAlreadyRegistered),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorCodeRateLimited),
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, ErrorCodeUpstreamError),
	}
	return s
}

// WithCalculator overrides the shirt estimate constants.
func (s *Server) WithCalculator(c Calculator) *Server {
	if c.Target > 0 {
		s.calculator.Target = c.Target
	}
	if c.PerMonth > 0 {
		s.calculator.PerMonth = c.PerMonth
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/boards", s.ListBoards)
		r.Get("/boards/{board}/entries", s.ListEntries)
		r.Get("/boards/{board}/categories", s.ListCategories)
		r.Get("/boards/{board}/random", s.RandomEntry)
		r.Get("/calculator/shirt", s.ShirtEstimate)
		r.Post("/registrations", s.Register)
	})
}

// ListBoards handles GET /api/v1/boards.
func (s *Server) ListBoards(w http.ResponseWriter, _ *http.Request) {
	boards := s.leaderboards.Boards()
	items := make([]Board, len(boards))
	for i, b := range boards {
		items[i] = boardToAPI(b)
	}
	writeJSON(w, http.StatusOK, BoardListResponse{Items: items})
}

// ListEntries handles GET /api/v1/boards/{board}/entries.
func (s *Server) ListEntries(w http.ResponseWriter, r *http.Request) {
	q, err := bindQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	logpkg.AddFields(r.Context(), zap.String("board", q.Board))
	res, err := s.leaderboards.Query(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	logpkg.AddFields(r.Context(),
		zap.String("sort", string(res.Sort)),
		zap.Int("total_items", res.Page.TotalItems),
		zap.Int("page", res.Page.Index),
	)

	writeJSON(w, http.StatusOK, resultToAPI(res))
}

// ListCategories handles GET /api/v1/boards/{board}/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := s.leaderboards.Categories(r.Context(), chi.URLParam(r, "board"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categoriesToAPI(counts))
}

// RandomEntry handles GET /api/v1/boards/{board}/random.
func (s *Server) RandomEntry(w http.ResponseWriter, r *http.Request) {
	q, err := bindQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	logpkg.AddFields(r.Context(), zap.String("board", q.Board))
	rec, err := s.leaderboards.Random(r.Context(), q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToAPI(rec))
}

// ShirtEstimate handles GET /api/v1/calculator/shirt.
func (s *Server) ShirtEstimate(w http.ResponseWriter, r *http.Request) {
	coins := bindCoins(r)
	resp := ShirtResponse{Target: s.calculator.Target, PerMonth: s.calculator.PerMonth}
	if months, ok := metric.MonthsToTarget(coins, s.calculator.Target, s.calculator.PerMonth).Months(); ok {
		resp.Months = &months
	}
	resp.Coins = coins
	if !finite(coins) {
		resp.Coins = 0
	}
	writeJSON(w, http.StatusOK, resp)
}

// Register handles POST /api/v1/registrations.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRegistrationBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	u, err := s.registrations.Register(r.Context(), reguc.Request{
		LeetCodeUsername: req.LeetCodeUsername,
		GitHubUsername:   req.GitHubUsername,
		DisplayName:      req.DisplayName,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logpkg.AddFields(r.Context(), zap.String("user_id", u.ID()))
	writeJSON(w, http.StatusCreated, userToAPI(u))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrBoardNotFound,
		domain.ErrEmptyBoard,
		domain.ErrInvalidSortKey,
		domain.ErrInvalidCriteria,
		domain.ErrAlreadyRegistered,
		domain.ErrInvalidRegistration,
		domain.ErrRateLimited,
		domain.ErrUpstreamUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// fieldErrorHandler reports the offending field of an invalid registration.
func fieldErrorHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrInvalidRegistration) {
		return false
	}
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		field := fe.Field
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    ErrorCodeValidationFailed,
			Message: fe.Field + " " + fe.Reason,
			Field:   &field,
		})
		return true
	}
	writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger
	if l, ok := logpkg.Lookup(r.Context()); ok {
		log = l
	}
	logpkg.AddFields(r.Context(), zap.NamedError("domain_error", err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
