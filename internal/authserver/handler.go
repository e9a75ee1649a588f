package authserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the auth API.
type Handler struct {
	svc     *Service
	logger  *slog.Logger
	metrics *Metrics
}

func NewHandler(svc *Service, logger *slog.Logger, metrics *Metrics) *Handler {
	return &Handler{svc: svc, logger: logger, metrics: metrics}
}

// TokenResponse is returned by login and registration.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UserResponse is returned by /users/me.
type UserResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Role     string `json:"role"`
}

type errorDetail struct {
	Msg string `json:"msg"`
}

// Router builds the chi router. gatherer backs /metrics.
func (h *Handler) Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Post("/auth/token", h.handleLogin)
	r.Post("/auth", h.handleRegister)
	r.Post("/auth/", h.handleRegister)
	r.Get("/users/me", h.handleMe)
	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.InfoContext(r.Context(), "request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.metrics.Logins.WithLabelValues("invalid").Inc()
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		h.metrics.Logins.WithLabelValues("invalid").Inc()
		writeValidation(w, &ValidationError{Problems: []string{"username and password are required"}})
		return
	}

	token, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.metrics.Logins.WithLabelValues("rejected").Inc()
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, details[ErrInvalidCredentials])
			return
		}
		h.internal(w, r, "login failed", err)
		h.metrics.Logins.WithLabelValues("error").Inc()
		return
	}
	h.metrics.Logins.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.metrics.Registrations.WithLabelValues("invalid").Inc()
		writeDetail(w, http.StatusUnprocessableEntity, "invalid json")
		return
	}

	_, token, err := h.svc.Register(r.Context(), in)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			h.metrics.Registrations.WithLabelValues("invalid").Inc()
			writeValidation(w, ve)
		case errors.Is(err, ErrUsernameTaken), errors.Is(err, ErrEmailTaken):
			h.metrics.Registrations.WithLabelValues("conflict").Inc()
			writeDetail(w, http.StatusBadRequest, detailFor(err))
		default:
			h.metrics.Registrations.WithLabelValues("error").Inc()
			h.internal(w, r, "register failed", err)
		}
		return
	}
	h.metrics.Registrations.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusCreated, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := bearer(r)
	if !ok {
		h.metrics.MeLookups.WithLabelValues("unauthenticated").Inc()
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	u, err := h.svc.Me(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken):
			h.metrics.MeLookups.WithLabelValues("rejected").Inc()
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, details[ErrInvalidToken])
		case errors.Is(err, ErrUserNotFound):
			h.metrics.MeLookups.WithLabelValues("not_found").Inc()
			writeDetail(w, http.StatusNotFound, details[ErrUserNotFound])
		default:
			h.metrics.MeLookups.WithLabelValues("error").Inc()
			h.internal(w, r, "me failed", err)
		}
		return
	}
	h.metrics.MeLookups.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, UserResponse{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Age:      u.Age,
		Role:     u.Role,
	})
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err.Error(),
	)
	writeDetail(w, http.StatusInternalServerError, "Internal server error")
}

func bearer(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func detailFor(err error) string {
	for sentinel, d := range details {
		if errors.Is(err, sentinel) {
			return d
		}
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, ve *ValidationError) {
	list := make([]errorDetail, 0, len(ve.Problems))
	for _, p := range ve.Problems {
		list = append(list, errorDetail{Msg: p})
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": list})
}
