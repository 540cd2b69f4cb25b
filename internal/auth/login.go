package auth

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"chargemap/internal/observability/metrics"
)

type loginRequest struct {
	Password string `json:"password"`
	Reviewer string `json:"reviewer"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginHandler exchanges the shared reviewer password for a token.
type LoginHandler struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	logger   *log.Logger
}

// LoginOption configures a LoginHandler.
type LoginOption func(*LoginHandler)

// WithTokenTTL overrides DefaultTokenTTL.
func WithTokenTTL(ttl time.Duration) LoginOption {
	return func(h *LoginHandler) {
		if ttl > 0 {
			h.ttl = ttl
		}
	}
}

// WithLoginClock overrides time.Now.
func WithLoginClock(now func() time.Time) LoginOption {
	return func(h *LoginHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// WithLoginLogger sets the logger.
func WithLoginLogger(logger *log.Logger) LoginOption {
	return func(h *LoginHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewLoginHandler constructs a LoginHandler.
func NewLoginHandler(password string, secret []byte, opts ...LoginOption) (*LoginHandler, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	h := &LoginHandler{
		password: []byte(password),
		secret:   secret,
		ttl:      DefaultTokenTTL,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// ServeHTTP handles POST /api/v1/auth/login.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if len(h.password) == 0 || subtle.ConstantTimeCompare([]byte(req.Password), h.password) != 1 {
		metrics.IncLogin(metrics.ResultError)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	subject := strings.TrimSpace(req.Reviewer)
	if subject == "" {
		subject = string(RoleReviewer)
	}
	now := h.now()
	token, err := IssueJWT(h.secret, subject, RoleReviewer, now, h.ttl)
	if err != nil {
		h.logger.Printf("issue token failed: %v", err)
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}
	metrics.IncLogin(metrics.ResultSuccess)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{Token: token, Role: RoleReviewer, ExpiresAt: now.Add(h.ttl)})
}
