package apihttp

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"gasbalance-cloud/internal/audit"
	"gasbalance-cloud/internal/auth"
	"gasbalance-cloud/internal/observability/metrics"
)

const maxBodyBytes = 1 << 16

// SessionResolver identifies the caller of an RBAC-exempt route.
type SessionResolver interface {
	Resolve(r *http.Request) (auth.Session, bool)
}

type loginRequest struct {
	Role string `json:"role"`
}

type sessionResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Session   auth.Session `json:"session"`
}

// SessionHandler serves login, logout and the current session.
type SessionHandler struct {
	manager     *auth.SessionManager
	resolver    SessionResolver
	secret      []byte
	auditLogger audit.Logger
	logger      *log.Logger
	now         func() time.Time
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(manager *auth.SessionManager, resolver SessionResolver, secret []byte, auditLogger audit.Logger, logger *log.Logger) (*SessionHandler, error) {
	if manager == nil {
		return nil, errors.New("session handler: nil manager")
	}
	if resolver == nil {
		return nil, errors.New("session handler: nil resolver")
	}
	if len(secret) == 0 {
		return nil, errors.New("session handler: empty secret")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &SessionHandler{
		manager:     manager,
		resolver:    resolver,
		secret:      secret,
		auditLogger: auditLogger,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// ServeHTTP handles GET, POST and DELETE /api/v1/session.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleCurrent(w, r)
	case http.MethodPost:
		h.handleLogin(w, r)
	case http.MethodDelete:
		h.handleLogout(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *SessionHandler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.resolver.Resolve(r)
	if !ok {
		session = auth.DefaultSession()
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: session})
}

func (h *SessionHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	var sessionID string
	if current, ok := h.resolver.Resolve(r); ok {
		sessionID = current.ID
	}
	session, err := h.manager.Login(r.Context(), sessionID, req.Role)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRole) {
			http.Error(w, "invalid role", http.StatusBadRequest)
			return
		}
		h.logger.Printf("session: login: %v", err)
		http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
		return
	}
	now := h.now().UTC()
	token, err := auth.IssueJWT(session, h.secret, h.manager.TTL(), now)
	if err != nil {
		h.logger.Printf("session: issue token: %v", err)
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	metrics.IncSessionChange("login")
	h.logAudit(r, audit.ActionLogin, session)

	resp := sessionResponse{Token: token, Session: session}
	if ttl := h.manager.TTL(); ttl > 0 {
		expires := now.Add(ttl)
		resp.ExpiresAt = &expires
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SessionHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	current, ok := h.resolver.Resolve(r)
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Session: auth.DefaultSession()})
		return
	}
	session, err := h.manager.Logout(r.Context(), current.ID)
	if err != nil {
		h.logger.Printf("session: logout: %v", err)
		http.Error(w, "session store unavailable", http.StatusServiceUnavailable)
		return
	}
	metrics.IncSessionChange("logout")
	h.logAudit(r, audit.ActionLogout, current)
	writeJSON(w, http.StatusOK, sessionResponse{Session: session})
}

func (h *SessionHandler) logAudit(r *http.Request, action string, session auth.Session) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		SessionID:    session.ID,
		Role:         string(session.Role),
		Action:       action,
		ResourceType: "session",
		ResourceID:   session.ID,
		Metadata:     audit.Metadata(map[string]any{"role": session.Role}),
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
