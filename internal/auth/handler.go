package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/advotecate/advotecate/internal/audit"
	"github.com/advotecate/advotecate/internal/platform/httpx"
	"github.com/advotecate/advotecate/internal/session"
	"github.com/advotecate/advotecate/internal/token"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *session.Manager
	tokens    *token.Issuer
	audit     *audit.Logger
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. The audit logger may be nil.
func NewHandler(logger *slog.Logger, service *Service, sessions *session.Manager, tokens *token.Issuer, auditLogger *audit.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		tokens:    tokens,
		audit:     auditLogger,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. Login carries
// its own tighter rate limit on top of the global one.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(httprate.LimitByIP(10, time.Minute)).Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password are required")
		return
	}

	account, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	orgs, grants, err := h.service.Grants(r.Context(), account.ID)
	if err != nil {
		h.logger.Error("load grants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	sess, err := h.sessions.Create(r.Context(), session.NewParams{
		UserID:        account.ID,
		Email:         account.Email,
		Role:          account.Role,
		Organizations: orgs,
		IPAddress:     r.RemoteAddr,
		UserAgent:     r.UserAgent(),
	})
	if err != nil {
		h.logger.Error("create session", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "could not establish session")
		return
	}

	access, err := h.tokens.Access(token.AccessParams{
		UserID:        account.ID,
		Email:         account.Email,
		Role:          account.Role,
		KYCStatus:     account.KYCStatus,
		Organizations: orgs,
		Permissions:   grants,
		SessionID:     sess.ID,
	})
	if err != nil {
		h.logger.Error("issue access token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	refresh, err := h.tokens.Refresh(account.ID, account.Email, sess.ID)
	if err != nil {
		h.logger.Error("issue refresh token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.record(r, audit.Entry{
		ActorID:  account.ID,
		Action:   "auth.login",
		Entity:   "session",
		EntityID: sess.ID,
	})

	httpx.JSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(h.tokens.AccessTTL().Seconds()),
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "refresh_token is required")
		return
	}

	claims, err := h.tokens.Verify(req.RefreshToken, token.TypeRefresh)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	sess, err := h.sessions.Get(r.Context(), claims.SessionID, r.RemoteAddr, r.UserAgent())
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	// Grants are reloaded so a refresh picks up membership changes instead
	// of replaying the stale snapshot from login.
	orgs, grants, err := h.service.Grants(r.Context(), sess.UserID)
	if err != nil {
		h.logger.Error("load grants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	access, err := h.tokens.Access(token.AccessParams{
		UserID:        sess.UserID,
		Email:         sess.Email,
		Role:          sess.Role,
		Organizations: orgs,
		Permissions:   grants,
		SessionID:     sess.ID,
	})
	if err != nil {
		h.logger.Error("issue access token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, tokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.tokens.AccessTTL().Seconds()),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, err := h.tokens.Verify(bearerToken(r), token.TypeAccess)
	if err != nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if err := h.sessions.Destroy(r.Context(), claims.SessionID); err != nil {
		h.logger.Warn("destroy session", slog.Any("error", err))
	}
	h.record(r, audit.Entry{
		ActorID:  claims.UserID,
		Action:   "auth.logout",
		Entity:   "session",
		EntityID: claims.SessionID,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) record(r *http.Request, entry audit.Entry) {
	if h.audit == nil {
		return
	}
	entry.Meta = map[string]any{
		"ip":         r.RemoteAddr,
		"user_agent": r.UserAgent(),
	}
	if err := h.audit.Record(r.Context(), entry); err != nil {
		h.logger.Warn("audit record", slog.String("action", entry.Action), slog.Any("error", err))
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}
