package auth

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/aquamarinepk/aqm"
	authpkg "github.com/aquamarinepk/aqm/auth"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const MaxBodyBytes = 1 << 20

const DefaultCookieName = "admin_session"

// Handler handles admin sign-in and sign-out
type Handler struct {
	users      UserRepo
	sessions   *SessionStore
	secret     []byte
	cookieName string
	logger     aqm.Logger
	config     *aqm.Config
	tlm        *telemetry.HTTP
}

type HandlerDeps struct {
	Users    UserRepo
	Sessions *SessionStore
	Secret   []byte
}

func NewHandler(deps HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	cookieName := DefaultCookieName
	if config != nil {
		cookieName = config.GetStringOrDef("auth.session.name", DefaultCookieName)
	}
	return &Handler{
		users:      deps.Users,
		sessions:   deps.Sessions,
		secret:     deps.Secret,
		cookieName: cookieName,
		logger:     logger,
		config:     config,
		tlm:        telemetry.NewHTTP(),
	}
}

// RegisterRoutes registers the sign-in surface. These stay outside the
// session middleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/signin", h.SignIn)
	r.Post("/admin/signout", h.SignOut)
}

// SignIn handles POST /admin/signin
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SignIn")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Could not read request body")
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if payload.Email == "" || payload.Password == "" {
		aqm.RespondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetByEmail(ctx, authpkg.NormalizeEmail(payload.Email))
	if err != nil || user == nil {
		log.Debug("signin for unknown user", "error", err)
		aqm.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if user.Status != authpkg.UserStatusActive || !user.CheckPassword(payload.Password) {
		log.Debug("signin rejected", "user_id", user.ID.String())
		aqm.RespondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	session := &Session{
		ID:        uuid.New().String(),
		UserID:    user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(h.sessions.TTL()),
	}

	if err := h.sessions.Save(session); err != nil {
		log.Error("failed to save session", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not start session")
		return
	}

	token, err := issueToken(h.secret, session.ID, h.sessions.TTL())
	if err != nil {
		log.Error("failed to issue session token", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not start session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL().Seconds()),
	})

	aqm.Respond(w, http.StatusOK, map[string]interface{}{
		"name":  user.Name,
		"email": user.Email,
	}, nil)
}

// SignOut handles POST /admin/signout
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SignOut")
	defer finish()

	cookie, err := r.Cookie(h.cookieName)
	if err == nil && cookie.Value != "" {
		if sessionID, err := parseToken(h.secret, cookie.Value); err == nil {
			h.sessions.Delete(sessionID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}
