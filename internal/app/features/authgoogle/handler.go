// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/dalemusser/projectorhub/internal/app/features/errors"
	"github.com/dalemusser/projectorhub/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/projectorhub/internal/app/store/users"
	"github.com/dalemusser/projectorhub/internal/app/system/auth"
	"github.com/dalemusser/projectorhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// GoogleUserInfoURL is Google's OAuth2 userinfo endpoint.
	GoogleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	// stateTTL bounds how long a sign-in may take between redirect and callback.
	stateTTL = 10 * time.Minute

	// defaultReturn is where a successful sign-in lands without a return URL.
	defaultReturn = "/me"
)

// Handler handles Google OAuth authentication.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	StateStore *oauthstate.Store
	Users      *userstore.Store

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://projectors.example.edu/auth/google/callback"

	// Endpoint and UserInfoURL default to Google's.
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	stateStore *oauthstate.Store,
	users *userstore.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		StateStore:   stateStore,
		Users:        users,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		Endpoint:     google.Endpoint,
		UserInfoURL:  GoogleUserInfoURL,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		fail(w, http.StatusServiceUnavailable, "Google sign-in is not configured.")
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Could not start sign-in.")
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, state, returnURL, time.Now().UTC().Add(stateTTL)); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Could not start sign-in.")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOnline)

	h.Log.Debug("initiating Google OAuth flow",
		zap.String("return_url", returnURL))

	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, fetches the profile, upserts the user and signs them in. |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := query.Get(r, "error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", query.Get(r, "error_description")))
		fail(w, http.StatusUnauthorized, "Google sign-in was cancelled or denied.")
		return
	}

	state := query.Get(r, "state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		fail(w, http.StatusBadRequest, "Sign-in state is missing.")
		return
	}

	stateCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(stateCtx, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		fail(w, http.StatusInternalServerError, "Could not complete sign-in.")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		fail(w, http.StatusBadRequest, "Sign-in state is invalid or expired.")
		return
	}

	code := query.Get(r, "code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		fail(w, http.StatusBadRequest, "Sign-in code is missing.")
		return
	}

	exCtx, exCancel := context.WithTimeout(ctx, timeouts.Medium())
	defer exCancel()

	token, err := h.oauth2Config().Exchange(exCtx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		fail(w, http.StatusBadGateway, "Google sign-in failed.")
		return
	}

	info, err := fetchUserInfo(exCtx, h.oauth2Config(), token, h.UserInfoURL)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		fail(w, http.StatusBadGateway, "Could not read your Google profile.")
		return
	}
	if !info.EmailVerified {
		h.Log.Info("Google OAuth: email not verified", zap.String("email", info.Email))
		fail(w, http.StatusForbidden, "Your Google email address is not verified.")
		return
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, timeouts.Short())
	defer dbCancel()

	u, err := h.Users.UpsertGoogle(dbCtx, userstore.GoogleProfile{
		GoogleID: info.ID,
		Email:    info.Email,
		Name:     info.Name,
	})
	if err != nil {
		apperrors.Write(w, r, h.Log, fmt.Errorf("upsert google user: %w", err))
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex(), u.FullName, u.Email); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		fail(w, http.StatusInternalServerError, "Could not complete sign-in.")
		return
	}

	h.Log.Info("user logged in via Google OAuth",
		zap.String("user_id", u.ID.Hex()),
		zap.String("email", u.Email))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", defaultReturn), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// fetchUserInfo retrieves the profile from the userinfo endpoint.
func fetchUserInfo(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, url string) (*googleUserInfo, error) {
	client := cfg.Client(ctx, token)

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("user info has no id")
	}
	return &info, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// fail writes a sign-in error in the shared JSON error shape.
func fail(w http.ResponseWriter, status int, msg string) {
	apperrors.WriteJSON(w, status, map[string]string{"error": "auth_failed", "message": msg})
}
