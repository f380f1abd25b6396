// Package auth implements Google sign-in. A completed sign-in syncs the user record and
// hands the UI an HS256 token signed with the shared JWT secret.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/users"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleSubject     = "google:"
	stateTTL          = 5 * time.Minute
)

// UserSyncer records the signed-in identity before the token is issued.
type UserSyncer interface {
	Sync(ctx context.Context, identity users.Identity) (users.User, bool, error)
}

// GoogleConfig holds the OAuth client settings and the UI page that receives ?token=.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UIRedirect   string
}

func (c GoogleConfig) complete() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != "" && c.UIRedirect != ""
}

// GoogleService serves /auth/google/start and /auth/google/callback.
type GoogleService struct {
	cfg         GoogleConfig
	oauth       *oauth2.Config
	states      StateStore
	signer      *sharedauth.Signer
	syncer      UserSyncer
	userInfoURL string
}

// NewGoogleService wires the OAuth flow. A nil states falls back to MemoryStates;
// a nil syncer issues tokens without persisting the identity.
func NewGoogleService(cfg GoogleConfig, signer *sharedauth.Signer, syncer UserSyncer, states StateStore) *GoogleService {
	if states == nil {
		states = NewMemoryStates()
	}
	return &GoogleService{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		states:      states,
		signer:      signer,
		syncer:      syncer,
		userInfoURL: googleUserInfoURL,
	}
}

// RegisterRoutes attaches the sign-in routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth/google")
	g.GET("/start", s.start)
	g.GET("/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.cfg.complete() || s.signer == nil {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google sign-in is not configured", nil)
		return
	}
	state := uuid.NewString()
	if err := s.states.Put(c.Request.Context(), state, stateTTL); err != nil {
		telemetry.Error("auth.state_store_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to start sign-in", nil)
		return
	}
	c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state))
}

func (s *GoogleService) callback(c *gin.Context) {
	ctx := c.Request.Context()
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		telemetry.Error("auth.state_store_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to verify sign-in", nil)
		return
	}
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	profile, err := s.exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.google_exchange_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "Google sign-in failed", nil)
		return
	}

	token, err := s.issue(ctx, profile)
	if err != nil {
		telemetry.Error("auth.issue_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to complete sign-in", nil)
		return
	}

	target, err := withToken(s.cfg.UIRedirect, token)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "invalid UI redirect", nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}

type googleProfile struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// exchange trades the code for a token and loads the profile behind it.
func (s *GoogleService) exchange(ctx context.Context, code string) (googleProfile, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return googleProfile{}, fmt.Errorf("exchange code: %w", err)
	}
	resp, err := s.oauth.Client(ctx, tok).Get(s.userInfoURL)
	if err != nil {
		return googleProfile{}, fmt.Errorf("userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var p googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	// v2 userinfo reports the subject as "id".
	if p.Sub == "" {
		p.Sub = p.ID
	}
	if p.Sub == "" {
		return googleProfile{}, errors.New("userinfo without subject")
	}
	return p, nil
}

// issue syncs the user and signs the session token.
func (s *GoogleService) issue(ctx context.Context, p googleProfile) (string, error) {
	subject := googleSubject + p.Sub
	if s.syncer != nil {
		_, created, err := s.syncer.Sync(ctx, users.Identity{ExternalID: subject, Email: p.Email, Name: p.Name})
		if err != nil {
			return "", fmt.Errorf("sync user: %w", err)
		}
		telemetry.Info("auth.google_signed_in", map[string]any{"subject": subject, "created": created})
	}
	return s.signer.Sign(sharedauth.Claims{
		Email:          p.Email,
		Name:           p.Name,
		Picture:        p.Picture,
		StandardClaims: jwt.StandardClaims{Subject: subject},
	})
}

func withToken(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("redirect %q is not absolute", rawURL)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
