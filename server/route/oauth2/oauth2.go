package oauth2

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gorilla/sessions"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"casevault/pkg/auth"
	"casevault/pkg/config"
	interfaces "casevault/server/repository/interface"
	"casevault/server/repository/model"
)

const (
	sessionName = "casevault-auth-session-store"

	// Browser sessions are short-lived; API keys carry the long-lived
	// credentials.
	sessionTokenTTL = 12 * time.Hour
)

// AuthServer drives the OIDC login flow. On a successful callback the
// identity is provisioned as a local user and a short-lived signed
// token is handed to the browser.
type AuthServer struct {
	config       config.AuthConfig
	sessionStore *sessions.CookieStore
	oauth2Config oauth2.Config
	verifier     *oidc.IDTokenVerifier
	users        interfaces.UserRepo
	minter       *auth.TokenMinter
	state        string
	mu           sync.Mutex
}

// NewAuthServer creates and initializes a new AuthServer for the
// configured identity provider.
func NewAuthServer(cfg config.AuthConfig, users interfaces.UserRepo, minter *auth.TokenMinter) (*AuthServer, error) {
	ctx := context.Background()

	var oauth2Config oauth2.Config
	var verifier *oidc.IDTokenVerifier
	switch cfg.Provider {
	case "google":
		oauth2Config = oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		}
		provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
		if err != nil {
			return nil, fmt.Errorf("failed to get Google provider: %w", err)
		}
		verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	case "okta":
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to get Okta provider: %w", err)
		}
		oauth2Config = oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		}
		verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	return &AuthServer{
		config:       cfg,
		sessionStore: sessions.NewCookieStore([]byte(cfg.SessionKey)),
		oauth2Config: oauth2Config,
		verifier:     verifier,
		users:        users,
		minter:       minter,
		state:        generateState(),
	}, nil
}

func generateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// LoginHandler redirects the browser to the identity provider.
func (as *AuthServer) LoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")

	as.mu.Lock()
	authURL := as.oauth2Config.AuthCodeURL(as.state, oidc.Nonce(generateState()))
	as.mu.Unlock()

	http.Redirect(w, r, authURL, http.StatusFound)
}

// AuthCodeCallbackHandler handles the authorization code callback. The
// ID token is verified, the identity provisioned as a local user, and
// a signed session token returned to the browser.
func (as *AuthServer) AuthCodeCallbackHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	as.mu.Lock()
	stateOK := r.URL.Query().Get("state") == as.state
	as.mu.Unlock()
	if !stateOK {
		http.Error(w, `{"error": "Invalid state"}`, http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, `{"error": "The code was not returned or is not accessible"}`, http.StatusBadRequest)
		return
	}

	oauth2Token, err := as.oauth2Config.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, fmt.Sprintf(`{"error": "Failed to exchange token: %v"}`, err), http.StatusInternalServerError)
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		http.Error(w, `{"error": "No id_token field in oauth2 token"}`, http.StatusInternalServerError)
		return
	}

	idToken, err := as.verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		http.Error(w, `{"error": "Failed to verify ID token"}`, http.StatusInternalServerError)
		return
	}

	var claims struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		http.Error(w, `{"error": "Failed to parse ID token claims"}`, http.StatusInternalServerError)
		return
	}

	user, err := as.provisionUser(r.Context(), claims.Email, claims.Name, claims.Picture)
	if err != nil {
		http.Error(w, `{"error": "Failed to provision user"}`, http.StatusInternalServerError)
		return
	}

	token, _, _, err := as.minter.MintAPIKey(user.UUID, sessionTokenTTL)
	if err != nil {
		http.Error(w, `{"error": "Failed to issue session token"}`, http.StatusInternalServerError)
		return
	}

	session, err := as.sessionStore.Get(r, sessionName)
	if err == nil {
		session.Values["id_token"] = rawIDToken
		_ = session.Save(r, w)
	}

	fmt.Fprintf(w, `{"access_token": "%s"}`, token)
}

// provisionUser finds the local user for an OIDC identity, creating it
// on first login.
func (as *AuthServer) provisionUser(ctx context.Context, email, name, picture string) (*model.User, error) {
	if email == "" {
		return nil, fmt.Errorf("identity provider returned no email")
	}

	user, err := as.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	created, err := as.users.CreateUser(ctx, model.User{
		Username:          email,
		DisplayName:       name,
		Email:             email,
		AuthMethod:        as.config.Provider,
		ProfilePictureURL: picture,
		IsActive:          true,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// LogoutHandler clears the browser session.
func (as *AuthServer) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	as.mu.Lock()
	session, err := as.sessionStore.Get(r, sessionName)
	as.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	as.mu.Lock()
	delete(session.Values, "id_token")
	delete(session.Values, "access_token")
	err = session.Save(r, w)
	as.mu.Unlock()
	if err != nil {
		http.Error(w, "Failed to save session: "+err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
