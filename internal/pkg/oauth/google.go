package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var ErrUnverifiedEmail = errors.New("google account email is not verified")

type GoogleService interface {
	// GenerateState returns an unguessable value for the state parameter and cookie.
	GenerateState() (string, error)
	RedirectURL(state string) string
	// Exchange trades the callback code for a token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	// Profile fetches the account behind token and requires a verified e-mail.
	Profile(ctx context.Context, token *oauth2.Token) (GoogleProfile, error)
}

type GoogleProfile struct {
	GoogleID      string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

type googleService struct {
	config *oauth2.Config
}

func NewGoogleService(clientID, clientSecret, redirectURL string, scopes []string) GoogleService {
	return &googleService{config: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}}
}

func (g *googleService) GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (g *googleService) RedirectURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (g *googleService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.config.Exchange(ctx, code)
}

func (g *googleService) Profile(ctx context.Context, token *oauth2.Token) (GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userInfoURL, nil)
	if err != nil {
		return GoogleProfile{}, err
	}
	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return GoogleProfile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("google userinfo: HTTP %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return GoogleProfile{}, err
	}
	if !profile.VerifiedEmail {
		return GoogleProfile{}, ErrUnverifiedEmail
	}
	return profile, nil
}
