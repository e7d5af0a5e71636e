package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/hrx-hr/hrx-backend-go/internal/client/apiclient"
	"github.com/hrx-hr/hrx-backend-go/internal/client/session"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `hrxctl login` first")

// app is the per-invocation client state rebuilt from the profile.
type app struct {
	profilePath string
	profile     session.Profile
	api         *apiclient.Client
	store       *session.Store
	out         io.Writer
	styles      styles
}

func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func resolveBaseURL(profile session.Profile) string {
	switch {
	case apiURL != "":
		return apiURL
	case os.Getenv("HRX_API_URL") != "":
		return os.Getenv("HRX_API_URL")
	case profile.BaseURL != "":
		return profile.BaseURL
	default:
		return apiclient.DefaultBaseURL
	}
}

// loadApp restores the session from disk without calling the API.
func loadApp(cmd *cobra.Command) (*app, error) {
	path := profilePath
	if path == "" {
		p, err := session.DefaultProfilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	profile, err := session.LoadProfile(path)
	if err != nil {
		return nil, err
	}

	baseURL := resolveBaseURL(profile)
	profile.BaseURL = baseURL
	api := apiclient.New(baseURL, apiclient.WithToken(profile.AccessToken))
	store := session.NewStore(api)

	var u *session.User
	if profile.AccessToken != "" {
		u = profile.User
	}
	state := store.Dispatch(session.Restored{User: u, Theme: profile.Theme})
	slog.Debug("Session restored", "profile", path, "authenticated", state.IsAuthenticated(), "api", baseURL)

	return &app{
		profilePath: path,
		profile:     profile,
		api:         api,
		store:       store,
		out:         cmd.OutOrStdout(),
		styles:      stylesFor(state.Theme),
	}, nil
}

// guard fails before any network call when route needs a session we do not have.
func (a *app) guard(route string) error {
	d := session.Guard(a.store.Snapshot(), route)
	if !d.Allowed {
		return errNotLoggedIn
	}
	return nil
}

// mustSession loads the app and applies the guard for a dashboard route.
func mustSession(cmd *cobra.Command, route string) (*app, error) {
	a, err := loadApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.guard(route); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) save(refreshToken string) error {
	p := session.ProfileFrom(a.store.Snapshot(), a.profile.BaseURL, a.api.Token(), refreshToken)
	if err := session.SaveProfile(a.profilePath, p); err != nil {
		return err
	}
	a.profile = p
	return nil
}

// handleAuthError forgets a session the server no longer accepts.
func (a *app) handleAuthError(err error) error {
	if apiclient.StatusOf(err) == 401 && a.store.Snapshot().IsAuthenticated() {
		a.store.Logout()
		a.api.SetToken("")
		if saveErr := a.save(""); saveErr != nil {
			slog.Warn("Failed to clear expired session", "error", saveErr)
		}
		return errors.New("session expired, run `hrxctl login` again")
	}
	return err
}
