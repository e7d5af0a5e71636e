package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/hrx-hr/hrx-backend-go/internal/client/apiclient"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
)

var ErrInvalidCredentials = errors.New("Invalid Login ID or Password")

// Authenticator is the part of the API the store needs.
type Authenticator interface {
	Login(ctx context.Context, loginID, password string) (auth.TokenResponse, error)
	Me(ctx context.Context) (auth.SessionUser, error)
}

type Store struct {
	api Authenticator

	mu          sync.Mutex
	state       State
	subscribers []func(State)
}

func NewStore(api Authenticator) *Store {
	return &Store{api: api, state: InitialState()}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to be called with the new state after every dispatch.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	subs := append([]func(State){}, s.subscribers...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Login authenticates and loads the profile. On failure the state is left as it was;
// unknown or wrong credentials surface as ErrInvalidCredentials.
func (s *Store) Login(ctx context.Context, loginID, password string) (auth.TokenResponse, error) {
	tokens, err := s.api.Login(ctx, loginID, password)
	if err != nil {
		switch apiclient.StatusOf(err) {
		case http.StatusUnauthorized, http.StatusNotFound:
			return auth.TokenResponse{}, ErrInvalidCredentials
		}
		return auth.TokenResponse{}, err
	}

	me, err := s.api.Me(ctx)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	s.Dispatch(LoginSucceeded{User: UserFromSession(me)})
	return tokens, nil
}

// Restore settles the session from a persisted profile, validating it against the API.
func (s *Store) Restore(ctx context.Context, p Profile) State {
	if p.AccessToken == "" || p.User == nil {
		return s.Dispatch(Restored{Theme: p.Theme})
	}
	me, err := s.api.Me(ctx)
	if err != nil {
		return s.Dispatch(Restored{Theme: p.Theme})
	}
	u := UserFromSession(me)
	return s.Dispatch(Restored{User: &u, Theme: p.Theme})
}

func (s *Store) Logout() State {
	return s.Dispatch(LoggedOut{})
}

func (s *Store) ToggleTheme() State {
	return s.Dispatch(ThemeToggled{})
}
