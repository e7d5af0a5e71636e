package session

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hrx-hr/hrx-backend-go/internal/client/apiclient"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	loginID, password string
	meErr             error
}

func (f *fakeAPI) Login(_ context.Context, loginID, password string) (auth.TokenResponse, error) {
	if loginID == "ghost" {
		return auth.TokenResponse{}, &apiclient.Error{Status: 404, Message: "user not found"}
	}
	if loginID != f.loginID || password != f.password {
		return auth.TokenResponse{}, &apiclient.Error{Status: 401, Message: "Invalid Login ID or Password"}
	}
	return auth.TokenResponse{AccessToken: "access", RefreshToken: "refresh", Role: user.RoleEmployee, LoginID: loginID}, nil
}

func (f *fakeAPI) Me(context.Context) (auth.SessionUser, error) {
	if f.meErr != nil {
		return auth.SessionUser{}, f.meErr
	}
	return auth.SessionUser{ID: "u-1", Name: "Ana Lee", Email: "ana@acme.test", RoleCode: user.RoleEmployee, LoginID: f.loginID}, nil
}

func TestLoginWithUnknownPairLeavesStateUntouched(t *testing.T) {
	store := NewStore(&fakeAPI{loginID: "EMP001", password: "right"})
	before := store.Snapshot()

	for _, id := range []string{"EMP001", "ghost"} {
		_, err := store.Login(context.Background(), id, "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "Invalid Login ID or Password", err.Error())
	}

	assert.False(t, store.Snapshot().IsAuthenticated())
	assert.Equal(t, before, store.Snapshot())
}

func TestLoginWithMatchingPairAuthenticates(t *testing.T) {
	store := NewStore(&fakeAPI{loginID: "EMP001", password: "right"})
	var notified []State
	store.Subscribe(func(s State) { notified = append(notified, s) })

	tokens, err := store.Login(context.Background(), "EMP001", "right")
	require.NoError(t, err)
	assert.Equal(t, "access", tokens.AccessToken)

	s := store.Snapshot()
	require.True(t, s.IsAuthenticated())
	assert.Equal(t, "Ana Lee", s.CurrentUser.Name)
	assert.Equal(t, "employee", s.CurrentUser.Role)
	assert.False(t, s.Restoring)
	require.Len(t, notified, 1)

	_, hasPassword := reflect.TypeOf(User{}).FieldByName("Password")
	assert.False(t, hasPassword)
}

func TestLoginPassesThroughOtherFailures(t *testing.T) {
	store := NewStore(&fakeAPI{loginID: "EMP001", password: "right", meErr: errors.New("boom")})

	_, err := store.Login(context.Background(), "EMP001", "right")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, store.Snapshot().IsAuthenticated())
}

func TestReduce(t *testing.T) {
	s := InitialState()
	assert.True(t, s.Restoring)
	assert.Equal(t, ThemeLight, s.Theme)

	s = Reduce(s, LoginSucceeded{User: User{ID: "u-1"}})
	assert.True(t, s.IsAuthenticated())
	assert.False(t, s.Restoring)

	s = Reduce(s, ThemeToggled{})
	assert.Equal(t, ThemeDark, s.Theme)
	s = Reduce(s, ThemeToggled{})
	assert.Equal(t, ThemeLight, s.Theme)

	s = Reduce(s, LoggedOut{})
	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.CurrentUser)

	s = Reduce(InitialState(), Restored{Theme: ThemeDark})
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.Restoring)
	assert.Equal(t, ThemeDark, s.Theme)
}

func TestGuard(t *testing.T) {
	anon := Reduce(InitialState(), Restored{})
	restoring := InitialState()
	authed := Reduce(InitialState(), LoginSucceeded{User: User{ID: "u-1"}})

	tests := []struct {
		name  string
		state State
		route string
		want  Decision
	}{
		{"anonymous dashboard", anon, "/dashboard/payroll", Decision{Redirect: "/"}},
		{"anonymous root dashboard", anon, "/dashboard", Decision{Redirect: "/"}},
		{"restoring dashboard", restoring, "/dashboard/leave", Decision{Pending: true}},
		{"authenticated dashboard", authed, "/dashboard/leave", Decision{Allowed: true}},
		{"anonymous login", anon, "/", Decision{Allowed: true}},
		{"anonymous signup", anon, "/signup", Decision{Allowed: true}},
		{"authenticated login", authed, "/", Decision{Redirect: "/dashboard"}},
		{"look-alike prefix", authed, "/dashboardx", Decision{Redirect: "/"}},
		{"unknown route", authed, "/nowhere", Decision{Redirect: "/"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guard(tt.state, tt.route))
		})
	}
}

func TestRestore(t *testing.T) {
	api := &fakeAPI{loginID: "EMP001"}
	store := NewStore(api)
	s := store.Restore(context.Background(), Profile{AccessToken: "t", User: &User{ID: "u-1"}, Theme: ThemeDark})
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, ThemeDark, s.Theme)

	api.meErr = &apiclient.Error{Status: 401, Message: "expired"}
	s = NewStore(api).Restore(context.Background(), Profile{AccessToken: "t", User: &User{ID: "u-1"}})
	assert.False(t, s.IsAuthenticated())
	assert.False(t, s.Restoring)
}

func TestProfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profile.yaml")

	missing, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, Profile{}, missing)

	state := Reduce(InitialState(), LoginSucceeded{User: User{ID: "u-1", Name: "Ana", LoginID: "EMP001"}})
	require.NoError(t, SaveProfile(path, ProfileFrom(state, "http://api", "a", "r")))

	got, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "a", got.AccessToken)
	assert.Equal(t, "r", got.RefreshToken)
	require.NotNil(t, got.User)
	assert.Equal(t, "Ana", got.User.Name)

	loggedOut := ProfileFrom(Reduce(state, LoggedOut{}), "http://api", "a", "r")
	assert.Empty(t, loggedOut.AccessToken)
	assert.Nil(t, loggedOut.User)
}
