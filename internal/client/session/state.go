// Package session holds the client-side session slice: who is logged in and
// which theme is selected. Every other entity is re-fetched from the API.
package session

import "github.com/hrx-hr/hrx-backend-go/internal/domain/auth"

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// User is the signed-in identity. It has no password field.
type User struct {
	ID         string `json:"id" yaml:"id"`
	EmployeeID string `json:"employee_id,omitempty" yaml:"employee_id,omitempty"`
	Name       string `json:"name" yaml:"name"`
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`
	Role       string `json:"role" yaml:"role"`
	LoginID    string `json:"login_id" yaml:"login_id"`
	Avatar     string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

func UserFromSession(u auth.SessionUser) User {
	return User{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.RoleCode),
		LoginID:    u.LoginID,
		Avatar:     u.Avatar,
	}
}

type State struct {
	CurrentUser *User
	Theme       Theme
	// Restoring is true until the first restore attempt settles.
	Restoring bool
}

func InitialState() State {
	return State{Theme: ThemeLight, Restoring: true}
}

func (s State) IsAuthenticated() bool {
	return s.CurrentUser != nil
}

type Action interface {
	isAction()
}

type LoginSucceeded struct{ User User }

type LoggedOut struct{}

type ThemeToggled struct{}

// Restored settles a restore attempt; a nil User means no session survived.
type Restored struct {
	User  *User
	Theme Theme
}

func (LoginSucceeded) isAction() {}
func (LoggedOut) isAction()      {}
func (ThemeToggled) isAction()   {}
func (Restored) isAction()       {}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case LoginSucceeded:
		u := a.User
		s.CurrentUser = &u
		s.Restoring = false
	case LoggedOut:
		s.CurrentUser = nil
		s.Restoring = false
	case ThemeToggled:
		if s.Theme == ThemeDark {
			s.Theme = ThemeLight
		} else {
			s.Theme = ThemeDark
		}
	case Restored:
		if a.User != nil {
			u := *a.User
			s.CurrentUser = &u
		} else {
			s.CurrentUser = nil
		}
		if a.Theme != "" {
			s.Theme = a.Theme
		}
		s.Restoring = false
	}
	return s
}
