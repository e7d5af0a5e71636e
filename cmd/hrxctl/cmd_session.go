package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hrx-hr/hrx-backend-go/internal/client/session"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/spf13/cobra"
)

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// checkNewPassword runs the form checks before anything is sent.
func checkNewPassword(current, next, confirm string) error {
	switch {
	case current == "" || next == "":
		return errors.New("current and new password are required")
	case len(next) < auth.MinPasswordLength:
		return fmt.Errorf("new password must be at least %d characters", auth.MinPasswordLength)
	case next != confirm:
		return errors.New("passwords do not match")
	case next == current:
		return errors.New("new password must differ from the current one")
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	// Already signed in: the login route redirects to the dashboard.
	if d := session.Guard(a.store.Snapshot(), session.RouteLogin); !d.Allowed {
		fmt.Fprintf(a.out, "Already signed in as %s. Run `hrxctl logout` first.\n", a.store.Snapshot().CurrentUser.LoginID)
		return nil
	}

	in := bufio.NewReader(cmd.InOrStdin())
	id := loginID
	if id == "" {
		if id, err = prompt(in, a.out, "Login ID: "); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		password = os.Getenv("HRX_PASSWORD")
	}
	if password == "" {
		if password, err = prompt(in, a.out, "Password: "); err != nil {
			return err
		}
	}

	tokens, err := a.store.Login(cmd.Context(), id, password)
	if err != nil {
		return err
	}
	if err := a.save(tokens.RefreshToken); err != nil {
		return err
	}
	u := a.store.Snapshot().CurrentUser
	slog.Debug("Logged in", "login_id", u.LoginID, "role", u.Role)
	a.styles.ok(a.out, "Welcome, %s (%s)", u.Name, u.Role)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	if a.profile.AccessToken != "" {
		// The local session is dropped even when the server is unreachable.
		if err := a.api.Logout(cmd.Context(), a.profile.RefreshToken); err != nil {
			slog.Warn("Server logout failed", "error", err)
		}
	}
	a.store.Logout()
	a.api.SetToken("")
	if err := a.save(""); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, session.RouteDashboard)
	if err != nil {
		return err
	}
	// Re-validate against the server; the profile may be stale.
	state := a.store.Restore(cmd.Context(), a.profile)
	if !state.IsAuthenticated() {
		a.api.SetToken("")
		if err := a.save(""); err != nil {
			return err
		}
		return errors.New("session expired, run `hrxctl login` again")
	}
	if err := a.save(a.profile.RefreshToken); err != nil {
		return err
	}

	u := state.CurrentUser
	fmt.Fprintln(a.out, a.styles.Title.Render(u.Name))
	fmt.Fprintf(a.out, "  Login ID  %s\n", u.LoginID)
	fmt.Fprintf(a.out, "  Role      %s\n", u.Role)
	if u.Email != "" {
		fmt.Fprintf(a.out, "  Email     %s\n", u.Email)
	}
	if u.EmployeeID != "" {
		fmt.Fprintf(a.out, "  Employee  %s\n", u.EmployeeID)
	}
	fmt.Fprintf(a.out, "  Theme     %s\n", state.Theme)
	return nil
}

func runTheme(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	state := a.store.ToggleTheme()
	if err := a.save(a.profile.RefreshToken); err != nil {
		return err
	}
	stylesFor(state.Theme).ok(a.out, "Theme set to %s", state.Theme)
	return nil
}

func runPasswordChange(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, session.RouteDashboard+"/settings")
	if err != nil {
		return err
	}
	in := bufio.NewReader(cmd.InOrStdin())
	current, err := prompt(in, a.out, "Current password: ")
	if err != nil {
		return err
	}
	next, err := prompt(in, a.out, "New password: ")
	if err != nil {
		return err
	}
	confirm, err := prompt(in, a.out, "Confirm new password: ")
	if err != nil {
		return err
	}
	if err := checkNewPassword(current, next, confirm); err != nil {
		return err
	}
	if err := a.api.ChangePassword(cmd.Context(), current, next); err != nil {
		return a.handleAuthError(err)
	}
	a.styles.ok(a.out, "Password changed.")
	return nil
}
