package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/client/board"
	"github.com/hrx-hr/hrx-backend-go/internal/client/enroll"
	"github.com/hrx-hr/hrx-backend-go/internal/client/session"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/face"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/spf13/cobra"
)

const (
	routeAttendance = session.RouteDashboard + "/attendance"
	routeLeave      = session.RouteDashboard + "/leave"
	routePayroll    = session.RouteDashboard + "/payroll"
	routeProfile    = session.RouteDashboard + "/profile"
	routeFace       = session.RouteDashboard + "/face"
	routeCache      = session.RouteDashboard + "/cache"
)

const enrollTimeout = 30 * time.Second

func formatClock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("15:04")
}

func printAttendance(a *app, r attendance.AttendanceResponse) {
	fmt.Fprintf(a.out, "  Date       %s\n", r.Date)
	fmt.Fprintf(a.out, "  Check in   %s\n", formatClock(r.CheckIn))
	fmt.Fprintf(a.out, "  Check out  %s\n", formatClock(r.CheckOut))
	if r.WorkHours != nil {
		fmt.Fprintf(a.out, "  Hours      %.2f\n", *r.WorkHours)
	}
	fmt.Fprintf(a.out, "  Status     %s\n", r.Status)
}

// --- Attendance ---

func runAttendanceBoard(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeAttendance)
	if err != nil {
		return err
	}
	b, err := a.api.AttendanceBoard(cmd.Context(), dateFlag)
	if err != nil {
		return a.handleAuthError(err)
	}
	a.styles.render(a.out, "Attendance for "+b.Date, board.Attendance(b))
	fmt.Fprintln(a.out, a.styles.Muted.Render(board.Counts(b)))
	return nil
}

func runCheckIn(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeAttendance)
	if err != nil {
		return err
	}
	resp, err := a.api.CheckIn(cmd.Context(), dateFlag)
	if err != nil {
		return a.handleAuthError(err)
	}
	if resp.Created {
		a.styles.ok(a.out, "Checked in.")
	} else {
		fmt.Fprintln(a.out, "Already checked in.")
	}
	printAttendance(a, resp.Attendance)
	return nil
}

func runCheckOut(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeAttendance)
	if err != nil {
		return err
	}
	resp, err := a.api.CheckOut(cmd.Context(), dateFlag)
	if err != nil {
		return a.handleAuthError(err)
	}
	a.styles.ok(a.out, "Checked out.")
	printAttendance(a, resp)
	return nil
}

// --- Leave ---

func runLeaveList(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeLeave)
	if err != nil {
		return err
	}
	resp, err := a.api.LeaveRequests(cmd.Context(), statusFlag)
	if err != nil {
		return a.handleAuthError(err)
	}
	a.styles.render(a.out, "Leave requests", board.Leave(resp.Items))
	return nil
}

func runLeaveRequest(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeLeave)
	if err != nil {
		return err
	}
	req := leave.CreateRequestRequest{
		LeaveTypeID: leaveTypeID,
		StartDate:   leaveFrom,
		EndDate:     leaveTo,
		Notes:       leaveNotes,
	}
	resp, err := a.api.CreateLeaveRequest(cmd.Context(), req)
	if err != nil {
		return a.handleAuthError(err)
	}
	a.styles.ok(a.out, "Leave request submitted: %s to %s (%d days), %s", resp.StartDate, resp.EndDate, resp.Days, resp.Status)
	return nil
}

// --- Payroll ---

func runPayslips(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routePayroll)
	if err != nil {
		return err
	}
	slips, err := a.api.MyPayslips(cmd.Context())
	if err != nil {
		return a.handleAuthError(err)
	}
	a.styles.render(a.out, "Payslips", board.Payslips(slips))
	return nil
}

// --- Profile ---

func runAvatarSet(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeProfile)
	if err != nil {
		return err
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	resp, err := a.api.UploadAvatar(cmd.Context(), args[0], f)
	if err != nil {
		return a.handleAuthError(err)
	}
	if u := a.store.Snapshot().CurrentUser; u != nil && resp.AvatarURL != nil {
		updated := *u
		updated.Avatar = *resp.AvatarURL
		a.store.Dispatch(session.LoginSucceeded{User: updated})
		if err := a.save(a.profile.RefreshToken); err != nil {
			return err
		}
	}
	a.styles.ok(a.out, "Profile picture updated.")
	return nil
}

func runAvatarDelete(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeProfile)
	if err != nil {
		return err
	}
	if _, err := a.api.DeleteAvatar(cmd.Context()); err != nil {
		return a.handleAuthError(err)
	}
	if u := a.store.Snapshot().CurrentUser; u != nil {
		updated := *u
		updated.Avatar = ""
		a.store.Dispatch(session.LoginSucceeded{User: updated})
		if err := a.save(a.profile.RefreshToken); err != nil {
			return err
		}
	}
	a.styles.ok(a.out, "Profile picture removed.")
	return nil
}

// --- Face ---

// runFaceEnroll walks the enrollment modal with the image file standing in for a camera.
func runFaceEnroll(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeFace)
	if err != nil {
		return err
	}

	done := make(chan face.EnrollmentResponse, 1)
	modal := enroll.NewModal(enroll.FileDevice{Path: imagePath}, a.api,
		enroll.OnSuccess(func(e face.EnrollmentResponse) { done <- e }),
	)
	defer modal.Close()

	ctx := cmd.Context()
	if err := modal.Open(ctx); err != nil {
		return err
	}
	if err := modal.Capture(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, a.styles.Muted.Render("Uploading photo..."))
	if err := modal.Confirm(ctx); err != nil {
		return a.handleAuthError(err)
	}

	select {
	case e := <-done:
		a.styles.ok(a.out, "Face enrolled (quality %.2f).", e.QualityScore)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(enrollTimeout):
		return fmt.Errorf("enrollment did not complete within %s", enrollTimeout)
	}
}

func runFaceStatus(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeFace)
	if err != nil {
		return err
	}
	resp, err := a.api.MyEnrollment(cmd.Context())
	if err != nil {
		return a.handleAuthError(err)
	}
	if !resp.Enrolled || resp.Enrollment == nil {
		fmt.Fprintln(a.out, "No face enrolled. Run `hrxctl face enroll --image FILE`.")
		return nil
	}
	e := resp.Enrollment
	fmt.Fprintln(a.out, a.styles.Title.Render("Face enrollment"))
	fmt.Fprintf(a.out, "  Enrolled  %s\n", e.EnrolledAt.Local().Format(time.RFC1123))
	fmt.Fprintf(a.out, "  Quality   %.2f\n", e.QualityScore)
	fmt.Fprintf(a.out, "  Photo     %s\n", e.PhotoURL)
	return nil
}

func runFaceRemove(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeFace)
	if err != nil {
		return err
	}
	if err := a.api.DeleteEnrollment(cmd.Context()); err != nil {
		return a.handleAuthError(err)
	}
	a.styles.ok(a.out, "Face enrollment removed.")
	return nil
}

func captureFile(ctx context.Context, path string) (string, error) {
	device := enroll.FileDevice{Path: path}
	stream, err := device.Acquire(ctx, enroll.DefaultConstraints)
	if err != nil {
		return "", err
	}
	defer device.Release(stream)

	frame, err := stream.Capture()
	if err != nil {
		return "", err
	}
	return enroll.EncodeDataURL(frame)
}

func runFaceCheckin(cmd *cobra.Command, args []string) error {
	a, err := mustSession(cmd, routeAttendance)
	if err != nil {
		return err
	}
	photo, err := captureFile(cmd.Context(), imagePath)
	if err != nil {
		return err
	}
	resp, err := a.api.FaceCheckIn(cmd.Context(), photo, dateFlag)
	if err != nil {
		return a.handleAuthError(err)
	}
	a.styles.ok(a.out, "Face matched (%s%%). Checked in.", resp.MatchPercentage)
	printAttendance(a, resp.Attendance)
	return nil
}
