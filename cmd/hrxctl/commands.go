package main

import (
	"github.com/spf13/cobra"
)

// --- Global flags ---
var (
	apiURL      string
	profilePath string
	verbose     bool

	loginID       string
	loginPassword string
	dateFlag      string
	statusFlag    string
	imagePath     string
	watchInterval string

	leaveTypeID string
	leaveFrom   string
	leaveTo     string
	leaveNotes  string

	rootCmd = &cobra.Command{
		Use:           "hrxctl",
		Short:         "Command-line client for the HRX HR system",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
	}

	// --- Session ---
	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session profile",
		RunE:  runLogin,
	}
	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored tokens",
		RunE:  runLogout,
	}
	whoamiCmd = &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE:  runWhoami,
	}
	themeCmd = &cobra.Command{
		Use:   "theme",
		Short: "Toggle between the light and dark output theme",
		RunE:  runTheme,
	}
	passwordCmd = &cobra.Command{
		Use:   "password",
		Short: "Manage your password",
	}
	passwordChangeCmd = &cobra.Command{
		Use:   "change",
		Short: "Change your password",
		RunE:  runPasswordChange,
	}

	// --- Attendance ---
	attendanceCmd = &cobra.Command{
		Use:   "attendance",
		Short: "Attendance board and self check-in",
	}
	attendanceBoardCmd = &cobra.Command{
		Use:   "board",
		Short: "Show who is in, out, or on leave",
		RunE:  runAttendanceBoard,
	}
	checkInCmd = &cobra.Command{
		Use:   "check-in",
		Short: "Check in for today (or --date)",
		RunE:  runCheckIn,
	}
	checkOutCmd = &cobra.Command{
		Use:   "check-out",
		Short: "Check out for today (or --date)",
		RunE:  runCheckOut,
	}

	// --- Leave ---
	leaveCmd = &cobra.Command{
		Use:   "leave",
		Short: "Leave requests",
	}
	leaveListCmd = &cobra.Command{
		Use:   "list",
		Short: "List leave requests visible to you",
		RunE:  runLeaveList,
	}
	leaveRequestCmd = &cobra.Command{
		Use:   "request",
		Short: "Submit a leave request",
		RunE:  runLeaveRequest,
	}

	// --- Payroll ---
	payslipsCmd = &cobra.Command{
		Use:   "payslips",
		Short: "List your payslips",
		RunE:  runPayslips,
	}

	// --- Profile ---
	avatarCmd = &cobra.Command{
		Use:   "avatar",
		Short: "Manage your profile picture",
	}
	avatarSetCmd = &cobra.Command{
		Use:   "set [image]",
		Short: "Upload a new profile picture",
		Args:  cobra.ExactArgs(1),
		RunE:  runAvatarSet,
	}
	avatarDeleteCmd = &cobra.Command{
		Use:   "delete",
		Short: "Remove your profile picture",
		RunE:  runAvatarDelete,
	}

	// --- Face ---
	faceCmd = &cobra.Command{
		Use:   "face",
		Short: "Face enrollment and face check-in",
	}
	faceEnrollCmd = &cobra.Command{
		Use:   "enroll",
		Short: "Enroll a face photo from --image",
		RunE:  runFaceEnroll,
	}
	faceStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show your enrollment",
		RunE:  runFaceStatus,
	}
	faceRemoveCmd = &cobra.Command{
		Use:   "remove",
		Short: "Delete your enrollment",
		RunE:  runFaceRemove,
	}
	faceCheckinCmd = &cobra.Command{
		Use:   "checkin",
		Short: "Check in with a face photo from --image",
		RunE:  runFaceCheckin,
	}

	// --- Cache ---
	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear server caches",
	}
	cacheStatsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Show hit rates per cache",
		RunE:  runCacheStats,
	}
	cacheWatchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Refresh cache statistics until interrupted",
		RunE:  runCacheWatch,
	}
	cacheClearCmd = &cobra.Command{
		Use:   "clear [name]",
		Short: "Clear one cache, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCacheClear,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $HRX_API_URL)")
	rootCmd.PersistentFlags().StringVar(&profilePath, "profile", "", "session profile path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and debug output")

	loginCmd.Flags().StringVar(&loginID, "login-id", "", "login id")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (default $HRX_PASSWORD, else prompt)")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, themeCmd)

	passwordCmd.AddCommand(passwordChangeCmd)
	rootCmd.AddCommand(passwordCmd)

	for _, c := range []*cobra.Command{attendanceBoardCmd, checkInCmd, checkOutCmd} {
		c.Flags().StringVar(&dateFlag, "date", "", "day as YYYY-MM-DD (default today)")
	}
	attendanceCmd.AddCommand(attendanceBoardCmd, checkInCmd, checkOutCmd)
	rootCmd.AddCommand(attendanceCmd)

	leaveListCmd.Flags().StringVar(&statusFlag, "status", "", "pending, approved or rejected")
	leaveRequestCmd.Flags().StringVar(&leaveTypeID, "type", "", "leave type id")
	leaveRequestCmd.Flags().StringVar(&leaveFrom, "from", "", "first day, YYYY-MM-DD")
	leaveRequestCmd.Flags().StringVar(&leaveTo, "to", "", "last day, YYYY-MM-DD")
	leaveRequestCmd.Flags().StringVar(&leaveNotes, "notes", "", "notes for the approver")
	_ = leaveRequestCmd.MarkFlagRequired("type")
	_ = leaveRequestCmd.MarkFlagRequired("from")
	_ = leaveRequestCmd.MarkFlagRequired("to")
	leaveCmd.AddCommand(leaveListCmd, leaveRequestCmd)
	rootCmd.AddCommand(leaveCmd, payslipsCmd)

	avatarCmd.AddCommand(avatarSetCmd, avatarDeleteCmd)
	rootCmd.AddCommand(avatarCmd)

	faceEnrollCmd.Flags().StringVar(&imagePath, "image", "", "JPEG or PNG photo of your face")
	faceCheckinCmd.Flags().StringVar(&imagePath, "image", "", "JPEG or PNG photo of your face")
	faceCheckinCmd.Flags().StringVar(&dateFlag, "date", "", "day as YYYY-MM-DD (default today)")
	_ = faceEnrollCmd.MarkFlagRequired("image")
	_ = faceCheckinCmd.MarkFlagRequired("image")
	faceCmd.AddCommand(faceEnrollCmd, faceStatusCmd, faceRemoveCmd, faceCheckinCmd)
	rootCmd.AddCommand(faceCmd)

	cacheWatchCmd.Flags().StringVar(&watchInterval, "interval", "5s", "refresh interval")
	cacheCmd.AddCommand(cacheStatsCmd, cacheWatchCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
