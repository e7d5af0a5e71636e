package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/attendance"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/employee"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/face"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/leave"
	"github.com/hrx-hr/hrx-backend-go/internal/domain/payroll"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/cache"
)

func withQuery(path string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Login stores the returned access token on the client.
func (c *Client) Login(ctx context.Context, loginID, password string) (auth.TokenResponse, error) {
	var tokens auth.TokenResponse
	err := c.sendJSON(ctx, http.MethodPost, "/auth/login", auth.LoginRequest{LoginID: loginID, Password: password}, &tokens)
	if err != nil {
		return auth.TokenResponse{}, err
	}
	c.SetToken(tokens.AccessToken)
	return tokens, nil
}

// Logout revokes both tokens server side and forgets the access token.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	err := c.sendJSON(ctx, http.MethodPost, "/auth/logout", auth.RefreshTokenRequest{RefreshToken: refreshToken}, nil)
	c.SetToken("")
	return err
}

func (c *Client) Me(ctx context.Context) (auth.SessionUser, error) {
	var me auth.SessionUser
	err := c.getJSON(ctx, "/auth/me", &me)
	return me, err
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	req := auth.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}
	return c.sendJSON(ctx, http.MethodPost, "/auth/change-password", req, nil)
}

// UploadAvatar sends the image as the "avatar" multipart field.
func (c *Client) UploadAvatar(ctx context.Context, filename string, image io.Reader) (employee.AvatarResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", filepath.Base(filename))
	if err != nil {
		return employee.AvatarResponse{}, err
	}
	if _, err := io.Copy(part, image); err != nil {
		return employee.AvatarResponse{}, fmt.Errorf("read avatar: %w", err)
	}
	if err := mw.Close(); err != nil {
		return employee.AvatarResponse{}, err
	}

	var resp employee.AvatarResponse
	err = c.do(ctx, http.MethodPost, "/upload/avatar", &buf, mw.FormDataContentType(), &resp)
	return resp, err
}

func (c *Client) DeleteAvatar(ctx context.Context) (employee.AvatarResponse, error) {
	var resp employee.AvatarResponse
	err := c.sendJSON(ctx, http.MethodDelete, "/upload/avatar", nil, &resp)
	return resp, err
}

func (c *Client) EnrollFace(ctx context.Context, photoDataURL string, quality float64) (face.EnrollResponse, error) {
	var resp face.EnrollResponse
	req := face.EnrollRequest{PhotoDataURL: photoDataURL, QualityScore: &quality}
	err := c.sendJSON(ctx, http.MethodPost, "/face/enroll", req, &resp)
	return resp, err
}

func (c *Client) MyEnrollment(ctx context.Context) (face.MyEnrollmentResponse, error) {
	var resp face.MyEnrollmentResponse
	err := c.getJSON(ctx, "/face/enrollment/me", &resp)
	return resp, err
}

func (c *Client) DeleteEnrollment(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodDelete, "/face/enrollment/me", nil, nil)
}

// FaceCheckIn checks in for date, or today when date is empty.
func (c *Client) FaceCheckIn(ctx context.Context, photoDataURL, date string) (face.CheckinResponse, error) {
	var resp face.CheckinResponse
	err := c.sendJSON(ctx, http.MethodPost, "/face/checkin", face.CheckinRequest{PhotoDataURL: photoDataURL, Date: date}, &resp)
	return resp, err
}

func (c *Client) CacheStats(ctx context.Context) (cache.Snapshot, error) {
	var snap cache.Snapshot
	err := c.getJSON(ctx, "/cache/stats", &snap)
	return snap, err
}

func (c *Client) ClearAllCaches(ctx context.Context) error {
	return c.sendJSON(ctx, http.MethodPost, "/cache/clear", nil, nil)
}

func (c *Client) ClearCache(ctx context.Context, name string) error {
	return c.sendJSON(ctx, http.MethodPost, "/cache/clear/"+url.PathEscape(name), nil, nil)
}

func (c *Client) AttendanceBoard(ctx context.Context, date string) (attendance.BoardResponse, error) {
	var board attendance.BoardResponse
	err := c.getJSON(ctx, withQuery("/attendance/board", map[string]string{"date": date}), &board)
	return board, err
}

func (c *Client) CheckIn(ctx context.Context, date string) (attendance.CheckInResponse, error) {
	var resp attendance.CheckInResponse
	err := c.sendJSON(ctx, http.MethodPost, withQuery("/attendance/me/check-in", map[string]string{"date": date}), nil, &resp)
	return resp, err
}

func (c *Client) CheckOut(ctx context.Context, date string) (attendance.AttendanceResponse, error) {
	var resp attendance.AttendanceResponse
	err := c.sendJSON(ctx, http.MethodPost, withQuery("/attendance/me/check-out", map[string]string{"date": date}), nil, &resp)
	return resp, err
}

func (c *Client) MyPayslips(ctx context.Context) ([]payroll.PayslipView, error) {
	var slips []payroll.PayslipView
	err := c.getJSON(ctx, "/payroll/me/payslips", &slips)
	return slips, err
}

// LeaveRequests lists requests visible to the caller, optionally filtered by status.
func (c *Client) LeaveRequests(ctx context.Context, status string) (leave.ListRequestResponse, error) {
	var resp leave.ListRequestResponse
	err := c.getJSON(ctx, withQuery("/leave/requests", map[string]string{"status": status}), &resp)
	return resp, err
}

func (c *Client) CreateLeaveRequest(ctx context.Context, req leave.CreateRequestRequest) (leave.RequestResponse, error) {
	var resp leave.RequestResponse
	err := c.sendJSON(ctx, http.MethodPost, "/leave/requests", req, &resp)
	return resp, err
}
