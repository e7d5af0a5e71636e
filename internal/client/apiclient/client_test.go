package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"nested error message", 409, `{"success":false,"message":"outer","error":{"code":"CONFLICT","message":"inner"}}`, "inner"},
		{"top level message", 401, `{"success":false,"message":"Invalid Login ID or Password"}`, "Invalid Login ID or Password"},
		{"plain string error", 400, `{"error":"bad things"}`, "bad things"},
		{"not json", 502, `<html>gateway</html>`, "HTTP 502"},
		{"empty json", 500, `{}`, "HTTP 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(srv.URL).Me(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Message)
			assert.Equal(t, tt.want, err.Error())
			assert.Equal(t, tt.status, StatusOf(err))
		})
	}
}

func TestStatusOfTransportError(t *testing.T) {
	assert.Equal(t, 0, StatusOf(errors.New("dial tcp: refused")))
}

func TestLoginStoresTokenForLaterCalls(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var req auth.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "EMP001", req.LoginID)
			_, _ = io.WriteString(w, `{"success":true,"data":{"access_token":"abc","role":"employee","login_id":"EMP001"}}`)
		case "/auth/me":
			gotAuth = r.Header.Get("Authorization")
			_, _ = io.WriteString(w, `{"success":true,"data":{"id":"u-1","name":"Ana Lee","role":"Employee","login_id":"EMP001"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	tokens, err := c.Login(context.Background(), "EMP001", "secret")
	require.NoError(t, err)
	assert.Equal(t, "abc", tokens.AccessToken)
	assert.Equal(t, "abc", c.Token())

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "Ana Lee", me.Name)
}

func TestUploadAvatarSendsMultipartField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload/avatar", r.URL.Path)
		file, header, err := r.FormFile("avatar")
		require.NoError(t, err)
		defer file.Close()
		body, _ := io.ReadAll(file)
		assert.Equal(t, "me.png", header.Filename)
		assert.Equal(t, "png-bytes", string(body))
		_, _ = io.WriteString(w, `{"success":true,"data":{"avatar_url":"http://cdn/avatars/me.jpg"}}`)
	}))
	defer srv.Close()

	resp, err := New(srv.URL, WithToken("t")).UploadAvatar(context.Background(), "/tmp/me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	require.NotNil(t, resp.AvatarURL)
	assert.Equal(t, "http://cdn/avatars/me.jpg", *resp.AvatarURL)
}

func TestQueryParametersAndPathEscaping(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		_, _ = io.WriteString(w, `{"success":true,"data":null}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.AttendanceBoard(context.Background(), "2025-03-05")
	require.NoError(t, err)
	_, err = c.LeaveRequests(context.Background(), "")
	require.NoError(t, err)
	require.NoError(t, c.ClearCache(context.Background(), "leaveType"))

	assert.Equal(t, []string{
		"/attendance/board?date=2025-03-05",
		"/leave/requests",
		"/cache/clear/leaveType",
	}, paths)
}

func TestLogoutForgetsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req auth.RefreshTokenRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh-1", req.RefreshToken)
		_, _ = io.WriteString(w, `{"success":true,"message":"Logged out"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("abc"))
	require.NoError(t, c.Logout(context.Background(), "refresh-1"))
	assert.Empty(t, c.Token())
}
