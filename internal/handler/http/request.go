package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/auth"
)

// maxJSONBody bounds request bodies; face photos arrive as base64 data URLs of up to 5MB.
const maxJSONBody = 8 << 20

// decodeJSON reads the body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func sessionFrom(r *http.Request) auth.SessionTrackingRequest {
	return auth.SessionTrackingRequest{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}

// queryYear parses ?year=; zero means absent or malformed.
func queryYear(r *http.Request) int {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		return 0
	}
	return year
}
