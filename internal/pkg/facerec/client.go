// Package facerec calls the face comparison service over HTTP.
package facerec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrServiceUnavailable = errors.New("face service unavailable")

// Result is the comparison verdict. Confidence is in [0, 1].
type Result struct {
	IsMatch    bool    `json:"isMatch"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

type Comparer interface {
	Compare(ctx context.Context, enrolledPhotoURL, checkInPhotoURL string) (Result, error)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type compareRequest struct {
	EnrolledPhotoURL string `json:"enrolledPhotoUrl"`
	CheckInPhotoURL  string `json:"checkInPhotoUrl"`
}

func (c *Client) Compare(ctx context.Context, enrolledPhotoURL, checkInPhotoURL string) (Result, error) {
	body, err := json.Marshal(compareRequest{EnrolledPhotoURL: enrolledPhotoURL, CheckInPhotoURL: checkInPhotoURL})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/compare-faces", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var failure struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&failure) == nil && failure.Message != "" {
			return Result{}, fmt.Errorf("%w: %s", ErrServiceUnavailable, failure.Message)
		}
		return Result{}, fmt.Errorf("%w: HTTP %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode face service response: %w", err)
	}
	return result, nil
}
