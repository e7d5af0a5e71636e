package face

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegDataURL(payloadBytes int) string {
	raw := make([]byte, payloadBytes)
	for i := range raw {
		raw[i] = byte(i)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)
}

func TestDecodePhoto(t *testing.T) {
	p, err := DecodePhoto(jpegDataURL(20 * 1024))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", p.ContentType)
	assert.Len(t, p.Data, 20*1024)
}

func TestDecodePhoto_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "  ", ErrPhotoRequired},
		{"too small", jpegDataURL(1024), ErrPhotoTooSmall},
		{"too large", jpegDataURL(4 * 1024 * 1024), ErrPhotoTooLarge},
		{"not a data url", strings.Repeat("a", 20*1024), ErrInvalidPhoto},
		{"bad base64", "data:image/png;base64," + strings.Repeat("*", 20*1024), ErrInvalidPhoto},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePhoto(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestEnrollRequest(t *testing.T) {
	req := EnrollRequest{PhotoDataURL: "data:image/jpeg;base64,AA=="}
	require.NoError(t, req.Validate())
	assert.Equal(t, 1.0, req.Quality())

	bad := 1.5
	req.QualityScore = &bad
	assert.Error(t, req.Validate())
}

func TestMatchPercentageAndStats(t *testing.T) {
	assert.Equal(t, "87.50", MatchPercentage(0.875))

	avg := 0.812345
	resp := NewStatsResponse(Stats{Total: 3, Successful: 2, Failed: 1, AvgConfidence: &avg})
	require.NotNil(t, resp.AvgConfidence)
	assert.InDelta(t, 0.8123, *resp.AvgConfidence, 1e-9)

	assert.Nil(t, NewStatsResponse(Stats{}).AvgConfidence)
}

func TestMismatchError(t *testing.T) {
	err := &MismatchError{Confidence: 0.41, Threshold: 0.6}
	assert.Contains(t, err.Error(), "0.4100")
}
