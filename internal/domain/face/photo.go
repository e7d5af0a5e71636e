package face

import (
	"encoding/base64"
	"strings"
)

const (
	MinPhotoKB = 10
	MaxPhotoKB = 5000
)

// Photo is a decoded data URL.
type Photo struct {
	Data        []byte
	ContentType string
}

// DecodePhoto checks the size of a data URL, measured on its encoded length,
// and decodes the base64 payload.
func DecodePhoto(dataURL string) (Photo, error) {
	if strings.TrimSpace(dataURL) == "" {
		return Photo{}, ErrPhotoRequired
	}
	kb := len(dataURL) / 1024
	if kb < MinPhotoKB {
		return Photo{}, ErrPhotoTooSmall
	}
	if kb > MaxPhotoKB {
		return Photo{}, ErrPhotoTooLarge
	}

	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return Photo{}, ErrInvalidPhoto
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Photo{}, ErrInvalidPhoto
	}
	return Photo{
		Data:        data,
		ContentType: strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64"),
	}, nil
}
