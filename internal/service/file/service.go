package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG avatars are decoded before recompression
	"io"
	"math"
	"math/rand/v2"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/storage"
	"golang.org/x/image/draw"
)

const (
	avatarMaxSide  = 512
	avatarMaxBytes = 200 * 1024
	// URLExpiry bounds presigned URLs handed to the face service.
	URLExpiry = 15 * time.Minute
)

type FileService interface {
	// StoreAvatar recompresses JPEG and PNG input to JPEG; other formats are stored as sent.
	StoreAvatar(ctx context.Context, file io.Reader, ext string, contentType string) (key string, url string, err error)
	// StoreFacePhoto keeps an enrollment or check-in photo under faces/<employee>/.
	StoreFacePhoto(ctx context.Context, employeeID string, data []byte, contentType string) (key string, err error)
	URL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type fileServiceImpl struct {
	storage storage.FileStorage
	now     func() time.Time
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{storage: storage, now: time.Now}
}

func (s *fileServiceImpl) StoreAvatar(ctx context.Context, file io.Reader, ext string, contentType string) (string, string, error) {
	ext = strings.ToLower(ext)
	var body io.Reader = file

	if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
		buffer, err := io.ReadAll(file)
		if err != nil {
			return "", "", fmt.Errorf("failed to read avatar: %w", err)
		}
		compressed, err := compressImage(buffer, avatarMaxSide, avatarMaxBytes)
		if err != nil {
			return "", "", fmt.Errorf("failed to compress avatar: %w", err)
		}
		body, ext, contentType = bytes.NewReader(compressed), ".jpg", "image/jpeg"
	}

	key := path.Join("avatars", fmt.Sprintf("avatar-%d-%d%s", s.now().UnixMilli(), rand.IntN(1_000_000_000), ext))
	url, err := s.storage.Upload(ctx, body, key, contentType)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload avatar: %w", err)
	}
	return key, url, nil
}

func (s *fileServiceImpl) StoreFacePhoto(ctx context.Context, employeeID string, data []byte, contentType string) (string, error) {
	key := path.Join("faces", employeeID, uuid.New().String()+".jpg")
	if _, err := s.storage.Upload(ctx, bytes.NewReader(data), key, contentType); err != nil {
		return "", fmt.Errorf("failed to upload face photo: %w", err)
	}
	return key, nil
}

func (s *fileServiceImpl) URL(ctx context.Context, key string) (string, error) {
	return s.storage.GetURL(ctx, key, URLExpiry)
}

func (s *fileServiceImpl) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// compressImage scales the image so its longest side is at most maxSide and
// re-encodes it as JPEG, lowering quality until it fits in maxBytes or quality reaches 50.
func compressImage(buffer []byte, maxSide, maxBytes int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if longest := max(width, height); longest > maxSide {
		ratio := float64(maxSide) / float64(longest)
		width = max(1, int(math.Round(float64(width)*ratio)))
		height = max(1, int(math.Round(float64(height)*ratio)))
		img = resizeImage(img, width, height)
	}

	var compressed []byte
	for quality := 85; quality >= 50; quality -= 5 {
		buf := new(bytes.Buffer)
		if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		compressed = buf.Bytes()
		if len(compressed) <= maxBytes {
			break
		}
	}
	return compressed, nil
}

// resizeImage scales src with CatmullRom interpolation.
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
