package file

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newService(t *testing.T) (*fileServiceImpl, storage.FileStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)
	svc := NewFileService(store).(*fileServiceImpl)
	svc.now = func() time.Time { return time.UnixMilli(1735689600000) }
	return svc, store
}

func TestStoreAvatarRecompressesPNG(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	key, url, err := svc.StoreAvatar(ctx, bytes.NewReader(pngBytes(t, 1024, 768)), ".PNG", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "avatars/avatar-1735689600000-"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Contains(t, url, key)

	rc, err := store.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	cfg, format, err := image.DecodeConfig(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 384, cfg.Height)
}

func TestStoreAvatarKeepsGIF(t *testing.T) {
	svc, _ := newService(t)

	key, _, err := svc.StoreAvatar(context.Background(), strings.NewReader("GIF89a"), ".gif", "image/gif")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".gif"))
}

func TestStoreFacePhotoAndDelete(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	key, err := svc.StoreFacePhoto(ctx, "emp-1", []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "faces/emp-1/"))

	url, err := svc.URL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	require.NoError(t, svc.Delete(ctx, key))
	exists, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}
