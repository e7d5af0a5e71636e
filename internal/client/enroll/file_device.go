package enroll

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"golang.org/x/image/draw"
)

// FileDevice serves a still image as a single-track camera, scaled to fit the
// requested resolution.
type FileDevice struct {
	Path string
}

func (d FileDevice) Acquire(_ context.Context, c Constraints) (Stream, error) {
	f, err := os.Open(d.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.Path, err)
	}
	return &fileStream{frame: fit(src, c.Width, c.Height), tracks: 1}, nil
}

func (FileDevice) Release(s Stream) {
	if fs, ok := s.(*fileStream); ok {
		fs.stop()
	}
}

type fileStream struct {
	mu     sync.Mutex
	frame  image.Image
	tracks int
}

func (s *fileStream) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks > 0
}

func (s *fileStream) Capture() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracks == 0 {
		return nil, ErrCameraNotReady
	}
	return s.frame, nil
}

func (s *fileStream) ActiveTracks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks
}

func (s *fileStream) stop() {
	s.mu.Lock()
	s.tracks = 0
	s.mu.Unlock()
}

// fit scales src down to fit within w x h, keeping its aspect ratio.
func fit(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if w <= 0 || h <= 0 || (b.Dx() <= w && b.Dy() <= h) {
		return src
	}
	scale := min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	dw := max(1, int(float64(b.Dx())*scale))
	dh := max(1, int(float64(b.Dy())*scale))

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
