package enroll

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/face"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	mu     sync.Mutex
	tracks int
	ready  bool
}

func (s *fakeStream) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready && s.tracks > 0
}

func (s *fakeStream) Capture() (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.White)
	return img, nil
}

func (s *fakeStream) ActiveTracks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks
}

type fakeDevice struct {
	mu          sync.Mutex
	streams     []*fakeStream
	constraints []Constraints
	notReady    bool
	acquireErr  error
}

func (d *fakeDevice) Acquire(_ context.Context, c Constraints) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.acquireErr != nil {
		return nil, d.acquireErr
	}
	s := &fakeStream{tracks: 1, ready: !d.notReady}
	d.streams = append(d.streams, s)
	d.constraints = append(d.constraints, c)
	return s, nil
}

func (d *fakeDevice) Release(s Stream) {
	fs := s.(*fakeStream)
	fs.mu.Lock()
	fs.tracks = 0
	fs.mu.Unlock()
}

func (d *fakeDevice) activeTracks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, s := range d.streams {
		total += s.ActiveTracks()
	}
	return total
}

type fakeEnroller struct {
	err     error
	block   chan struct{}
	photo   string
	quality float64
	calls   atomic.Int32
}

func (f *fakeEnroller) EnrollFace(_ context.Context, photo string, quality float64) (face.EnrollResponse, error) {
	f.calls.Add(1)
	f.photo, f.quality = photo, quality
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return face.EnrollResponse{}, f.err
	}
	return face.EnrollResponse{Enrollment: face.EnrollmentResponse{ID: "enr-1"}}, nil
}

func TestCloseWhileCameraActiveStopsAllTracks(t *testing.T) {
	device := &fakeDevice{}
	closed := 0
	m := NewModal(device, &fakeEnroller{}, OnClose(func() { closed++ }))

	require.NoError(t, m.Open(context.Background()))
	assert.Equal(t, 1, device.activeTracks())
	assert.Equal(t, DefaultConstraints, device.constraints[0])

	m.Close()
	assert.Equal(t, 0, device.activeTracks())
	assert.False(t, m.IsOpen())
	assert.Equal(t, StepCamera, m.Step())
	assert.Equal(t, 1, closed)
}

func TestCaptureEncodesJPEGAndReleasesCamera(t *testing.T) {
	device := &fakeDevice{}
	m := NewModal(device, &fakeEnroller{})
	require.NoError(t, m.Open(context.Background()))

	require.NoError(t, m.Capture())
	assert.Equal(t, StepPreview, m.Step())
	assert.True(t, strings.HasPrefix(m.Captured(), "data:image/jpeg;base64,"))
	assert.Equal(t, 0, device.activeTracks())

	require.NoError(t, m.Retake(context.Background()))
	assert.Equal(t, StepCamera, m.Step())
	assert.Empty(t, m.Captured())
	assert.Equal(t, 1, device.activeTracks())
}

func TestCaptureRequiresReadyCamera(t *testing.T) {
	m := NewModal(&fakeDevice{notReady: true}, &fakeEnroller{})
	assert.ErrorIs(t, m.Capture(), ErrNotOpen)

	require.NoError(t, m.Open(context.Background()))
	assert.ErrorIs(t, m.Capture(), ErrCameraNotReady)
	assert.Equal(t, StepCamera, m.Step())
}

func (d *fakeDevice) failAcquire(err error) {
	d.mu.Lock()
	d.acquireErr = err
	d.mu.Unlock()
}

func TestCameraDeniedStaysOnCameraStepAndCanRetry(t *testing.T) {
	denied := errors.New("permission denied")
	device := &fakeDevice{acquireErr: denied}
	m := NewModal(device, &fakeEnroller{})

	err := m.Open(context.Background())
	require.ErrorIs(t, err, denied)
	assert.Contains(t, err.Error(), "failed to access camera")
	assert.True(t, m.IsOpen())
	assert.Equal(t, StepCamera, m.Step())
	assert.Nil(t, m.stream)
	assert.Equal(t, 0, device.activeTracks())
	assert.ErrorIs(t, m.Capture(), ErrCameraNotReady)

	device.failAcquire(nil)
	require.NoError(t, m.Open(context.Background()))
	assert.Equal(t, 1, device.activeTracks())
	require.NoError(t, m.Capture())
	assert.Equal(t, StepPreview, m.Step())
}

func TestRetakeWithCameraDeniedCanReopen(t *testing.T) {
	device := &fakeDevice{}
	m := NewModal(device, &fakeEnroller{})
	require.NoError(t, m.Open(context.Background()))
	require.NoError(t, m.Capture())

	device.failAcquire(errors.New("device busy"))
	require.Error(t, m.Retake(context.Background()))
	assert.Equal(t, StepCamera, m.Step())
	assert.Empty(t, m.Captured())
	assert.Nil(t, m.stream)
	assert.Equal(t, 0, device.activeTracks())

	device.failAcquire(nil)
	require.NoError(t, m.Open(context.Background()))
	assert.Equal(t, 1, device.activeTracks())
}

func TestStaleSuccessTimerLeavesReopenedModalAlone(t *testing.T) {
	device := &fakeDevice{}
	closed := 0
	m := NewModal(device, &fakeEnroller{}, OnClose(func() { closed++ }))
	require.NoError(t, m.Open(context.Background()))
	gen := m.generation

	m.Close()
	require.NoError(t, m.Open(context.Background()))

	ok, _ := m.closeIfGeneration(gen)
	assert.False(t, ok)
	assert.True(t, m.IsOpen())
	assert.Equal(t, 1, device.activeTracks())
	assert.Equal(t, 1, closed)

	ok, wasOpen := m.closeIfGeneration(m.generation)
	assert.True(t, ok)
	assert.True(t, wasOpen)
	assert.False(t, m.IsOpen())
	assert.Equal(t, 0, device.activeTracks())
}

func TestConfirmSuccessFiresCompletionAfterDelay(t *testing.T) {
	device := &fakeDevice{}
	api := &fakeEnroller{}
	done := make(chan face.EnrollmentResponse, 1)
	m := NewModal(device, api, WithSuccessDelay(20*time.Millisecond), OnSuccess(func(e face.EnrollmentResponse) { done <- e }))

	require.NoError(t, m.Open(context.Background()))
	require.NoError(t, m.Capture())
	require.NoError(t, m.Confirm(context.Background()))

	assert.Equal(t, StepSuccess, m.Step())
	assert.Equal(t, 1.0, api.quality)
	assert.True(t, strings.HasPrefix(api.photo, "data:image/jpeg;base64,"))

	select {
	case e := <-done:
		assert.Equal(t, "enr-1", e.ID)
	case <-time.After(time.Second):
		t.Fatal("completion callback not called")
	}
	require.Eventually(t, func() bool { return !m.IsOpen() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, device.activeTracks())
}

func TestConfirmFailureReturnsToPreviewWithFrame(t *testing.T) {
	m := NewModal(&fakeDevice{}, &fakeEnroller{err: errors.New("no face detected")})
	require.NoError(t, m.Open(context.Background()))
	require.NoError(t, m.Capture())
	frame := m.Captured()

	err := m.Confirm(context.Background())
	require.EqualError(t, err, "no face detected")
	assert.Equal(t, StepPreview, m.Step())
	assert.Equal(t, frame, m.Captured())
}

func TestResponseAfterCloseIsIgnored(t *testing.T) {
	api := &fakeEnroller{block: make(chan struct{})}
	var succeeded atomic.Bool
	m := NewModal(&fakeDevice{}, api, WithSuccessDelay(time.Millisecond), OnSuccess(func(face.EnrollmentResponse) { succeeded.Store(true) }))
	require.NoError(t, m.Open(context.Background()))
	require.NoError(t, m.Capture())

	result := make(chan error, 1)
	go func() { result <- m.Confirm(context.Background()) }()
	require.Eventually(t, func() bool { return api.calls.Load() == 1 }, time.Second, time.Millisecond)

	m.Close()
	close(api.block)

	require.NoError(t, <-result)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, succeeded.Load())
	assert.Equal(t, StepCamera, m.Step())
	assert.False(t, m.IsOpen())
}

func TestFileDeviceScalesToConstraints(t *testing.T) {
	path := filepath.Join(t.TempDir(), "face.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 1280, 720))))
	require.NoError(t, f.Close())

	device := FileDevice{Path: path}
	stream, err := device.Acquire(context.Background(), DefaultConstraints)
	require.NoError(t, err)
	require.True(t, stream.Ready())

	frame, err := stream.Capture()
	require.NoError(t, err)
	assert.Equal(t, 640, frame.Bounds().Dx())
	assert.Equal(t, 360, frame.Bounds().Dy())

	device.Release(stream)
	assert.Equal(t, 0, stream.ActiveTracks())
	assert.False(t, stream.Ready())
}
