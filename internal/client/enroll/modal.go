// Package enroll drives face enrollment: camera, preview, processing, success.
package enroll

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/face"
)

const (
	jpegQuality         = 90
	defaultQuality      = 1.0
	DefaultSuccessDelay = 2 * time.Second
)

var (
	ErrNotOpen        = errors.New("enrollment is not open")
	ErrCameraNotReady = errors.New("camera is not ready")
	ErrWrongStep      = errors.New("action not allowed in the current step")
)

type Step string

const (
	StepCamera     Step = "camera"
	StepPreview    Step = "preview"
	StepProcessing Step = "processing"
	StepSuccess    Step = "success"
)

type Constraints struct {
	FacingMode string
	Width      int
	Height     int
}

var DefaultConstraints = Constraints{FacingMode: "user", Width: 640, Height: 480}

type Stream interface {
	Ready() bool
	Capture() (image.Image, error)
	ActiveTracks() int
}

// Device is the camera capability. Release stops every track of the stream.
type Device interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
	Release(s Stream)
}

type Enroller interface {
	EnrollFace(ctx context.Context, photoDataURL string, quality float64) (face.EnrollResponse, error)
}

type Option func(*Modal)

// WithSuccessDelay sets how long the success step shows before completion fires.
func WithSuccessDelay(d time.Duration) Option {
	return func(m *Modal) { m.successDelay = d }
}

// OnSuccess is called once, after the success delay, with the new enrollment.
func OnSuccess(fn func(face.EnrollmentResponse)) Option {
	return func(m *Modal) { m.onSuccess = fn }
}

func OnClose(fn func()) Option {
	return func(m *Modal) { m.onClose = fn }
}

type Modal struct {
	device       Device
	api          Enroller
	successDelay time.Duration
	onSuccess    func(face.EnrollmentResponse)
	onClose      func()

	mu       sync.Mutex
	open     bool
	step     Step
	stream   Stream
	captured string
	// generation increases on Close so late responses and timers can tell they are stale.
	generation int
	timer      *time.Timer
}

func NewModal(device Device, api Enroller, opts ...Option) *Modal {
	m := &Modal{
		device:       device,
		api:          api,
		successDelay: DefaultSuccessDelay,
		step:         StepCamera,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Modal) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

func (m *Modal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Captured returns the JPEG data URL of the current frame, if any.
func (m *Modal) Captured() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.captured
}

// Open shows the camera step and starts the device.
func (m *Modal) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.open = true
	m.step = StepCamera
	return m.startCameraLocked(ctx)
}

func (m *Modal) startCameraLocked(ctx context.Context) error {
	if m.stream != nil {
		return nil
	}
	stream, err := m.device.Acquire(ctx, DefaultConstraints)
	if err != nil {
		return fmt.Errorf("failed to access camera: %w", err)
	}
	m.stream = stream
	return nil
}

func (m *Modal) stopCameraLocked() {
	if m.stream != nil {
		m.device.Release(m.stream)
		m.stream = nil
	}
}

// Capture grabs a frame, encodes it and stops the camera.
func (m *Modal) Capture() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return ErrNotOpen
	}
	if m.step != StepCamera {
		return ErrWrongStep
	}
	if m.stream == nil || !m.stream.Ready() {
		return ErrCameraNotReady
	}

	frame, err := m.stream.Capture()
	if err != nil {
		return fmt.Errorf("failed to capture frame: %w", err)
	}
	dataURL, err := EncodeDataURL(frame)
	if err != nil {
		return err
	}

	m.captured = dataURL
	m.step = StepPreview
	m.stopCameraLocked()
	return nil
}

// Retake discards the frame and restarts the camera.
func (m *Modal) Retake(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return ErrNotOpen
	}
	if m.step != StepPreview {
		return ErrWrongStep
	}
	m.captured = ""
	m.step = StepCamera
	return m.startCameraLocked(ctx)
}

// Confirm submits the captured frame. On failure the modal returns to preview with
// the frame kept. A response that arrives after Close is dropped.
func (m *Modal) Confirm(ctx context.Context) error {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return ErrNotOpen
	}
	if m.step != StepPreview || m.captured == "" {
		m.mu.Unlock()
		return ErrWrongStep
	}
	m.stopCameraLocked()
	m.step = StepProcessing
	gen := m.generation
	photo := m.captured
	m.mu.Unlock()

	resp, err := m.api.EnrollFace(ctx, photo, defaultQuality)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation || !m.open {
		return nil
	}
	if err != nil {
		m.step = StepPreview
		return err
	}

	m.step = StepSuccess
	m.timer = time.AfterFunc(m.successDelay, func() {
		closed, wasOpen := m.closeIfGeneration(gen)
		if !closed {
			return
		}
		if m.onSuccess != nil {
			m.onSuccess(resp.Enrollment)
		}
		if wasOpen && m.onClose != nil {
			m.onClose()
		}
	})
	return nil
}

// closeIfGeneration closes the modal only while it is still in session gen.
func (m *Modal) closeIfGeneration(gen int) (closed, wasOpen bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return false, false
	}
	return true, m.closeLocked()
}

func (m *Modal) closeLocked() bool {
	m.stopCameraLocked()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	wasOpen := m.open
	m.open = false
	m.captured = ""
	m.step = StepCamera
	m.generation++
	return wasOpen
}

// Close stops the camera and resets to the initial step.
func (m *Modal) Close() {
	m.mu.Lock()
	wasOpen := m.closeLocked()
	m.mu.Unlock()

	if wasOpen && m.onClose != nil {
		m.onClose()
	}
}

// EncodeDataURL renders img as a JPEG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode frame: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
