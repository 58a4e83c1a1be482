// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/transport"
)

// MockAuthenticator is a test double for the authentication collaborator.
type MockAuthenticator struct {
	Status models.AuthStatus
	Err    error
	calls  atomic.Int32
}

func (m *MockAuthenticator) CheckAuthenticated(ctx context.Context) (models.AuthStatus, error) {
	m.calls.Add(1)
	return m.Status, m.Err
}

// Calls returns how many times the authentication check ran.
func (m *MockAuthenticator) Calls() int { return int(m.calls.Load()) }

// FakeAdapter is a scripted [transport.Adapter].
//
// Each subscription emits Frames in order, waiting Delay before each one.
// With Hold set it then stays open and silent until closed.
type FakeAdapter struct {
	Label  string
	Frames []transport.Frame
	Delay  time.Duration
	Hold   bool

	mu         sync.Mutex
	subscribes int
	closes     int
	artists    []models.Artist
}

// NewSilentAdapter returns an adapter that never emits anything.
func NewSilentAdapter(name string) *FakeAdapter {
	return &FakeAdapter{Label: name, Hold: true}
}

// NewScriptedAdapter returns an adapter that emits ns without delay and then closes.
func NewScriptedAdapter(name string, ns ...models.Notification) *FakeAdapter {
	frames := make([]transport.Frame, len(ns))
	for i, n := range ns {
		frames[i] = transport.Frame{Notification: n}
	}
	return &FakeAdapter{Label: name, Frames: frames}
}

func (f *FakeAdapter) Name() string { return f.Label }

func (f *FakeAdapter) Subscribe(ctx context.Context, artist models.Artist) transport.Subscription {
	f.mu.Lock()
	f.subscribes++
	f.artists = append(f.artists, artist)
	f.mu.Unlock()

	sub := &fakeSubscription{frames: make(chan transport.Frame), closed: make(chan struct{}), owner: f}
	go sub.run(ctx, f.Frames, f.Delay, f.Hold)
	return sub
}

// Subscribes returns how many subscriptions were started.
func (f *FakeAdapter) Subscribes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribes
}

// Closes returns how many subscriptions were closed by their consumer.
func (f *FakeAdapter) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

// Artists returns the artists subscriptions were started for.
func (f *FakeAdapter) Artists() []models.Artist {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Artist(nil), f.artists...)
}

type fakeSubscription struct {
	frames chan transport.Frame
	closed chan struct{}
	once   sync.Once
	owner  *FakeAdapter
}

func (s *fakeSubscription) Frames() <-chan transport.Frame { return s.frames }

func (s *fakeSubscription) Close() {
	s.once.Do(func() {
		s.owner.mu.Lock()
		s.owner.closes++
		s.owner.mu.Unlock()
		close(s.closed)
	})
}

func (s *fakeSubscription) run(ctx context.Context, frames []transport.Frame, delay time.Duration, hold bool) {
	defer close(s.frames)

	for _, f := range frames {
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-s.closed:
				return
			case <-ctx.Done():
				return
			}
		}
		select {
		case s.frames <- f:
		case <-s.closed:
			return
		case <-ctx.Done():
			return
		}
	}

	if hold {
		select {
		case <-s.closed:
		case <-ctx.Done():
		}
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Eventually polls cond until it holds or the timeout elapses.
func Eventually(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
