package mediaremote

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"
)

// fakeFramework stands in for the loaded capability table so the query,
// command and notification layers can be exercised on any platform.
type fakeFramework struct {
	mu sync.Mutex

	// Query answers. A nil pointer means the framework never answers,
	// which is how a timeout is simulated.
	playing *bool
	pid     *int
	info    map[string]Value
	client  *fakeClient

	// delay postpones every answer, mimicking the framework's internal
	// queue.
	delay time.Duration

	ack     bool
	sent    []int32
	elapsed []float64
	speeds  []int32

	registered      bool
	registerCalls   int
	unregisterCalls int

	nextHandle uintptr
	observers  map[uintptr]fakeObserver

	bundles map[string]fakeBundle
}

type fakeObserver struct {
	name string
	fn   func()
}

type fakeBundle struct {
	name string
	icon []byte
}

type fakeClient struct {
	bundleID string
	parentID string
}

func (c *fakeClient) BundleIdentifier() (string, bool) {
	return c.bundleID, c.bundleID != ""
}

func (c *fakeClient) ParentAppBundleIdentifier() (string, bool) {
	return c.parentID, c.parentID != ""
}

func newFakeFramework() *fakeFramework {
	return &fakeFramework{
		ack:       true,
		observers: make(map[uintptr]fakeObserver),
		bundles:   make(map[string]fakeBundle),
	}
}

func (f *fakeFramework) answer(deliver func()) {
	f.mu.Lock()
	delay := f.delay
	f.mu.Unlock()
	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		deliver()
	}()
}

func (f *fakeFramework) isPlaying(deliver func(bool, bool)) {
	f.mu.Lock()
	playing := f.playing
	f.mu.Unlock()
	if playing == nil {
		return
	}
	f.answer(func() { deliver(*playing, true) })
}

func (f *fakeFramework) applicationPID(deliver func(int, bool)) {
	f.mu.Lock()
	pid := f.pid
	f.mu.Unlock()
	if pid == nil {
		return
	}
	f.answer(func() { deliver(*pid, *pid != 0) })
}

func (f *fakeFramework) nowPlayingInfo(deliver func(map[string]Value, bool)) {
	f.mu.Lock()
	info := f.info
	f.mu.Unlock()
	if info == nil {
		f.answer(func() { deliver(nil, false) })
		return
	}
	f.answer(func() { deliver(info, true) })
}

func (f *fakeFramework) nowPlayingClient(deliver func(Client, bool)) {
	f.mu.Lock()
	client := f.client
	f.mu.Unlock()
	if client == nil {
		f.answer(func() { deliver(nil, false) })
		return
	}
	f.answer(func() { deliver(client, true) })
}

func (f *fakeFramework) sendCommand(id int32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, id)
	return f.ack
}

func (f *fakeFramework) setElapsedTime(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elapsed = append(f.elapsed, seconds)
}

func (f *fakeFramework) setPlaybackSpeed(speed int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speeds = append(f.speeds, speed)
}

func (f *fakeFramework) registerForNotifications() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registerCalls++
	f.registered = true
}

func (f *fakeFramework) unregisterForNotifications() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unregisterCalls++
	f.registered = false
}

func (f *fakeFramework) addObserver(name string, fn func()) uintptr {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextHandle++
	f.observers[f.nextHandle] = fakeObserver{name: name, fn: fn}
	return f.nextHandle
}

func (f *fakeFramework) removeObserver(handle uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.observers, handle)
}

func (f *fakeFramework) lookupBundle(id string) (string, []byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bundle, ok := f.bundles[id]
	if !ok {
		return "", nil, false
	}
	return bundle.name, bundle.icon, true
}

// post emulates the framework emitting a notification. Nothing is
// delivered while the process is not registered.
func (f *fakeFramework) post(kind Notification) {
	f.mu.Lock()
	if !f.registered {
		f.mu.Unlock()
		return
	}
	var fns []func()
	for _, obs := range f.observers {
		if obs.name == string(kind) {
			fns = append(fns, obs.fn)
		}
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (f *fakeFramework) sentCommands() []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int32(nil), f.sent...)
}

func newTestRemote(fw framework) *Remote {
	r := newRemote(fw)
	r.QueryTimeout = 200 * time.Millisecond
	return r
}

// generateTestImage creates a simple test image with specified dimensions
// and a uniform fill color, useful for artwork tests.
func generateTestImage(width, height int, fillColor color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}
	return img
}

// encodePNG renders an image to PNG bytes.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// assertEqual is a generic test helper for comparing values.
func assertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// assertNoError fails the test if an error occurred.
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func boolPtr(b bool) *bool           { return &b }
func intPtr(i int) *int              { return &i }
func strPtr(s string) *string        { return &s }
func floatPtr(f float64) *float64    { return &f }
func timePtr(t time.Time) *time.Time { return &t }
