package main

import (
	"image"
	"image/color"
	"regexp"
	"testing"

	"github.com/charmbracelet/bubbletea"
	"github.com/soundctl/mediaremote"
)

// generateTestImage creates a simple test image with specified dimensions
// and a uniform fill color.
func generateTestImage(width, height int, fillColor color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}
	return img
}

// generateGradientImage creates a horizontal gradient between two colors.
func generateGradientImage(width, height int, from, to color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		t := float64(x) / float64(width-1)
		c := color.RGBA{
			R: uint8(float64(from.R)*(1-t) + float64(to.R)*t),
			G: uint8(float64(from.G)*(1-t) + float64(to.G)*t),
			B: uint8(float64(from.B)*(1-t) + float64(to.B)*t),
			A: 255,
		}
		for y := 0; y < height; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

var hexColorRe = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func isValidHexColor(s string) bool {
	return hexColorRe.MatchString(s)
}

// assertNoError fails the test if an error occurred.
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// fakeSession feeds the model canned snapshots and records control calls.
type fakeSession struct {
	info    *mediaremote.NowPlayingInfo
	toggles int
	nexts   int
	prevs   int
	closed  bool
}

func (f *fakeSession) GetInfo() *mediaremote.NowPlayingInfo { return f.info }
func (f *fakeSession) Toggle() bool                         { f.toggles++; return true }
func (f *fakeSession) Next() bool                           { f.nexts++; return true }
func (f *fakeSession) Previous() bool                       { f.prevs++; return true }
func (f *fakeSession) Close()                               { f.closed = true }

// keyMsg builds the key press message for a plain character key.
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg(tea.Key{Type: tea.KeyRunes, Runes: []rune(key)})
}

func strPtr(s string) *string     { return &s }
func boolPtr(b bool) *bool        { return &b }
func floatPtr(f float64) *float64 { return &f }
