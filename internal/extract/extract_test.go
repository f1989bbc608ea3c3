package extract

import (
	"bytes"
	"context"
	"errors"
	stdimage "image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
)

// spySource counts Pixels calls.
type spySource struct {
	buf   colour.PixelBuffer
	err   error
	calls int
}

func (s *spySource) Pixels(_ context.Context) (colour.PixelBuffer, error) {
	s.calls++
	return s.buf, s.err
}

func solid(n int, r, g, b, a uint8) colour.PixelBuffer {
	pix := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		pix = append(pix, r, g, b, a)
	}
	return colour.NewPixelBuffer(pix)
}

// twoTone returns an image with a red left half and a blue right half.
func twoTone() *stdimage.NRGBA {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			c := color.NRGBA{R: 220, G: 20, B: 20, A: 255}
			if x >= 20 {
				c = color.NRGBA{R: 20, G: 20, B: 220, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestValidationBeforeAcquisition(t *testing.T) {
	spy := &spySource{buf: solid(10, 1, 2, 3, 255)}
	s := NewService(nil, image.Resolver{}, nil)

	palette, err := s.Palette(context.Background(), spy, 1)
	if !colour.IsValidationError(err) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if palette != nil {
		t.Error("Expected nil palette")
	}
	if spy.calls != 0 {
		t.Errorf("Expected source not to be read, got %d calls", spy.calls)
	}
}

func TestPaletteFromSources(t *testing.T) {
	img := twoTone()
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, img); err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		name string
		src  any
	}{
		{name: "image", src: img},
		{name: "bytes", src: encoded.Bytes()},
		{name: "reader", src: bytes.NewReader(encoded.Bytes())},
		{name: "source", src: image.ImageSource{Image: img}},
	}

	s := NewService(nil, image.Resolver{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := s.Color(context.Background(), tt.src, 1)
			if err != nil {
				t.Fatalf("Color() error = %v", err)
			}
			if c == nil {
				t.Fatal("Color() returned nil")
			}
			// Two colours cannot fill a five colour palette, so the
			// result is the mean of both halves.
			if *c != (colour.RGB{R: 120, G: 20, B: 120}) {
				t.Errorf("Color() = %v, want #781478", *c)
			}
		})
	}
}

func TestColorFirstOfPalette(t *testing.T) {
	s := NewService(nil, image.Resolver{}, nil)
	img := twoTone()

	palette, err := s.Palette(context.Background(), img, 5)
	if err != nil {
		t.Fatalf("Palette() error = %v", err)
	}
	c, err := s.Color(context.Background(), img)
	if err != nil {
		t.Fatalf("Color() error = %v", err)
	}
	first, _ := palette.Dominant()
	if *c != first {
		t.Errorf("Color() = %v, want %v", *c, first)
	}
}

func TestAcquisitionErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	s := NewService(nil, image.Resolver{}, nil)

	_, err := s.Palette(context.Background(), &spySource{err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("Expected source error, got %v", err)
	}

	_, err = s.Palette(context.Background(), 42)
	if !errors.Is(err, image.ErrUnsupportedSource) {
		t.Errorf("Expected ErrUnsupportedSource, got %v", err)
	}

	_, err = s.Color(context.Background(), "http://127.0.0.1/photo.png")
	var coe *image.CrossOriginError
	if !errors.As(err, &coe) {
		t.Errorf("Expected CrossOriginError, got %v", err)
	}
}

func TestEmptySourceYieldsNil(t *testing.T) {
	s := NewService(nil, image.Resolver{}, nil)

	c, err := s.Color(context.Background(), colour.NewPixelBuffer(nil))
	if err != nil || c != nil {
		t.Errorf("Color() = %v, %v; want nil, nil", c, err)
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	palette, err := Palette(context.Background(), solid(50, 10, 20, 30, 255), 3)
	if err != nil {
		t.Fatalf("Palette() error = %v", err)
	}
	if palette.Len() != 1 {
		t.Errorf("Expected fallback palette, got %d colours", palette.Len())
	}

	c, err := Color(context.Background(), solid(50, 10, 20, 30, 255))
	if err != nil {
		t.Fatalf("Color() error = %v", err)
	}
	if c == nil || *c != (colour.RGB{R: 10, G: 20, B: 30}) {
		t.Errorf("Color() = %v", c)
	}
}

func TestPaletteAsync(t *testing.T) {
	s := NewService(nil, image.Resolver{}, nil)

	ch, err := s.PaletteAsync(context.Background(), twoTone(), 2)
	if err != nil {
		t.Fatalf("PaletteAsync() error = %v", err)
	}
	res, ok := <-ch
	if !ok {
		t.Fatal("Expected a result")
	}
	if res.Err != nil {
		t.Fatalf("PaletteAsync() result error = %v", res.Err)
	}
	if res.Palette.Len() != 2 {
		t.Errorf("Expected 2 colours, got %d", res.Palette.Len())
	}
	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after one result")
	}
}

func TestPaletteAsyncValidatesImmediately(t *testing.T) {
	spy := &spySource{buf: solid(10, 1, 2, 3, 255)}
	s := NewService(nil, image.Resolver{}, nil)

	for _, args := range [][]any{{1}, {colour.Options{ColorCount: colour.Int(1)}}} {
		ch, err := s.PaletteAsync(context.Background(), spy, args...)
		if !colour.IsValidationError(err) {
			t.Errorf("PaletteAsync(%v) error = %v, want ValidationError", args, err)
		}
		if ch != nil {
			t.Errorf("PaletteAsync(%v) returned a channel", args)
		}
	}
	if spy.calls != 0 {
		t.Errorf("Expected no Pixels calls, got %d", spy.calls)
	}
}

func TestColorAsync(t *testing.T) {
	s := NewService(nil, image.Resolver{}, nil)

	ch, err := s.ColorAsync(context.Background(), solid(10, 5, 6, 7, 255), colour.Options{ColorCount: colour.Int(1)})
	if err != nil {
		t.Fatalf("ColorAsync() error = %v", err)
	}
	res := <-ch
	if res.Err != nil || res.Color == nil || *res.Color != (colour.RGB{R: 5, G: 6, B: 7}) {
		t.Errorf("ColorAsync() = %v, %v", res.Color, res.Err)
	}

	// Acquisition failures are delivered on the channel.
	boom := errors.New("boom")
	ch, err = s.ColorAsync(context.Background(), &spySource{err: boom})
	if err != nil {
		t.Fatalf("ColorAsync() error = %v", err)
	}
	if res := <-ch; !errors.Is(res.Err, boom) || res.Color != nil {
		t.Errorf("ColorAsync() = %v, %v; want boom", res.Color, res.Err)
	}
}

func TestColorFromURL(t *testing.T) {
	var encoded bytes.Buffer
	if err := png.Encode(&encoded, twoTone()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(encoded.Bytes())
	}))
	defer server.Close()

	s := NewService(nil, image.Resolver{AllowInsecure: true}, nil)

	t.Run("success calls back once", func(t *testing.T) {
		calls := 0
		var gotURL string
		url := server.URL + "/photo.png"
		done := s.ColorFromURL(context.Background(), url, 1, func(c colour.RGB, u string) {
			calls++
			gotURL = u
		})
		waitDone(t, done)

		if calls != 1 {
			t.Errorf("Expected 1 callback, got %d", calls)
		}
		if gotURL != url {
			t.Errorf("Expected url %s, got %s", url, gotURL)
		}
	})

	t.Run("failure never calls back", func(t *testing.T) {
		called := false
		done := s.ColorFromURL(context.Background(), server.URL+"/missing.png", nil, func(colour.RGB, string) {
			called = true
		})
		waitDone(t, done)

		if called {
			t.Error("Expected no callback on failure")
		}
	})
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for ColorFromURL")
	}
}
