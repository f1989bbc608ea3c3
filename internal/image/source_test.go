package image

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmylchreest/swatch/internal/colour"
)

// createTestImage returns a width x height image split into a red left half
// and a semi-transparent blue right half.
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < width/2 {
				img.Set(x, y, color.NRGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{B: 255, A: 100})
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, encodePNG(t, img), 0o644); err != nil {
		t.Fatalf("failed to write test image: %v", err)
	}
	return path
}

func checkPixels(t *testing.T, buf colour.PixelBuffer, width, height int) {
	t.Helper()
	if buf.PixelCount != width*height {
		t.Fatalf("Expected %d pixels, got %d", width*height, buf.PixelCount)
	}
	if len(buf.Pix) < buf.PixelCount*4 {
		t.Fatalf("Expected at least %d bytes, got %d", buf.PixelCount*4, len(buf.Pix))
	}
	if got := buf.Pix[:4]; !bytes.Equal(got, []byte{255, 0, 0, 255}) {
		t.Errorf("Expected first pixel opaque red, got %v", got)
	}
	last := buf.Pix[(buf.PixelCount-1)*4 : buf.PixelCount*4]
	if !bytes.Equal(last, []byte{0, 0, 255, 100}) {
		t.Errorf("Expected last pixel non-premultiplied translucent blue, got %v", last)
	}
}

func TestImageSource(t *testing.T) {
	buf, err := ImageSource{Image: createTestImage(8, 4)}.Pixels(context.Background())
	if err != nil {
		t.Fatalf("Pixels() error = %v", err)
	}
	checkPixels(t, buf, 8, 4)
}

func TestImageSourceSubImage(t *testing.T) {
	sub := createTestImage(8, 8).SubImage(image.Rect(4, 4, 8, 8))
	buf, err := ImageSource{Image: sub}.Pixels(context.Background())
	if err != nil {
		t.Fatalf("Pixels() error = %v", err)
	}
	if buf.PixelCount != 16 || len(buf.Pix) != 64 {
		t.Errorf("Expected packed 4x4 buffer, got %d pixels in %d bytes", buf.PixelCount, len(buf.Pix))
	}
}

func TestImageSourceNotReady(t *testing.T) {
	for name, img := range map[string]image.Image{
		"nil":   nil,
		"empty": image.NewNRGBA(image.Rect(0, 0, 0, 10)),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ImageSource{Image: img}.Pixels(context.Background())
			if !errors.Is(err, ErrSourceNotReady) {
				t.Errorf("Expected ErrSourceNotReady, got %v", err)
			}
		})
	}
}

func TestRawSource(t *testing.T) {
	pix := createTestImage(4, 2).Pix

	buf, err := RawSource{Pix: pix, Width: 4, Height: 2}.Pixels(context.Background())
	if err != nil {
		t.Fatalf("Pixels() error = %v", err)
	}
	checkPixels(t, buf, 4, 2)

	_, err = RawSource{Pix: pix[:10], Width: 4, Height: 2}.Pixels(context.Background())
	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Errorf("Expected AcquisitionError for short buffer, got %v", err)
	}

	_, err = RawSource{Pix: pix, Width: 0, Height: 2}.Pixels(context.Background())
	if !errors.Is(err, ErrSourceNotReady) {
		t.Errorf("Expected ErrSourceNotReady, got %v", err)
	}
}

func TestFileSource(t *testing.T) {
	path := writePNG(t, t.TempDir(), "test.png", createTestImage(6, 3))

	buf, err := FileSource{Path: path}.Pixels(context.Background())
	if err != nil {
		t.Fatalf("Pixels() error = %v", err)
	}
	checkPixels(t, buf, 6, 3)
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		src  FileSource
	}{
		{name: "empty path", src: FileSource{}},
		{name: "missing", src: FileSource{Path: filepath.Join(dir, "missing.png")}},
		{name: "directory", src: FileSource{Path: dir}},
		{name: "garbage", src: FileSource{Path: garbage}},
		{name: "too large", src: FileSource{Path: writePNG(t, dir, "big.png", createTestImage(10, 10)), MaxPixels: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.src.Pixels(context.Background())
			var acqErr *AcquisitionError
			if !errors.As(err, &acqErr) {
				t.Errorf("Expected AcquisitionError, got %v", err)
			}
		})
	}
}

func TestBytesAndReaderSources(t *testing.T) {
	data := encodePNG(t, createTestImage(4, 4))

	buf, err := BytesSource{Data: data}.Pixels(context.Background())
	if err != nil {
		t.Fatalf("BytesSource.Pixels() error = %v", err)
	}
	checkPixels(t, buf, 4, 4)

	buf, err = ReaderSource{Reader: bytes.NewReader(data)}.Pixels(context.Background())
	if err != nil {
		t.Fatalf("ReaderSource.Pixels() error = %v", err)
	}
	checkPixels(t, buf, 4, 4)

	_, err = ReaderSource{Reader: bytes.NewReader(data), MaxBytes: 8}.Pixels(context.Background())
	var acqErr *AcquisitionError
	if !errors.As(err, &acqErr) {
		t.Errorf("Expected AcquisitionError for oversized stream, got %v", err)
	}

	_, err = BytesSource{Data: []byte{1, 2, 3}}.Pixels(context.Background())
	if !errors.As(err, &acqErr) {
		t.Errorf("Expected AcquisitionError for garbage bytes, got %v", err)
	}
}

func TestURLSource(t *testing.T) {
	data := encodePNG(t, createTestImage(4, 2))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	t.Run("insecure allowed", func(t *testing.T) {
		buf, err := URLSource{URL: srv.URL + "/a.png", AllowInsecure: true}.Pixels(context.Background())
		if err != nil {
			t.Fatalf("Pixels() error = %v", err)
		}
		checkPixels(t, buf, 4, 2)
	})

	t.Run("cached", func(t *testing.T) {
		dir := t.TempDir()
		src := URLSource{URL: srv.URL + "/a.png", AllowInsecure: true, CacheDir: dir}
		buf, err := src.Pixels(context.Background())
		if err != nil {
			t.Fatalf("Pixels() error = %v", err)
		}
		checkPixels(t, buf, 4, 2)
		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("Expected one cached file, got %d", len(entries))
		}
	})

	t.Run("strict policy rejects local http", func(t *testing.T) {
		_, err := URLSource{URL: srv.URL + "/a.png"}.Pixels(context.Background())
		var coErr *CrossOriginError
		if !errors.As(err, &coErr) {
			t.Fatalf("Expected CrossOriginError, got %v", err)
		}
		if !strings.Contains(coErr.Error(), "https") {
			t.Errorf("Expected remediation hint, got %q", coErr.Error())
		}
	})

	t.Run("fetch failure", func(t *testing.T) {
		_, err := URLSource{URL: srv.URL + "/missing.png", AllowInsecure: true}.Pixels(context.Background())
		var acqErr *AcquisitionError
		if !errors.As(err, &acqErr) {
			t.Errorf("Expected AcquisitionError, got %v", err)
		}
	})

	t.Run("not a url", func(t *testing.T) {
		_, err := URLSource{URL: "ftp://example.com/a.png"}.Pixels(context.Background())
		if !errors.Is(err, ErrUnsupportedSource) {
			t.Errorf("Expected ErrUnsupportedSource, got %v", err)
		}
	})
}

func TestURLSourceRedirectToInternalHost(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(encodePNG(t, createTestImage(4, 2)))
	}))
	defer internal.Close()

	public := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, internal.URL+"/a.png", http.StatusFound)
	}))
	defer public.Close()

	// Route the public-looking host to the TLS server.
	client := public.Client()
	transport := client.Transport.(*http.Transport).Clone()
	addr := public.Listener.Addr().String()
	transport.DialContext = func(ctx context.Context, network, _ string) (net.Conn, error) {
		return (&net.Dialer{}).DialContext(ctx, network, addr)
	}
	client.Transport = transport

	tests := []struct {
		name     string
		cacheDir string
	}{
		{name: "direct"},
		{name: "cached", cacheDir: t.TempDir()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := URLSource{URL: "https://images.example.com/a.png", CacheDir: tt.cacheDir, Client: client}
			_, err := src.Pixels(context.Background())
			var coErr *CrossOriginError
			if !errors.As(err, &coErr) {
				t.Fatalf("Expected CrossOriginError, got %v", err)
			}
			if tt.cacheDir != "" {
				entries, _ := os.ReadDir(tt.cacheDir)
				if len(entries) != 0 {
					t.Errorf("Expected nothing cached, got %d entries", len(entries))
				}
			}
		})
	}
}

func TestResolve(t *testing.T) {
	r := Resolver{CacheDir: "/tmp/cache", AllowInsecure: true, MaxPixels: 42}
	buf := colour.NewPixelBuffer([]byte{1, 2, 3, 4})

	tests := []struct {
		name  string
		input any
		check func(Source) bool
	}{
		{name: "url", input: "https://example.com/a.png", check: func(s Source) bool {
			u, ok := s.(URLSource)
			return ok && u.CacheDir == "/tmp/cache" && u.AllowInsecure && u.MaxPixels == 42
		}},
		{name: "path", input: "/tmp/a.png", check: func(s Source) bool {
			f, ok := s.(FileSource)
			return ok && f.Path == "/tmp/a.png"
		}},
		{name: "bytes", input: []byte{1}, check: func(s Source) bool { _, ok := s.(BytesSource); return ok }},
		{name: "image", input: createTestImage(1, 1), check: func(s Source) bool { _, ok := s.(ImageSource); return ok }},
		{name: "buffer", input: buf, check: func(s Source) bool { _, ok := s.(BufferSource); return ok }},
		{name: "buffer pointer", input: &buf, check: func(s Source) bool { _, ok := s.(BufferSource); return ok }},
		{name: "reader", input: strings.NewReader("x"), check: func(s Source) bool { _, ok := s.(ReaderSource); return ok }},
		{name: "source", input: RawSource{}, check: func(s Source) bool { _, ok := s.(RawSource); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := r.Resolve(tt.input)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !tt.check(src) {
				t.Errorf("Resolve() returned %T", src)
			}
		})
	}
}

func TestFromAnyUnsupported(t *testing.T) {
	for _, v := range []any{nil, 42, struct{}{}, (*colour.PixelBuffer)(nil)} {
		if _, err := FromAny(v); !errors.Is(err, ErrUnsupportedSource) {
			t.Errorf("FromAny(%T) error = %v, want ErrUnsupportedSource", v, err)
		}
	}
}
