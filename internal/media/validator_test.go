package media

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateAcceptsSmallPNG(t *testing.T) {
	v := NewValidator(0)
	data := encodePNG(t, 4, 4)

	contentType, err := v.Validate(bytes.NewReader(data), "photo.png", "image/png")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if contentType != "image/png" {
		t.Fatalf("expected image/png, got %q", contentType)
	}
}

func TestValidateRejectsOversizedDimensions(t *testing.T) {
	v := NewValidator(8)
	data := encodePNG(t, 16, 4)

	if _, err := v.Validate(bytes.NewReader(data), "photo.png", "image/png"); err == nil {
		t.Fatal("expected error for image wider than the limit")
	}
}

func TestValidateRejectsNonImageContent(t *testing.T) {
	v := NewValidator(0)

	if _, err := v.Validate(strings.NewReader("not an image"), "notes.txt", "text/plain"); err == nil {
		t.Fatal("expected error for text content type")
	}
	if _, err := v.Validate(strings.NewReader("not an image"), "fake.png", "image/png"); err == nil {
		t.Fatal("expected error for undecodable payload")
	}
}

func TestNormalizeContentType(t *testing.T) {
	if got := NormalizeContentType("image/PNG; charset=binary", "x.png"); got != "image/png" {
		t.Fatalf("expected image/png, got %q", got)
	}
	if got := NormalizeContentType("", "photo.jpg"); got != "image/jpeg" {
		t.Fatalf("expected image/jpeg from extension, got %q", got)
	}
	if got := NormalizeContentType("application/octet-stream", "blob"); got != "application/octet-stream" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
