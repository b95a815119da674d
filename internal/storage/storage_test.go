package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type linkerFunc func(ctx context.Context, key string) (string, error)

func (f linkerFunc) Link(ctx context.Context, key string) (string, error) {
	return f(ctx, key)
}

func TestRouter(t *testing.T) {
	router := &Router{
		Objects: linkerFunc(func(ctx context.Context, key string) (string, error) {
			return "https://bucket/" + key + "?sig", nil
		}),
		Drive: linkerFunc(func(ctx context.Context, key string) (string, error) {
			if key == "missing" {
				return "", errors.New("not found")
			}
			return "https://drive/" + key, nil
		}),
	}

	cases := []struct {
		key      string
		expected string
		wantErr  bool
	}{
		{"", "", false},
		{"https://cdn.example/a.xlsx", "https://cdn.example/a.xlsx", false},
		{"drive://abc", "https://drive/abc", false},
		{"drive://missing", "", true},
		{"uploads/a.xlsx", "https://bucket/uploads/a.xlsx?sig", false},
	}
	for _, tc := range cases {
		got, err := router.Link(context.Background(), tc.key)
		if (err != nil) != tc.wantErr {
			t.Fatalf("Link(%q) error = %v", tc.key, err)
		}
		if got != tc.expected {
			t.Fatalf("Link(%q) expected %q, got %q", tc.key, tc.expected, got)
		}
	}
}

func TestRouter_Unconfigured(t *testing.T) {
	router := &Router{}
	for _, key := range []string{"uploads/a.xlsx", "drive://abc"} {
		got, err := router.Link(context.Background(), key)
		if err != nil || got != key {
			t.Fatalf("expected passthrough for %q, got %q (%v)", key, got, err)
		}
	}
}

func TestMinioLinker_Presign(t *testing.T) {
	linker, err := NewMinioLinker(MinioConfig{
		Endpoint:   "http://localhost:9000",
		AccessKey:  "access",
		SecretKey:  "secret",
		Bucket:     "uploads",
		PresignTTL: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewMinioLinker error: %v", err)
	}

	link, err := linker.Link(context.Background(), "sales/march.xlsx")
	if err != nil {
		t.Fatalf("Link error: %v", err)
	}
	if !strings.HasPrefix(link, "http://localhost:9000/uploads/sales/march.xlsx?") {
		t.Fatalf("unexpected link %s", link)
	}
	if !strings.Contains(link, "X-Amz-Signature=") || !strings.Contains(link, "X-Amz-Expires=60") {
		t.Fatalf("expected presigned query, got %s", link)
	}
}

func TestNewMinioLinker_Validation(t *testing.T) {
	if _, err := NewMinioLinker(MinioConfig{}); err == nil {
		t.Fatalf("expected endpoint error")
	}
	if _, err := NewMinioLinker(MinioConfig{Endpoint: "s3.local"}); err == nil {
		t.Fatalf("expected credentials error")
	}
}

func TestNewDriveLinker_BadCredentials(t *testing.T) {
	if _, err := NewDriveLinker(context.Background(), []byte("{")); err == nil {
		t.Fatalf("expected credentials parse error")
	}
}
