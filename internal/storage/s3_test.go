package storage

import (
	"strings"
	"testing"
)

func TestNewObjectKeyDefaults(t *testing.T) {
	t.Parallel()

	key, err := NewObjectKey("", "portrait.PNG")
	if err != nil {
		t.Fatalf("NewObjectKey returned error: %v", err)
	}

	if !strings.HasPrefix(key, "uploads/") {
		t.Fatalf("expected default uploads/ prefix, got %q", key)
	}

	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("expected lowercased png extension, got %q", key)
	}
}

func TestNewObjectKeyMissingExtensionFallsBackToJpg(t *testing.T) {
	t.Parallel()

	key, err := NewObjectKey("gallery", "snapshot")
	if err != nil {
		t.Fatalf("NewObjectKey returned error: %v", err)
	}

	if !strings.HasPrefix(key, "gallery/") {
		t.Fatalf("expected gallery/ prefix, got %q", key)
	}

	if !strings.HasSuffix(key, ".jpg") {
		t.Fatalf("expected jpg fallback extension, got %q", key)
	}
}

func TestNewObjectKeyNeverCollidesForSameFilename(t *testing.T) {
	t.Parallel()

	first, err := NewObjectKey("resumes", "resume.pdf")
	if err != nil {
		t.Fatalf("NewObjectKey returned error: %v", err)
	}

	second, err := NewObjectKey("resumes", "resume.pdf")
	if err != nil {
		t.Fatalf("NewObjectKey returned error: %v", err)
	}

	if first == second {
		t.Fatalf("expected distinct keys for repeated filename, got %q twice", first)
	}
}

func TestNewObjectKeyTrimsFolderSlashes(t *testing.T) {
	t.Parallel()

	key, err := NewObjectKey("/birds/", "heron.jpeg")
	if err != nil {
		t.Fatalf("NewObjectKey returned error: %v", err)
	}

	if !strings.HasPrefix(key, "birds/") {
		t.Fatalf("expected birds/ prefix, got %q", key)
	}

	if strings.Contains(key, "//") {
		t.Fatalf("expected no duplicate separators, got %q", key)
	}
}

func TestPublicBaseURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "explicit public url wins",
			opts: Options{Bucket: "media", Region: "us-east-1", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com",
		},
		{
			name: "custom endpoint uses path style",
			opts: Options{Bucket: "media", Endpoint: "http://localhost:9000"},
			want: "http://localhost:9000/media",
		},
		{
			name: "default virtual hosted style",
			opts: Options{Bucket: "media", Region: "eu-west-1"},
			want: "https://media.s3.eu-west-1.amazonaws.com",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := publicBaseURL(tc.opts); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
