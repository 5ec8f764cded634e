package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/iliyamo/tripadvisor-api/internal/config"
)

func TestObjectKey(t *testing.T) {
	t.Parallel()
	key := ObjectKey("hotels", 12, `C:\Users\me\My Photo!.jpg`)
	re := regexp.MustCompile(`^hotels/12/[0-9a-f-]{36}_My_Photo_\.jpg$`)
	if !re.MatchString(key) {
		t.Fatalf("key = %q", key)
	}
	if ObjectKey("hotels", 1, "a.png") == ObjectKey("hotels", 1, "a.png") {
		t.Fatal("keys for identical names must differ")
	}
}

func TestLocalStorePutDelete(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := NewLocalStore(dir, "/media/")
	ctx := context.Background()

	url, err := s.Put(ctx, "profileImages/3/x_me.png", "image/png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/media/profileImages/3/x_me.png" {
		t.Fatalf("url = %q", url)
	}
	got, err := os.ReadFile(filepath.Join(dir, "profileImages", "3", "x_me.png"))
	if err != nil || string(got) != "png-bytes" {
		t.Fatalf("stored %q, %v", got, err)
	}

	if err := s.Delete(ctx, url); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, url); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
	if err := s.Delete(ctx, "https://elsewhere/x.png"); err == nil {
		t.Fatal("expected error for foreign url")
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	t.Parallel()
	s := NewLocalStore(t.TempDir(), "/media")
	for _, key := range []string{"../etc/passwd", "/abs/path", "a/../../b"} {
		if _, err := s.Put(context.Background(), key, "", strings.NewReader("x")); err == nil {
			t.Errorf("Put(%q) succeeded", key)
		}
	}
}

func TestPublicIDFromURL(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712345/trip/hotels/4/abc_pic.jpg": "trip/hotels/4/abc_pic",
		"https://res.cloudinary.com/demo/image/upload/hotels/4/abc.png":                   "hotels/4/abc",
	}
	for in, want := range cases {
		got, ok := publicIDFromURL(in)
		if !ok || got != want {
			t.Errorf("publicIDFromURL(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := publicIDFromURL("https://example.com/nothing"); ok {
		t.Error("expected failure for non-cloudinary url")
	}
}

func TestCloudinaryUploadAndDestroy(t *testing.T) {
	t.Parallel()
	var destroyed string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/upload"):
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if r.FormValue("signature") == "" || r.FormValue("public_id") != "trip/hotels/4/abc_pic" {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "bad params"}})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"secure_url": "https://res.cloudinary.com/demo/image/upload/v1/trip/hotels/4/abc_pic.jpg"})
		case strings.HasSuffix(r.URL.Path, "/destroy"):
			_ = r.ParseForm()
			destroyed = r.FormValue("public_id")
			_ = json.NewEncoder(w).Encode(map[string]string{"result": "ok"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewCloudinaryStore("demo", "key", "secret", "trip", srv.Client())
	s.endpoint = srv.URL
	ctx := context.Background()

	url, err := s.Put(ctx, "hotels/4/abc_pic.jpg", "image/jpeg", strings.NewReader("jpg"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, url); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if destroyed != "trip/hotels/4/abc_pic" {
		t.Fatalf("destroyed %q", destroyed)
	}
}

func TestNewSelectsDriver(t *testing.T) {
	t.Parallel()
	if _, err := New(config.MediaConfig{Driver: "local", Dir: t.TempDir(), BaseURL: "/media"}); err != nil {
		t.Fatalf("local: %v", err)
	}
	if _, err := New(config.MediaConfig{Driver: "cloudinary"}); err == nil {
		t.Fatal("cloudinary without credentials should fail")
	}
	if _, err := New(config.MediaConfig{Driver: "s3"}); err == nil {
		t.Fatal("unknown driver should fail")
	}
}
