package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tools.zach/dev/lyricard/internal/lyrics"
)

// fakeAPI serves the detail and lyric endpoints for song 186016.
func fakeAPI(t *testing.T, lyric string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/song/detail", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("appver"); err != nil || c.Value != "1.2.1" {
			http.Error(w, "missing appver cookie", http.StatusForbidden)
			return
		}
		if r.URL.Query().Get("ids") != "[186016]" {
			w.Write([]byte(`{"songs":[]}`))
			return
		}
		w.Write([]byte(`{"songs":[{"name":"晴天","artists":[{"name":"周杰伦"},{"name":"other"}],"album":{"blurPicUrl":"http://img/cover.jpg"}}]}`))
	})
	mux.HandleFunc("/api/song/lyric", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "want POST", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		if q.Get("id") != "186016" || q.Get("lv") != "1" || q.Get("tv") != "-1" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"lrc":{"lyric":` + lyric + `}}`))
	})
	mux.HandleFunc("/cover.png", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("cover-bytes"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSong(t *testing.T) {
	srv := fakeAPI(t, `"[00:01.00]故事的小黄花\n[00:05.00]从出生那年就飘着\n\n\n[00:09.00]童年的荡秋千"`)
	c := New(Options{BaseURL: srv.URL})

	song, err := c.Song(context.Background(), "186016")
	if err != nil {
		t.Fatalf("Song: %v", err)
	}
	if song.Title != "晴天" || song.Artist != "周杰伦" || song.CoverURL != "http://img/cover.jpg" {
		t.Errorf("song = %+v", song)
	}
	want := "故事的小黄花\n从出生那年就飘着\n\n童年的荡秋千"
	if song.Lyrics != want {
		t.Errorf("Lyrics = %q, want %q", song.Lyrics, want)
	}
}

func TestSongInstrumental(t *testing.T) {
	srv := fakeAPI(t, `""`)
	c := New(Options{BaseURL: srv.URL})

	song, err := c.Song(context.Background(), "186016")
	if err != nil {
		t.Fatalf("Song: %v", err)
	}
	if song.Lyrics != lyrics.Instrumental {
		t.Errorf("Lyrics = %q, want placeholder", song.Lyrics)
	}
}

func TestSongErrors(t *testing.T) {
	srv := fakeAPI(t, `""`)
	c := New(Options{BaseURL: srv.URL})

	tests := []struct {
		id   string
		want error
	}{
		{"42", ErrNotFound},
		{"abc", ErrBadID},
		{"0", ErrBadID},
		{"", ErrBadID},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := c.Song(context.Background(), tt.id)
			if !errors.Is(err, tt.want) {
				t.Errorf("Song(%q) error = %v, want %v", tt.id, err, tt.want)
			}
		})
	}
}

func TestSongHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(Options{BaseURL: srv.URL}).Song(context.Background(), "1")
	if err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestCover(t *testing.T) {
	srv := fakeAPI(t, `""`)
	c := New(Options{BaseURL: srv.URL})

	data, err := c.Cover(context.Background(), srv.URL+"/cover.png")
	if err != nil {
		t.Fatalf("Cover(url): %v", err)
	}
	if string(data) != "cover-bytes" {
		t.Errorf("Cover(url) = %q", data)
	}

	path := filepath.Join(t.TempDir(), "cover.jpg")
	if err := os.WriteFile(path, []byte("local"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err = c.Cover(context.Background(), path)
	if err != nil {
		t.Fatalf("Cover(path): %v", err)
	}
	if string(data) != "local" {
		t.Errorf("Cover(path) = %q", data)
	}

	if _, err := c.Cover(context.Background(), filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("expected error for missing file")
	}
}
