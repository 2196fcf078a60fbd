package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rightscan/internal/shared"
)

// newTestClient wires a Client and its TokenProvider against the given mux.
func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *httptest.Server) {
	t.Helper()

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test_token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})

	server := httptest.NewServer(mux)

	provider, err := NewTokenProvider("id", "secret", nil)
	if err != nil {
		t.Fatalf("failed to create token provider: %v", err)
	}
	provider.SetTokenURL(server.URL + "/token")

	client := NewClient(provider, ClientOpts{
		BaseURL:         server.URL,
		RequestInterval: time.Millisecond,
	})

	return client, server
}

func TestSearchArtist(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "1" {
				t.Errorf("expected limit=1, got %s", got)
			}
			if got := r.URL.Query().Get("type"); got != "artist" {
				t.Errorf("expected type=artist, got %s", got)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test_token" {
				t.Errorf("expected bearer header, got %q", got)
			}

			json.NewEncoder(w).Encode(map[string]any{
				"artists": map[string]any{
					"items": []map[string]any{{
						"id":         "artist1",
						"name":       "Linkin Park",
						"followers":  map[string]any{"total": 25000000},
						"genres":     []string{"alternative metal", "nu metal"},
						"popularity": 88,
					}},
				},
			})
		})

		client, server := newTestClient(t, mux)
		defer server.Close()

		artist, err := client.SearchArtist(context.Background(), "Linkin Park")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if artist == nil {
			t.Fatal("expected artist to be found")
		}
		if artist.ID != "artist1" {
			t.Errorf("expected id 'artist1', got %s", artist.ID)
		}
		if artist.Followers.Total != 25000000 {
			t.Errorf("expected 25000000 followers, got %d", artist.Followers.Total)
		}
		if len(artist.Genres) != 2 {
			t.Errorf("expected 2 genres, got %d", len(artist.Genres))
		}
	})

	t.Run("Not Found Is Not An Error", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"artists": map[string]any{"items": []any{}},
			})
		})

		client, server := newTestClient(t, mux)
		defer server.Close()

		artist, err := client.SearchArtist(context.Background(), "No Such Band")
		if err != nil {
			t.Fatalf("expected no error for empty result, got %v", err)
		}
		if artist != nil {
			t.Errorf("expected nil artist, got %+v", artist)
		}
	})

	t.Run("Server Error Propagates", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		client, server := newTestClient(t, mux)
		defer server.Close()

		_, err := client.SearchArtist(context.Background(), "anyone")
		if !errors.Is(err, shared.ErrRemoteRequest) {
			t.Errorf("expected ErrRemoteRequest, got %v", err)
		}
	})
}

func TestAlbumPagination(t *testing.T) {
	t.Run("Follows Next Links Until Exhausted", func(t *testing.T) {
		mux := http.NewServeMux()
		var serverURL string

		mux.HandleFunc("/artists/artist1/albums", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("include_groups"); got != "album,single,compilation" {
				t.Errorf("unexpected include_groups: %s", got)
			}

			page := r.URL.Query().Get("page")
			switch page {
			case "", "1":
				next := serverURL + "/artists/artist1/albums?page=2"
				json.NewEncoder(w).Encode(albumPage{
					Items: []Album{
						{ID: "al1", Name: "Hybrid Theory", AlbumType: "album", ReleaseDate: "2000-10-24"},
						{ID: "al2", Name: "Meteora", AlbumType: "album", ReleaseDate: "2003-03-25"},
					},
					Next: &next,
				})
			case "2":
				json.NewEncoder(w).Encode(albumPage{
					Items: []Album{
						{ID: "al3", Name: "Numb", AlbumType: "single", ReleaseDate: "2003"},
					},
				})
			default:
				t.Errorf("unexpected page %q", page)
			}
		})

		client, server := newTestClient(t, mux)
		defer server.Close()
		serverURL = server.URL

		albums, err := client.AllAlbums(context.Background(), "artist1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(albums) != 3 {
			t.Fatalf("expected 3 albums across pages, got %d", len(albums))
		}
		if albums[2].ID != "al3" {
			t.Errorf("expected page order preserved, got %s last", albums[2].ID)
		}
	})

	t.Run("Exhausted Pager Stays Exhausted", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/artists/artist1/albums", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(albumPage{Items: []Album{{ID: "al1"}}})
		})

		client, server := newTestClient(t, mux)
		defer server.Close()

		pager := client.Albums("artist1")
		if _, ok, err := pager.Next(context.Background()); err != nil || !ok {
			t.Fatalf("expected first page, got ok=%v err=%v", ok, err)
		}
		if _, ok, _ := pager.Next(context.Background()); ok {
			t.Error("expected pager to be exhausted after final page")
		}
		if _, ok, _ := pager.Next(context.Background()); ok {
			t.Error("expected exhausted pager to remain exhausted")
		}
	})

	t.Run("Page Failure Propagates", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/artists/artist1/albums", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		client, server := newTestClient(t, mux)
		defer server.Close()

		_, err := client.AllAlbums(context.Background(), "artist1")
		if !errors.Is(err, shared.ErrRemoteRequest) {
			t.Errorf("expected ErrRemoteRequest, got %v", err)
		}
	})
}

func TestAlbumTracks(t *testing.T) {
	mux := http.NewServeMux()
	var serverURL string

	mux.HandleFunc("/albums/al1/tracks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			json.NewEncoder(w).Encode(trackPage{
				Items: []AlbumTrack{{ID: "t3", Name: "Crawling", TrackNumber: 3, DurationMS: 208000}},
			})
			return
		}

		next := serverURL + "/albums/al1/tracks?page=2"
		json.NewEncoder(w).Encode(trackPage{
			Items: []AlbumTrack{
				{ID: "t1", Name: "Papercut", TrackNumber: 1, DurationMS: 184000},
				{ID: "t2", Name: "One Step Closer", TrackNumber: 2, DurationMS: 157000},
			},
			Next: &next,
		})
	})

	client, server := newTestClient(t, mux)
	defer server.Close()
	serverURL = server.URL

	tracks, err := client.AllTracks(context.Background(), "al1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	if tracks[0].TrackNumber != 1 || tracks[2].TrackNumber != 3 {
		t.Error("expected track order preserved across pages")
	}
}

func TestTrackDetails(t *testing.T) {
	t.Run("Preserves Null Entries Positionally", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/tracks", func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("ids"); got != "a,b,c" {
				t.Errorf("expected ids 'a,b,c', got %s", got)
			}
			// The server resolves a and c but not b; the gap stays in place.
			fmt.Fprint(w, `{"tracks":[
				{"id":"a","external_ids":{"isrc":"USRC17607839"},"explicit":false,"popularity":70},
				null,
				{"id":"c","external_ids":{"isrc":"GBUM71029604"},"explicit":true,"popularity":55}
			]}`)
		})

		client, server := newTestClient(t, mux)
		defer server.Close()

		details, err := client.TrackDetails(context.Background(), []string{"a", "b", "c"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(details) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(details))
		}
		if details[0] == nil || details[0].ISRC() != "USRC17607839" {
			t.Error("expected first entry to carry its ISRC")
		}
		if details[1] != nil {
			t.Error("expected unresolved id to stay nil, not be compacted away")
		}
		if details[2] == nil || details[2].ISRC() != "GBUM71029604" {
			t.Error("expected third entry to keep its own ISRC, not shift")
		}
	})

	t.Run("Length Mismatch Is Fatal", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/tracks", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"tracks":[{"id":"a"}]}`)
		})

		client, server := newTestClient(t, mux)
		defer server.Close()

		_, err := client.TrackDetails(context.Background(), []string{"a", "b"})
		if !errors.Is(err, shared.ErrAlignment) {
			t.Errorf("expected ErrAlignment, got %v", err)
		}
	})

	t.Run("Batch Size Limit", func(t *testing.T) {
		client, server := newTestClient(t, http.NewServeMux())
		defer server.Close()

		ids := make([]string, MaxBatchSize+1)
		for i := range ids {
			ids[i] = fmt.Sprintf("id%d", i)
		}

		if _, err := client.TrackDetails(context.Background(), ids); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for oversized batch, got %v", err)
		}
		if _, err := client.TrackDetails(context.Background(), nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for empty batch, got %v", err)
		}
	})
}
