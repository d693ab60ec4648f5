package imagesearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"ai-kitchen/internal/config"
)

func TestUnsplashSearch(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/search/photos" {
				t.Errorf("Expected /search/photos, got %s", r.URL.Path)
			}
			if r.URL.Query().Get("query") != "green salad" {
				t.Errorf("Expected query 'green salad', got '%s'", r.URL.Query().Get("query"))
			}
			if r.Header.Get("Authorization") != "Client-ID test_key" {
				t.Errorf("Unexpected Authorization header '%s'", r.Header.Get("Authorization"))
			}
			fmt.Fprintln(w, `{"total": 2, "results": [
				{"id": "a", "urls": {"regular": "https://img.test/a.jpg"}},
				{"id": "b", "urls": {"regular": "https://img.test/b.jpg"}}
			]}`)
		}))
		defer server.Close()

		client := NewUnsplashClient(&config.Config{UnsplashAPIURL: server.URL, UnsplashAccessKey: "test_key"})
		photos, err := client.Search(context.Background(), "green salad")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(photos) != 2 || photos[0].URLs.Regular != "https://img.test/a.jpg" {
			t.Errorf("Unexpected photos %+v", photos)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, "bad key")
		}))
		defer server.Close()

		client := NewUnsplashClient(&config.Config{UnsplashAPIURL: server.URL})
		_, err := client.Search(context.Background(), "soup")

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("Expected *APIError, got %v", err)
		}
		if apiErr.StatusCode != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", apiErr.StatusCode)
		}
	})
}

type fakeSearcher struct {
	photos []Photo
	err    error
	calls  atomic.Int32
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]Photo, error) {
	f.calls.Add(1)
	return f.photos, f.err
}

type countingObserver struct {
	found, missed, failed int
}

func (o *countingObserver) RecordImageSearch(found bool, err error) {
	switch {
	case err != nil:
		o.failed++
	case found:
		o.found++
	default:
		o.missed++
	}
}

func photo(url string) Photo {
	var p Photo
	p.URLs.Regular = url
	return p
}

func TestEnricherImageURL(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchDisabled", func(t *testing.T) {
		s := &fakeSearcher{photos: []Photo{photo("https://img.test/x.jpg")}}
		e := NewEnricher(s, nil)

		for _, kw := range []string{"pancakes", "ramen", ""} {
			got, err := e.ImageURL(ctx, kw, false)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != PlaceholderImage {
				t.Errorf("Expected placeholder for %q, got %s", kw, got)
			}
		}
		if s.calls.Load() != 0 {
			t.Errorf("Expected no searches with fetch disabled, got %d", s.calls.Load())
		}
	})

	t.Run("FirstResult", func(t *testing.T) {
		obs := &countingObserver{}
		e := NewEnricher(&fakeSearcher{photos: []Photo{photo("https://img.test/1.jpg"), photo("https://img.test/2.jpg")}}, obs)

		got, err := e.ImageURL(ctx, "tacos", true)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != "https://img.test/1.jpg" {
			t.Errorf("Expected first result, got %s", got)
		}
		if obs.found != 1 {
			t.Errorf("Expected one found search, got %+v", obs)
		}
	})

	t.Run("NoResults", func(t *testing.T) {
		e := NewEnricher(&fakeSearcher{}, nil)

		got, err := e.ImageURL(ctx, "mystery", true)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if got != PlaceholderImage {
			t.Errorf("Expected placeholder, got %s", got)
		}
	})

	t.Run("NoCaching", func(t *testing.T) {
		s := &fakeSearcher{photos: []Photo{photo("https://img.test/1.jpg")}}
		e := NewEnricher(s, nil)

		_, _ = e.ImageURL(ctx, "salad", true)
		_, _ = e.ImageURL(ctx, "salad", true)
		if s.calls.Load() != 2 {
			t.Errorf("Expected two searches for a repeated keyword, got %d", s.calls.Load())
		}
	})

	t.Run("SearchError", func(t *testing.T) {
		obs := &countingObserver{}
		e := NewEnricher(&fakeSearcher{err: errors.New("timeout")}, obs)

		_, err := e.ImageURL(ctx, "stew", true)
		if err == nil {
			t.Fatal("Expected an error, got nil")
		}
		if obs.failed != 1 {
			t.Errorf("Expected one failed search, got %+v", obs)
		}
	})

	t.Run("NotConfigured", func(t *testing.T) {
		e := NewEnricher(nil, nil)

		got, err := e.ImageURL(ctx, "stew", true)
		if err != nil || got != PlaceholderImage {
			t.Errorf("Expected placeholder without a searcher, got %s, %v", got, err)
		}
	})
}

func TestEnricherOptionalImageURL(t *testing.T) {
	ctx := context.Background()

	got, err := NewEnricher(&fakeSearcher{}, nil).OptionalImageURL(ctx, "x", true)
	if err != nil || got != nil {
		t.Errorf("Expected nil image when nothing is found, got %v, %v", got, err)
	}

	got, err = NewEnricher(&fakeSearcher{}, nil).OptionalImageURL(ctx, "x", false)
	if err != nil || got == nil || *got != PlaceholderImage {
		t.Errorf("Expected placeholder with fetch disabled, got %v, %v", got, err)
	}

	got, err = NewEnricher(&fakeSearcher{photos: []Photo{photo("https://img.test/p.jpg")}}, nil).OptionalImageURL(ctx, "x", true)
	if err != nil || got == nil || *got != "https://img.test/p.jpg" {
		t.Errorf("Expected the found image, got %v, %v", got, err)
	}
}
