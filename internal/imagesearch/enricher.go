package imagesearch

import (
	"context"
	"fmt"
)

// PlaceholderImage is used whenever no photo is available.
const PlaceholderImage = "/placeholder.jpg"

// Observer is told about every search the Enricher makes.
type Observer interface {
	RecordImageSearch(found bool, err error)
}

// Enricher picks an image URL for a recipe keyword.
type Enricher struct {
	searcher Searcher
	observer Observer
}

// NewEnricher creates an Enricher. searcher may be nil when image search is
// not configured; lookups then always return the placeholder.
func NewEnricher(searcher Searcher, observer Observer) *Enricher {
	return &Enricher{searcher: searcher, observer: observer}
}

// ImageURL returns the first result's regular-size URL for keyword. With
// fetch off it returns the placeholder without any request. Results are not
// cached, so repeated keywords search again.
func (e *Enricher) ImageURL(ctx context.Context, keyword string, fetch bool) (string, error) {
	url, found, err := e.lookup(ctx, keyword, fetch)
	if err != nil {
		return "", err
	}
	if !found {
		return PlaceholderImage, nil
	}
	return url, nil
}

// OptionalImageURL is like ImageURL but reports "no image" as nil instead of
// the placeholder. With fetch off the placeholder is still returned.
func (e *Enricher) OptionalImageURL(ctx context.Context, keyword string, fetch bool) (*string, error) {
	if !fetch || e.searcher == nil {
		p := PlaceholderImage
		return &p, nil
	}
	url, found, err := e.lookup(ctx, keyword, fetch)
	if err != nil || !found {
		return nil, err
	}
	return &url, nil
}

func (e *Enricher) lookup(ctx context.Context, keyword string, fetch bool) (string, bool, error) {
	if !fetch || e.searcher == nil {
		return "", false, nil
	}

	photos, err := e.searcher.Search(ctx, keyword)
	found := err == nil && len(photos) > 0 && photos[0].URLs.Regular != ""
	if e.observer != nil {
		e.observer.RecordImageSearch(found, err)
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to search image for %q: %w", keyword, err)
	}
	if !found {
		return "", false, nil
	}
	return photos[0].URLs.Regular, true, nil
}
