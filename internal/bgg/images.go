package bgg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spieltreff/backend/internal/singleflight"
)

// ErrNoThumbnail is returned when the catalog record exists but has
// no thumbnail, or the id is unknown upstream.  The error is shared
// by every caller that attached to the same fetch.
var ErrNoThumbnail = errors.New("bgg: no thumbnail available")

// ImageService downloads and caches game thumbnails on disk.  All
// fetches for the same id are funneled through a single-flight queue,
// so a burst of page loads for one uncached game produces exactly one
// upstream request.  Games without a thumbnail get a marker file so
// the upstream is not re-asked on every request; the marker expires
// after retryAfter, outside the queue itself (the queue never caches
// failures).
type ImageService struct {
	client     *Client
	dir        string
	retryAfter time.Duration
	queue      *singleflight.Queue[uint64, string]
}

func NewImageService(client *Client, dir string, retryAfter time.Duration) *ImageService {
	s := &ImageService{client: client, dir: dir, retryAfter: retryAfter}
	s.queue = singleflight.NewQueue(s.fetch)
	return s
}

// ThumbnailPath returns the local path of the cached thumbnail for a
// BGG id, fetching it first if needed.  ErrNoThumbnail when the game
// has none and the no-result marker is still fresh.
func (s *ImageService) ThumbnailPath(ctx context.Context, id uint64) (string, error) {
	path := s.imagePath(id)
	if fileExists(path) {
		return path, nil
	}
	if s.markerFresh(id) {
		return "", ErrNoThumbnail
	}
	return s.queue.Enqueue(id).Wait(ctx)
}

// IsFetching reports whether a fetch for the id is currently running.
func (s *ImageService) IsFetching(id uint64) bool {
	return s.queue.IsInFlight(id)
}

// fetch is the single-flight work function: resolve the thumbnail URL
// via the thing endpoint, download the image to a temp file and move
// it into place.  A missing thumbnail writes the marker and fails
// with ErrNoThumbnail for every attached caller.
func (s *ImageService) fetch(ctx context.Context, id uint64) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	thing, err := s.client.Thing(ctx, id)
	if err != nil {
		log.Printf("bgg-fetch: thing %d failed: %v", id, err)
		return "", err
	}
	if thing == nil || thing.Thumbnail == "" {
		if err := s.writeMarker(id); err != nil {
			log.Printf("bgg-fetch: marker for %d failed: %v", id, err)
		}
		return "", ErrNoThumbnail
	}

	path := s.imagePath(id)
	if err := s.download(ctx, thing.Thumbnail, path); err != nil {
		log.Printf("bgg-fetch: download %d failed: %v", id, err)
		return "", err
	}
	// A stale marker from an earlier miss is obsolete now.
	_ = os.Remove(s.markerPath(id))
	return path, nil
}

func (s *ImageService) download(ctx context.Context, srcURL, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bgg: unexpected status %d for %s", resp.StatusCode, srcURL)
	}

	tmp, err := os.CreateTemp(s.dir, "thumb-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func (s *ImageService) imagePath(id uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.jpg", id))
}

func (s *ImageService) markerPath(id uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d.noimage", id))
}

func (s *ImageService) writeMarker(id uint64) error {
	return os.WriteFile(s.markerPath(id), nil, 0o644)
}

// markerFresh reports whether a no-result marker exists and is young
// enough to suppress another upstream attempt.
func (s *ImageService) markerFresh(id uint64) bool {
	info, err := os.Stat(s.markerPath(id))
	if err != nil {
		return false
	}
	return time.Since(info.ModTime()) < s.retryAfter
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
