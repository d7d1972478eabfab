// Package catalog loads the lesson collection from the local cache, falling
// back to a one-shot download of the remote lesson file.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/logging"
)

// DefaultRemoteURL is the published lesson file used when the cache is empty.
const DefaultRemoteURL = "https://raw.githubusercontent.com/Tianodont/beeholder/main/lessons.json"

// DefaultTimeout bounds a single remote fetch.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBodySize caps a downloaded lesson file.
const DefaultMaxBodySize = 8 << 20

// Config locates the lesson sources.
type Config struct {
	CacheFile   string
	CustomFile  string
	RemoteURL   string
	Timeout     time.Duration
	MaxBodySize int64 // larger downloads are rejected
}

// Store reads and refreshes the lesson collection.
type Store struct {
	cfg    Config
	client *http.Client
	log    logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithHTTPClient overrides the client used for remote fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.client = c }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a Store. Empty config fields fall back to defaults.
func New(cfg Config, opts ...Option) *Store {
	if cfg.RemoteURL == "" {
		cfg.RemoteURL = DefaultRemoteURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}
	s := &Store{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: cfg.Timeout}
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// Load returns the cached lessons, downloading them first when the cache
// file does not exist. Custom lessons are appended after the cached ones.
// If only the custom file is broken, the cached lessons are returned along
// with a *CustomError.
func (s *Store) Load(ctx context.Context) ([]lesson.Lesson, error) {
	data, err := os.ReadFile(s.cfg.CacheFile)
	switch {
	case err == nil:
		s.log.WithField("path", s.cfg.CacheFile).Debug("lessons loaded from cache")
	case errors.Is(err, os.ErrNotExist):
		s.log.WithField("url", s.cfg.RemoteURL).Info("lesson cache missing, fetching remote")
		data, err = s.download(ctx)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("read lesson cache: %w", err)
	}

	lessons, err := lesson.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("lesson cache %s: %w", s.cfg.CacheFile, err)
	}
	return s.withCustom(lessons)
}

// CachePath returns the location of the cached lesson file.
func (s *Store) CachePath() string {
	return s.cfg.CacheFile
}

// ClearCache removes the cached lesson file so the next Load downloads it
// again. A missing cache is not an error.
func (s *Store) ClearCache() error {
	err := os.Remove(s.cfg.CacheFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lesson cache: %w", err)
	}
	return nil
}

// Refresh always re-downloads the remote file and replaces the cache on
// success. A failed refresh leaves the existing cache untouched. A broken
// custom file is reported as in Load.
func (s *Store) Refresh(ctx context.Context) ([]lesson.Lesson, error) {
	data, err := s.download(ctx)
	if err != nil {
		return nil, err
	}
	lessons, err := lesson.Parse(data)
	if err != nil {
		return nil, err
	}
	s.log.WithField("lessons", len(lessons)).Info("lessons refreshed")
	return s.withCustom(lessons)
}

// download fetches, validates and caches the remote lesson file.
func (s *Store) download(ctx context.Context) ([]byte, error) {
	data, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := lesson.ValidateFile(data); err != nil {
		return nil, &FetchError{URL: s.cfg.RemoteURL, Err: err}
	}
	if err := writeAtomic(s.cfg.CacheFile, data); err != nil {
		return nil, fmt.Errorf("write lesson cache: %w", err)
	}
	return data, nil
}

func (s *Store) fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.RemoteURL, nil)
	if err != nil {
		return nil, &FetchError{URL: s.cfg.RemoteURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: s.cfg.RemoteURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{URL: s.cfg.RemoteURL, StatusCode: resp.StatusCode}
	}

	// One byte past the cap tells a full-size file from a cut-off one.
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodySize+1))
	if err != nil {
		return nil, &FetchError{URL: s.cfg.RemoteURL, Err: err}
	}
	if int64(len(data)) > s.cfg.MaxBodySize {
		return nil, &FetchError{URL: s.cfg.RemoteURL, Err: ErrTooLarge}
	}
	return data, nil
}

// writeAtomic writes data to a temp file beside path and renames it into place.
func writeAtomic(path string, data []byte) error {
	if path == "" {
		return errors.New("no cache path configured")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".lessons-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// DefaultCachePath returns <UserConfigDir>/mathdrill/lessons.json.
func DefaultCachePath() (string, error) {
	return configFile("lessons.json")
}

// DefaultCustomPath returns <UserConfigDir>/mathdrill/custom_lessons.json.
func DefaultCustomPath() (string, error) {
	return configFile("custom_lessons.json")
}

func configFile(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "mathdrill", name), nil
}
