package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathdrill/internal/lesson"
)

const remoteBody = `{"lessons":[
  {"name":"Addition","tasknum":3,"tasks":{"2+2":"4","3+3":"6","5+5":"10"}},
  {"name":"Doubles","tasknum":1,"tasks":{"7+7":"14"}}
]}`

const cachedBody = `{"lessons":[{"name":"Cached","tasknum":1,"tasks":{"1+1":"2"}}]}`

func newServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newStore(t *testing.T, url string) (*Store, Config) {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		CacheFile:  filepath.Join(dir, "cache", "lessons.json"),
		CustomFile: filepath.Join(dir, "custom.json"),
		RemoteURL:  url,
		Timeout:    2 * time.Second,
	}
	return New(cfg), cfg
}

func TestLoad_CacheHit(t *testing.T) {
	srv, hits := newServer(t, http.StatusOK, remoteBody)
	s, cfg := newStore(t, srv.URL)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.CacheFile), 0o755))
	require.NoError(t, os.WriteFile(cfg.CacheFile, []byte(cachedBody), 0o644))

	lessons, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "Cached", lessons[0].Name)
	assert.Equal(t, int32(0), hits.Load(), "cache hit must not touch the network")
}

func TestLoad_CacheMissFetchesAndCaches(t *testing.T) {
	srv, hits := newServer(t, http.StatusOK, remoteBody)
	s, cfg := newStore(t, srv.URL)

	lessons, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "Addition", lessons[0].Name)
	assert.Equal(t, "10", lessons[0].Tasks["5+5"])

	cached, err := os.ReadFile(cfg.CacheFile)
	require.NoError(t, err)
	assert.Equal(t, remoteBody, string(cached), "download is cached verbatim")

	_, err = s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second load reads the cache")
}

func TestLoad_RemoteFailure(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, "not found")
	s, cfg := newStore(t, srv.URL)

	lessons, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, lessons)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)

	_, statErr := os.Stat(cfg.CacheFile)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "failed fetch must not create a cache")
}

func TestLoad_MalformedDownloadNotCached(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"lessons": [{"tasknum": 1}]}`)
	s, cfg := newStore(t, srv.URL)

	_, err := s.Load(context.Background())
	require.Error(t, err)

	var pe *lesson.ParseError
	assert.True(t, errors.As(err, &pe))

	_, statErr := os.Stat(cfg.CacheFile)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestLoad_MalformedCache(t *testing.T) {
	srv, hits := newServer(t, http.StatusOK, remoteBody)
	s, cfg := newStore(t, srv.URL)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.CacheFile), 0o755))
	require.NoError(t, os.WriteFile(cfg.CacheFile, []byte("{not json"), 0o644))

	lessons, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, lessons)
	assert.Equal(t, int32(0), hits.Load())
}

func TestLoad_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	s, _ := newStore(t, srv.URL)
	s.cfg.Timeout = 50 * time.Millisecond

	_, err := s.Load(context.Background())
	var fe *FetchError
	require.True(t, errors.As(err, &fe), "err = %v", err)
}

func TestLoad_OversizedDownload(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, remoteBody)
	_, cfg := newStore(t, srv.URL)
	cfg.MaxBodySize = int64(len(remoteBody) - 1)
	s := New(cfg)

	lessons, err := s.Load(context.Background())
	assert.Nil(t, lessons)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.NoFileExists(t, cfg.CacheFile)

	// A file exactly at the cap is accepted.
	cfg.MaxBodySize = int64(len(remoteBody))
	lessons, err = New(cfg).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, lessons, 2)
}

func TestRefresh_ReplacesCache(t *testing.T) {
	srv, hits := newServer(t, http.StatusOK, remoteBody)
	s, cfg := newStore(t, srv.URL)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.CacheFile), 0o755))
	require.NoError(t, os.WriteFile(cfg.CacheFile, []byte(cachedBody), 0o644))

	lessons, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, lessons, 2)
	assert.Equal(t, int32(1), hits.Load())

	cached, err := os.ReadFile(cfg.CacheFile)
	require.NoError(t, err)
	assert.Equal(t, remoteBody, string(cached))
}

func TestRefresh_FailureKeepsCache(t *testing.T) {
	srv, _ := newServer(t, http.StatusInternalServerError, "boom")
	s, cfg := newStore(t, srv.URL)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.CacheFile), 0o755))
	require.NoError(t, os.WriteFile(cfg.CacheFile, []byte(cachedBody), 0o644))

	_, err := s.Refresh(context.Background())
	require.Error(t, err)

	cached, err := os.ReadFile(cfg.CacheFile)
	require.NoError(t, err)
	assert.Equal(t, cachedBody, string(cached))
}

func TestAddCustom(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, remoteBody)
	s, _ := newStore(t, srv.URL)

	fractions := lesson.Lesson{Name: "Fractions", Tasks: map[string]string{"1/2+1/2": "1"}}
	require.NoError(t, s.AddCustom(fractions))

	lessons, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Equal(t, "Fractions", lessons[2].Name, "custom lessons follow the cached ones")

	// Same name replaces.
	fractions.Tasks = map[string]string{"1/4+1/4": "1/2", "1/3+1/3": "2/3"}
	require.NoError(t, s.AddCustom(fractions))

	lessons, err = s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, lessons, 3)
	assert.Len(t, lessons[2].Tasks, 2)
}

func TestLoad_BrokenCustomKeepsCache(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, remoteBody)
	s, cfg := newStore(t, srv.URL)

	require.NoError(t, os.MkdirAll(filepath.Dir(cfg.CacheFile), 0o755))
	require.NoError(t, os.WriteFile(cfg.CacheFile, []byte(cachedBody), 0o644))
	require.NoError(t, os.WriteFile(cfg.CustomFile, []byte("{not json"), 0o644))

	lessons, err := s.Load(context.Background())
	require.Len(t, lessons, 1, "cached lessons survive a broken custom file")
	assert.Equal(t, "Cached", lessons[0].Name)

	var ce *CustomError
	require.True(t, errors.As(err, &ce), "err = %v", err)
	assert.Equal(t, cfg.CustomFile, ce.Path)
}

func TestRefresh_BrokenCustomKeepsDownload(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, remoteBody)
	s, cfg := newStore(t, srv.URL)

	require.NoError(t, os.WriteFile(cfg.CustomFile, []byte("{not json"), 0o644))

	lessons, err := s.Refresh(context.Background())
	assert.Len(t, lessons, 2)
	var ce *CustomError
	assert.True(t, errors.As(err, &ce), "err = %v", err)
	require.FileExists(t, cfg.CacheFile)
}

func TestAddCustom_Invalid(t *testing.T) {
	s, _ := newStore(t, "http://127.0.0.1:0")

	err := s.AddCustom(lesson.Lesson{Name: "", Tasks: map[string]string{"a": "b"}})
	assert.ErrorIs(t, err, lesson.ErrNoName)

	err = s.AddCustom(lesson.Lesson{Name: "Empty"})
	assert.ErrorIs(t, err, lesson.ErrNoTasks)
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{})
	assert.Equal(t, DefaultRemoteURL, s.cfg.RemoteURL)
	assert.Equal(t, DefaultTimeout, s.cfg.Timeout)
}

func TestClearCache(t *testing.T) {
	srv, hits := newServer(t, http.StatusOK, remoteBody)
	s, cfg := newStore(t, srv.URL)

	require.NoError(t, s.ClearCache(), "missing cache is not an error")

	_, err := s.Load(context.Background())
	require.NoError(t, err)
	require.FileExists(t, cfg.CacheFile)
	assert.Equal(t, cfg.CacheFile, s.CachePath())

	require.NoError(t, s.ClearCache())
	assert.NoFileExists(t, cfg.CacheFile)

	_, err = s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "cleared cache triggers a new download")
}
