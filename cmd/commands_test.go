package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/abhisek/mathdrill/internal/config"
	"github.com/abhisek/mathdrill/internal/lesson"
	"github.com/abhisek/mathdrill/internal/llm"
	"github.com/abhisek/mathdrill/internal/store"
)

// cliEnv is a throwaway config, lesson cache and database for running
// commands through rootCmd.
type cliEnv struct {
	config string
	db     string
	cache  string
	custom string
	log    string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	e := &cliEnv{
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "data", "history.db"),
		cache:  filepath.Join(dir, "cache", "lessons.json"),
		custom: filepath.Join(dir, "custom.json"),
		log:    filepath.Join(dir, "mathdrill.log"),
	}
	body := fmt.Sprintf(`lessons:
  cache_file: %q
  custom_file: %q
  remote_url: "http://127.0.0.1:0/lessons.json"
log:
  file: %q
llm:
  provider: mock
`, e.cache, e.custom, e.log)
	if err := os.WriteFile(e.config, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"MATHDRILL_CONFIG", "MATHDRILL_DB", "MATHDRILL_LESSONS_CACHE", "MATHDRILL_CUSTOM_LESSONS", "MATHDRILL_LOG_FILE"} {
		t.Setenv(k, "")
	}
	return e
}

// run executes args against rootCmd and returns what it printed to stdout.
func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config=" + e.config, "--db=" + e.db}, args...))
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags restores every flag to its default, since the command tree
// is shared between tests.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func (e *cliEnv) writeCache(t *testing.T, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(e.cache), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(e.cache, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *cliEnv) openStore(t *testing.T) *store.Store {
	t.Helper()
	if err := store.EnsureDir(e.db); err != nil {
		t.Fatal(err)
	}
	s, err := store.Open(e.db)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// useMock makes lessons generate draft with mock, recording into the
// command's database.
func useMock(t *testing.T, mock *llm.MockProvider) {
	t.Helper()
	orig := newProvider
	newProvider = func(_ context.Context, _ llm.Config, repo store.GenerationRepo, log logrus.FieldLogger) (llm.Provider, error) {
		return llm.WithRecorder(mock, "mock", repo, log), nil
	}
	t.Cleanup(func() { newProvider = orig })
}

func TestLessonsGenerate_Save(t *testing.T) {
	e := newCLIEnv(t)
	mock := llm.NewMockProvider(llm.MockLesson("Doubles", "2+2", "4", "3+3", "6"))
	useMock(t, mock)

	out, err := e.run(t, "lessons", "generate", "--topic", "doubling", "-n", "2", "--save")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, `Saved "Doubles" to custom lessons.`) {
		t.Errorf("output missing save line:\n%s", out)
	}
	if len(mock.Requests) != 1 || mock.Requests[0].Topic != "doubling" || mock.Requests[0].Count != 2 {
		t.Errorf("requests = %+v", mock.Requests)
	}

	data, err := os.ReadFile(e.custom)
	if err != nil {
		t.Fatalf("custom lessons not written: %v", err)
	}
	saved, err := lesson.Parse(data)
	if err != nil {
		t.Fatalf("parse custom lessons: %v", err)
	}
	if len(saved) != 1 || saved[0].Name != "Doubles" || saved[0].Tasks["3+3"] != "6" {
		t.Errorf("saved = %+v", saved)
	}

	gens, err := e.openStore(t).Generations().Recent(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if len(gens) != 1 || gens[0].Topic != "doubling" || gens[0].Produced != 2 || gens[0].Lesson != "Doubles" {
		t.Errorf("generations = %+v", gens)
	}

	out, err = e.run(t, "llm", "list", "-t", "doubling")
	if err != nil {
		t.Fatalf("llm list: %v", err)
	}
	if !strings.Contains(out, "doubling") || !strings.Contains(out, "2/2") {
		t.Errorf("llm list output:\n%s", out)
	}
}

func TestLessonsGenerate_WithoutSave(t *testing.T) {
	e := newCLIEnv(t)
	useMock(t, llm.NewMockProvider(llm.MockLesson("Halves", "8/2", "4")))

	out, err := e.run(t, "lessons", "generate", "--topic", "halving", "-n", "1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "Not saved") {
		t.Errorf("output:\n%s", out)
	}
	if _, err := os.Stat(e.custom); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("custom lessons written without --save: %v", err)
	}
}

func TestLessonsGenerate_ProviderFailure(t *testing.T) {
	e := newCLIEnv(t)
	useMock(t, llm.NewMockProvider(llm.MockReply{Err: &llm.Error{Kind: llm.Unavailable}}))

	_, err := e.run(t, "lessons", "generate", "--topic", "halving", "-n", "1", "--save")
	if err == nil {
		t.Fatal("expected error from failing provider")
	}
	if k, ok := llm.KindOf(err); !ok || k != llm.Unavailable {
		t.Errorf("err = %v, want Unavailable", err)
	}
	if _, err := os.Stat(e.custom); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("custom lessons written after failure: %v", err)
	}
}

func TestLessonsList_BrokenCustomWarns(t *testing.T) {
	e := newCLIEnv(t)
	e.writeCache(t, `{"lessons":[{"name":"Cached","tasknum":1,"tasks":{"1+1":"2"}}]}`)
	if err := os.WriteFile(e.custom, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := e.run(t, "lessons", "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "Cached") {
		t.Errorf("output missing cached lesson:\n%s", out)
	}
}

func TestReset_History(t *testing.T) {
	e := newCLIEnv(t)
	e.writeCache(t, `{"lessons":[]}`)
	if err := os.WriteFile(e.custom, []byte(`{"lessons":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := e.openStore(t)
	s.Close()
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.WriteFile(e.db+suffix, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := e.run(t, "reset", "--history")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, p := range []string{e.cache, e.db, e.db + "-wal", e.db + "-shm"} {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s still present: %v", p, err)
		}
	}
	if _, err := os.Stat(e.custom); err != nil {
		t.Errorf("custom lessons removed: %v", err)
	}
	if !strings.Contains(out, "Cleared history:") {
		t.Errorf("output:\n%s", out)
	}
}

func TestReset_KeepsHistoryByDefault(t *testing.T) {
	e := newCLIEnv(t)
	e.writeCache(t, `{"lessons":[]}`)
	e.openStore(t).Close()

	if _, err := e.run(t, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := os.Stat(e.cache); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("cache still present: %v", err)
	}
	if _, err := os.Stat(e.db); err != nil {
		t.Errorf("history removed without --history: %v", err)
	}
}

func TestHistory_Filters(t *testing.T) {
	e := newCLIEnv(t)
	s := e.openStore(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"Addition", "Doubles", "Subtraction"} {
		err := s.AttemptRepo().Append(context.Background(), store.AttemptRecord{
			ID:         fmt.Sprintf("a%d", i),
			Lesson:     name,
			Correct:    i + 1,
			Total:      5,
			Percentage: float64(i+1) * 20,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	s.Close()

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{"all", nil, []string{"Addition", "Doubles", "Subtraction"}, nil},
		{"limit", []string{"-n", "1"}, []string{"Subtraction", "3/5"}, []string{"Addition", "Doubles"}},
		{"lesson", []string{"-l", "Doubles"}, []string{"Doubles", "2/5"}, []string{"Addition", "Subtraction"}},
		{"unknown lesson", []string{"-l", "Halves"}, []string{"No attempts recorded yet."}, []string{"Addition"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := e.run(t, append([]string{"history"}, tt.args...)...)
			if err != nil {
				t.Fatalf("history: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestCLILogger_FallsBackWhenUnwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetErr(&errOut)

	cfg := config.Default()
	cfg.Log.File = filepath.Join(blocker, "mathdrill.log")
	log, closeLog := cliLogger(cmd, cfg)
	if log == nil {
		t.Fatal("nil logger")
	}
	log.Info("dropped")
	if err := closeLog(); err != nil {
		t.Errorf("close: %v", err)
	}
	if !strings.Contains(errOut.String(), "Logging unavailable:") {
		t.Errorf("stderr = %q", errOut.String())
	}
}
