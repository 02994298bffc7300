package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/alnah/go-nbsite/internal/publish"
)

const testPage = `<!doctype html><html><head><title>t</title></head><body><div id="root"></div></body></html>`

// fakeRunner writes an entry page into the -o directory instead of running
// the export tool.
type fakeRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRunner) Run(_ context.Context, argv []string, _, _ io.Writer) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	out := argv[len(argv)-1]
	return os.WriteFile(filepath.Join(out, "index.html"), []byte(testPage), 0o600)
}

// testEnv returns an Environment reading variables from vars only.
func testEnv(vars map[string]string) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	env := &Environment{
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			sort.Strings(out)
			return out
		},
		Runner: &fakeRunner{},
		NewStore: func(publish.S3Config) (publish.ObjectStore, error) {
			return nil, publish.ErrCredentials
		},
	}
	return env, &stdout, &stderr
}

// setupNotebooks writes empty notebooks named marimo.<name>.py into a temp dir.
func setupNotebooks(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, n := range names {
		src := "import marimo\napp = marimo.App()\n"
		if err := os.WriteFile(filepath.Join(dir, "marimo."+n+".py"), []byte(src), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// memStore keeps uploaded objects in memory.
type memStore struct {
	mu      sync.Mutex
	objects map[string]string
}

func (m *memStore) EnsureBucket(context.Context) error { return nil }

func (m *memStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = string(data)
	return nil
}
