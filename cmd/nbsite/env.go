package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/joho/godotenv"

	nbsite "github.com/alnah/go-nbsite"
	"github.com/alnah/go-nbsite/internal/fileutil"
	"github.com/alnah/go-nbsite/internal/publish"
)

const dotEnvFile = ".env"

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Getenv  func(string) string
	Environ func() []string

	// Runner replaces the export subprocess runner when set.
	Runner nbsite.CommandRunner
	// NewStore creates the publish target.
	NewStore func(publish.S3Config) (publish.ObjectStore, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Getenv:   os.Getenv,
		Environ:  os.Environ,
		NewStore: newS3Store,
	}
}

func newS3Store(cfg publish.S3Config) (publish.ObjectStore, error) {
	return publish.NewS3Store(cfg)
}

// loadDotEnv layers variables from path under the current lookups.
// Variables already set in the process environment win. A missing file
// is not an error.
func (e *Environment) loadDotEnv(path string) error {
	if !fileutil.FileExists(path) {
		return nil
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	getenv, environ := e.Getenv, e.Environ
	e.Getenv = func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return vars[key]
	}
	e.Environ = func() []string {
		out := environ()
		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, k+"="+vars[k])
		}
		return out
	}
	return nil
}
