// Package publish uploads a built site to an S3-compatible bucket.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sentinel errors for publishing.
var (
	ErrNoBucket    = errors.New("bucket is required")
	ErrNoEndpoint  = errors.New("endpoint is required")
	ErrCredentials = errors.New("missing S3 credentials")
	ErrBucket      = errors.New("bucket unavailable")
	ErrUpload      = errors.New("upload failed")
	ErrEmptySite   = errors.New("nothing to publish")
)

// DefaultConcurrency bounds parallel uploads.
const DefaultConcurrency = 4

const defaultContentType = "application/octet-stream"

// contentTypes overrides the platform MIME table for types the site relies on.
var contentTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".json":  "application/json",
	".wasm":  "application/wasm",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
	".txt":   "text/plain; charset=utf-8",
	".whl":   "application/zip",
}

// ContentType returns the Content-Type for a file name.
func ContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return defaultContentType
}

// Object is one file scheduled for upload.
type Object struct {
	Key         string `json:"key"`
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// ObjectStore is the subset of an S3 client the publisher needs.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// Plan lists every regular file under dir as an Object keyed by prefix and
// the slash-separated relative path, sorted by key.
func Plan(dir, prefix string) ([]Object, error) {
	prefix = strings.Trim(prefix, "/")

	var objects []Object
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, Object{
			Key:         ObjectKey(prefix, rel),
			Path:        p,
			ContentType: ContentType(p),
			Size:        info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

// ObjectKey joins prefix and a relative file path with forward slashes.
func ObjectKey(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return path.Clean(rel)
	}
	return path.Join(prefix, rel)
}

// Report summarizes a publish run.
type Report struct {
	Bucket  string   `json:"bucket"`
	Objects []Object `json:"objects"`
	Bytes   int64    `json:"bytes"`
	DryRun  bool     `json:"dryRun"`
}

// Publisher uploads a directory tree to an ObjectStore.
type Publisher struct {
	store       ObjectStore
	bucket      string
	concurrency int
	logger      *zap.Logger
}

// NewPublisher creates a publisher. store may be nil for dry runs.
func NewPublisher(store ObjectStore, bucket string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{store: store, bucket: bucket, concurrency: DefaultConcurrency, logger: logger}
}

// Publish uploads every file under dir. With dryRun it only plans and logs
// the keys.
func (p *Publisher) Publish(ctx context.Context, dir, prefix string, dryRun bool) (*Report, error) {
	objects, err := Plan(dir, prefix)
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrEmptySite, dir)
	}

	report := &Report{Bucket: p.bucket, Objects: objects, DryRun: dryRun}
	for _, o := range objects {
		report.Bytes += o.Size
	}

	if dryRun {
		for _, o := range objects {
			p.logger.Debug("would upload s3://"+p.bucket+"/"+o.Key, zap.String("type", o.ContentType))
		}
		return report, nil
	}

	if err := p.store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBucket, p.bucket, err)
	}

	var done atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, o := range objects {
		g.Go(func() error {
			if err := p.upload(gctx, o); err != nil {
				return err
			}
			p.logger.Debug("uploaded "+o.Key, zap.Int32("done", done.Add(1)), zap.Int("total", len(objects)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Info(fmt.Sprintf("published %d files to s3://%s/%s", len(objects), p.bucket, strings.Trim(prefix, "/")))
	return report, nil
}

func (p *Publisher) upload(ctx context.Context, o Object) error {
	f, err := os.Open(o.Path) // #nosec G304 -- path comes from walking the output dir
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpload, o.Key, err)
	}
	defer f.Close()

	if err := p.store.Put(ctx, o.Key, f, o.Size, o.ContentType); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUpload, o.Key, err)
	}
	return nil
}
