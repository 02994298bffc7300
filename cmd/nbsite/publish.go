package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/alnah/go-nbsite/internal/hints"
	"github.com/alnah/go-nbsite/internal/publish"
)

func runPublishCmd(ctx context.Context, args []string, env *Environment) error {
	f, err := parsePublishFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	s, err := newSession(f.common, env)
	if err != nil {
		return err
	}
	mergeSiteFlags(f.site, "", s.cfg)
	setString(&s.cfg.Publish.Bucket, f.bucket)
	setString(&s.cfg.Publish.Prefix, f.prefix)
	setString(&s.cfg.Publish.Endpoint, f.endpoint)
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	pc := s.cfg.Publish
	if pc.Bucket == "" {
		return publish.ErrNoBucket
	}

	var store publish.ObjectStore
	if !f.dryRun {
		store, err = env.NewStore(publish.S3Config{
			Endpoint:  pc.Endpoint,
			Region:    pc.Region,
			AccessKey: s.envCfg.S3AccessKey,
			SecretKey: s.envCfg.S3SecretKey,
			Bucket:    pc.Bucket,
			UseSSL:    pc.UseSSL,
		})
		if errors.Is(err, publish.ErrCredentials) {
			return withHint(err, hints.ForPublishCredentials())
		}
		if err != nil {
			return err
		}
	}

	report, err := publish.NewPublisher(store, pc.Bucket, s.logger).Publish(ctx, s.cfg.Output.Dir, pc.Prefix, f.dryRun)
	if err != nil {
		return err
	}

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printPublishReport(env.Stdout, report)
	return nil
}

func printPublishReport(w io.Writer, r *publish.Report) {
	if r.DryRun {
		for _, o := range r.Objects {
			fmt.Fprintf(w, "  s3://%s/%s  %s\n", r.Bucket, o.Key, o.ContentType)
		}
		fmt.Fprintf(w, "dry run. %d file(s), %d bytes\n", len(r.Objects), r.Bytes)
		return
	}
	fmt.Fprintf(w, "done. %d file(s), %d bytes uploaded to s3://%s\n", len(r.Objects), r.Bytes, r.Bucket)
}
