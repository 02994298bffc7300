package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-nbsite/internal/assets"
	"github.com/alnah/go-nbsite/internal/devserver"
	"github.com/alnah/go-nbsite/internal/fileutil"
	"github.com/alnah/go-nbsite/internal/hints"
	"github.com/alnah/go-nbsite/internal/pipeline"
)

func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	f, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	s, err := newSession(f.build.common, env)
	if err != nil {
		return err
	}
	mergeBuildFlags(&f.build, s.cfg)
	setString(&s.cfg.Serve.Addr, f.addr)
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	b, err := newBuilder(s, env, f.build.common.quiet)
	if err != nil {
		return err
	}
	rebuild := func(ctx context.Context) error {
		_, err := runBuild(ctx, s, b, f.build.noExport)
		return err
	}
	if !f.noBuild {
		if err := rebuild(ctx); err != nil {
			return err
		}
	} else if !fileutil.DirExists(s.cfg.Output.Dir) {
		return fmt.Errorf("serving %s: %w", s.cfg.Output.Dir, os.ErrNotExist)
	}

	reload, err := newReloadInjection(s.cfg.Assets.BasePath)
	if err != nil {
		return err
	}
	srv := devserver.New(s.cfg.Output.Dir, reload, s.logger)

	g, gctx := errgroup.WithContext(ctx)
	if !f.noWatch {
		w, err := devserver.NewWatcher(s.cfg.Input.Dir, s.cfg.Input.Pattern, s.cfg.Serve.Debounce,
			rebuild, srv.Reload, s.logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}
	g.Go(func() error {
		err := srv.ListenAndServe(gctx, s.cfg.Serve.Addr)
		if errors.Is(err, syscall.EADDRINUSE) {
			return withHint(err, hints.ForAddrInUse(s.cfg.Serve.Addr))
		}
		return err
	})
	return g.Wait()
}

func newReloadInjection(assetPath string) (*pipeline.ReloadInjection, error) {
	loader, err := assets.NewAssetResolver(assetPath)
	if err != nil {
		return nil, err
	}
	tmpl, err := loader.LoadTemplate(assets.ReloadTemplate)
	if err != nil {
		return nil, err
	}
	return pipeline.NewReloadInjection(tmpl, pipeline.ReloadData{Path: devserver.ReloadPath})
}
