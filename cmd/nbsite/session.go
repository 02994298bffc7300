package main

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alnah/go-nbsite/internal/config"
	"github.com/alnah/go-nbsite/internal/hints"
	"github.com/alnah/go-nbsite/internal/logging"
)

// session is the resolved configuration and logger for one command run.
type session struct {
	cfg     *config.Config
	cfgPath string // empty when running on defaults
	envCfg  *envConfig
	logger  *zap.Logger
}

// newSession loads the config file, then applies NBSITE_* overrides.
// Flags are merged by the caller, which must call cfg.Validate afterwards.
func newSession(common commonFlags, env *Environment) (*session, error) {
	logger := logging.New(env.Stderr, logging.FromFlags(common.quiet, common.verbose))
	ec := loadEnvConfig(env.Getenv)
	warnUnknownEnvVars(env.Environ(), logger)

	name := common.config
	if name == "" {
		name = ec.ConfigPath
	}

	var (
		cfg  *config.Config
		path string
		err  error
	)
	if name != "" {
		cfg, path, err = config.Load(name)
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			err = withHint(err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if path != "" {
		logger.Debug("using config " + path)
	}

	applyEnvConfig(ec, cfg)
	return &session{cfg: cfg, cfgPath: path, envCfg: ec, logger: logger}, nil
}

// hintedError appends advice to an error message without changing its identity.
type hintedError struct {
	err  error
	hint string
}

func (e *hintedError) Error() string { return e.err.Error() + e.hint }
func (e *hintedError) Unwrap() error { return e.err }

func withHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return &hintedError{err: err, hint: hint}
}
