package main

import (
	"fmt"

	"github.com/alnah/go-nbsite/internal/config"
)

// runConfigCmd prints the effective configuration after merging defaults,
// the config file, NBSITE_* variables and build flags.
func runConfigCmd(args []string, env *Environment) error {
	f := &buildFlags{}
	fs := newFlagSet("config", env.Stderr, printConfigUsage)
	addBuildFlags(fs, f)
	if err := parse(fs, args); err != nil {
		return err
	}

	s, err := newSession(f.common, env)
	if err != nil {
		return err
	}
	mergeBuildFlags(f, s.cfg)
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	data, err := config.Encode(s.cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if s.cfgPath != "" {
		fmt.Fprintf(env.Stdout, "# loaded from %s\n", s.cfgPath)
	}
	_, err = env.Stdout.Write(data)
	return err
}
