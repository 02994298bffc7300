package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	nbsite "github.com/alnah/go-nbsite"
)

func runVerifyCmd(ctx context.Context, args []string, env *Environment) error {
	f, err := parseVerifyFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	s, err := newSession(f.common, env)
	if err != nil {
		return err
	}
	mergeSiteFlags(f.site, f.pattern, s.cfg)
	if f.timeout > 0 {
		s.cfg.Verify.Timeout = f.timeout
	}
	if f.workers > 0 {
		s.cfg.Verify.Workers = f.workers
	}
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	bundles, err := nbsite.Discover(s.cfg.Input.Dir, s.cfg.Input.Pattern, s.cfg.Output.Dir)
	if err != nil {
		return buildHint(err, s.cfg)
	}

	v := nbsite.NewVerifier(s.cfg.Verify.Workers, s.cfg.Verify.Timeout, s.logger)
	defer v.Close()

	results, err := v.Verify(ctx, nbsite.TargetsFor(bundles))
	if err != nil && !errors.Is(err, nbsite.ErrVerify) {
		return buildHint(err, s.cfg)
	}

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(results)
	} else {
		printVerifyResults(env.Stdout, results)
	}
	return err
}

func printVerifyResults(w io.Writer, results []nbsite.VerifyResult) {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
			fmt.Fprintf(w, "  [OK]   %-20s nav %.0fpx, %s padding-top %.0fpx\n",
				r.Name, r.Probe.NavHeight, r.Probe.Target, r.Probe.PaddingTop)
			continue
		}
		fmt.Fprintf(w, "  [FAIL] %-20s %s\n", r.Name, r.Error)
	}
	fmt.Fprintf(w, "done. %d/%d page(s) passed\n", passed, len(results))
}
