package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCommand is returned for an unrecognized command name.
var ErrUnknownCommand = errors.New("unknown command")

const defaultCommand = "build"

var commandNames = []string{"build", "serve", "verify", "publish", "doctor", "config", "version", "help"}

// isCommand reports whether s names a command. Case sensitive.
func isCommand(s string) bool {
	for _, c := range commandNames {
		if s == c {
			return true
		}
	}
	return false
}

// runMain dispatches args (including the program name) and returns the
// process exit code. Without a command, build runs.
func runMain(ctx context.Context, args []string, env *Environment) int {
	if len(args) > 0 {
		args = args[1:]
	}

	cmd := defaultCommand
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "build":
		err = runBuildCmd(ctx, args, env)
	case "serve":
		err = runServeCmd(ctx, args, env)
	case "verify":
		err = runVerifyCmd(ctx, args, env)
	case "publish":
		err = runPublishCmd(ctx, args, env)
	case "doctor":
		return runDoctorCmd(args, env)
	case "config":
		err = runConfigCmd(args, env)
	case "version":
		fmt.Fprintf(env.Stdout, "nbsite %s\n", Version)
		return ExitSuccess
	case "help":
		if !runHelp(args, env) {
			return ExitUsage
		}
		return ExitSuccess
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
	}

	if errors.Is(err, errHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "nbsite: %v\n", err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
