package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbsite [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Export notebooks, inject navigation, write the chooser (default)")
	fmt.Fprintln(w, "  serve      Build, serve the site and rebuild on changes")
	fmt.Fprintln(w, "  verify     Check every page in headless Chrome")
	fmt.Fprintln(w, "  publish    Upload the site to an S3-compatible bucket")
	fmt.Fprintln(w, "  doctor     Check the export tool, Chrome and output directory")
	fmt.Fprintln(w, "  config     Print the effective configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'nbsite help <command>' for details on a specific command.")
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -q, --quiet               Only show warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug output")
}

func printSiteUsage(w io.Writer) {
	fmt.Fprintln(w, "  -i, --input <dir>         Directory containing notebooks (default .)")
	fmt.Fprintln(w, "  -o, --output <dir>        Site output directory (default dist)")
}

func printBuildFlagsUsage(w io.Writer) {
	printSiteUsage(w)
	fmt.Fprintln(w, "      --pattern <glob>      Notebook glob (default marimo.*.py)")
	fmt.Fprintln(w, "      --title <s>           Site title shown in the nav and chooser")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory overriding embedded templates")
	fmt.Fprintln(w, "      --no-export           Skip export, inject into existing output")
	fmt.Fprintln(w, "      --strict-names        Fail when two notebooks share a short name")
	printCommonUsage(w)
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbsite build [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export every notebook, add a prev/chooser/next nav bar to each")
	fmt.Fprintln(w, "exported page and write the chooser index.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printBuildFlagsUsage(w)
}

func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbsite serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Build, then serve the output with live reload. Source changes")
	fmt.Fprintln(w, "trigger a rebuild.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --addr <host:port>    Listen address (default 127.0.0.1:8000)")
	fmt.Fprintln(w, "      --no-build            Serve the existing output without building")
	fmt.Fprintln(w, "      --no-watch            Do not rebuild on source changes")
	printBuildFlagsUsage(w)
}

func printVerifyUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbsite verify [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open every built page in headless Chrome and check that the nav bar")
	fmt.Fprintln(w, "is present and does not cover the content.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printSiteUsage(w)
	fmt.Fprintln(w, "      --pattern <glob>      Notebook glob (default marimo.*.py)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-page timeout (default 30s)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browsers (0 = auto)")
	fmt.Fprintln(w, "      --json                Print results as JSON")
	printCommonUsage(w)
}

func printPublishUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbsite publish [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Upload the output directory to an S3-compatible bucket.")
	fmt.Fprintln(w, "Credentials: NBSITE_S3_ACCESS_KEY and NBSITE_S3_SECRET_KEY.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printSiteUsage(w)
	fmt.Fprintln(w, "      --bucket <name>       Target bucket")
	fmt.Fprintln(w, "      --prefix <key>        Key prefix inside the bucket")
	fmt.Fprintln(w, "      --endpoint <host>     S3 endpoint host[:port]")
	fmt.Fprintln(w, "      --dry-run             List keys without uploading")
	fmt.Fprintln(w, "      --json                Print the upload report as JSON")
	printCommonUsage(w)
}

func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbsite doctor [--json] [-c config]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the export tool, Chrome and the output directory.")
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbsite config [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the effective configuration as YAML: defaults, config file,")
	fmt.Fprintln(w, "NBSITE_* variables and flags merged.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	printBuildFlagsUsage(w)
}

// runHelp prints help for a specific command. Returns false for an
// unknown command.
func runHelp(args []string, env *Environment) bool {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return true
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "verify":
		printVerifyUsage(env.Stdout)
	case "publish":
		printPublishUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: nbsite version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: nbsite help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return false
	}
	return true
}
