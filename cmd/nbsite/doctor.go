package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	"github.com/alnah/go-nbsite/internal/config"
	"github.com/alnah/go-nbsite/internal/fileutil"
	"github.com/alnah/go-nbsite/internal/hints"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"`
	Exporter exporterInfo `json:"exporter"`
	Chrome   chromeInfo   `json:"chrome"`
	Output   outputInfo   `json:"output"`
	Env      envInfo      `json:"environment"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// exporterInfo holds the export tool lookup.
type exporterInfo struct {
	Command string `json:"command"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

// outputInfo holds the output directory check.
type outputInfo struct {
	Dir      string `json:"dir"`
	Writable bool   `json:"writable"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Container  bool   `json:"container"`
	CI         bool   `json:"ci"`
	NoSandbox  string `json:"rod_no_sandbox"`
	BrowserBin string `json:"rod_browser_bin"`
}

// doctorChecks are swapped in tests.
type doctorChecks struct {
	lookPath      func(string) (string, error)
	chromePath    func() (string, bool)
	chromeVersion func(string) (string, error)
	checkWritable func(string) error
	inContainer   func() bool
	inCI          func() bool
}

func defaultDoctorChecks() doctorChecks {
	return doctorChecks{
		lookPath:      exec.LookPath,
		chromePath:    launcher.LookPath,
		chromeVersion: chromeVersion,
		checkWritable: fileutil.CheckWritableDir,
		inContainer:   hints.IsInContainer,
		inCI:          hints.InCI,
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	return runDoctorWith(args, env, defaultDoctorChecks())
}

func runDoctorWith(args []string, env *Environment, checks doctorChecks) int {
	var common commonFlags
	jsonOutput := false
	fs := newFlagSet("doctor", env.Stderr, printDoctorUsage)
	fs.StringVarP(&common.config, "config", "c", "", "config file name or path")
	fs.BoolVar(&jsonOutput, "json", false, "print results as JSON")
	if err := parse(fs, args); err != nil {
		if errors.Is(err, errHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "nbsite: %v\n", err)
		return ExitUsage
	}

	common.quiet = true
	s, err := newSession(common, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "nbsite: %v\n", err)
		return exitCodeFor(err)
	}

	result := runDoctor(s.cfg, env.Getenv, checks)

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, getenv func(string) string, checks doctorChecks) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  getenv("ROD_NO_SANDBOX"),
			BrowserBin: getenv("ROD_BROWSER_BIN"),
		},
	}

	checkExporter(result, cfg.Export.Command, checks)
	checkChrome(result, checks)
	checkOutput(result, cfg.Output.Dir, checks)
	checkEnvironment(result, checks)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkExporter looks up the export tool binary on PATH.
func checkExporter(result *doctorResult, argv []string, checks doctorChecks) {
	result.Exporter.Command = strings.Join(argv, " ")
	path, err := checks.lookPath(argv[0])
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Export tool %q not found on PATH", argv[0]))
		return
	}
	result.Exporter.Found = true
	result.Exporter.Path = path
}

// checkChrome detects Chrome/Chromium. Only verify needs it, so a missing
// browser is a warning.
func checkChrome(result *doctorResult, checks doctorChecks) {
	chromePath := result.Env.BrowserBin
	if chromePath == "" {
		var found bool
		chromePath, found = checks.chromePath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; verify needs it. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath
	result.Chrome.Sandbox = result.Env.NoSandbox != "1"

	if v, err := checks.chromeVersion(chromePath); err == nil {
		result.Chrome.Version = v
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Could not get Chrome version: %v", err))
	}
}

func chromeVersion(path string) (string, error) {
	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- path from launcher lookup or ROD_BROWSER_BIN
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// checkOutput verifies the output directory can be written.
func checkOutput(result *doctorResult, dir string, checks doctorChecks) {
	result.Output.Dir = dir
	if err := checks.checkWritable(dir); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Output directory not writable: %v", err))
		return
	}
	result.Output.Writable = true
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, checks doctorChecks) {
	result.Env.Container = checks.inContainer()
	result.Env.CI = checks.inCI()

	if (result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "nbsite doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Export tool")
	if r.Exporter.Found {
		fmt.Fprintf(w, "  [OK] %s (%s)\n", r.Exporter.Command, r.Exporter.Path)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s: not found\n", r.Exporter.Command)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			fmt.Fprintln(w, "  [OK] Sandbox: enabled")
		} else {
			fmt.Fprintln(w, "  [OK] Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output")
	if r.Output.Writable {
		fmt.Fprintf(w, "  [OK] %s: writable\n", r.Output.Dir)
	} else {
		fmt.Fprintf(w, "  [ERROR] %s: not writable\n", r.Output.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
