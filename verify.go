package nbsite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-nbsite/internal/process"
)

// DefaultVerifyTimeout bounds loading one page.
const DefaultVerifyTimeout = 30 * time.Second

// navProbeJS reports whether the nav exists, its measured height and the
// computed top padding of the container the nav script pads.
const navProbeJS = `() => {
  const nav = document.getElementById("marimo-top-nav");
  const sels = ["#root", "main", "body"];
  let target = null, name = "";
  for (const s of sels) {
    const el = document.querySelector(s);
    if (el) { target = el; name = s; break; }
  }
  if (!nav) return {present: false, navHeight: 0, target: name, paddingTop: 0};
  const h = Math.max(48, Math.ceil(nav.getBoundingClientRect().height));
  const pad = target ? (parseFloat(getComputedStyle(target).paddingTop) || 0) : 0;
  return {present: true, navHeight: h, target: name, paddingTop: pad};
}`

// ProbeResult is what the nav probe measured on one page.
type ProbeResult struct {
	Present    bool    `json:"present"`
	NavHeight  float64 `json:"navHeight"`
	Target     string  `json:"target"`
	PaddingTop float64 `json:"paddingTop"`
}

// Pass reports whether the nav is present and does not cover content.
func (p ProbeResult) Pass() bool {
	return p.Present && p.PaddingTop >= p.NavHeight
}

// VerifyResult is the verification outcome of one page.
type VerifyResult struct {
	Name   string      `json:"name"`
	Path   string      `json:"path"`
	Probe  ProbeResult `json:"probe"`
	Passed bool        `json:"passed"`
	Error  string      `json:"error,omitempty"`
}

// VerifyTarget names one page to verify.
type VerifyTarget struct {
	Name string
	Path string
}

// TargetsFor returns the entry pages of bundles.
func TargetsFor(bundles []Bundle) []VerifyTarget {
	targets := make([]VerifyTarget, len(bundles))
	for i, b := range bundles {
		targets[i] = VerifyTarget{Name: b.ShortName, Path: b.EntryPath()}
	}
	return targets
}

// pageProber abstracts the browser so the verifier can be tested without Chrome.
type pageProber interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
	Close() error
}

// Verifier checks built pages in headless Chrome.
type Verifier struct {
	pool   *proberPool
	logger *zap.Logger
}

// NewVerifier creates a Verifier with up to workers browsers.
// Browsers are launched on first use.
func NewVerifier(workers int, timeout time.Duration, logger *zap.Logger) *Verifier {
	if timeout <= 0 {
		timeout = DefaultVerifyTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{
		pool:   newProberPool(ResolvePoolSize(workers), func() pageProber { return newRodProber(timeout) }),
		logger: logger,
	}
}

// Close releases browser resources.
func (v *Verifier) Close() error {
	return v.pool.close()
}

// Verify probes every target with bounded parallelism. Results keep target
// order. A page that fails the check is reported in its result; the
// returned error wraps ErrVerify when any page failed, or the browser error
// when Chrome could not be started.
func (v *Verifier) Verify(ctx context.Context, targets []VerifyTarget) ([]VerifyResult, error) {
	results := make([]VerifyResult, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.pool.size)

	var mu sync.Mutex
	failed := 0

	for i, t := range targets {
		g.Go(func() error {
			pr, err := v.pool.acquire(gctx)
			if err != nil {
				return err
			}
			defer v.pool.release(pr)

			res := VerifyResult{Name: t.Name, Path: t.Path}
			probe, err := pr.Probe(gctx, t.Path)
			switch {
			case err != nil && isBrowserConnectErr(err):
				return err
			case err != nil:
				res.Error = err.Error()
			default:
				res.Probe = probe
				res.Passed = probe.Pass()
				if !res.Passed {
					res.Error = failureReason(probe)
				}
			}

			if !res.Passed {
				mu.Lock()
				failed++
				mu.Unlock()
				v.logger.Warn("verify failed", zap.String("page", t.Name), zap.String("reason", res.Error))
			} else {
				v.logger.Debug("verify ok", zap.String("page", t.Name),
					zap.Float64("navHeight", probe.NavHeight), zap.Float64("paddingTop", probe.PaddingTop))
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if failed > 0 {
		return results, fmt.Errorf("%w: %d of %d pages", ErrVerify, failed, len(targets))
	}
	return results, nil
}

func failureReason(p ProbeResult) string {
	if !p.Present {
		return "nav bar not present"
	}
	return fmt.Sprintf("padding-top %.0fpx on %s is less than nav height %.0fpx", p.PaddingTop, p.Target, p.NavHeight)
}

// rodProber implements pageProber using go-rod.
type rodProber struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
	mu       sync.Mutex
}

func newRodProber(timeout time.Duration) *rodProber {
	return &rodProber{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodProber) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l

	r.browser = rod.New().ControlURL(u)
	if err := r.browser.Connect(); err != nil {
		r.browser = nil
		r.killLauncher()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Probe opens path and evaluates the nav probe after load.
func (r *rodProber) Probe(ctx context.Context, path string) (ProbeResult, error) {
	if err := ctx.Err(); err != nil {
		return ProbeResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.ensureBrowser(); err != nil {
		return ProbeResult{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	page, err := r.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + filepath.ToSlash(abs)})
	if err != nil {
		return ProbeResult{}, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer func() { _ = page.Close() }()

	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = min(timeout, time.Until(deadline))
		if timeout <= 0 {
			return ProbeResult{}, context.DeadlineExceeded
		}
	}
	timed := page.Timeout(timeout)

	if err := timed.WaitLoad(); err != nil {
		return ProbeResult{}, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	obj, err := timed.Eval(navProbeJS)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("%w: probe: %v", ErrPageLoad, err)
	}

	var res ProbeResult
	if err := obj.Value.Unmarshal(&res); err != nil {
		return ProbeResult{}, fmt.Errorf("%w: decoding probe: %v", ErrPageLoad, err)
	}
	return res, nil
}

// Close closes the browser and kills its process group.
func (r *rodProber) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	r.killLauncher()
	return err
}

func (r *rodProber) killLauncher() {
	if r.launcher == nil {
		return
	}
	_ = process.KillGroup(r.launcher.PID())
	r.launcher.Kill()
	r.launcher = nil
}

func isBrowserConnectErr(err error) bool {
	return errors.Is(err, ErrBrowserConnect)
}
