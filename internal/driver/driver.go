// Package driver implements the project driver (C9): it discovers
// entrypoints under a project root, runs each in its own script host,
// plans and validates their artifacts, and writes the resulting files
// only after checking for cross-entrypoint output collisions.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sencbuild/senc/internal/artifact"
	"github.com/sencbuild/senc/internal/config"
	"github.com/sencbuild/senc/internal/hostops"
	"github.com/sencbuild/senc/internal/mainlocator"
	"github.com/sencbuild/senc/internal/pathpolicy"
	"github.com/sencbuild/senc/internal/planner"
	"github.com/sencbuild/senc/internal/resolver"
	"github.com/sencbuild/senc/internal/scripthost"
)

// ErrEntrypointsFailed reports that one or more entrypoints failed to
// run, resolve their imports, or produce a valid artifact set. Other
// entrypoints in the same run may still have succeeded and been
// written.
var ErrEntrypointsFailed = errors.New("one or more entrypoints failed")

// ErrOutputCollision reports that two different entrypoints planned to
// write the same output file. This is a whole-run fatal error: nothing
// from the run is written.
var ErrOutputCollision = errors.New("two entrypoints planned the same output path")

const entrypointSuffixTS = ".sen.ts"
const entrypointSuffixJS = ".sen.js"

// Request is the input to Execute: the project directory to compile,
// plus any CLI-level overrides of senc.config.toml's defaults.
type Request struct {
	InputDir  string
	Overrides config.Overrides
}

// DefaultRequest returns a Request with no overrides; InputDir must
// still be set by the caller.
func DefaultRequest() Request {
	return Request{}
}

// Summary reports how many entrypoints succeeded and failed in one run.
type Summary struct {
	Succeeded         int
	Failed            int
	FailedEntrypoints []string
}

func (s Summary) String() string {
	if s.Failed == 0 {
		return fmt.Sprintf("%d entrypoint(s) compiled", s.Succeeded)
	}
	return fmt.Sprintf("%d entrypoint(s) compiled, %d failed: %s", s.Succeeded, s.Failed, strings.Join(s.FailedEntrypoints, ", "))
}

// Driver compiles all entrypoints under one project root.
type Driver struct {
	concurrency int
}

// New builds a Driver that fans out across GOMAXPROCS entrypoints at
// once.
func New() *Driver {
	return &Driver{concurrency: runtime.GOMAXPROCS(0)}
}

type entrypoint struct {
	relPath string
	absPath string
}

type outcome struct {
	relPath string
	files   []planner.PlannedFile
	err     error
}

// Execute resolves req against senc.config.toml, discovers entrypoints
// under req.InputDir, and runs and plans them concurrently. If two
// entrypoints collided on an output path nothing is written; otherwise
// every planned file of each entrypoint that succeeded is written, even
// when other entrypoints failed. It returns a human-readable summary for
// the CLI to print and a non-nil error if anything failed.
func (d *Driver) Execute(ctx context.Context, req Request) (string, error) {
	policy, err := pathpolicy.New(req.InputDir)
	if err != nil {
		return "", err
	}

	cfg, err := config.Load(policy.Root())
	if err != nil {
		return "", err
	}
	resolved, err := req.Overrides.Apply(cfg)
	if err != nil {
		return "", err
	}

	outputRoot, err := policy.EnsureDir(resolved.OutputDir)
	if err != nil {
		return "", err
	}

	logger := hostops.NewLogger(resolved.LogLevel)

	entrypoints, err := discoverEntrypoints(policy.Root())
	if err != nil {
		return "", fmt.Errorf("discover entrypoints: %w", err)
	}
	if len(entrypoints) == 0 {
		logger.Warn(policy.Root(), "no entrypoints found")
		return "no entrypoints found", nil
	}

	// One Host and Resolver are shared across the fan-out below: both
	// hold only immutable references, and Host.Run builds a fresh
	// engine per call, so concurrent entrypoints never share mutable
	// engine state despite sharing the Go-level struct.
	res := resolver.New(policy)
	host := scripthost.New(policy, res, logger)

	outcomes, err := d.runAll(ctx, host, policy, outputRoot, entrypoints)
	if err != nil {
		return "", err
	}

	if err := detectCollisions(outcomes); err != nil {
		return "", err
	}

	summary, err := writeAll(policy, outcomes, logger)
	if err != nil {
		return summary.String(), err
	}
	return summary.String(), nil
}

func (d *Driver) runAll(ctx context.Context, host *scripthost.Host, policy *pathpolicy.Policy, outputRoot string, entrypoints []entrypoint) ([]outcome, error) {
	outcomes := make([]outcome, len(entrypoints))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i, ep := range entrypoints {
		i, ep := i, ep
		g.Go(func() error {
			outcomes[i] = runOne(gctx, host, policy, outputRoot, ep)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func runOne(ctx context.Context, host *scripthost.Host, policy *pathpolicy.Policy, outputRoot string, ep entrypoint) outcome {
	source, err := policy.ReadFile(ep.absPath)
	if err != nil {
		return outcome{relPath: ep.relPath, err: err}
	}
	if _, err := mainlocator.Find(source, ep.absPath); err != nil {
		return outcome{relPath: ep.relPath, err: fmt.Errorf("%s: %w", ep.relPath, err)}
	}

	val, err := host.Run(ctx, ep.relPath, ep.absPath)
	if err != nil {
		return outcome{relPath: ep.relPath, err: err}
	}

	arts, err := artifact.FromMainResult(val)
	if err != nil {
		return outcome{relPath: ep.relPath, err: err}
	}

	files, err := planner.Plan(policy, outputRoot, ep.relPath, filepath.Dir(ep.absPath), arts)
	if err != nil {
		return outcome{relPath: ep.relPath, err: err}
	}
	return outcome{relPath: ep.relPath, files: files}
}

func detectCollisions(outcomes []outcome) error {
	owner := make(map[string]string)
	var collisions []string
	for _, o := range outcomes {
		if o.err != nil {
			continue
		}
		for _, f := range o.files {
			if prior, ok := owner[f.AbsPath]; ok {
				collisions = append(collisions, fmt.Sprintf("%s and %s both write %s", prior, o.relPath, f.AbsPath))
				continue
			}
			owner[f.AbsPath] = o.relPath
		}
	}
	if len(collisions) > 0 {
		return fmt.Errorf("%w: %s", ErrOutputCollision, strings.Join(collisions, "; "))
	}
	return nil
}

func writeAll(policy *pathpolicy.Policy, outcomes []outcome, logger *hostops.Logger) (Summary, error) {
	summary := Summary{}
	for _, o := range outcomes {
		if o.err != nil {
			summary.Failed++
			summary.FailedEntrypoints = append(summary.FailedEntrypoints, o.relPath)
			logger.Error(o.relPath, o.err.Error())
			continue
		}

		failed := false
		for _, f := range o.files {
			if err := policy.WriteFile(f.AbsPath, f.Bytes); err != nil {
				failed = true
				logger.Error(o.relPath, err.Error())
				continue
			}
		}
		if failed {
			summary.Failed++
			summary.FailedEntrypoints = append(summary.FailedEntrypoints, o.relPath)
			continue
		}
		summary.Succeeded++
	}

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%w: %d of %d", ErrEntrypointsFailed, summary.Failed, summary.Failed+summary.Succeeded)
	}
	return summary, nil
}

func discoverEntrypoints(root string) ([]entrypoint, error) {
	var eps []entrypoint
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && (d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, entrypointSuffixTS) && !strings.HasSuffix(name, entrypointSuffixJS) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		eps = append(eps, entrypoint{relPath: filepath.ToSlash(rel), absPath: path})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(eps, func(i, j int) bool { return eps[i].relPath < eps[j].relPath })
	return eps, nil
}
