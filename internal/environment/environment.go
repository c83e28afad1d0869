// Package environment implements the Environment Provisioner (§4.3): it
// creates or adopts one shared interpreter root that every Project's
// pip_install step installs into.
package environment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/ptrgo/ptr/internal/errs"
	"github.com/ptrgo/ptr/internal/step"
)

// Environment is one isolated interpreter root (§3).
type Environment struct {
	Root               string
	InterpreterPath    string
	InstallerPath      string
	Owned              bool
	MirrorURL          string
	SystemSitePackages bool
}

// Options configures provisioning (§4.3).
type Options struct {
	AdoptPath          string
	MirrorURL          string
	SystemSitePackages bool
	BaseRequirements   []string
	Timeout            time.Duration
	BaseDir            string
}

// interpreterPaths returns the venv-relative interpreter and installer
// paths for the current platform.
func interpreterPaths(root string) (interpreter, installer string) {
	if runtime.GOOS == "windows" {
		return filepath.Join(root, "Scripts", "python.exe"), filepath.Join(root, "Scripts", "pip.exe")
	}
	return filepath.Join(root, "bin", "python3"), filepath.Join(root, "bin", "pip3")
}

// Provision creates (or adopts) the run's single shared Environment.
// Failures here are always fatal and must abort the run before any
// Pipeline Runner starts (§4.3, §7 ProvisionError).
func Provision(ctx context.Context, opts Options) (*Environment, error) {
	if opts.AdoptPath != "" {
		return adopt(opts.AdoptPath, opts.MirrorURL, opts.SystemSitePackages)
	}
	return create(ctx, opts)
}

func adopt(path, mirror string, systemSite bool) (*Environment, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, &errs.ProvisionError{Reason: "adopted environment path does not exist", Err: err}
	}
	interpreter, installer := interpreterPaths(path)
	if _, err := os.Stat(interpreter); err != nil {
		return nil, &errs.ProvisionError{Reason: "adopted environment missing interpreter", Err: err}
	}
	if _, err := os.Stat(installer); err != nil {
		return nil, &errs.ProvisionError{Reason: "adopted environment missing installer", Err: err}
	}
	return &Environment{
		Root:               path,
		InterpreterPath:    interpreter,
		InstallerPath:      installer,
		Owned:              false,
		MirrorURL:          mirror,
		SystemSitePackages: systemSite,
	}, nil
}

func create(ctx context.Context, opts Options) (*Environment, error) {
	root, err := generateRoot(opts)
	if err != nil {
		return nil, &errs.ProvisionError{Reason: "generating environment root", Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(root), 0o755); err != nil {
		return nil, &errs.ProvisionError{Reason: "creating environment parent directory", Err: err}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	venvArgv := []string{"python3", "-m", "venv"}
	if opts.SystemSitePackages {
		venvArgv = append(venvArgv, "--system-site-packages")
	}
	venvArgv = append(venvArgv, "{root}")

	eng := step.NewEngine(opts.BaseDir, nil)
	createSpec := step.Spec{Name: "venv_create", ArgvTemplate: venvArgv, Timeout: timeout, Required: true}
	out, err := eng.Run(ctx, createSpec, step.Vars{"root": root})
	if err != nil || out.Classification != step.ClassPass {
		return nil, &errs.ProvisionError{Reason: "creating virtual environment", Err: fmt.Errorf("%s", out.Output)}
	}

	interpreter, installer := interpreterPaths(root)
	env := &Environment{
		Root:               root,
		InterpreterPath:    interpreter,
		InstallerPath:      installer,
		Owned:              true,
		MirrorURL:          opts.MirrorURL,
		SystemSitePackages: opts.SystemSitePackages,
	}

	upgradeArgv := []string{"{installer}", "install", "--upgrade", "pip"}
	if opts.MirrorURL != "" {
		upgradeArgv = append(upgradeArgv, "--index-url", opts.MirrorURL)
	}
	upgradeSpec := step.Spec{Name: "pip_upgrade", ArgvTemplate: upgradeArgv, Timeout: timeout, Required: true}
	out, err = eng.Run(ctx, upgradeSpec, step.Vars{"installer": installer})
	if err != nil || out.Classification != step.ClassPass {
		os.RemoveAll(root)
		return nil, &errs.ProvisionError{Reason: "upgrading installer", Err: fmt.Errorf("%s", out.Output)}
	}

	if len(opts.BaseRequirements) > 0 {
		installArgv := []string{"{installer}", "install"}
		if opts.MirrorURL != "" {
			installArgv = append(installArgv, "--index-url", opts.MirrorURL)
		}
		installArgv = append(installArgv, opts.BaseRequirements...)
		installSpec := step.Spec{Name: "install_base_requirements", ArgvTemplate: installArgv, Timeout: timeout, Required: true}
		out, err = eng.Run(ctx, installSpec, step.Vars{"installer": installer})
		if err != nil || out.Classification != step.ClassPass {
			os.RemoveAll(root)
			return nil, &errs.ProvisionError{Reason: "installing base requirements", Err: fmt.Errorf("%s", out.Output)}
		}
	}

	return env, nil
}

// generateRoot derives a deterministic-plus-random temp directory name from
// the run's inputs, so repeated debugging runs against the same inputs are
// easy to correlate in logs without colliding on disk (§4.3).
func generateRoot(opts Options) (string, error) {
	reqs := append([]string(nil), opts.BaseRequirements...)
	sort.Strings(reqs)
	digest := xxhash.Sum64String(opts.BaseDir + "|" + opts.MirrorURL + "|" + strings.Join(reqs, ","))

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	name := fmt.Sprintf("ptr-env-%016x-%s", digest, hex.EncodeToString(suffix))
	return filepath.Join(os.TempDir(), name), nil
}

// Release deletes the environment root when it was created for this run and
// keep is false. Adopted environments are never deleted (§4.3). Callers
// invoke Release on every exit path, including cancellation and panic
// recovery.
func Release(env *Environment, keep bool) error {
	if env == nil || !env.Owned || keep {
		return nil
	}
	return os.RemoveAll(env.Root)
}
