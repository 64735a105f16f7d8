package openmod

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/MRtecno98/openmod/api"
)

// AutoUpdateSwitch is matched case insensitively against the raw
// command line; AutoUpdateEnv provides the same toggle without a flag.
const AutoUpdateSwitch = "OpenModAutoUpdate"
const AutoUpdateEnv = "OpenModAutoUpdate"

// ErrBootstrapPackageUnavailable aborts the whole bootstrap: a host
// package could neither be fetched fresh nor matched to a previously
// installed fallback, and a partial host is worse than none.
var ErrBootstrapPackageUnavailable = errors.New("host package unavailable")

// Bootstrapper acquires the host's own core packages before the
// application exists in the process image, then hands control to the
// freshly loaded runtime.
type Bootstrapper struct {
	Context *OpenContext

	WorkingDirectory string
	Args             []string
}

// AutoUpdateEnabled resolves the session auto update policy: explicit
// command line switch first, then the environment variable, disabled
// when both are absent or the variable does not parse as a boolean.
func AutoUpdateEnabled(args []string) bool {
	for _, arg := range args {
		if strings.EqualFold(strings.TrimLeft(arg, "-"), AutoUpdateSwitch) &&
			strings.HasPrefix(arg, "-") {
			return true
		}
	}

	if v, ok := os.LookupEnv(AutoUpdateEnv); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return false
}

// Bootstrap resolves, installs and loads every host package in the
// supplied order, later packages may depend on modules loaded by
// earlier ones. It returns the activated runtime as an opaque handle.
func (b *Bootstrapper) Bootstrap(ctx context.Context, packages []string,
	prerelease bool) (api.Runtime, error) {
	update := AutoUpdateEnabled(b.Args)
	c := b.Context

	var hostModules []api.Module

	for _, name := range packages {
		resolved, err := b.resolvePackage(ctx, name, update, prerelease)
		if err != nil {
			return nil, err
		}

		modules, err := c.LoadPackageModules(resolved)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBootstrapPackageUnavailable, name, err)
		}

		hostModules = append(hostModules, modules...)
	}

	params := &api.HostParameters{
		WorkingDirectory: b.WorkingDirectory,
		CommandLineArgs:  b.Args,
		PackageManager:   c,
	}

	return ActivateRuntime(ctx, hostModules, params)
}

func (b *Bootstrapper) resolvePackage(ctx context.Context, name string,
	update, prerelease bool) (InstalledPackage, error) {
	c := b.Context

	installed, hasInstalled := c.Latest(name)

	if hasInstalled && !update {
		return installed, nil
	}

	info, err := c.QueryLatest(ctx, name, prerelease)
	if err != nil {
		if !hasInstalled {
			return InstalledPackage{}, fmt.Errorf("%w: %s: %v",
				ErrBootstrapPackageUnavailable, name, err)
		}

		log.Printf("warn: could not query updates for %s, keeping %s: %v\n",
			name, installed.Version, err)
		return installed, nil
	}

	if hasInstalled && !info.Version.Newer(installed.Version) {
		return installed, nil
	}

	res := c.Install(ctx, info)
	if !res.Ok() {
		if hasInstalled {
			log.Printf("warn: failed to update %s, falling back to %s: %v\n",
				name, installed.Version, res.Reason)
			return installed, nil
		}

		return InstalledPackage{}, fmt.Errorf("%w: %s: %v",
			ErrBootstrapPackageUnavailable, name, res.Reason)
	}

	resolved, ok := c.Latest(name)
	if !ok {
		return InstalledPackage{}, fmt.Errorf("%w: %s: installed but not indexed",
			ErrBootstrapPackageUnavailable, name)
	}

	return resolved, nil
}
