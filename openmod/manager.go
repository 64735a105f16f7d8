package openmod

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/MRtecno98/openmod/api"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/exp/maps"
)

const PackagesFolder = "packages"

const SimilarityTreshold float64 = 0.51

// QueryExact asks every configured repository for an exact match of
// name and minimum version, first hit wins.
func (c *OpenContext) QueryExact(ctx context.Context, name string,
	version *api.SemanticVersion, prerelease bool) (*api.PackageInfo, error) {
	var gerr error

	for _, r := range c.Repositories {
		info, err := r.QueryExact(ctx, name, version, prerelease)
		if err != nil {
			if !errors.Is(err, ErrPackageNotFound) {
				gerr = multierror.Append(gerr, err)
			}

			continue
		}

		return info, nil
	}

	c.logSuggestion(ctx, name)

	if gerr != nil {
		return nil, gerr
	}

	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
}

func (c *OpenContext) QueryLatest(ctx context.Context, name string,
	prerelease bool) (*api.PackageInfo, error) {
	var gerr error

	for _, r := range c.Repositories {
		info, err := r.QueryLatest(ctx, name, prerelease)
		if err != nil {
			if !errors.Is(err, ErrPackageNotFound) {
				gerr = multierror.Append(gerr, err)
			}

			continue
		}

		return info, nil
	}

	if gerr != nil {
		return nil, gerr
	}

	return nil, fmt.Errorf("%w: %s", ErrPackageNotFound, name)
}

func (c *OpenContext) logSuggestion(ctx context.Context, name string) {
	var candidates []string

	for _, r := range maps.Values(c.Repositories) {
		res, err := r.Search(ctx, name, 5)
		if err != nil {
			continue
		}

		for _, info := range res {
			candidates = append(candidates, info.Name)
		}
	}

	if match, score := Suggest(name, Distinct(candidates)); score >= SimilarityTreshold {
		log.Printf("warn: package %s not found, did you mean %s?\n", name, match)
	}
}

// Install downloads a package payload into the install root and
// records it in the installed index. Asking for a version that is not
// newer than what is already installed reports NoUpdatesFound.
func (c *OpenContext) Install(ctx context.Context, info *api.PackageInfo) api.InstallResult {
	failed := func(err error) api.InstallResult {
		return api.InstallResult{Code: api.InstallFailed,
			Identity: info.PackageIdentity, Reason: err}
	}

	if cur, ok := c.Latest(info.Name); ok && !info.Version.Newer(cur.Version) {
		return api.InstallResult{Code: api.InstallNoUpdates, Identity: cur.PackageIdentity}
	}

	repo := c.RepositoryByNameOrProvider(info.Provider)
	if repo == nil {
		return failed(fmt.Errorf("no repository for provider %s", info.Provider))
	}

	payload, err := repo.Fetch(ctx, info)
	if err != nil {
		return failed(err)
	}

	defer payload.Close()

	data, err := io.ReadAll(payload)
	if err != nil {
		return failed(err)
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return failed(fmt.Errorf("malformed package payload: %w", err))
	}

	root := path.Join(PackagesFolder, info.Name, info.Version.String())
	if err := c.Fs.MkdirAll(root, 0755); err != nil {
		return failed(err)
	}

	var modules []string
	for _, f := range archive.File {
		if f.FileInfo().IsDir() {
			continue
		}

		target := path.Join(root, f.Name)

		if err := func() error {
			src, err := f.Open()
			if err != nil {
				return err
			}

			defer src.Close()

			return c.Fs.WriteReader(target, src)
		}(); err != nil {
			return failed(fmt.Errorf("extracting %s: %w", f.Name, err))
		}

		if strings.HasSuffix(f.Name, ".so") {
			modules = append(modules, target)
		}
	}

	// Repositories that serve registered instead of shared object
	// modules declare them on the package info directly
	if len(info.Modules) > 0 {
		modules = info.Modules
	}

	if err := c.Record(InstalledPackage{
		PackageIdentity: info.PackageIdentity,
		Provider:        info.Provider,
		Modules:         modules,
	}); err != nil {
		return failed(err)
	}

	return api.InstallResult{Code: api.InstallSuccess, Identity: info.PackageIdentity}
}

// LatestInstalled looks up the newest already installed identity for a
// package name.
func (c *OpenContext) LatestInstalled(name string) (api.PackageIdentity, bool) {
	pkg, ok := c.Latest(name)
	if !ok {
		return api.PackageIdentity{}, false
	}

	return pkg.PackageIdentity, true
}

// LoadPackageModules loads every module contained in an installed
// package, in the order the package declares them.
func (c *OpenContext) LoadPackageModules(pkg InstalledPackage) ([]api.Module, error) {
	modules := make([]api.Module, 0, len(pkg.Modules))

	for _, name := range pkg.Modules {
		mod, err := c.Loader.Open(name)
		if err != nil {
			return nil, fmt.Errorf("loading module %s of %s: %w", name, pkg.Coordinate(), err)
		}

		modules = append(modules, mod)
	}

	return modules, nil
}
