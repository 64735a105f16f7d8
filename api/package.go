package api

import "context"

// PackageIdentity identifies an installable or installed package,
// unique by name within an install root.
type PackageIdentity struct {
	Name    string
	Version SemanticVersion
}

func (id PackageIdentity) Coordinate() string {
	return id.Name + "@" + id.Version.String()
}

type InstallCode int

const (
	InstallSuccess InstallCode = iota
	InstallNoUpdates
	InstallFailed
)

// InstallResult is the tagged outcome of a package install request.
type InstallResult struct {
	Code     InstallCode
	Identity PackageIdentity
	Reason   error
}

// Ok reports whether the install left a usable package behind,
// which includes finding nothing newer to do.
func (r InstallResult) Ok() bool {
	return r.Code == InstallSuccess || r.Code == InstallNoUpdates
}

// PackageInfo describes a package a repository can install. Download
// is an opaque provider reference to the package payload.
type PackageInfo struct {
	PackageIdentity

	Provider    string
	Description string
	Download    string
	Modules     []string
}

// PackageManager resolves and installs packages and tracks what is
// already present in the install root. It is the handle the runtime
// receives at activation.
type PackageManager interface {
	QueryExact(ctx context.Context, name string, version *SemanticVersion, prerelease bool) (*PackageInfo, error)
	QueryLatest(ctx context.Context, name string, prerelease bool) (*PackageInfo, error)
	Install(ctx context.Context, info *PackageInfo) InstallResult
	LatestInstalled(name string) (PackageIdentity, bool)
}

// Module is one loaded code module of a package.
type Module interface {
	Name() string
	Lookup(symbol string) (any, error)
}

// Plugin is the capability contract a load unit's entry factory
// must satisfy to be accepted by the host.
type Plugin interface {
	GetName() string
}

// PluginFactorySymbol is the exported entry point a load unit's
// module must expose, with the PluginFactory signature.
const PluginFactorySymbol = "NewPlugin"

// PluginFactory is the fixed signature of a plugin entry symbol.
type PluginFactory func() Plugin
