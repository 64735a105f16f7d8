package openmod

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MRtecno98/openmod/api"
	"github.com/go-resty/resty/v2"
)

// ErrPackageNotFound is returned by repository queries when no package
// matches the requested coordinates.
var ErrPackageNotFound = errors.New("package not found")

// PackageRepository is a remote package source the host can resolve
// and install packages from.
type PackageRepository interface {
	Provider() string

	QueryExact(ctx context.Context, name string, version *api.SemanticVersion, prerelease bool) (*api.PackageInfo, error)
	QueryLatest(ctx context.Context, name string, prerelease bool) (*api.PackageInfo, error)

	Search(ctx context.Context, query string, max int) ([]*api.PackageInfo, error)

	// Fetch opens the package payload for installation.
	Fetch(ctx context.Context, info *api.PackageInfo) (io.ReadCloser, error)
}

type RepositoryConstructor func(ctx context.Context, oc *OpenContext, opts map[string]string) PackageRepository

var repositories = make(map[string]RepositoryConstructor)

func RegisterRepository(provider string, constructor RepositoryConstructor) {
	repositories[provider] = constructor
}

type NamedRepository struct {
	RepositoryConfig
	PackageRepository
}

type LockRepository struct {
	PackageRepository

	Lock context.Context
}

type HTTPRepository struct {
	PackageRepository

	Endpoint   string
	HTTPClient *resty.Client
}

func NewHTTPRepository(endpoint string) *HTTPRepository {
	return &HTTPRepository{
		Endpoint:   endpoint,
		HTTPClient: resty.New().SetHeader("User-Agent", USER_AGENT).SetBaseURL(endpoint),
	}
}

func (rc *RepositoryConfig) MakeRepository(oc *OpenContext) (*NamedRepository, error) {
	if constr, ok := repositories[rc.Provider]; ok {
		return &NamedRepository{RepositoryConfig: *rc,
			PackageRepository: constr(context.TODO(), oc, rc.Options)}, nil
	} else {
		return nil, fmt.Errorf("unknown repository: %s", rc.Name)
	}
}
