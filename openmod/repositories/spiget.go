package repositories

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MRtecno98/openmod/api"
	"github.com/MRtecno98/openmod/openmod"
	"github.com/sunxyw/go-spiget/spiget"
)

// TODO: version listings over 100 entries need paging (https://spiget.org/)

const SpigetRepository = "spiget"

// Spiget resolves plugin library packages from the SpigotMC resource
// catalogue. Resources carry no module payloads, only jar libraries,
// so installed packages from this provider satisfy requirements
// without contributing loadable modules.
type Spiget struct {
	openmod.LockRepository

	Client *spiget.Client
}

type spigetVersion struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func init() {
	openmod.RegisterRepository(SpigetRepository,
		func(ctx context.Context, oc *openmod.OpenContext, opts map[string]string) openmod.PackageRepository {
			return NewSpigetRepository(ctx) // Go boilerplate
		})
}

func NewSpigetRepository(ctx context.Context) *Spiget {
	return &Spiget{
		LockRepository: openmod.LockRepository{Lock: ctx},
		Client:         spiget.NewClient(nil),
	}
}

func (r *Spiget) Provider() string {
	return SpigetRepository
}

func (r *Spiget) parseError(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("spiget: %w", err)
}

func (r *Spiget) resource(ctx context.Context, name string) (*spiget.Resource, error) {
	res, rsp, err := r.Client.Search.SearchResource(ctx, name,
		&spiget.ResourceSearchOptions{})

	if rsp != nil && rsp.StatusCode == 404 {
		return nil, openmod.ErrPackageNotFound
	} else if err != nil {
		return nil, r.parseError(err)
	}

	for _, candidate := range res {
		if strings.EqualFold(candidate.Name, name) {
			return candidate, nil
		}
	}

	return nil, openmod.ErrPackageNotFound
}

func (r *Spiget) versions(ctx context.Context, resource *spiget.Resource) ([]spigetVersion, error) {
	url := fmt.Sprintf("resources/%d/versions?size=100&sort=-releaseDate", resource.ID)

	req, err := r.Client.NewRequest("GET", url, nil)
	if err != nil {
		return nil, r.parseError(err)
	}

	var versions []spigetVersion
	if _, err := r.Client.Do(ctx, req, &versions); err != nil {
		return nil, r.parseError(err)
	}

	return versions, nil
}

func (r *Spiget) info(resource *spiget.Resource, ver spigetVersion,
	parsed api.SemanticVersion) *api.PackageInfo {
	return &api.PackageInfo{
		PackageIdentity: api.PackageIdentity{Name: resource.Name, Version: parsed},
		Provider:        SpigetRepository,
		Download:        fmt.Sprintf("resources/%d/versions/%d/download", resource.ID, ver.ID),
	}
}

func (r *Spiget) QueryExact(ctx context.Context, name string,
	version *api.SemanticVersion, prerelease bool) (*api.PackageInfo, error) {
	resource, err := r.resource(ctx, name)
	if err != nil {
		return nil, err
	}

	versions, err := r.versions(ctx, resource)
	if err != nil {
		return nil, err
	}

	for _, ver := range versions {
		parsed, err := api.ParseVersion(ver.Name)
		if err != nil || (parsed.Prerelease != "" && !prerelease) {
			continue
		}

		if version == nil || parsed.Compare(*version) == 0 {
			return r.info(resource, ver, parsed), nil
		}
	}

	return nil, openmod.ErrPackageNotFound
}

func (r *Spiget) QueryLatest(ctx context.Context, name string,
	prerelease bool) (*api.PackageInfo, error) {
	return r.QueryExact(ctx, name, nil, prerelease)
}

func (r *Spiget) Search(ctx context.Context, query string, max int) ([]*api.PackageInfo, error) {
	res, rsp, err := r.Client.Search.SearchResource(ctx, query,
		&spiget.ResourceSearchOptions{})

	if rsp != nil && rsp.StatusCode == 404 {
		return []*api.PackageInfo{}, nil
	} else if err != nil {
		return nil, r.parseError(err)
	}

	if len(res) > max {
		res = res[:max]
	}

	infos := make([]*api.PackageInfo, 0, len(res))
	for _, resource := range res {
		infos = append(infos, &api.PackageInfo{
			PackageIdentity: api.PackageIdentity{Name: resource.Name},
			Provider:        SpigetRepository,
			Download:        fmt.Sprintf("resources/%d/download", resource.ID),
		})
	}

	return infos, nil
}

func (r *Spiget) Fetch(ctx context.Context, info *api.PackageInfo) (io.ReadCloser, error) {
	req, err := r.Client.NewRequest("GET", info.Download, nil)
	if err != nil {
		return nil, r.parseError(err)
	}

	var buf bytes.Buffer
	if _, err := r.Client.Do(ctx, req, &buf); err != nil {
		return nil, r.parseError(err)
	}

	return io.NopCloser(&buf), nil
}

// GetResource fetches a resource by its numeric identifier, for
// callers that already know it.
func (r *Spiget) GetResource(ctx context.Context, identifier string) (*spiget.Resource, error) {
	i, err := strconv.Atoi(identifier)
	if err != nil {
		return nil, r.parseError(err)
	}

	res, _, err := r.Client.Resources.Get(ctx, i)
	if err != nil {
		return nil, r.parseError(err)
	}

	return res, nil
}
