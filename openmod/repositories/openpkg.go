// Package repositories implements the remote package sources the host
// resolves and installs packages from.
package repositories

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/MRtecno98/openmod/api"
	"github.com/MRtecno98/openmod/openmod"
	"github.com/go-resty/resty/v2"
)

const OpenPkgEndpoint = "https://packages.openmod.dev/v1"

const OpenPkgRepository = "openpkg"

type OpenPkgDocument struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	Versions []OpenPkgVersion `json:"versions"`
}

type OpenPkgVersion struct {
	Version    string   `json:"version"`
	Prerelease bool     `json:"prerelease"`
	Download   string   `json:"download"`
	Modules    []string `json:"modules"`
}

type OpenPkgSummary struct {
	Hits []OpenPkgDocument `json:"hits"`

	Total int `json:"total"`
}

type OpenPkg struct {
	openmod.HTTPRepository
	openmod.LockRepository
}

func init() {
	openmod.RegisterRepository(OpenPkgRepository,
		func(ctx context.Context, oc *openmod.OpenContext, opts map[string]string) openmod.PackageRepository {
			endpoint := OpenPkgEndpoint
			if v, ok := opts["endpoint"]; ok {
				endpoint = v
			}

			return NewOpenPkgRepository(ctx, endpoint)
		})
}

func NewOpenPkgRepository(lock context.Context, endpoint string) *OpenPkg {
	return &OpenPkg{
		HTTPRepository: *openmod.NewHTTPRepository(endpoint),
		LockRepository: openmod.LockRepository{Lock: lock},
	}
}

func (r *OpenPkg) Provider() string {
	return OpenPkgRepository
}

func (r *OpenPkg) makreq(ctx context.Context) *resty.Request {
	if ctx == nil {
		ctx = r.Lock
	}

	return r.HTTPClient.R().SetContext(ctx)
}

func (r *OpenPkg) parseError(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("openpkg: %w", err)
}

func (r *OpenPkg) get(ctx context.Context, name string) (*OpenPkgDocument, error) {
	var doc OpenPkgDocument

	res, err := r.makreq(ctx).SetResult(&doc).Get("/packages/" + name)
	if err != nil {
		return nil, r.parseError(err)
	}

	if res.StatusCode() == 404 {
		return nil, openmod.ErrPackageNotFound
	} else if res.StatusCode() != 200 {
		return nil, r.parseError(fmt.Errorf("unexpected status %d for %s",
			res.StatusCode(), name))
	}

	return res.Result().(*OpenPkgDocument), nil
}

func (r *OpenPkg) info(doc *OpenPkgDocument, ver OpenPkgVersion) (*api.PackageInfo, error) {
	parsed, err := api.ParseVersion(ver.Version)
	if err != nil {
		return nil, r.parseError(fmt.Errorf("package %s: %w", doc.Name, err))
	}

	return &api.PackageInfo{
		PackageIdentity: api.PackageIdentity{Name: doc.Name, Version: parsed},
		Provider:        OpenPkgRepository,
		Description:     doc.Description,
		Download:        ver.Download,
		Modules:         ver.Modules,
	}, nil
}

func (r *OpenPkg) QueryExact(ctx context.Context, name string,
	version *api.SemanticVersion, prerelease bool) (*api.PackageInfo, error) {
	if version == nil {
		return r.QueryLatest(ctx, name, prerelease)
	}

	doc, err := r.get(ctx, name)
	if err != nil {
		return nil, err
	}

	for _, ver := range doc.Versions {
		parsed, err := api.ParseVersion(ver.Version)
		if err != nil {
			continue
		}

		if parsed.Compare(*version) == 0 && (prerelease || !ver.Prerelease) {
			return r.info(doc, ver)
		}
	}

	return nil, openmod.ErrPackageNotFound
}

func (r *OpenPkg) QueryLatest(ctx context.Context, name string,
	prerelease bool) (*api.PackageInfo, error) {
	doc, err := r.get(ctx, name)
	if err != nil {
		return nil, err
	}

	type candidate struct {
		parsed api.SemanticVersion
		raw    OpenPkgVersion
	}

	candidates := make([]candidate, 0, len(doc.Versions))
	for _, ver := range doc.Versions {
		parsed, err := api.ParseVersion(ver.Version)
		if err != nil || (ver.Prerelease && !prerelease) {
			continue
		}

		candidates = append(candidates, candidate{parsed: parsed, raw: ver})
	}

	if len(candidates) == 0 {
		return nil, openmod.ErrPackageNotFound
	}

	sort.Slice(candidates, func(a, b int) bool {
		return candidates[a].parsed.Newer(candidates[b].parsed)
	})

	return r.info(doc, candidates[0].raw)
}

func (r *OpenPkg) Search(ctx context.Context, query string, max int) ([]*api.PackageInfo, error) {
	var summary OpenPkgSummary

	res, err := r.makreq(ctx).SetResult(&summary).
		SetQueryParam("q", query).
		SetQueryParam("limit", fmt.Sprint(max)).
		Get("/search")

	if err != nil {
		return nil, r.parseError(err)
	}

	if res.StatusCode() == 404 {
		return []*api.PackageInfo{}, nil
	} else if res.StatusCode() != 200 {
		return nil, r.parseError(fmt.Errorf("unexpected status %d", res.StatusCode()))
	}

	hits := res.Result().(*OpenPkgSummary).Hits

	infos := make([]*api.PackageInfo, 0, len(hits))
	for _, doc := range hits {
		if len(doc.Versions) == 0 {
			continue
		}

		info, err := r.info(&doc, doc.Versions[0])
		if err != nil {
			continue
		}

		infos = append(infos, info)
	}

	return infos, nil
}

func (r *OpenPkg) Fetch(ctx context.Context, info *api.PackageInfo) (io.ReadCloser, error) {
	res, err := r.makreq(ctx).SetDoNotParseResponse(true).Get(info.Download)
	if err != nil {
		return nil, r.parseError(err)
	}

	if res.StatusCode() != 200 {
		res.RawBody().Close()
		return nil, r.parseError(fmt.Errorf("download failed with status %d for %s",
			res.StatusCode(), info.Coordinate()))
	}

	return res.RawBody(), nil
}
