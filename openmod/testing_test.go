package openmod

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/MRtecno98/afero"
	"github.com/MRtecno98/openmod/api"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// fakeRepository serves an in-memory package catalogue and records
// every payload fetch it performs.
type fakeRepository struct {
	provider string
	packages []*api.PackageInfo
	payloads map[string][]byte

	fetches   []string
	failQuery bool
}

func (r *fakeRepository) Provider() string {
	return r.provider
}

func (r *fakeRepository) QueryExact(ctx context.Context, name string,
	version *api.SemanticVersion, prerelease bool) (*api.PackageInfo, error) {
	if r.failQuery {
		return nil, fmt.Errorf("repository offline")
	}

	if version == nil {
		return r.QueryLatest(ctx, name, prerelease)
	}

	for _, p := range r.packages {
		if p.Name == name && p.Version.Compare(*version) == 0 &&
			(prerelease || p.Version.Prerelease == "") {
			return p, nil
		}
	}

	return nil, ErrPackageNotFound
}

func (r *fakeRepository) QueryLatest(ctx context.Context, name string,
	prerelease bool) (*api.PackageInfo, error) {
	if r.failQuery {
		return nil, fmt.Errorf("repository offline")
	}

	var best *api.PackageInfo
	for _, p := range r.packages {
		if p.Name != name || (!prerelease && p.Version.Prerelease != "") {
			continue
		}

		if best == nil || p.Version.Newer(best.Version) {
			best = p
		}
	}

	if best == nil {
		return nil, ErrPackageNotFound
	}

	return best, nil
}

func (r *fakeRepository) Search(ctx context.Context, query string, max int) ([]*api.PackageInfo, error) {
	var res []*api.PackageInfo
	for _, p := range r.packages {
		if len(res) >= max {
			break
		}

		if strings.Contains(p.Name, query) {
			res = append(res, p)
		}
	}

	return res, nil
}

func (r *fakeRepository) Fetch(ctx context.Context, info *api.PackageInfo) (io.ReadCloser, error) {
	payload, ok := r.payloads[info.Coordinate()]
	if !ok {
		return nil, fmt.Errorf("no payload for %s", info.Coordinate())
	}

	r.fetches = append(r.fetches, info.Coordinate())

	return io.NopCloser(bytes.NewReader(payload)), nil
}

func repositoryPackage(name, version string, modules ...string) *api.PackageInfo {
	return &api.PackageInfo{
		PackageIdentity: api.PackageIdentity{
			Name:    name,
			Version: api.MustParseVersion(version),
		},
		Provider: "fake",
		Modules:  modules,
	}
}

func zipPayload(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)

		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	return buf.Bytes()
}

func newTestContext(t *testing.T, repo *fakeRepository) *OpenContext {
	t.Helper()

	index := NewIndexFile()

	oc := &OpenContext{
		Context:        Context{Name: "test", URL: "test"},
		InstalledIndex: index,
		Fs:             afero.Afero{Fs: afero.NewMemMapFs()},
		LocalConfig:    &Config{},
		Repositories:   make(map[string]NamedRepository),
	}

	oc.Loader = NewHostLoader(oc)
	oc.Store = NewAssemblyStore(oc)

	require.NoError(t, index.InitializeIndex(oc))

	if repo != nil {
		oc.Repositories[repo.provider] = NamedRepository{
			RepositoryConfig:  RepositoryConfig{Name: repo.provider, Provider: repo.provider},
			PackageRepository: repo,
		}
	}

	return oc
}

// fakeUnit is a scripted load unit for store tests.
type fakeUnit struct {
	id, name, version string

	descriptor *UnitDescriptor
	members    []string
	memberErr  error

	plugin  api.Plugin
	instErr error
}

func validUnit(id string) *fakeUnit {
	return &fakeUnit{
		id: id, name: id, version: "1.0.0",
		descriptor: &UnitDescriptor{ID: id, Name: id, Version: "1.0.0"},
		members:    []string{"Handler"},
		plugin:     fakePlugin{name: id},
	}
}

func (u *fakeUnit) GetName() string             { return u.name }
func (u *fakeUnit) GetIdentifier() string       { return u.id }
func (u *fakeUnit) GetVersion() string          { return u.version }
func (u *fakeUnit) Descriptor() *UnitDescriptor { return u.descriptor }
func (u *fakeUnit) Members() ([]string, error)  { return u.members, u.memberErr }

func (u *fakeUnit) Instantiate() (api.Plugin, error) {
	return u.plugin, u.instErr
}

type fakePlugin struct {
	name string
}

func (p fakePlugin) GetName() string { return p.name }

type fakeSource struct {
	units []LoadUnit
	err   error

	dropped []string
}

func (s *fakeSource) Units(ctx context.Context) ([]LoadUnit, error) {
	return s.units, s.err
}

func (s *fakeSource) Drop(unit LoadUnit) {
	s.dropped = append(s.dropped, unit.GetIdentifier())
}

// mapLoader resolves modules from a fixed table.
type mapLoader map[string]api.Module

func (l mapLoader) Open(name string) (api.Module, error) {
	if mod, ok := l[name]; ok {
		return mod, nil
	}

	return nil, fmt.Errorf("could not load file or module '%s'", name)
}

// fakeRuntime records its activation.
type fakeRuntime struct {
	initialized bool
	modules     []api.Module
	params      *api.HostParameters

	initErr error
}

func (r *fakeRuntime) Init(ctx context.Context, modules []api.Module,
	params *api.HostParameters) error {
	if r.initErr != nil {
		return r.initErr
	}

	r.initialized = true
	r.modules = modules
	r.params = params

	return nil
}

func runtimeModule(rt api.Runtime) *RegisteredModule {
	return &RegisteredModule{
		ModuleName: api.RuntimeModuleName,
		Symbols: map[string]any{
			api.RuntimeFactorySymbol: api.RuntimeFactory(func() api.Runtime { return rt }),
		},
	}
}
