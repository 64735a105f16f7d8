package sources

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/MRtecno98/afero"
	"github.com/MRtecno98/openmod/api"
	"github.com/MRtecno98/openmod/openmod"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoDescriptor = `
id: demo
name: Demo Plugin
version: 1.0.0
entry: demo.module
exports:
  - Handler
provides:
  - game
requires:
  - name: libalpha
    version: 1.0.0.0
`

type testPlugin struct{}

func (testPlugin) GetName() string { return "demo" }

type tableLoader map[string]api.Module

func (l tableLoader) Open(name string) (api.Module, error) {
	if mod, ok := l[name]; ok {
		return mod, nil
	}

	return nil, fmt.Errorf("could not load file or module '%s'", name)
}

func demoModule() *openmod.RegisteredModule {
	return &openmod.RegisteredModule{
		ModuleName: "demo.module",
		Symbols: map[string]any{
			"Handler": struct{}{},
			api.PluginFactorySymbol: api.PluginFactory(func() api.Plugin {
				return testPlugin{}
			}),
		},
	}
}

func newSourceContext(t *testing.T) *openmod.OpenContext {
	t.Helper()

	index := openmod.NewIndexFile()

	oc := &openmod.OpenContext{
		Context:        openmod.Context{Name: "test", URL: "test"},
		InstalledIndex: index,
		Fs:             afero.Afero{Fs: afero.NewMemMapFs()},
		LocalConfig:    &openmod.Config{},
		Loader:         tableLoader{"demo.module": demoModule()},
	}

	require.NoError(t, index.InitializeIndex(oc))
	require.NoError(t, oc.Fs.MkdirAll(oc.PluginsFolder(), 0755))

	return oc
}

func writeArchive(t *testing.T, oc *openmod.OpenContext, name string, files map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for fname, content := range files {
		f, err := w.Create(fname)
		require.NoError(t, err)

		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())

	require.NoError(t, oc.Fs.WriteFile(
		oc.PluginsFolder()+"/"+name, buf.Bytes(), 0644))
}

func installLibrary(t *testing.T, oc *openmod.OpenContext, name, version string) {
	t.Helper()

	require.NoError(t, oc.Record(openmod.InstalledPackage{
		PackageIdentity: api.PackageIdentity{
			Name:    name,
			Version: api.MustParseVersion(version),
		},
		Provider: "test",
	}))
}

func TestUnitsScansPluginFolder(t *testing.T) {
	oc := newSourceContext(t)

	writeArchive(t, oc, "demo.omod", map[string]string{DescriptorName: demoDescriptor})
	writeArchive(t, oc, "other.omod", map[string]string{DescriptorName: demoDescriptor})

	require.NoError(t, oc.Fs.WriteFile(
		oc.PluginsFolder()+"/readme.txt", []byte("not a plugin"), 0644))
	require.NoError(t, oc.Fs.MkdirAll(oc.PluginsFolder()+"/data", 0755))

	source := NewDirectorySource(oc, nil)

	units, err := source.Units(context.Background())
	require.NoError(t, err)
	assert.Len(t, units, 2)
}

func TestUnitsMissingFolder(t *testing.T) {
	oc := newSourceContext(t)
	require.NoError(t, oc.Fs.RemoveAll(oc.PluginsFolder()))

	source := NewDirectorySource(oc, nil)

	_, err := source.Units(context.Background())
	assert.Error(t, err)
}

func TestArchiveUnitDescriptor(t *testing.T) {
	oc := newSourceContext(t)

	writeArchive(t, oc, "demo.omod", map[string]string{DescriptorName: demoDescriptor})
	writeArchive(t, oc, "bare.omod", map[string]string{"payload.bin": "code"})

	source := NewDirectorySource(oc, nil)

	units, err := source.Units(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2)

	byID := make(map[string]openmod.LoadUnit)
	for _, u := range units {
		byID[u.GetIdentifier()] = u
	}

	demo := byID["demo"]
	require.NotNil(t, demo)
	require.NotNil(t, demo.Descriptor())
	assert.Equal(t, "Demo Plugin", demo.GetName())
	assert.Equal(t, "1.0.0", demo.GetVersion())
	assert.Equal(t, "demo.module", demo.Descriptor().Entry)

	// Archives without a descriptor fall back to their file name
	bare := byID["bare.omod"]
	require.NotNil(t, bare)
	assert.Nil(t, bare.Descriptor())
}

func TestMembersResolvesExports(t *testing.T) {
	oc := newSourceContext(t)
	installLibrary(t, oc, "libalpha", "1.2.0")

	writeArchive(t, oc, "demo.omod", map[string]string{DescriptorName: demoDescriptor})

	source := NewDirectorySource(oc, nil)

	units, err := source.Units(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 1)

	members, err := units[0].Members()
	require.NoError(t, err)
	assert.Equal(t, []string{"Handler"}, members)
}

func TestMembersWithoutDescriptor(t *testing.T) {
	oc := newSourceContext(t)

	writeArchive(t, oc, "bare.omod", map[string]string{"payload.bin": "code"})

	source := NewDirectorySource(oc, nil)

	units, err := source.Units(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 1)

	_, err = units[0].Members()
	require.Error(t, err)

	// Not a resolution fault, there was nothing to resolve
	var fault *openmod.LoadFault
	assert.False(t, errors.As(err, &fault))
}

func TestMembersMissingRequirement(t *testing.T) {
	oc := newSourceContext(t)

	writeArchive(t, oc, "demo.omod", map[string]string{DescriptorName: demoDescriptor})

	source := NewDirectorySource(oc, nil)

	units, err := source.Units(context.Background())
	require.NoError(t, err)

	_, err = units[0].Members()
	require.Error(t, err)

	var fault *openmod.LoadFault
	require.ErrorAs(t, err, &fault)

	missing := openmod.ExtractMissingDependencies(fault.Inner)
	require.Contains(t, missing, "libalpha")
	assert.Equal(t, "1.0.0", missing["libalpha"].String())
}

func TestMembersOutdatedRequirement(t *testing.T) {
	oc := newSourceContext(t)
	installLibrary(t, oc, "libalpha", "0.5.0")

	writeArchive(t, oc, "demo.omod", map[string]string{DescriptorName: demoDescriptor})

	source := NewDirectorySource(oc, nil)

	units, err := source.Units(context.Background())
	require.NoError(t, err)

	_, err = units[0].Members()
	require.Error(t, err)

	var fault *openmod.LoadFault
	require.ErrorAs(t, err, &fault)

	missing := openmod.ExtractMissingDependencies(fault.Inner)
	assert.Contains(t, missing, "libalpha")
}

func TestInstantiate(t *testing.T) {
	oc := newSourceContext(t)
	installLibrary(t, oc, "libalpha", "1.2.0")

	writeArchive(t, oc, "demo.omod", map[string]string{DescriptorName: demoDescriptor})

	source := NewDirectorySource(oc, []string{"game", "web"})

	units, err := source.Units(context.Background())
	require.NoError(t, err)

	_, err = units[0].Members()
	require.NoError(t, err)

	plugin, err := units[0].Instantiate()
	require.NoError(t, err)
	assert.Equal(t, "demo", plugin.GetName())
}

func TestInstantiateCapabilityMismatch(t *testing.T) {
	oc := newSourceContext(t)
	installLibrary(t, oc, "libalpha", "1.2.0")

	writeArchive(t, oc, "demo.omod", map[string]string{DescriptorName: demoDescriptor})

	source := NewDirectorySource(oc, []string{"web"})

	units, err := source.Units(context.Background())
	require.NoError(t, err)

	_, err = units[0].Members()
	require.NoError(t, err)

	_, err = units[0].Instantiate()
	assert.Error(t, err)
}

func TestInstantiateUnresolved(t *testing.T) {
	oc := newSourceContext(t)

	writeArchive(t, oc, "demo.omod", map[string]string{DescriptorName: demoDescriptor})

	source := NewDirectorySource(oc, nil)

	units, err := source.Units(context.Background())
	require.NoError(t, err)

	_, err = units[0].Instantiate()
	assert.Error(t, err)
}

func TestDropExcludesUnit(t *testing.T) {
	oc := newSourceContext(t)

	writeArchive(t, oc, "demo.omod", map[string]string{DescriptorName: demoDescriptor})
	writeArchive(t, oc, "other.omod", map[string]string{DescriptorName: demoDescriptor})

	source := NewDirectorySource(oc, nil)

	units, err := source.Units(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2)

	source.Drop(units[0])

	units, err = source.Units(context.Background())
	require.NoError(t, err)
	assert.Len(t, units, 1)
}
