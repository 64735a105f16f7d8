// Package sources provides the plugin source providers feeding the
// assembly store with candidate load units.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/MRtecno98/afero"
	"github.com/MRtecno98/openmod/api"
	"github.com/MRtecno98/openmod/openmod"
	"github.com/juliangruber/go-intersect"
	"gopkg.in/yaml.v3"
)

const DescriptorName = "openmod.plugin.yml"
const ArchiveExtension = ".omod"

// DirectorySource scans a plugins folder for plugin archives and
// yields one candidate unit per archive.
type DirectorySource struct {
	Context *openmod.OpenContext
	Folder  string

	// Capabilities the host accepts, empty means everything.
	Capabilities []string

	mu      sync.Mutex
	dropped map[string]bool
}

func NewDirectorySource(oc *openmod.OpenContext, capabilities []string) *DirectorySource {
	return &DirectorySource{
		Context:      oc,
		Folder:       oc.PluginsFolder(),
		Capabilities: capabilities,
		dropped:      make(map[string]bool),
	}
}

func (s *DirectorySource) Units(ctx context.Context) ([]openmod.LoadUnit, error) {
	ok, err := s.Context.Fs.DirExists(s.Folder)
	if err != nil {
		return nil, err
	} else if !ok {
		return nil, errors.New("invalid install layout: plugins folder does not exist")
	}

	files, err := s.Context.Fs.ReadDir(s.Folder)
	if err != nil {
		return nil, err
	}

	units := make([]openmod.LoadUnit, 0)

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ArchiveExtension) {
			continue
		}

		s.mu.Lock()
		skip := s.dropped[file.Name()]
		s.mu.Unlock()

		if skip {
			continue
		}

		units = append(units, s.openUnit(file.Name()))
	}

	return units, nil
}

// Drop excludes a unit from subsequent passes of this source.
func (s *DirectorySource) Drop(unit openmod.LoadUnit) {
	if archive, ok := unit.(*ArchiveUnit); ok {
		s.mu.Lock()
		s.dropped[archive.File] = true
		s.mu.Unlock()
	}
}

func (s *DirectorySource) openUnit(name string) *ArchiveUnit {
	unit := &ArchiveUnit{source: s, File: name}

	file, err := s.Context.Fs.Open(s.Folder + "/" + name)
	if err != nil {
		log.Printf("warn: cannot open plugin archive %s: %v\n", name, err)
		return unit
	}

	archive, err := openmod.OpenArchive(file)
	if err != nil {
		log.Printf("warn: plugin archive %s is not readable: %v\n", name, err)
		return unit
	}

	unit.archive = archive
	unit.descriptor = readDescriptor(archive)

	return unit
}

func readDescriptor(archive *afero.Afero) *openmod.UnitDescriptor {
	descriptor, err := archive.Open(DescriptorName)
	if err != nil {
		return nil
	}

	defer descriptor.Close()

	data, err := io.ReadAll(descriptor)
	if err != nil {
		return nil
	}

	var desc openmod.UnitDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil || desc.ID == "" {
		return nil
	}

	return &desc
}

// ArchiveUnit is one plugin archive of the plugins folder.
type ArchiveUnit struct {
	File string

	source     *DirectorySource
	archive    *afero.Afero
	descriptor *openmod.UnitDescriptor

	module  api.Module
	members []string
}

func (u *ArchiveUnit) GetName() string {
	if u.descriptor != nil && u.descriptor.Name != "" {
		return u.descriptor.Name
	}

	return u.File
}

func (u *ArchiveUnit) GetIdentifier() string {
	if u.descriptor != nil {
		return u.descriptor.ID
	}

	return u.File
}

func (u *ArchiveUnit) GetVersion() string {
	if u.descriptor != nil {
		return u.descriptor.Version
	}

	return ""
}

func (u *ArchiveUnit) Descriptor() *openmod.UnitDescriptor {
	return u.descriptor
}

// Members resolves the unit against the installed libraries and its
// entry module, returning the exported member names. Unresolvable
// libraries surface as a LoadFault carrying one diagnostic per
// missing member, in the loader's message formats.
func (u *ArchiveUnit) Members() ([]string, error) {
	if u.members != nil {
		return u.members, nil
	}

	if u.descriptor == nil {
		return nil, fmt.Errorf("unit %s has no descriptor", u.GetName())
	}

	ctx := u.source.Context

	var inner []error
	for _, req := range u.descriptor.Requires {
		required, err := api.ParseVersion(req.Version)
		if err != nil {
			inner = append(inner, fmt.Errorf("malformed requirement %s: %w", req.Name, err))
			continue
		}

		pkg, ok := ctx.Latest(req.Name)
		if !ok {
			inner = append(inner, fmt.Errorf(
				"could not load file or module '%s, version=%s': no such file",
				req.Name, req.Version))
		} else if required.Newer(pkg.Version) {
			inner = append(inner, fmt.Errorf(
				"could not load type '%s' from module '%s, version=%s'",
				u.descriptor.Entry, req.Name, req.Version))
		}
	}

	if len(inner) > 0 {
		return nil, &openmod.LoadFault{Unit: u.GetName(), Inner: inner}
	}

	module, err := ctx.Loader.Open(u.descriptor.Entry)
	if err != nil {
		return nil, &openmod.LoadFault{Unit: u.GetName(), Inner: []error{err}}
	}

	members := make([]string, 0, len(u.descriptor.Exports))
	for _, export := range u.descriptor.Exports {
		if _, err := module.Lookup(export); err != nil {
			inner = append(inner, err)
			continue
		}

		members = append(members, export)
	}

	if len(inner) > 0 {
		return nil, &openmod.LoadFault{Unit: u.GetName(), Inner: inner}
	}

	u.module = module
	u.members = members

	return members, nil
}

// Instantiate probes the entry module for the plugin factory and runs
// it, after checking the declared capabilities against what the host
// accepts.
func (u *ArchiveUnit) Instantiate() (api.Plugin, error) {
	if u.module == nil {
		return nil, fmt.Errorf("unit %s is not resolved", u.GetName())
	}

	if len(u.source.Capabilities) > 0 && len(u.descriptor.Provides) > 0 {
		if len(intersect.Simple(u.descriptor.Provides, u.source.Capabilities)) == 0 {
			return nil, fmt.Errorf("unit %s provides none of the host capabilities",
				u.GetName())
		}
	}

	sym, err := u.module.Lookup(api.PluginFactorySymbol)
	if err != nil {
		return nil, err
	}

	var factory api.PluginFactory
	switch f := sym.(type) {
	case api.PluginFactory:
		factory = f
	case func() api.Plugin:
		factory = f
	default:
		return nil, fmt.Errorf("symbol %s of %s has unexpected type %T",
			api.PluginFactorySymbol, u.GetName(), sym)
	}

	plugin := factory()
	if plugin == nil {
		return nil, fmt.Errorf("unit %s produced no plugin", u.GetName())
	}

	return plugin, nil
}
