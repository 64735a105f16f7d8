package openmod

import (
	"context"

	"github.com/MRtecno98/openmod/api"
)

type Plugin interface {
	GetName() string
	GetIdentifier() string
}

type Versionable interface {
	GetVersion() string
}

// LoadUnit is one plugin's deployable code module, produced by a
// UnitSource and owned by the store registry once validated.
type LoadUnit interface {
	Plugin
	Versionable

	// Descriptor returns the unit metadata, nil when absent.
	Descriptor() *UnitDescriptor

	// Members forces full resolution of the unit and returns its
	// exported member names. A failed resolution returns a *LoadFault
	// carrying the loader diagnostics.
	Members() ([]string, error)

	// Instantiate probes the unit entry point for the host capability
	// contract. Only meaningful after Members succeeded.
	Instantiate() (api.Plugin, error)
}

// LibraryRequirement is a library the unit was linked against,
// declared with the loader's four part version.
type LibraryRequirement struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type UnitDescriptor struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Entry   string `yaml:"entry"`

	Exports  []string `yaml:"exports"`
	Provides []string `yaml:"provides"`

	Requires []LibraryRequirement `yaml:"requires"`

	Authors     []string `yaml:"authors,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Website     string   `yaml:"website,omitempty"`
}

// UnitSource yields the candidate batch of load units for one pass and
// is told about units the store has excluded.
type UnitSource interface {
	Units(ctx context.Context) ([]LoadUnit, error)
	Drop(unit LoadUnit)
}
