package openmod

import (
	"fmt"

	"github.com/MRtecno98/openmod/api"
)

const IndexSqlite string = "sqlite"
const IndexFile string = "file"

// InstalledPackage is one record of the local installed package index.
type InstalledPackage struct {
	api.PackageIdentity

	Provider string
	Modules  []string
}

// InstalledIndex tracks the packages present in the install root. It is
// process wide mutable state shared by the bootstrapper, the package
// manager and the assembly store.
type InstalledIndex interface {
	InitializeIndex(ctx *OpenContext) error
	LoadPackageIndex() error

	Record(pkg InstalledPackage) error
	Latest(name string) (InstalledPackage, bool)
	Packages() []InstalledPackage

	IndexSize() (int64, error)
	CleanIndex() error
	CloseIndex() error
}

func LoadIndexBackend(name string) (InstalledIndex, error) {
	switch name {
	case IndexSqlite:
		return NewSqliteIndex(), nil
	case IndexFile:
		return NewIndexFile(), nil
	default:
		return nil, fmt.Errorf("unknown index type: %s", name)
	}
}

// NewPackageBiMap indexes installed packages both by exact coordinate
// and by bare name, the latter always holding the newest version seen.
func NewPackageBiMap() *BiMap[string, string, InstalledPackage] {
	return NewBiMap(func(el InstalledPackage) (string, string) {
		return el.Coordinate(), el.Name
	})
}

// recordPackage keeps the name key pointing at the newest version when
// an older version is recorded after a newer one.
func recordPackage(m *BiMap[string, string, InstalledPackage], pkg InstalledPackage) {
	cur, ok := m.GetSecond(pkg.Name)

	m.Put(pkg)

	if ok && cur.Version.Newer(pkg.Version) {
		m.Put(cur)
	}
}
