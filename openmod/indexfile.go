package openmod

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/MRtecno98/openmod/api"
)

const IndexFileName string = "openmod.packages"
const IndexFileHeader string = "# openmod installed package index"

// IndexRecord is the serialized form of one installed package.
type IndexRecord struct {
	Name     string   `json:"name"`
	Version  string   `json:"version"`
	Provider string   `json:"provider"`
	Modules  []string `json:"modules,omitempty"`
}

// FileIndex is the plain text fallback backend for installs where
// sqlite is not wanted.
type FileIndex struct {
	Name string

	lock     sync.Mutex
	ctx      *OpenContext
	packages *BiMap[string, string, InstalledPackage]
}

func NewNamedIndexFile(name string) *FileIndex {
	return &FileIndex{
		Name:     name,
		packages: NewPackageBiMap(),
	}
}

func NewIndexFile() *FileIndex {
	return NewNamedIndexFile(IndexFileName)
}

func (db *FileIndex) _parseError(err error) error {
	if err == nil {
		return nil
	}

	if db.Name != "" {
		return fmt.Errorf("package index: %w (%s)", err, db.Name)
	} else {
		return fmt.Errorf("package index: %w", err)
	}
}

func (db *FileIndex) InitializeIndex(ctx *OpenContext) error {
	ok, err := ctx.Fs.Exists(db.Name)
	if err != nil {
		return db._parseError(err)
	}

	if !ok {
		f, err := ctx.Fs.OpenFile(db.Name, os.O_WRONLY|os.O_CREATE, 0644)
		if err != nil {
			return db._parseError(err)
		}

		_, err = f.Write([]byte(IndexFileHeader + "\n\n[]\n"))
		if err != nil {
			defer f.Close()
			return db._parseError(err)
		}
	}

	db.ctx = ctx

	return nil
}

func (db *FileIndex) LoadPackageIndex() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	f, err := db.ctx.Fs.OpenFile(db.Name, os.O_RDONLY, 0644)
	if err != nil {
		return db._parseError(err)
	}

	defer f.Close()

	var data []byte
	if data, err = io.ReadAll(f); err != nil {
		return db._parseError(err)
	}

	data = bytes.TrimPrefix(data, []byte(IndexFileHeader))

	var records []IndexRecord
	if err = json.Unmarshal(data, &records); err != nil {
		return db._parseError(err)
	}

	for _, record := range records {
		pkg, err := record.InstalledPackage()
		if err != nil {
			return db._parseError(err)
		}

		recordPackage(db.packages, *pkg)
	}

	return nil
}

func (r IndexRecord) InstalledPackage() (*InstalledPackage, error) {
	ver, err := api.ParseVersion(r.Version)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.Name, err)
	}

	return &InstalledPackage{
		PackageIdentity: api.PackageIdentity{Name: r.Name, Version: ver},
		Provider:        r.Provider,
		Modules:         r.Modules,
	}, nil
}

func (db *FileIndex) Record(pkg InstalledPackage) error {
	recordPackage(db.packages, pkg)
	return db.SavePackageIndex()
}

func (db *FileIndex) SavePackageIndex() error {
	db.lock.Lock()
	defer db.lock.Unlock()

	f, err := db.ctx.Fs.OpenFile(db.Name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return db._parseError(err)
	}

	defer f.Close()

	packages := db.packages.Values()

	records := make([]IndexRecord, len(packages))
	for i, pkg := range packages {
		records[i] = IndexRecord{
			Name:     pkg.Name,
			Version:  pkg.Version.String(),
			Provider: pkg.Provider,
			Modules:  pkg.Modules,
		}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return db._parseError(err)
	}

	if _, err = f.Write([]byte(IndexFileHeader + "\n\n" + string(data) + "\n")); err != nil {
		return db._parseError(err)
	}

	return nil
}

func (db *FileIndex) Latest(name string) (InstalledPackage, bool) {
	return db.packages.GetSecond(name)
}

func (db *FileIndex) Packages() []InstalledPackage {
	return db.packages.Values()
}

func (db *FileIndex) IndexSize() (int64, error) {
	info, err := db.ctx.Fs.Stat(db.Name)
	if err != nil {
		return 0, db._parseError(err)
	}

	return info.Size(), nil
}

func (db *FileIndex) CleanIndex() error {
	if err := db.ctx.Fs.Remove(db.Name); err != nil {
		return db._parseError(err)
	}

	db.packages = NewPackageBiMap()

	return nil
}

func (db *FileIndex) CloseIndex() error {
	db.packages = nil
	return nil
}
