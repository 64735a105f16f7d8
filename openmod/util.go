package openmod

import (
	"archive/zip"

	"github.com/MRtecno98/afero"
	"github.com/MRtecno98/afero/zipfs"
)

const USER_AGENT = "openmod/0.1 (MRtecno98/openmod)"

// OpenArchive mounts a plugin or package archive as a filesystem.
func OpenArchive(file afero.File) (*afero.Afero, error) {
	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := zip.NewReader(file, stat.Size())
	if err != nil {
		return nil, err
	}

	return &afero.Afero{Fs: zipfs.New(reader)}, nil
}
