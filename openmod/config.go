package openmod

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"

	"github.com/MRtecno98/afero"
	"gopkg.in/yaml.v2"
)

const ConfigName string = "openmodrc.yml"

var GlobalConfig *Config = &Config{}

type Config struct {
	Context Context `yaml:"context"`

	Index         string `yaml:"index,omitempty"`
	PluginsFolder string `yaml:"plugins-folder,omitempty"`

	HostPackages        []string `yaml:"host-packages"`
	IgnoredDependencies []string `yaml:"ignored-dependencies"`

	AutoRemediate bool `yaml:"auto-remediate"`
	Prerelease    bool `yaml:"prerelease"`
	Multithread   bool `yaml:"multithread"`

	Repositories []RepositoryConfig `yaml:"repositories"`
}

type RepositoryConfig struct {
	Name     string            `yaml:"name"`
	Provider string            `yaml:"provider"`
	Options  map[string]string `yaml:"options"`
}

func (rc *RepositoryConfig) GetName() string {
	if rc.Name == "" {
		return rc.Provider
	} else {
		return rc.Name
	}
}

func (c *Config) Collapse(o *Config) {
	cv := reflect.ValueOf(c).Elem()
	ov := reflect.ValueOf(o).Elem()

	for i := 0; i < cv.NumField(); i++ {
		cf := cv.Field(i)
		of := ov.FieldByName(cv.Type().Field(i).Name)

		switch of.Type().Kind() {
		case reflect.Array:
		case reflect.Slice:
			cf.Set(reflect.AppendSlice(cf, of))

		default:
			if cf.IsZero() {
				cf.Set(of)
			}
		}
	}
}

func LoadSystemConfig(fs afero.Fs, base string) *Config {
	paths := []string{base}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".openmod", ConfigName))
	}

	conf := Config{}
	for _, v := range paths {
		parse, _ := LoadFilesystemConfig(fs, v)
		if parse != nil {
			conf.Collapse(parse)
		}
	}

	GlobalConfig.Collapse(&conf)

	return GlobalConfig
}

func LoadFilesystemConfig(fs afero.Fs, path string) (conf *Config, err error) {
	if file, err := fs.Open(path); err == nil {
		if conf, err = LoadConfigFrom(file); err != nil {
			log.Println("Found config file while opening context but failed to parse it", err)
			return nil, err
		}
	}

	return
}

func LoadConfigFrom(f io.Reader) (*Config, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}

	return &c, nil
}
