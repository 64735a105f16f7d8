package openmod

import (
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/MRtecno98/afero"
	"github.com/MRtecno98/afero/resolver"
	"github.com/MRtecno98/openmod/openmod/util"
)

var DefaultRepositories = [...]string{"openpkg"}

const DefaultPluginsFolder = "plugins"

type Context struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// OpenContext is an opened host install root: its filesystem, layered
// configuration, package repositories, installed package index and the
// assembly store for its plugins.
type OpenContext struct {
	Context
	InstalledIndex

	Fs           afero.Afero
	LocalConfig  *Config
	Repositories map[string]NamedRepository
	Store        *AssemblyStore
	Loader       ModuleLoader
}

func (c Context) OpenContext() (*OpenContext, error) {
	fs, err := resolver.OpenUrl(c.URL)
	if err != nil {
		return nil, err
	}

	var conf *Config
	conf, err = LoadFilesystemConfig(fs, ConfigName)
	if err != nil || conf == nil {
		conf = &Config{}
	}

	conf.Collapse(GlobalConfig) // Also add base options

	backend := conf.Index
	if backend == "" {
		backend = IndexSqlite
	}

	index, err := LoadIndexBackend(backend)
	if err != nil {
		return nil, err
	}

	ctx := &OpenContext{Context: c, Fs: afero.Afero{Fs: fs},
		LocalConfig:    conf,
		Repositories:   make(map[string]NamedRepository),
		InstalledIndex: index}

	ctx.Loader = NewHostLoader(ctx)
	ctx.Store = NewAssemblyStore(ctx)

	return ctx, Parallelize(conf.Multithread,
		ctx.LoadRepositories,
		ctx.InitializeIndex)
}

func (c *OpenContext) RunTask(task *Task) (error, bool) {
	var newline, n bool
	var err error

	for _, t := range task.Depends() {
		err, n = c.RunTask(t)
		newline = newline || n

		if err != nil {
			return err, newline || n
		}
	}

	err, n = c.Run(task.Name, task.Func)
	newline = newline || n

	if err != nil {
		return err, newline
	}

	for _, t := range task.After() {
		err, n = c.RunTask(t)
		newline = newline || n

		if err != nil {
			return err, newline || n
		}
	}

	return nil, newline
}

func (c *OpenContext) Run(name string, action TaskFunc) (error, bool) {
	var newline bool = false

	fmt.Printf(":%s [%s]\n", name, c.Name)

	out := util.NewLookbackCountingWriter(os.Stdout, 2)
	logger := log.New(out, "", log.Lmsgprefix)

	err := action(c, logger)

	if out.BytesWritten > 0 {
		for _, v := range slices.Clone(out.LastBytes) {
			if v != '\n' {
				logger.Println()
			}
		}

		newline = true
	}

	if err != nil {
		logger.Printf(":%s [%s] FAILED: %s\n\n", name, c.Name, err)
		return fmt.Errorf("%s: %v", c.Name, err), true
	}

	return nil, newline
}

func (c *OpenContext) CloseContext() {
	c.CloseIndex()
	c.Fs.Close()
}

func (c *OpenContext) Config() *Config {
	if c.LocalConfig != nil {
		return c.LocalConfig
	} else {
		return GlobalConfig
	}
}

func (c *OpenContext) PluginsFolder() string {
	if folder := c.Config().PluginsFolder; folder != "" {
		return folder
	}

	return DefaultPluginsFolder
}

func (c *OpenContext) PluginsSize() (int64, error) {
	var size int64 = 0

	if ex, err := c.Fs.DirExists(c.PluginsFolder()); !ex || err != nil {
		return 0, err
	}

	if err := c.Fs.Walk(c.PluginsFolder(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			size += info.Size()
		}

		return nil
	}); err != nil {
		return 0, err
	}

	return size, nil
}

func (c *OpenContext) InitializeIndex() error {
	if DEBUG {
		log.Printf("initializing package index for %s\n", c.Name)
	}

	return c.InstalledIndex.InitializeIndex(c)
}

func (c *OpenContext) RepositoryByNameOrProvider(name string) *NamedRepository {
	if v, ok := c.Repositories[name]; ok {
		return &v
	}

	if v := c.RepositoryByProvider(name); v != nil {
		return v
	}

	return nil
}

func (c *OpenContext) RepositoryByProvider(provider string) *NamedRepository {
	for _, v := range c.Repositories {
		if v.PackageRepository.Provider() == provider {
			return &v
		}
	}

	return nil
}

func (c *OpenContext) LoadRepositories() error {
	repos := c.Config().Repositories
	if len(repos) == 0 {
		repos = make([]RepositoryConfig, len(DefaultRepositories))
		for i, v := range DefaultRepositories {
			repos[i] = RepositoryConfig{Provider: v}
		}
	}

	for _, v := range repos {
		if r, err := v.MakeRepository(c); err != nil {
			return err
		} else {
			c.Repositories[v.GetName()] = *r
		}
	}

	return nil
}
