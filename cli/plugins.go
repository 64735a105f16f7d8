package cli

import (
	"log"

	"github.com/MRtecno98/openmod/openmod"
	"github.com/MRtecno98/openmod/openmod/sources"
	"github.com/urfave/cli/v2"
)

var PLUGINS = &cli.Command{
	Name:    "plugins",
	Aliases: []string{"p"},
	Usage:   "validates and lists the plugins of the host",
	Before:  InitializeContext(true),
	After:   ShutdownContext,

	Action: func(c *cli.Context) error {
		err, _ := Context.Run("plugins", func(oc *openmod.OpenContext, log *log.Logger) error {
			source := sources.NewDirectorySource(oc, nil)

			units := oc.Store.LoadAll(c.Context, source)
			for _, unit := range units {
				log.Printf("loaded plugin: %s %s [%s]\n",
					unit.GetName(), unit.GetVersion(), unit.GetIdentifier())
			}

			log.Printf("%d plugins loaded, %d packages installed\n",
				len(units), len(oc.Packages()))

			for _, pkg := range oc.Packages() {
				log.Printf("package: %s [%s]\n", pkg.Coordinate(), pkg.Provider)
			}

			return nil
		})

		return err
	},
}
