package cli

import (
	"log"

	"github.com/MRtecno98/openmod/openmod"
	"github.com/urfave/cli/v2"
)

var CLEAN = &cli.Command{
	Name:    "clean",
	Aliases: []string{"c"},
	Usage:   "discards the installed package index",
	Before:  InitializeContext(false),
	After:   ShutdownContext,
	Action: func(c *cli.Context) error {
		err, _ := Context.Run("clean", func(oc *openmod.OpenContext, log *log.Logger) error {
			size, err := oc.IndexSize()
			if err != nil {
				return err
			}

			log.Printf("deleting package index (%d KB)\n", size/1024)
			if err := oc.CleanIndex(); err != nil {
				return err
			}

			if c.Args().Len() > 0 && c.Args().Get(0) == "all" {
				log.Println("deleting installed packages")
				if err := oc.Fs.RemoveAll(openmod.PackagesFolder); err != nil {
					return err
				}
			}

			return nil
		})

		return err
	},
}
