package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/MRtecno98/openmod/api"
	"github.com/MRtecno98/openmod/openmod"
	"github.com/urfave/cli/v2"
)

var RUN = &cli.Command{
	Name:    "run",
	Aliases: []string{"r"},
	Usage:   "bootstraps the host packages and starts the runtime",
	Before:  InitializeContext(true),
	After:   ShutdownContext,

	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  openmod.AutoUpdateSwitch,
			Usage: "updates host packages before starting",
		},
	},

	Action: func(c *cli.Context) error {
		oc := Context

		wd, err := os.Getwd()
		if err != nil {
			return err
		}

		boot := &openmod.Bootstrapper{
			Context:          oc,
			WorkingDirectory: wd,
			Args:             os.Args[1:],
		}

		var runtime api.Runtime

		task := &openmod.Task{
			Name: "bootstrap",
			Func: func(oc *openmod.OpenContext, log *log.Logger) error {
				packages := oc.Config().HostPackages
				if len(packages) == 0 {
					return fmt.Errorf("no host packages configured")
				}

				log.Printf("bootstrapping %d host packages\n", len(packages))

				runtime, err = boot.Bootstrap(c.Context, packages, oc.Config().Prerelease)
				return err
			},
		}

		// The runtime manages itself from here on, the handle only
		// tells us activation went through.
		if err, _ := oc.RunTask(task); err != nil {
			return err
		} else if runtime == nil {
			return fmt.Errorf("bootstrap produced no runtime")
		}

		return nil
	},
}
