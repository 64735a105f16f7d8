package main

import (
	"log"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	clilib "github.com/urfave/cli/v2"

	"github.com/MRtecno98/openmod/cli"
	"github.com/MRtecno98/openmod/openmod"

	_ "github.com/MRtecno98/openmod/openmod/repositories"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	log.SetPrefix("openmod: ")
	log.SetFlags(0)

	cli.Time = time.Now()

	(&clilib.App{
		Name:  "openmod",
		Usage: "bootstraps mod runtimes and manages their packages",

		UseShortOptionHandling: true,
		Suggest:                true,

		Flags: []clilib.Flag{
			&clilib.StringFlag{
				Name:        "context",
				Aliases:     []string{"c"},
				Usage:       "selects `URL` as the working directory",
				Value:       ".",
				DefaultText: "current directory",
			},

			&clilib.StringFlag{
				Name:    "config",
				Aliases: []string{"f"},
				Usage:   "selects `FILE` as the configuration file",
				Value:   openmod.ConfigName,
			},

			&clilib.BoolFlag{
				Name:        "parallel",
				Aliases:     []string{"j"},
				Usage:       "disables multithreaded processes",
				Value:       true,
				Destination: &openmod.GlobalConfig.Multithread,
			},

			&clilib.BoolFlag{
				Name:        "debug",
				Aliases:     []string{"v"},
				Usage:       "enables debug mode",
				Value:       openmod.DEBUG,
				Destination: &openmod.DEBUG,
			},
		},

		ExitErrHandler: func(c *clilib.Context, err error) {
			if err != nil {
				cli.GlobalError = multierror.Append(cli.GlobalError, err)
			}
		},

		Commands: cli.Commands,
	}).Run(os.Args)
}
