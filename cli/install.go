package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/MRtecno98/openmod/api"
	"github.com/MRtecno98/openmod/openmod"
	"github.com/urfave/cli/v2"
)

var INSTALL = &cli.Command{
	Name:    "install",
	Aliases: []string{"i"},
	Usage:   "installs a package into the host",
	Before:  InitializeContext(true),
	After:   ShutdownContext,

	Args:      true,
	ArgsUsage: " name[@version]",

	Action: func(c *cli.Context) error {
		if c.Args().Len() == 0 {
			return cli.Exit("missing package name", 1)
		}

		name, version, err := splitCoordinate(c.Args().Get(0))
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}

		err, _ = Context.Run("install", func(oc *openmod.OpenContext, log *log.Logger) error {
			var candidates []*api.PackageInfo
			for _, r := range oc.Repositories {
				res, err := r.Search(c.Context, name, 5)
				if err != nil {
					continue
				}

				candidates = append(candidates, res...)
			}

			if len(candidates) == 0 {
				return fmt.Errorf("no packages found for %q", name)
			}

			chosen := candidates[0]
			if len(candidates) > 1 {
				options := make([]string, len(candidates))
				for i, info := range candidates {
					options[i] = fmt.Sprintf("[%s] %s", info.Provider, info.Name)
				}

				n, err := TableSelect(options, os.Stdout)
				if err != nil {
					return err
				}

				chosen = candidates[n]
			}

			info, err := oc.QueryExact(c.Context, chosen.Name, version, oc.Config().Prerelease)
			if err != nil {
				return err
			}

			if res := oc.Install(c.Context, info); !res.Ok() {
				return res.Reason
			}

			log.Printf("installed %s\n", info.Coordinate())
			return nil
		})

		return err
	},
}

func splitCoordinate(arg string) (string, *api.SemanticVersion, error) {
	for i := len(arg) - 1; i >= 0; i-- {
		if arg[i] == '@' {
			ver, err := api.ParseVersion(arg[i+1:])
			if err != nil {
				return "", nil, err
			}

			return arg[:i], &ver, nil
		}
	}

	return arg, nil, nil
}
