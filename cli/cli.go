// Package cli provides the command line interface for the openmod host.
package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/MRtecno98/afero"
	"github.com/MRtecno98/openmod/openmod"
	"github.com/urfave/cli/v2"
)

var Context *openmod.OpenContext

var GlobalError error
var Time time.Time

var Commands = []*cli.Command{
	RUN, PLUGINS, INSTALL, CLEAN,
}

func InitializeContext(loadIndex bool) func(*cli.Context) error {
	return func(c *cli.Context) error {
		openmod.LoadSystemConfig(afero.NewOsFs(), c.String("config"))

		ctx := openmod.GlobalConfig.Context
		if clic := c.String("context"); clic != "." || ctx.URL == "" {
			ctx = openmod.Context{Name: "<cli>", URL: clic}
		}

		if ctx.Name == "" {
			ctx.Name = "host"
		}

		var err error
		Context, err = ctx.OpenContext()

		if err != nil {
			log.Print("failed to open context: ", err)
			return err
		}

		if loadIndex {
			if err := Context.LoadPackageIndex(); err != nil {
				return fmt.Errorf("failed to load package index for %s: %v", Context.Name, err)
			}
		}

		if openmod.DEBUG {
			openmod.LogContext(Context)
		}

		return nil
	}
}

func ShutdownContext(c *cli.Context) error {
	if Context != nil {
		Context.CloseContext()
	}

	fmt.Println()

	dur := time.Since(Time).Truncate(time.Millisecond)

	if GlobalError != nil {
		fmt.Print(GlobalError.Error())
		fmt.Printf("FAILURE (took %v)\n", dur)
	} else {
		fmt.Printf("SUCCESS (took %v)\n", dur)
	}

	return nil
}
