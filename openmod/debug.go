package openmod

import "fmt"

var DEBUG = false

func LogContext(c *OpenContext) {
	fmt.Printf("Context: %s\n", c.Name)
	fmt.Printf("\tURL: %s\n", c.URL)
	fmt.Printf("\tFilesystem: %s\n", c.Fs.Name())
	fmt.Printf("\tPlugins folder: %s\n", c.PluginsFolder())
	fmt.Printf("\tRepositories: %d\n", len(c.Repositories))
	for n, r := range c.Repositories {
		fmt.Printf("\t  - %s: %s\n", n, r.PackageRepository.Provider())
	}

	fmt.Printf("\tInstalled packages: %d\n", len(c.Packages()))

	fmt.Println()
}
