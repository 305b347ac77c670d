package cmd

import (
	"fmt"
	"os"

	"github.com/relloyd/aorist/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Local config files. These are set before any init() runs so flag defaults can be read.
var (
	mainConfig      = mustGetHomeConfigFile(config.NewMainFile)
	endpointsConfig = mustGetHomeConfigFile(config.NewEndpointsFile)
)

func mustGetHomeConfigFile(fn func(fs afero.Fs) (*config.File, error)) *config.File {
	f, err := fn(afero.NewOsFs())
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return f
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configure endpoints and default flag values",
	Long: fmt.Sprintf(`Configure endpoints & default parameters where:

- Endpoint configs are stored in file %q
- Default flag values are stored in file %q
`, endpointsConfig.FullPath, mainConfig.FullPath),
}

func init() {
	rootCmd.AddCommand(configCmd)
}
