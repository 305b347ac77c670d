package cmd

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
	"github.com/relloyd/aorist/constants"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information for aorist",
	Long:  `Show version information for aorist`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := goversion.NewVersion(version)
		if err != nil {
			return err
		}
		fmt.Printf(`aorist
  Version:	%v
  Build date:	%v
  Manifest versions:	%v
`, v, buildDate, constants.ManifestVersionConstraint)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
