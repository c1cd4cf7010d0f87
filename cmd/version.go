package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags "-X github.com/bascanada/yategrep/cmd.version=..."
// at release build time; it defaults to "dev" for local builds.
var version = "dev"

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print the yategrep version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}
