package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cobraCmd *cobra.Command, _ []string) {
		cobraCmd.Println(fmt.Sprintf("dealgraph %s (commit %s, built %s, %s/%s)",
			Version, Commit, Date, runtime.GOOS, runtime.GOARCH))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
