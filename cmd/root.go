package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "xoom",
	Short: "Xoom - 2.5D sector engine",
	Long: `Xoom is a first-person 2.5D sector engine in the style of classic
raycasting shooters. It loads text maps into sector geometry, partitions the
walls into a BSP tree and renders the view with painter-ordered traversal.`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
