package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bloodmagesoftware/xoom/bsp"
	"github.com/bloodmagesoftware/xoom/collision"
	"github.com/bloodmagesoftware/xoom/config"
	"github.com/bloodmagesoftware/xoom/level"
)

var inspectConfig string

var inspectCmd = &cobra.Command{
	Use:   "inspect {map-file}",
	Short: "Validate a map and print its BSP statistics",
	Long: `Loads a map file, reports its geometry, builds the BSP tree with the
configured strategy and prints node counts, depth and split counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return cmd.Help()
		}
		cfg, err := config.Load(inspectConfig)
		if err != nil {
			return err
		}
		configureLogging(cfg)
		m, err := level.Load(args[0])
		if err != nil {
			return err
		}

		solid := 0
		for _, s := range m.Sectors {
			if s.Solid {
				solid++
			}
		}
		minX, minY, maxX, maxY := m.Bounds()
		fmt.Printf("map:      %s\n", args[0])
		fmt.Printf("sectors:  %d (%d solid)\n", len(m.Sectors), solid)
		fmt.Printf("walls:    %d\n", len(m.Walls))
		fmt.Printf("bounds:   (%g, %g) - (%g, %g)\n", minX, minY, maxX, maxY)
		if m.HasStart {
			fmt.Printf("start:    (%g, %g) facing %g°\n", m.Start.Pos.X(), m.Start.Pos.Y(), m.Start.AngleDeg)
			resolver := collision.NewResolver(m.Walls, cfg.Player.Radius)
			if c := resolver.Clearance(m.Start.Pos); c < cfg.Player.Radius {
				fmt.Printf("warning:  start clearance %.2f is below the player radius %.2f\n", c, cfg.Player.Radius)
			}
		} else {
			fmt.Println("start:    none (PLAYER_START missing)")
		}

		tree := bsp.Build(m.Walls, bsp.Options{
			Strategy: bsp.Strategy(cfg.BSP.Strategy),
			MaxDepth: cfg.BSP.MaxDepth,
		})
		fmt.Printf("bsp:      %d nodes, depth %d, %d splits, %d wall fragments\n",
			tree.NodeCount(), tree.Depth(), tree.Splits(), tree.WallCount())
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectConfig, "config", config.DefaultFileName, "config file")
	rootCmd.AddCommand(inspectCmd)
}
