package cmd

import (
	"context"
	"log"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/unit"
	"github.com/spf13/cobra"

	"github.com/bloodmagesoftware/xoom/config"
	"github.com/bloodmagesoftware/xoom/debugserver"
	"github.com/bloodmagesoftware/xoom/game"
	"github.com/bloodmagesoftware/xoom/level"
	"github.com/bloodmagesoftware/xoom/render"
	"github.com/bloodmagesoftware/xoom/texture"
)

var (
	playMapPath   string
	playConfig    string
	playDebugAddr string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the engine",
	Long:  `Loads the configured map, builds its BSP tree and opens the game window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(playConfig)
		if err != nil {
			return err
		}
		configureLogging(cfg)
		mapPath := cfg.Assets.Map
		if playMapPath != "" {
			mapPath = playMapPath
		}
		m, err := level.Load(mapPath)
		if err != nil {
			return err
		}

		tex := texture.NewManager()
		if err := tex.LoadDir(cfg.Assets.Textures); err != nil {
			log.Printf("play: loading textures: %v", err)
		}

		g := game.New(cfg, m)
		r := render.New(cfg, tex)

		debugAddr := cfg.Debug.Addr
		if playDebugAddr != "" {
			debugAddr = playDebugAddr
		}
		if debugAddr != "" {
			srv := debugserver.New(debugAddr)
			srv.Start()
			r.OnFrame = srv.Broadcast
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				_ = srv.Shutdown(ctx)
			}()
		}

		go func() {
			window := new(app.Window)
			window.Option(
				app.Title(cfg.Window.Title),
				app.Size(unit.Dp(cfg.Window.Width), unit.Dp(cfg.Window.Height)),
			)
			if err := r.Run(window, g); err != nil {
				log.Fatal(err)
			}
			os.Exit(0)
		}()
		app.Main()

		return nil
	},
}

func init() {
	playCmd.Flags().StringVar(&playMapPath, "map", "", "map file to load (overrides config)")
	playCmd.Flags().StringVar(&playConfig, "config", config.DefaultFileName, "config file")
	playCmd.Flags().StringVar(&playDebugAddr, "debug-addr", "", "serve the websocket state stream on this address")
	rootCmd.AddCommand(playCmd)
}
