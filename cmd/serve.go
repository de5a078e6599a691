package cmd

import (
	"errors"
	"os"

	"github.com/dmorgan81/promptshot/internal/config"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/server"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	addr string
	out  string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web front end",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel, injector, err := setup(cmd, os.Stderr, log.New, func(cfg *config.Config) {
			if serveFlags.addr != "" {
				cfg.ListenAddr = serveFlags.addr
			}
			if serveFlags.out != "" {
				cfg.OutputDir = serveFlags.out
			}
		})
		if err != nil {
			return err
		}
		defer cancel()

		srv, err := do.Invoke[*server.Server](injector)
		if err != nil {
			return err
		}
		runErr := srv.Run(ctx)
		return errors.Join(runErr, injector.Shutdown())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (overrides LISTEN_ADDR)")
	serveCmd.Flags().StringVar(&serveFlags.out, "out", "", "directory for saved images (overrides OUTPUT_DIR)")
	rootCmd.AddCommand(serveCmd)
}
