package cmd

import (
	"errors"
	"os"

	"github.com/dmorgan81/promptshot/internal/config"
	"github.com/dmorgan81/promptshot/internal/controller"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/store"
	"github.com/dmorgan81/promptshot/internal/tui"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var tuiFlags struct {
	out     string
	logFile string
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the terminal front end",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// the screen belongs to the UI, so logs go to a file
		f, err := os.OpenFile(tuiFlags.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()

		ctx, cancel, injector, err := setup(cmd, f, log.NewText, func(cfg *config.Config) {
			if tuiFlags.out != "" {
				cfg.OutputDir = tuiFlags.out
			}
		})
		if err != nil {
			return err
		}
		defer cancel()

		c, err := do.Invoke[*controller.Controller](injector)
		if err != nil {
			return err
		}
		u, err := do.Invoke[store.Uploader](injector)
		if err != nil {
			return err
		}

		runErr := tui.Run(ctx, c, u, os.Stdin, os.Stdout)
		cancel()
		return errors.Join(runErr, injector.Shutdown())
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiFlags.out, "out", "", "directory for saved images (overrides OUTPUT_DIR)")
	tuiCmd.Flags().StringVar(&tuiFlags.logFile, "log-file", "promptshot.log", "file to write logs to")
	rootCmd.AddCommand(tuiCmd)
}
