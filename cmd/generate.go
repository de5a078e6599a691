package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmorgan81/promptshot/internal/config"
	"github.com/dmorgan81/promptshot/internal/controller"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/store"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var generateFlags struct {
	out string
}

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate one image and save it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, cancel, injector, err := setup(cmd, os.Stderr, log.NewText, func(cfg *config.Config) {
			if generateFlags.out != "" {
				cfg.OutputDir = generateFlags.out
			}
		})
		if err != nil {
			return err
		}
		defer cancel()
		defer func() { err = errors.Join(err, injector.Shutdown()) }()

		c, err := do.Invoke[*controller.Controller](injector)
		if err != nil {
			return err
		}
		u, err := do.Invoke[store.Uploader](injector)
		if err != nil {
			return err
		}

		prompt := strings.Join(args, " ")
		h, err := c.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		name, err := store.Save(ctx, u, h, prompt, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), name)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateFlags.out, "out", "", "directory for the image (overrides OUTPUT_DIR)")
	rootCmd.AddCommand(generateCmd)
}
