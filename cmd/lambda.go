package cmd

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/dmorgan81/promptshot/internal/handler"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda function",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel, injector, err := setup(cmd, os.Stderr, log.New, nil)
		if err != nil {
			return err
		}
		defer cancel()

		h, err := do.Invoke[*handler.Handler](injector)
		if err != nil {
			return err
		}
		lambda.StartWithOptions(h.Handle, lambda.WithContext(ctx), lambda.WithEnableSIGTERM(func() {
			_ = injector.Shutdown()
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}
