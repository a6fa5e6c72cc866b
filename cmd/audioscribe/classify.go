package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <url>",
		Short: "Print the source kind a URL would be handled as",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			svc := buildServices(cfg, logger, serviceOptions{})
			kind := svc.classifier.Classify(cmd.Context(), args[0])
			fmt.Fprintln(cmd.OutOrStdout(), kind.String())
			return nil
		},
	}
}
