package info

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github/chapool/token-transfer/internal/config"
	"github/chapool/token-transfer/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Prints network and token information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithExecutor(cmd.Context(), config.DefaultAppConfigFromEnv(), func(ctx context.Context, e *command.Executor) error {
				return Run(ctx, cmd.OutOrStdout(), e)
			})
		},
	}
}

func Run(ctx context.Context, out io.Writer, e *command.Executor) error {
	network, err := e.Service.GetNetworkInfo(ctx)
	if err != nil {
		return err
	}

	meta, err := e.Service.GetTokenInfo(ctx)
	if err != nil {
		return err
	}

	command.PrintNetworkInfo(out, network)
	command.PrintTokenInfo(out, e.Service.TokenAddress(), meta)

	return nil
}
