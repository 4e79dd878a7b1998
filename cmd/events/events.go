package events

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github/chapool/token-transfer/internal/config"
	"github/chapool/token-transfer/internal/util/command"
)

const fromBlockFlag = "from-block"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Lists token transfers to RECIPIENT_ADDRESS",
		Long: `Lists token transfers to RECIPIENT_ADDRESS

Queries Transfer events from --from-block up to the latest block in
chain order. Set EVENTS_BLOCK_CHUNK when the node limits the block range
of a log query.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithExecutor(cmd.Context(), config.DefaultAppConfigFromEnv(), func(ctx context.Context, e *command.Executor) error {
				fromBlock, err := cmd.Flags().GetUint64(fromBlockFlag)
				if err != nil {
					return err
				}

				return Run(ctx, cmd.OutOrStdout(), e, fromBlock)
			})
		},
	}

	cmd.Flags().Uint64(fromBlockFlag, 0, "First block to search")

	return cmd
}

func Run(ctx context.Context, out io.Writer, e *command.Executor, fromBlock uint64) error {
	meta, err := e.Service.GetTokenInfo(ctx)
	if err != nil {
		return err
	}

	events, err := e.Service.GetTransferEvents(ctx, fromBlock)
	if err != nil {
		return err
	}

	command.PrintEvents(out, events, meta.Symbol)

	return nil
}
