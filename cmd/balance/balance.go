package balance

import (
	"context"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/token-transfer/internal/config"
	"github/chapool/token-transfer/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Prints the token balance of the signer or of address",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.WithExecutor(cmd.Context(), config.DefaultAppConfigFromEnv(), func(ctx context.Context, e *command.Executor) error {
				return Run(ctx, cmd.OutOrStdout(), e, args)
			})
		},
	}
}

func Run(ctx context.Context, out io.Writer, e *command.Executor, args []string) error {
	if len(args) == 0 {
		b, err := e.Service.GetBalance(ctx)
		if err != nil {
			return err
		}
		command.PrintBalance(out, "Signer", b)
		return nil
	}

	if !common.IsHexAddress(args[0]) {
		return errors.Errorf("%q is not a hex address", args[0])
	}

	b, err := e.Service.GetBalanceOf(ctx, common.HexToAddress(args[0]))
	if err != nil {
		return err
	}
	command.PrintBalance(out, "Account", b)

	return nil
}
