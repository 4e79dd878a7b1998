package gas

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github/chapool/token-transfer/internal/config"
	"github/chapool/token-transfer/internal/util/command"
	"github/chapool/token-transfer/internal/wallet/token"
	"github/chapool/token-transfer/internal/wallet/transfer"
)

//nolint:gochecknoglobals
var defaultAmounts = []string{"0.1", "1", "10"}

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "gas [amounts...]",
		Short: "Estimates gas and fees for transfers to the recipient without submitting",
		Long: `Estimates gas and fees for transfers to the recipient without submitting

Defaults to the amounts 0.1, 1 and 10. A failing amount is reported and
the remaining amounts are still estimated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return command.WithExecutor(cmd.Context(), config.DefaultAppConfigFromEnv(), func(ctx context.Context, e *command.Executor) error {
				return Run(ctx, cmd.OutOrStdout(), e, args)
			})
		},
	}
}

// Run writes one estimate row per amount to out. A failing amount gets a row with its error kind.
func Run(ctx context.Context, out io.Writer, e *command.Executor, amounts []string) error {
	if len(amounts) == 0 {
		amounts = defaultAmounts
	}

	// Without a recipient the estimate is a transfer to self.
	to := e.Recipient
	if to == (common.Address{}) {
		to = e.Service.Address()
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "AMOUNT\tESTIMATE\tGAS LIMIT\tGAS PRICE (GWEI)\tMAX FEE (ETH)\tNOTE")

	for _, amount := range amounts {
		plan, err := e.Service.EstimateTransfer(ctx, to, amount)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t%s\n", amount, transfer.KindOf(err))
			continue
		}

		note := ""
		if plan.GasEstimateFallback() {
			note = "fallback estimate"
		}

		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\t%s\n",
			amount, plan.EstimatedGas, plan.GasLimit, token.FormatGwei(plan.GasPrice), token.FormatEther(plan.MaxFee), note)
	}

	return tw.Flush()
}
