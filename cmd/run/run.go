package run

import (
	"context"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/token-transfer/internal/config"
	"github/chapool/token-transfer/internal/util/command"
)

const (
	amountFlag    = "amount"
	defaultAmount = "1"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the full demo: network info, balances, one transfer",
		Long: `Runs the full demo: network info, balances, one transfer

Prints the network and token, the signer's and recipient's balances,
transfers --amount to RECIPIENT_ADDRESS, waits for confirmations and
prints the updated balances.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithExecutor(cmd.Context(), config.DefaultAppConfigFromEnv(), func(ctx context.Context, e *command.Executor) error {
				amount, err := cmd.Flags().GetString(amountFlag)
				if err != nil {
					return err
				}

				return Demo(ctx, cmd.OutOrStdout(), e, amount)
			})
		},
	}

	cmd.Flags().String(amountFlag, defaultAmount, "Amount in token units to transfer")

	return cmd
}

// Demo prints the network, token and balances, transfers amount to the recipient and prints
// the balances again. The recipient balance is skipped when it is the signer.
func Demo(ctx context.Context, out io.Writer, e *command.Executor, amount string) error {
	if e.Recipient == (common.Address{}) {
		return errors.New("RECIPIENT_ADDRESS is required for run")
	}

	network, err := e.Service.GetNetworkInfo(ctx)
	if err != nil {
		return err
	}
	command.PrintNetworkInfo(out, network)

	meta, err := e.Service.GetTokenInfo(ctx)
	if err != nil {
		return err
	}
	command.PrintTokenInfo(out, e.Service.TokenAddress(), meta)
	fmt.Fprintln(out)

	if err := printBalances(ctx, out, e); err != nil {
		return err
	}

	log.Info().
		Str("to", e.Recipient.Hex()).
		Str("amount", amount).
		Msg("Starting transfer")

	receipt, err := e.Service.TransferTokens(ctx, e.Recipient, amount)
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	command.PrintPlan(out, receipt.Plan)
	command.PrintReceipt(out, receipt)
	fmt.Fprintln(out)

	return printBalances(ctx, out, e)
}

func printBalances(ctx context.Context, out io.Writer, e *command.Executor) error {
	own, err := e.Service.GetBalance(ctx)
	if err != nil {
		return err
	}
	command.PrintBalance(out, "Signer", own)

	if e.Recipient == e.Service.Address() {
		return nil
	}

	recipient, err := e.Service.GetBalanceOf(ctx, e.Recipient)
	if err != nil {
		return err
	}
	command.PrintBalance(out, "Recipient", recipient)

	return nil
}
