package transfer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/token-transfer/internal/config"
	"github/chapool/token-transfer/internal/util/command"
)

const (
	toFlag     = "to"
	amountFlag = "amount"
	dryRunFlag = "dry-run"

	defaultAmount = "1"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfers tokens and waits for confirmations",
		Long: `Transfers tokens and waits for confirmations

Checks the balance, estimates gas (150000 when the node refuses),
adds a 20% buffer, prices the transaction and submits it. Returns once
the transaction is TRANSFER_CONFIRMATIONS blocks deep.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return command.WithExecutor(cmd.Context(), config.DefaultAppConfigFromEnv(), func(ctx context.Context, e *command.Executor) error {
				return runTransfer(ctx, cmd, e)
			})
		},
	}

	cmd.Flags().String(toFlag, "", "Recipient address, defaults to RECIPIENT_ADDRESS")
	cmd.Flags().String(amountFlag, defaultAmount, "Amount in token units, e.g. 1.5")
	cmd.Flags().Bool(dryRunFlag, false, "Stop after pricing and print the plan")

	return cmd
}

// ResolveRecipient picks --to over the configured recipient.
func ResolveRecipient(flag string, configured common.Address) (common.Address, error) {
	if flag == "" {
		if configured == (common.Address{}) {
			return common.Address{}, errors.New("no recipient, pass --to or set RECIPIENT_ADDRESS")
		}
		return configured, nil
	}

	if !common.IsHexAddress(flag) {
		return common.Address{}, errors.Errorf("--to %q is not a hex address", flag)
	}

	return common.HexToAddress(flag), nil
}

func runTransfer(ctx context.Context, cmd *cobra.Command, e *command.Executor) error {
	toFlagValue, err := cmd.Flags().GetString(toFlag)
	if err != nil {
		return err
	}

	amount, err := cmd.Flags().GetString(amountFlag)
	if err != nil {
		return err
	}

	dryRun, err := cmd.Flags().GetBool(dryRunFlag)
	if err != nil {
		return err
	}

	to, err := ResolveRecipient(toFlagValue, e.Recipient)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if dryRun {
		plan, err := e.Service.EstimateTransfer(ctx, to, amount)
		if err != nil {
			return err
		}
		command.PrintPlan(out, plan)
		return nil
	}

	receipt, err := e.Service.TransferTokens(ctx, to, amount)
	if err != nil {
		return err
	}

	command.PrintPlan(out, receipt.Plan)
	fmt.Fprintln(out)
	command.PrintReceipt(out, receipt)

	return nil
}
