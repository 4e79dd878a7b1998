package command

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"
	"github/chapool/token-transfer/internal/wallet/token"
	"github/chapool/token-transfer/internal/wallet/transfer"
)

func PrintNetworkInfo(w io.Writer, info *transfer.NetworkInfo) {
	fmt.Fprintf(w, "Network:      %s (chain id %s)\n", info.Name, info.ChainID)
	fmt.Fprintf(w, "Block number: %d\n", info.BlockNumber)
	if info.Fees.GasPrice != nil {
		fmt.Fprintf(w, "Gas price:    %s gwei\n", token.FormatGwei(info.Fees.GasPrice))
	}
	if info.Fees.BaseFee != nil {
		fmt.Fprintf(w, "Base fee:     %s gwei\n", token.FormatGwei(info.Fees.BaseFee))
	}
	if info.Fees.MaxPriorityFeePerGas != nil {
		fmt.Fprintf(w, "Priority fee: %s gwei\n", token.FormatGwei(info.Fees.MaxPriorityFeePerGas))
	}
	if info.Fees.MaxFeePerGas != nil {
		fmt.Fprintf(w, "Max fee:      %s gwei\n", token.FormatGwei(info.Fees.MaxFeePerGas))
	}
}

func PrintTokenInfo(w io.Writer, address common.Address, meta token.Metadata) {
	fmt.Fprintf(w, "Token:        %s (%s) at %s\n", meta.Name, meta.Symbol, address.Hex())
	fmt.Fprintf(w, "Decimals:     %d\n", meta.Decimals)
}

func PrintBalance(w io.Writer, label string, balance *transfer.Balance) {
	fmt.Fprintf(w, "%s %s: %s %s (raw %s)\n", label, balance.Address.Hex(), balance.Formatted, balance.Token.Symbol, balance.Raw)
}

func PrintPlan(w io.Writer, plan *transfer.Plan) {
	fmt.Fprintf(w, "Transfer:     %s %s from %s to %s\n", plan.AmountFormatted, plan.Token.Symbol, plan.From.Hex(), plan.To.Hex())
	fmt.Fprintf(w, "Balance:      %s %s\n", token.FromBaseUnits(plan.Balance, plan.Token.Decimals), plan.Token.Symbol)

	if plan.GasEstimateFallback() {
		fmt.Fprintf(w, "Gas estimate: %d (fallback, estimation failed: %v)\n", plan.EstimatedGas, plan.GasEstimateErr)
	} else {
		fmt.Fprintf(w, "Gas estimate: %d\n", plan.EstimatedGas)
	}

	fmt.Fprintf(w, "Gas limit:    %d\n", plan.GasLimit)

	source := "network"
	if plan.GasPriceFallback {
		source = "default"
	}
	fmt.Fprintf(w, "Gas price:    %s gwei (%s)\n", token.FormatGwei(plan.GasPrice), source)
	fmt.Fprintf(w, "Max fee:      %s ETH\n", token.FormatEther(plan.MaxFee))
}

func PrintReceipt(w io.Writer, receipt *transfer.Receipt) {
	fmt.Fprintf(w, "Tx hash:      %s\n", receipt.TxHash.Hex())
	fmt.Fprintf(w, "Block:        %d (%d confirmations)\n", receipt.BlockNumber, receipt.Confirmations)
	fmt.Fprintf(w, "Gas used:     %d of %d\n", receipt.GasUsed, receipt.GasLimit)
	if receipt.EffectiveGasPrice != nil {
		fmt.Fprintf(w, "Gas price:    %s gwei\n", token.FormatGwei(receipt.EffectiveGasPrice))
	}
}

func PrintEvents(w io.Writer, events []transfer.TransferEvent, symbol string) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No transfer events found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BLOCK\tLOG\tFROM\tAMOUNT\tTX")
	for _, event := range events {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s %s\t%s\n",
			event.BlockNumber, event.LogIndex, event.From.Hex(), event.Formatted, symbol, event.TxHash.Hex())
	}
	_ = tw.Flush()
}
