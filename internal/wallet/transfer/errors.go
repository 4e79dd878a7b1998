package transfer

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/txpool"
	"github.com/pkg/errors"
)

// Kind classifies the failures surfaced by the transfer service.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindInvalidInput
	KindInsufficientBalance
	// KindGasEstimation is never returned. It marks the recorded estimation failure on a Plan.
	KindGasEstimation
	KindSubmission
	KindReverted
	KindConfirmation
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindInvalidInput:
		return "invalid input"
	case KindInsufficientBalance:
		return "insufficient token balance"
	case KindGasEstimation:
		return "gas estimation failed"
	case KindSubmission:
		return "submission failed"
	case KindReverted:
		return "transaction reverted"
	case KindConfirmation:
		return "confirmation failed"
	case KindQuery:
		return "query failed"
	case KindUnknown:
	}

	return "unknown error"
}

// Error is returned by every Service operation. The cause is kept in Err.
type Error struct {
	Kind Kind
	Op   string
	// Hint is a suggestion for submission failures the node explained.
	Hint string
	// TxHash is set once a transaction has been broadcast.
	TxHash common.Hash
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder

	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}

	b.WriteString(e.Kind.String())

	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	if e.TxHash != (common.Hash{}) {
		b.WriteString(" (tx ")
		b.WriteString(e.TxHash.Hex())
		b.WriteString(")")
	}

	if e.Hint != "" {
		b.WriteString(" (hint: ")
		b.WriteString(e.Hint)
		b.WriteString(")")
	}

	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

type submissionHint struct {
	cause error
	hint  string
}

// Order matters, "replacement transaction underpriced" also contains "transaction underpriced".
//
//nolint:gochecknoglobals
var submissionHints = []submissionHint{
	{core.ErrIntrinsicGas, "the gas limit is below the intrinsic cost of the call, raise the gas limit"},
	{core.ErrInsufficientFunds, "the sender cannot pay gas limit × gas price in native currency, top up the account"},
	{core.ErrNonceTooLow, "the nonce was already used, another transaction from this key got mined first"},
	{core.ErrNonceTooHigh, "there is a nonce gap, an earlier transaction from this key is missing"},
	{txpool.ErrReplaceUnderpriced, "a pending transaction with the same nonce exists, raise the gas price to replace it"},
	{txpool.ErrAlreadyKnown, "the node already holds this transaction, wait for it instead of resubmitting"},
	{txpool.ErrUnderpriced, "the gas price is below the node's minimum, raise GAS_PRICE_GWEI"},
}

// ClassifySubmissionError maps a broadcast failure to a diagnostic hint. Nodes only return
// message strings over JSON-RPC, so this is the one place they get matched. Empty means no hint.
func ClassifySubmissionError(err error) string {
	if err == nil {
		return ""
	}

	msg := strings.ToLower(err.Error())
	for _, h := range submissionHints {
		if errors.Is(err, h.cause) || strings.Contains(msg, h.cause.Error()) {
			return h.hint
		}
	}

	return ""
}

func configurationFailure(op string, err error) *Error {
	return &Error{Kind: KindConfiguration, Op: op, Err: err}
}

func invalidInput(op string, err error) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: err}
}

func queryFailure(op string, err error) *Error {
	return &Error{Kind: KindQuery, Op: op, Err: err}
}

// submissionFailure keeps the hash of a signed transaction whose broadcast failed, it may
// still be pending on the node.
func submissionFailure(op string, tx *types.Transaction, err error) *Error {
	e := &Error{Kind: KindSubmission, Op: op, Hint: ClassifySubmissionError(err), Err: err}
	if tx != nil {
		e.TxHash = tx.Hash()
	}

	return e
}
