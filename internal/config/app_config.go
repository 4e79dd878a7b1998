package config

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github/chapool/token-transfer/internal/util"
)

const (
	// MinConfirmations is the lowest confirmation depth a transfer waits for.
	MinConfirmations uint64 = 2

	defaultReceiptPollInterval = 3 * time.Second
	defaultDialTimeout         = 10 * time.Second
)

type Logger struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
}

// Transfer holds everything the transfer executor is built from.
type Transfer struct {
	RPCURLs              []string
	PrivateKey           string `json:"-"`
	TokenContractAddress string
	RecipientAddress     string

	// GasPriceGwei is only used when the node reports no gas price. Empty means 20 gwei.
	GasPriceGwei string

	Confirmations uint64
	// ConfirmTimeout bounds the confirmation wait, 0 waits forever.
	ConfirmTimeout      time.Duration
	ReceiptPollInterval time.Duration
	EventsBlockChunk    uint64
	DialTimeout         time.Duration
}

type Metrics struct {
	// TextfilePath receives a prometheus textfile after each command if set.
	TextfilePath string
}

type App struct {
	Transfer Transfer
	Logger   Logger
	Metrics  Metrics
}

// DefaultAppConfigFromEnv returns the app config built from ENV after applying an optional .env file.
// ENV_FILE overrides the location of that file.
func DefaultAppConfigFromEnv() App {
	DotEnvTryLoad(util.GetEnv("ENV_FILE", ".env"), os.Setenv)

	confirmations := util.GetEnvAsUint64("TRANSFER_CONFIRMATIONS", MinConfirmations)
	if confirmations < MinConfirmations {
		confirmations = MinConfirmations
	}

	return App{
		Transfer: Transfer{
			RPCURLs:              util.GetEnvAsStringArr("RPC_URL", []string{}),
			PrivateKey:           util.GetEnv("PRIVATE_KEY", ""),
			TokenContractAddress: util.GetEnv("TOKEN_CONTRACT_ADDRESS", ""),
			RecipientAddress:     util.GetEnv("RECIPIENT_ADDRESS", ""),
			GasPriceGwei:         util.GetEnv("GAS_PRICE_GWEI", ""),
			Confirmations:        confirmations,
			ConfirmTimeout:       util.GetEnvAsDuration("TRANSFER_CONFIRM_TIMEOUT", 0),
			ReceiptPollInterval:  util.GetEnvAsDuration("TRANSFER_RECEIPT_POLL_INTERVAL", defaultReceiptPollInterval),
			EventsBlockChunk:     util.GetEnvAsUint64("EVENTS_BLOCK_CHUNK", 0),
			DialTimeout:          util.GetEnvAsDuration("RPC_DIAL_TIMEOUT", defaultDialTimeout),
		},
		Logger: Logger{
			Level:              util.LogLevelFromString(util.GetEnv("LOG_LEVEL", zerolog.InfoLevel.String())),
			PrettyPrintConsole: util.GetEnvAsBool("LOG_PRETTY_PRINT_CONSOLE", true),
		},
		Metrics: Metrics{
			TextfilePath: util.GetEnv("METRICS_TEXTFILE", ""),
		},
	}
}
