package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github/chapool/token-transfer/internal/config"
)

const testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func validTransferConfig() config.Transfer {
	return config.Transfer{
		RPCURLs:              []string{"https://sepolia.infura.io/v3/abc"},
		PrivateKey:           testPrivateKey,
		TokenContractAddress: "0x312fc28767329faf567f3ad61943b447a53d09d6",
		RecipientAddress:     "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
	}
}

func TestValidateOK(t *testing.T) {
	report := config.Validate(validTransferConfig())

	assert.True(t, report.OK())
	assert.Empty(t, report.Missing())

	var keyCheck *config.Check
	for i := range report.Checks {
		if report.Checks[i].Name == "private-key" {
			keyCheck = &report.Checks[i]
		}
	}
	if assert.NotNil(t, keyCheck) {
		assert.Contains(t, keyCheck.Message, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	}
}

func TestValidateMissingAndPlaceholders(t *testing.T) {
	cfg := validTransferConfig()
	cfg.PrivateKey = ""
	cfg.RecipientAddress = "YOUR_RECIPIENT_ADDRESS"
	cfg.RPCURLs = []string{"https://mainnet.infura.io/v3/your_project_id"}

	report := config.Validate(cfg)

	assert.False(t, report.OK())
	assert.Equal(t, []string{"RPC_URL", "PRIVATE_KEY", "RECIPIENT_ADDRESS"}, report.Missing())
}

func TestValidateFormats(t *testing.T) {
	cfg := validTransferConfig()
	cfg.TokenContractAddress = "0xInvalidAddress"
	cfg.PrivateKey = "0x1234"
	cfg.RPCURLs = []string{"ftp://rpc.example"}
	cfg.GasPriceGwei = "-1"

	report := config.Validate(cfg)
	assert.False(t, report.OK())

	failed := map[string]bool{}
	for _, c := range report.Checks {
		if c.Status == config.StatusFail {
			failed[c.Name] = true
		}
	}

	assert.True(t, failed["address:TOKEN_CONTRACT_ADDRESS"])
	assert.True(t, failed["private-key"])
	assert.True(t, failed["rpc-url"])
	assert.True(t, failed["gas-price"])
	assert.False(t, failed["address:RECIPIENT_ADDRESS"])
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, config.IsPlaceholder("YOUR_PRIVATE_KEY"))
	assert.True(t, config.IsPlaceholder("https://x/your_key"))
	assert.False(t, config.IsPlaceholder("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"))
}
