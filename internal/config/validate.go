package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

const privateKeyHexLength = 64

// Status of a single setup check.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	default:
		return "fail"
	}
}

type Check struct {
	Name    string
	Status  Status
	Message string
}

// Report is the outcome of Validate.
type Report struct {
	Checks []Check
}

// OK is true when no check failed. Warnings do not fail a report.
func (r Report) OK() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return false
		}
	}

	return true
}

// Missing lists the required variables that are unset or still hold a placeholder.
func (r Report) Missing() []string {
	missing := make([]string, 0)
	for _, c := range r.Checks {
		if strings.HasPrefix(c.Name, requiredPrefix) && c.Status == StatusFail {
			missing = append(missing, strings.TrimPrefix(c.Name, requiredPrefix))
		}
	}

	return missing
}

func (r *Report) add(name string, status Status, format string, args ...any) {
	r.Checks = append(r.Checks, Check{Name: name, Status: status, Message: fmt.Sprintf(format, args...)})
}

const requiredPrefix = "env:"

// IsPlaceholder reports values copied from an example .env that were never filled in.
func IsPlaceholder(value string) bool {
	return strings.Contains(value, "YOUR_") || strings.Contains(value, "your_")
}

// Validate inspects the transfer configuration without touching the network.
func Validate(cfg Transfer) Report {
	var report Report

	required := []struct {
		name  string
		value string
	}{
		{"RPC_URL", strings.Join(cfg.RPCURLs, ",")},
		{"PRIVATE_KEY", cfg.PrivateKey},
		{"TOKEN_CONTRACT_ADDRESS", cfg.TokenContractAddress},
		{"RECIPIENT_ADDRESS", cfg.RecipientAddress},
	}

	for _, r := range required {
		switch {
		case strings.TrimSpace(r.value) == "":
			report.add(requiredPrefix+r.name, StatusFail, "%s: not set", r.name)
		case IsPlaceholder(r.value):
			report.add(requiredPrefix+r.name, StatusFail, "%s: set but contains placeholder value", r.name)
		default:
			report.add(requiredPrefix+r.name, StatusPass, "%s: set", r.name)
		}
	}

	validateAddress(&report, "TOKEN_CONTRACT_ADDRESS", cfg.TokenContractAddress)
	validateAddress(&report, "RECIPIENT_ADDRESS", cfg.RecipientAddress)
	validatePrivateKey(&report, cfg.PrivateKey)

	for _, raw := range cfg.RPCURLs {
		validateRPCURL(&report, raw)
	}

	if cfg.GasPriceGwei != "" {
		price, err := decimal.NewFromString(strings.TrimSpace(cfg.GasPriceGwei))
		switch {
		case err != nil:
			report.add("gas-price", StatusFail, "GAS_PRICE_GWEI: invalid number %q", cfg.GasPriceGwei)
		case price.IsNegative():
			report.add("gas-price", StatusFail, "GAS_PRICE_GWEI: must not be negative")
		default:
			report.add("gas-price", StatusPass, "GAS_PRICE_GWEI: %s gwei", price.String())
		}
	}

	return report
}

func validateAddress(report *Report, name string, value string) {
	if value == "" || IsPlaceholder(value) {
		return
	}

	if !common.IsHexAddress(value) {
		report.add("address:"+name, StatusFail, "%s: invalid address", name)
		return
	}

	report.add("address:"+name, StatusPass, "%s: valid address", name)
}

func validatePrivateKey(report *Report, value string) {
	if value == "" {
		return
	}

	if IsPlaceholder(value) {
		report.add("private-key", StatusWarn, "PRIVATE_KEY: using placeholder value")
		return
	}

	hexKey := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if len(hexKey) != privateKeyHexLength {
		report.add("private-key", StatusFail, "PRIVATE_KEY: expected %d hex characters, got %d", privateKeyHexLength, len(hexKey))
		return
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		report.add("private-key", StatusFail, "PRIVATE_KEY: invalid key: %v", err)
		return
	}

	report.add("private-key", StatusPass, "PRIVATE_KEY: valid, wallet address %s", crypto.PubkeyToAddress(key.PublicKey).Hex())
}

func validateRPCURL(report *Report, raw string) {
	if IsPlaceholder(raw) {
		report.add("rpc-url", StatusWarn, "RPC_URL: using placeholder value")
		return
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		report.add("rpc-url", StatusFail, "RPC_URL: invalid URL %q", raw)
		return
	}

	switch u.Scheme {
	case "http", "https", "ws", "wss":
		report.add("rpc-url", StatusPass, "RPC_URL: valid (%s://%s)", u.Scheme, u.Hostname())
	default:
		report.add("rpc-url", StatusFail, "RPC_URL: unsupported scheme %q", u.Scheme)
	}
}
