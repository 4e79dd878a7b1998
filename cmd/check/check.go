package check

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/token-transfer/internal/config"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validates the setup without touching the network",
		Long: `Validates the setup without touching the network

Checks that every required variable is set, holds no placeholder from
the example .env and is well formed. Exits 1 when a check fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Run(cmd.OutOrStdout(), config.DefaultAppConfigFromEnv().Transfer)
		},
	}
}

// Run prints one line per check of cfg and fails if any check failed.
func Run(out io.Writer, cfg config.Transfer) error {
	report := config.Validate(cfg)

	for _, c := range report.Checks {
		fmt.Fprintf(out, "[%s] %-32s %s\n", c.Status, c.Name, c.Message)
	}

	if !report.OK() {
		if missing := report.Missing(); len(missing) > 0 {
			return errors.Errorf("setup check failed, missing: %s", strings.Join(missing, ", "))
		}
		return errors.New("setup check failed")
	}

	fmt.Fprintln(out, "Setup looks good")

	return nil
}
