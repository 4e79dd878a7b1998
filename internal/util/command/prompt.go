package command

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// ErrNoTerminal is returned by PromptPrivateKey when stdin is not interactive.
var ErrNoTerminal = errors.New("stdin is not a terminal")

// PromptPrivateKey reads a private key from the terminal without echoing it.
//
//nolint:gosec // fd fits in int on every supported platform
func PromptPrivateKey(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoTerminal
	}

	fmt.Fprint(out, "Private key: ")
	key, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to read private key")
	}

	return strings.TrimSpace(string(key)), nil
}
