package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var pinPattern = regexp.MustCompile(`^\d{6}$`)

// readPIN prompts for the 6-digit share PIN without echoing it.
func readPIN(w io.Writer) (string, error) {
	fmt.Fprint(w, "PIN: ")
	raw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}

	pin := string(raw)
	if !pinPattern.MatchString(pin) {
		return "", fmt.Errorf("a PIN is exactly six digits")
	}
	return pin, nil
}
