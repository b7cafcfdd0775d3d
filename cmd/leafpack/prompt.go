package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptFunc asks the user for a password. confirm requests a second entry
// that must match the first.
type promptFunc func(label string, confirm bool) (string, error)

// terminalPrompt reads a password from the controlling terminal with echo
// disabled
func terminalPrompt(label string, confirm bool) (string, error) {
	password, err := readPassword(label + ": ")
	if err != nil {
		return "", err
	}
	if !confirm {
		return password, nil
	}

	again, err := readPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != again {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("interactive password prompting requires a terminal (set LEAFPACK_PASSWORD instead)")
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // New line after hidden input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
