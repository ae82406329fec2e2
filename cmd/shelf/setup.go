package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/mmcdole/shelf/internal/adapter"
	"golang.org/x/term"
)

// runSetupFlow asks for the API client id and saves it
func runSetupFlow(cfg *adapter.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Shelf!")
	fmt.Println()
	fmt.Println("Create an API app at https://trakt.tv/oauth/applications to get a client id.")

	for cfg.Trakt.ClientID == "" {
		fmt.Print("Client ID: ")
		id, err := readSecret()
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if id == "" {
			fmt.Println("Client ID cannot be empty. Please try again.")
			continue
		}
		cfg.Trakt.ClientID = id
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run shelf again to start the application.")
	return nil
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
