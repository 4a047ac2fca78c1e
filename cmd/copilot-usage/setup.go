package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/rbrandt/copilot-usage-tui/internal/config"
	"github.com/rbrandt/copilot-usage-tui/internal/models"
)

// runSetup interactively collects a token and theme and persists them,
// replacing any previous configuration.
func runSetup(cfgMgr *config.Manager) (*config.Config, error) {
	fmt.Println("copilot-usage setup")
	fmt.Println()
	fmt.Println("A GitHub personal access token with the \"Plan\" read permission")
	fmt.Println("is required (fine-grained tokens: github_pat_..., classic: ghp_...).")
	fmt.Println()

	token, err := promptToken()
	if err != nil {
		return nil, err
	}

	theme, err := promptTheme()
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	cfg.Token = token
	cfg.Theme = theme

	if err := cfgMgr.Save(cfg); err != nil {
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Saved to %s\n\n", cfgMgr.Path())
	return cfg, nil
}

// promptToken reads the token without echo and validates its prefix.
func promptToken() (string, error) {
	for {
		fmt.Print("Token: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}

		token := strings.TrimSpace(string(raw))
		if validToken(token) {
			return token, nil
		}
		fmt.Println("That does not look like a GitHub token (expected ghp_... or github_pat_...).")
	}
}

func validToken(token string) bool {
	return strings.HasPrefix(token, "ghp_") || strings.HasPrefix(token, "github_pat_")
}

// promptTheme offers the theme list; empty input keeps the default.
func promptTheme() (string, error) {
	names := models.ThemeNames()

	fmt.Println("Themes:")
	for i, name := range names {
		fmt.Printf("  %d) %s\n", i+1, name)
	}
	fmt.Print("Pick a theme [1]: ")

	line, err := readLine()
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return names[0], nil
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(names) {
		fmt.Println("Unknown choice, keeping the default theme.")
		return names[0], nil
	}
	return names[n-1], nil
}

// promptUsername asks for the GitHub login when the token cannot
// self-identify.
func promptUsername() (string, error) {
	fmt.Print("GitHub username: ")
	line, err := readLine()
	if err != nil {
		return "", err
	}
	username := strings.TrimSpace(line)
	if username == "" {
		return "", fmt.Errorf("a username is required")
	}
	return username, nil
}

func readLine() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return line, nil
}
