package command

// root.go defines the root command and the global flags.

import (
	"errors"
	"fmt"
	"os"

	"reviewhub/cmd/cli/authentication"
	"reviewhub/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	apiURL   string // API server URL
	token    string // explicit token, overrides the keyring
	page     int
	pageSize int
)

var rootCmd = &cobra.Command{
	Use:   "reviewhub",
	Short: "reviewhub - command line client for the reviewhub API",
	Long: `reviewhub talks to a reviewhub API server. Use it to:
- sign up and exchange a confirmation code for a token
- browse titles, categories and genres
- write, amend and withdraw reviews
- comment on reviews

Use "reviewhub [command] --help" to see the options of a command.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("REVIEWHUB_API", "http://localhost:8080"), "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (defaults to the stored login)")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newClient returns an anonymous client.
func newClient() *client.HTTPClient {
	return client.NewHTTPClient(apiURL)
}

// authenticatedClient attaches the --token flag or the stored login.
func authenticatedClient() (*client.HTTPClient, error) {
	c := newClient()
	if token != "" {
		c.SetToken(token)
		return c, nil
	}

	creds, err := authentication.GetToken()
	if errors.Is(err, authentication.ErrNotLoggedIn) {
		return nil, fmt.Errorf("%w: run \"reviewhub auth token\" first", err)
	}
	if err != nil {
		return nil, err
	}
	c.SetToken(creds.AccessToken)
	return c, nil
}

// optionalClient uses stored credentials when present and falls back to anonymous.
func optionalClient() *client.HTTPClient {
	if c, err := authenticatedClient(); err == nil {
		return c
	}
	return newClient()
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "items per page")
}

func success(format string, args ...any) {
	color.Green("✓ "+format, args...)
}
