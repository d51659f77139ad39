package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/jjwjr94/google-drive-mcp/internal/config"
	"github.com/jjwjr94/google-drive-mcp/internal/google"
)

// AccessTokenEnv is the variable the server reads its fallback token from.
const AccessTokenEnv = "GOOGLE_DRIVE_ACCESS_TOKEN"

const tokenCommandTimeout = 30 * time.Second

type tokenOptions struct {
	envFile  string
	keyFile  string
	writeEnv bool
	readOnly bool
}

func newTokenCmd() *cobra.Command {
	var opts tokenOptions

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Obtain and check Google access tokens",
		Long: `Helpers for getting an access token the server can use.

  generate  mint a token from a service account key file
  refresh   exchange GOOGLE_REFRESH_TOKEN for a new access token
  test      check that a token is accepted by Google Drive`,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Path to the .env file to read and, with --write-env, update")

	cmd.AddCommand(newTokenGenerateCmd(&opts))
	cmd.AddCommand(newTokenRefreshCmd(&opts))
	cmd.AddCommand(newTokenTestCmd(&opts))

	return cmd
}

func newTokenGenerateCmd(opts *tokenOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an access token from a service account key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadTokenConfig(opts.envFile)
			if err != nil {
				return err
			}

			keyFile := opts.keyFile
			if keyFile == "" {
				keyFile = cfg.Google.ServiceAccountKeyFile
			}

			scopes := google.DefaultScopes
			if opts.readOnly {
				scopes = google.ReadOnlyScopes
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), tokenCommandTimeout)
			defer cancel()

			token, err := google.ServiceAccountToken(ctx, keyFile, scopes...)
			if err != nil {
				return err
			}
			return reportToken(cmd.OutOrStdout(), token, cfg.Server.Port, opts)
		},
	}

	cmd.Flags().StringVar(&opts.keyFile, "key-file", "", "Service account key file (env: GOOGLE_SERVICE_ACCOUNT_KEY_FILE, default "+config.DefaultKeyFile+")")
	cmd.Flags().BoolVar(&opts.writeEnv, "write-env", false, "Write the token to the .env file as "+AccessTokenEnv)
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Request read-only scopes")

	return cmd
}

func newTokenRefreshCmd(opts *tokenOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Exchange a refresh token for a new access token",
		Long: `Exchange GOOGLE_REFRESH_TOKEN for a new access token using the OAuth
client in GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadTokenConfig(opts.envFile)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), tokenCommandTimeout)
			defer cancel()

			token, err := google.RefreshedToken(ctx, google.RefreshCredentials{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				RefreshToken: cfg.Google.RefreshToken,
			})
			if err != nil {
				return err
			}
			return reportToken(cmd.OutOrStdout(), token, cfg.Server.Port, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.writeEnv, "write-env", false, "Write the token to the .env file as "+AccessTokenEnv)

	return cmd
}

func newTokenTestCmd(opts *tokenOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "test [token]",
		Short: "Check that an access token works",
		Long:  "Check a token against Google Drive. Without an argument the " + AccessTokenEnv + " value is tested.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadTokenConfig(opts.envFile)
			if err != nil {
				return err
			}

			token := cfg.Google.AccessToken
			if len(args) == 1 {
				token = args[0]
			}
			if token == "" {
				return fmt.Errorf("no token given and %s is not set", AccessTokenEnv)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), tokenCommandTimeout)
			defer cancel()

			holder := google.NewHolder(google.NewClient, "")
			return reportValidation(cmd.OutOrStdout(), holder.Validate(ctx, token))
		},
	}
}

func loadTokenConfig(envFile string) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	return config.Load("")
}

func reportToken(w io.Writer, token *oauth2.Token, port int, opts *tokenOptions) error {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	green.Fprintln(w, "Access token obtained")
	fmt.Fprintf(w, "\n%s\n\n", token.AccessToken)
	if !token.Expiry.IsZero() {
		cyan.Fprint(w, "Expires: ")
		fmt.Fprintf(w, "%s (in %s)\n", token.Expiry.Format(time.RFC3339), time.Until(token.Expiry).Round(time.Second))
	}

	if opts.writeEnv {
		if err := writeEnvToken(opts.envFile, token.AccessToken); err != nil {
			return err
		}
		cyan.Fprint(w, "Saved: ")
		fmt.Fprintf(w, "%s in %s\n", AccessTokenEnv, opts.envFile)
	}

	fmt.Fprintln(w, "\nSet it on a running server with:")
	fmt.Fprintf(w, "  %s\n", setTokenCommand(port, token.AccessToken))
	return nil
}

func reportValidation(w io.Writer, valid bool) error {
	if !valid {
		color.New(color.FgRed).Fprintln(w, "Token is invalid or expired")
		return errors.New("token validation failed")
	}
	color.New(color.FgGreen).Fprintln(w, "Token is valid")
	return nil
}

func setTokenCommand(port int, token string) string {
	return fmt.Sprintf(`curl -X POST http://localhost:%d/set-token -H "Content-Type: application/json" -d '{"accessToken":"%s"}'`, port, token)
}

// writeEnvToken stores the token in the .env file, keeping the other
// variables. The file is created when missing.
func writeEnvToken(path, token string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		env = make(map[string]string)
	}

	env[AccessTokenEnv] = token
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
