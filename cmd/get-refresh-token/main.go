package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/krushndayshmookh/krushn-calendar/utils"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const playgroundRedirect = "https://developers.google.com/oauthplayground"

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "get-refresh-token",
		Usage: "Obtain a Google Calendar refresh token for passphrase mode.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "client-id", EnvVars: []string{"GOOGLE_CLIENT_ID"}},
			&cli.StringFlag{Name: "client-secret", EnvVars: []string{"GOOGLE_CLIENT_SECRET"}},
			&cli.StringFlag{Name: "redirect-url", Value: playgroundRedirect, Usage: "Redirect URI registered for the OAuth client"},
		},
		Action: func(c *cli.Context) error {
			if c.String("client-id") == "" || c.String("client-secret") == "" {
				return errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET must be set")
			}
			config := &oauth2.Config{
				ClientID:     c.String("client-id"),
				ClientSecret: c.String("client-secret"),
				RedirectURL:  c.String("redirect-url"),
				Scopes:       []string{calendar.CalendarScope},
				Endpoint:     google.Endpoint,
			}
			return obtainRefreshToken(c.Context, config, os.Stdin, os.Stdout)
		},
		Commands: []*cli.Command{
			hashPasswordCommand(),
			generateKeyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Error("get-refresh-token failed")
		os.Exit(1)
	}
}

// obtainRefreshToken prints the consent URL, reads the code the user pastes
// back and prints the resulting refresh token as an env line.
func obtainRefreshToken(ctx context.Context, config *oauth2.Config, in io.Reader, out io.Writer) error {
	url := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Authorize this app by visiting this url:\n%s\n\n", url)
	fmt.Fprint(out, "Enter the code from that page here: ")

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return errors.New("authorization code is required")
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return errors.New("google did not return a refresh token; revoke the app's access and try again")
	}

	fmt.Fprintf(out, "\nGOOGLE_REFRESH_TOKEN=%s\n", token.RefreshToken)
	return nil
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:      "hash-password",
		Usage:     "Print a bcrypt hash for APP_PASSWORD_HASH.",
		ArgsUsage: "<passphrase>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("exactly one passphrase argument is required")
			}
			hash, err := utils.HashPassword(c.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "APP_PASSWORD_HASH=%s\n", hash)
			return nil
		},
	}
}

func generateKeyCommand() *cli.Command {
	return &cli.Command{
		Name:  "gen-key",
		Usage: "Print a random TOKEN_ENCRYPTION_KEY.",
		Action: func(c *cli.Context) error {
			key, err := utils.GenerateEncryptionKey()
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "TOKEN_ENCRYPTION_KEY=%s\n", utils.KeyToHex(key))
			return nil
		},
	}
}
