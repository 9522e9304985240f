package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/stellwand/sso-cookie-helper/internal/config"
	"github.com/stellwand/sso-cookie-helper/internal/security"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:  "ssocookie",
		Usage: "mint, verify, and inspect SSO auth tickets",
		Commands: []*cli.Command{
			mintCommand(),
			verifyCommand(),
			inspectCommand(),
		},
	}
}

// keyFlags are shared by every command that needs the signing key.
func keyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "key",
			Aliases: []string{"k"},
			Usage:   "signing key, hex or base64 encoded",
		},
		&cli.StringFlag{
			Name:  "key-env",
			Usage: "name of the environment variable holding the key",
			Value: "SSO_SIGNING_KEY",
		},
	}
}

// resolveKey decodes the signing key from --key, falling back to the
// variable named by --key-env. Same decoder as the server config, so both
// sides accept the same key spellings.
func resolveKey(c *cli.Context) ([]byte, error) {
	encoded := c.String("key")
	if encoded == "" {
		encoded = os.Getenv(c.String("key-env"))
	}
	if encoded == "" {
		return nil, fmt.Errorf("no signing key: pass --key or set %s", c.String("key-env"))
	}
	return config.DecodeKey(encoded)
}

func mintCommand() *cli.Command {
	return &cli.Command{
		Name:  "mint",
		Usage: "Mint a signed ticket",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "user name to embed",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "roles",
				Aliases: []string{"r"},
				Usage:   "role string to embed (delimiter convention is yours)",
			},
			&cli.StringFlag{
				Name:     "client-tag",
				Aliases:  []string{"t"},
				Usage:    "client tag (User-Agent) the ticket is bound to",
				Required: true,
			},
			&cli.Int64Flag{
				Name:  "timestamp",
				Usage: "issue time as unix seconds (default: now)",
			},
		}, keyFlags()...),
		Action: mintAction,
	}
}

func mintAction(c *cli.Context) error {
	key, err := resolveKey(c)
	if err != nil {
		return err
	}

	issuedAt := time.Now()
	if c.IsSet("timestamp") {
		issuedAt = time.Unix(c.Int64("timestamp"), 0)
	}

	ticket := security.BuildTicket(key, c.String("user"), c.String("roles"), c.String("client-tag"), issuedAt)
	fmt.Fprintln(c.App.Writer, ticket)
	return nil
}

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify a ticket and print its identity",
		ArgsUsage: "TICKET",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "client-tag",
				Aliases:  []string{"t"},
				Usage:    "client tag (User-Agent) presenting the ticket",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "max-age",
				Usage: "accept tickets up to this old",
				Value: security.DefaultTicketMaxAge,
			},
			&cli.DurationFlag{
				Name:  "skew",
				Usage: "tolerated future clock drift",
				Value: security.DefaultTicketSkew,
			},
			&cli.Int64Flag{
				Name:  "at",
				Usage: "verify as of this unix time instead of now",
			},
		}, keyFlags()...),
		Action: verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one TICKET argument")
	}
	key, err := resolveKey(c)
	if err != nil {
		return err
	}

	opts := security.TicketOpts{
		MaxAge: c.Duration("max-age"),
		Skew:   c.Duration("skew"),
	}
	if c.IsSet("at") {
		at := time.Unix(c.Int64("at"), 0)
		opts.Now = func() time.Time { return at }
	}

	id, err := security.VerifyTicket(key, c.Args().First(), c.String("client-tag"), opts)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "user:  %s\nroles: %s\n", id.User, id.Roles)
	return nil
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Decode a ticket's fields without verifying it",
		ArgsUsage: "TICKET",
		Action:    inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one TICKET argument")
	}

	info, err := security.InspectTicket(c.Args().First())
	if err != nil {
		return fmt.Errorf("inspect failed: %w", err)
	}

	fmt.Fprintf(c.App.Writer,
		"user:      %s\nroles:     %s\nissued-at: %s (%d)\nsignature: %s\nWARNING: fields are UNVERIFIED - run 'ssocookie verify' to check them\n",
		info.User, info.Roles, info.IssuedAt.UTC().Format(time.RFC3339), info.IssuedAt.Unix(), info.Sig)
	return nil
}
