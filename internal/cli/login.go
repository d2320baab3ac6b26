package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/accounts/internal/client"
	"github.com/mrlokans/accounts/internal/forms"
)

// LoginCommand signs in to a running server.
type LoginCommand struct {
	ServerURL string
	Email     string

	in  io.Reader
	out io.Writer
}

// NewLoginCommand creates a LoginCommand reading from stdin.
func NewLoginCommand() *LoginCommand {
	return &LoginCommand{in: os.Stdin, out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)

	fs.StringVar(&cmd.ServerURL, "server", serverURLFromEnv(), "Accounts server URL (or set ACCOUNTS_SERVER_URL)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (prompted when empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s login [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Sign in with email and password. The password is always prompted.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run prompts for credentials and submits the login form.
func (cmd *LoginCommand) Run() error {
	api, err := client.New(cmd.ServerURL)
	if err != nil {
		return err
	}

	p := newPrompter(cmd.in, cmd.out)
	form := forms.NewLoginForm(api)
	form.Email = cmd.Email

	if form.Email == "" {
		if form.Email, err = p.line("Email"); err != nil {
			return err
		}
	}
	if form.Password, err = p.secret("Password"); err != nil {
		return err
	}

	ctx := context.Background()
	redirect := form.Submit(ctx)
	if redirect == "" {
		return reportFailure(cmd.out, cmd.ServerURL, form.Status, form.Error, form.FieldErrors)
	}

	return showLanding(ctx, cmd.out, api, redirect)
}
