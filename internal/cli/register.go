package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/mrlokans/accounts/internal/client"
	"github.com/mrlokans/accounts/internal/config"
	"github.com/mrlokans/accounts/internal/forms"
	"github.com/mrlokans/accounts/internal/policy"
)

// RegisterCommand creates an account on a running server and signs it in.
type RegisterCommand struct {
	ServerURL string
	Name      string
	Email     string

	in  io.Reader
	out io.Writer
}

// NewRegisterCommand creates a RegisterCommand reading from stdin.
func NewRegisterCommand() *RegisterCommand {
	return &RegisterCommand{in: os.Stdin, out: os.Stdout}
}

// ParseFlags parses command line flags
func (cmd *RegisterCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)

	fs.StringVar(&cmd.ServerURL, "server", serverURLFromEnv(), "Accounts server URL (or set ACCOUNTS_SERVER_URL)")
	fs.StringVar(&cmd.Name, "name", "", "Display name (prompted when empty)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (prompted when empty)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s register [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an account and sign in. The password is always prompted.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run prompts for missing input and submits the registration form.
func (cmd *RegisterCommand) Run() error {
	api, err := client.New(cmd.ServerURL)
	if err != nil {
		return err
	}

	p := newPrompter(cmd.in, cmd.out)
	form := forms.NewRegisterForm(api)
	form.Name, form.Email = cmd.Name, cmd.Email

	if form.Name == "" {
		if form.Name, err = p.line("Name"); err != nil {
			return err
		}
	}
	if form.Email == "" {
		if form.Email, err = p.line("Email"); err != nil {
			return err
		}
	}
	if form.Password, err = p.secret("Password"); err != nil {
		return err
	}
	if form.ConfirmPassword, err = p.secret("Confirm Password"); err != nil {
		return err
	}

	ctx := context.Background()
	redirect := form.Submit(ctx)
	if redirect == "" {
		return reportFailure(cmd.out, cmd.ServerURL, form.Status, form.Error, form.FieldErrors)
	}

	return showLanding(ctx, cmd.out, api, redirect)
}

func serverURLFromEnv() string {
	if v := os.Getenv("ACCOUNTS_SERVER_URL"); v != "" {
		return v
	}
	return config.DefaultServerURL
}

// ErrSubmitFailed is returned after the form's own messages were printed.
var ErrSubmitFailed = errors.New("submission failed")

// insecureTransportHint explains a 403 from a server that only accepts
// its CSRF and session cookies over HTTPS.
const insecureTransportHint = "Hint: the server rejected the request (403). A server running with " +
	"AUTH_SECURE_COOKIES=true only accepts its cookies over HTTPS; use an https:// server URL " +
	"or start the server with AUTH_SECURE_COOKIES=false for local plain-HTTP use."

func reportFailure(w io.Writer, serverURL string, status int, message string, fields policy.FieldErrors) error {
	if message != "" {
		fmt.Fprintln(w, message)
	}
	if status == http.StatusForbidden && strings.HasPrefix(strings.ToLower(serverURL), "http://") {
		fmt.Fprintln(w, insecureTransportHint)
	}
	if len(fields) > 0 {
		fmt.Fprintln(w, "Please fix the following:")
		printFieldErrors(w, fields)
	}
	return ErrSubmitFailed
}

// showLanding follows the redirect the way a browser would and prints the
// one-time notification.
func showLanding(ctx context.Context, w io.Writer, api *client.Client, redirect string) error {
	landing, err := api.Landing(ctx, redirect)
	if err != nil {
		return fmt.Errorf("failed to load landing page: %w", err)
	}
	if landing.Notification != "" {
		fmt.Fprintf(w, "Success! %s\n", landing.Notification)
	}
	if landing.User != nil {
		fmt.Fprintf(w, "Signed in as %s <%s>\n", landing.User.Name, landing.User.Email)
	}
	return nil
}
