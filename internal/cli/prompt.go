package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mrlokans/accounts/internal/policy"
)

// readPassword reads a terminal line without echo.
var readPassword = term.ReadPassword

// prompter reads answers from in and writes prompts to out.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, reader: bufio.NewReader(in), out: out}
}

// line prints label and reads one trimmed line. A final line without a
// newline is accepted.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	text, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(text) > 0 {
			return strings.TrimSpace(text), nil
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// secret reads without echo when in is a terminal, otherwise it falls back
// to a plain line so input can be piped.
func (p *prompter) secret(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.line(label)
	}

	fmt.Fprintf(p.out, "%s: ", label)
	pw, err := readPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(pw), nil
}

// printFieldErrors lists every field violation, one per line.
func printFieldErrors(w io.Writer, fields policy.FieldErrors) {
	for _, name := range fields.Fields() {
		for _, msg := range fields[name] {
			fmt.Fprintf(w, "  %s: %s\n", name, msg)
		}
	}
}
