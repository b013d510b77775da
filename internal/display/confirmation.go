package display

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer asks the operator for a yes/no decision before destructive
// operations. AutoApprove skips the prompt and answers yes.
type Confirmer struct {
	in          io.Reader
	out         io.Writer
	colors      ColorSystem
	AutoApprove bool
}

// NewConfirmer creates a confirmer reading from stdin.
func NewConfirmer(colors ColorSystem, autoApprove bool) *Confirmer {
	return &Confirmer{
		in:          os.Stdin,
		out:         os.Stdout,
		colors:      colors,
		AutoApprove: autoApprove,
	}
}

// NewConfirmerWithStreams creates a confirmer with custom streams.
func NewConfirmerWithStreams(in io.Reader, out io.Writer, colors ColorSystem, autoApprove bool) *Confirmer {
	return &Confirmer{in: in, out: out, colors: colors, AutoApprove: autoApprove}
}

// Confirm prints the question and waits for a y/yes answer. Anything
// else, including EOF on a non-interactive stdin, counts as no.
func (c *Confirmer) Confirm(format string, args ...interface{}) bool {
	if c.AutoApprove {
		return true
	}

	question := fmt.Sprintf(format, args...)
	fmt.Fprintf(c.out, "%s [y/N]: ", c.colors.Sprintf(c.colors.Theme().Warning, "%s", question))

	scanner := bufio.NewScanner(c.in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
