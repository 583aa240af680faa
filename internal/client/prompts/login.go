package prompts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads answers from one input stream. A single buffered reader is
// shared by all prompts so consecutive answers on piped stdin are not lost.
type Prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompter creates a prompter reading from in and writing prompts to out
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:     in,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// PromptUsername prompts for username (visible input)
func (p *Prompter) PromptUsername() (string, error) {
	fmt.Fprint(p.out, "Username: ")
	username, err := p.readLine()
	if err != nil {
		return "", fmt.Errorf("failed to read username: %w", err)
	}
	return username, nil
}

// PromptToken prompts for the session token. Input is hidden when reading
// from a terminal; otherwise one line is read.
func (p *Prompter) PromptToken() (string, error) {
	fmt.Fprint(p.out, "Token: ")

	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		token, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out) // Print newline after hidden input
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(token)), nil
	}

	token, err := p.readLine()
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return token, nil
}

// Confirm asks a yes/no question. Anything but "y" or "yes" is a no.
func (p *Prompter) Confirm(message string) bool {
	fmt.Fprintf(p.out, "⚠ %s\n", message)
	fmt.Fprint(p.out, "Are you sure? [y/N]: ")

	response, err := p.readLine()
	if err != nil {
		return false
	}

	response = strings.ToLower(response)
	return response == "y" || response == "yes"
}

// readLine returns the next line without surrounding whitespace. A final line
// without newline is accepted.
func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
