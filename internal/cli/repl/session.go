package repl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Session reads answers to prompts from the menu input.
type Session struct {
	in  *bufio.Reader
	out io.Writer
}

func newSession(in io.Reader, out io.Writer) *Session {
	return &Session{in: bufio.NewReader(in), out: out}
}

// NewSession creates a standalone session, mainly for tests.
func NewSession(in io.Reader, out io.Writer) *Session {
	return newSession(in, out)
}

// Output returns the writer prompts are printed to.
func (s *Session) Output() io.Writer {
	return s.out
}

// readLine returns the next line with its terminator. A final line without
// a terminator is returned with a nil error.
func (s *Session) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}

// Prompt prints label and returns the answer with the line terminator
// removed. Other whitespace is kept.
func (s *Session) Prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.readLine()
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// PromptInt prompts until the answer parses as a 32-bit integer.
func (s *Session) PromptInt(label string) (int32, error) {
	for {
		line, err := s.Prompt(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
		if err == nil {
			return int32(n), nil
		}
		fmt.Fprintln(s.out, "Please enter a whole number.")
	}
}

// Choose prints numbered options and returns the zero-based index chosen.
func (s *Session) Choose(title string, options []string) (int, error) {
	fmt.Fprintln(s.out, title)
	for i, o := range options {
		fmt.Fprintf(s.out, "%d. %s\n", i+1, o)
	}
	for {
		n, err := s.PromptInt("> ")
		if err != nil {
			return 0, err
		}
		if n >= 1 && int(n) <= len(options) {
			return int(n) - 1, nil
		}
		fmt.Fprintln(s.out, "Invalid choice. Please try again.")
	}
}

// Confirm asks a yes/no question. Anything but y or yes is no.
func (s *Session) Confirm(question string) (bool, error) {
	line, err := s.Prompt(question + " [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Printf writes formatted output.
func (s *Session) Printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// Println writes a line.
func (s *Session) Println(args ...any) {
	fmt.Fprintln(s.out, args...)
}
