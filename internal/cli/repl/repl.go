package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrExit is returned by an Item action to leave the menu.
var ErrExit = errors.New("repl: exit")

// Item is one menu entry.
type Item struct {
	// Key is what the user types to select the item, usually a number.
	Key string

	Label string

	// Words are extra names accepted for the item, e.g. "add".
	Words []string

	Action func(ctx context.Context, s *Session) error
}

// REPL runs the menu loop.
type REPL struct {
	input     io.Reader
	output    io.Writer
	title     string
	items     []Item
	completer *Completer
	history   *History
}

// Option configures the REPL.
type Option func(*REPL)

// WithIO sets input and output.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(r *REPL) {
		r.input = in
		r.output = out
	}
}

// WithTitle sets the menu heading.
func WithTitle(title string) Option {
	return func(r *REPL) {
		r.title = title
	}
}

// WithHistory sets the selection history.
func WithHistory(h *History) Option {
	return func(r *REPL) {
		r.history = h
	}
}

// New creates a new REPL over items.
func New(items []Item, opts ...Option) *REPL {
	r := &REPL{
		input:   os.Stdin,
		output:  os.Stdout,
		title:   "MENU",
		items:   items,
		history: NewHistory(""),
	}

	for _, opt := range opts {
		opt(r)
	}

	r.completer = NewCompleter(items)
	return r
}

// Run shows the menu until an item returns ErrExit, the input ends or ctx
// is canceled. Action errors are printed and the menu is shown again.
func (r *REPL) Run(ctx context.Context) error {
	s := newSession(r.input, r.output)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.printMenu()

		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		item, ok := r.completer.Resolve(line)
		if !ok {
			s.Println("Invalid choice. Please try again.")
			if matches := r.completer.Complete(line); len(matches) > 1 {
				s.Printf("Did you mean: %s\n", strings.Join(matches, ", "))
			}
			continue
		}
		r.history.Add(item.Key)

		err = item.Action(ctx, s)
		switch {
		case errors.Is(err, ErrExit):
			return nil
		case errors.Is(err, io.EOF):
			fmt.Fprintln(r.output)
			return nil
		case err != nil:
			s.Printf("Error: %v\n", err)
		}
		s.Println()
	}
}

func (r *REPL) printMenu() {
	fmt.Fprintln(r.output, r.title)
	fmt.Fprintln(r.output, strings.Repeat("-", len(r.title)))
	fmt.Fprintln(r.output, "Enter your choice:")
	for _, it := range r.items {
		fmt.Fprintf(r.output, "%s. %s\n", it.Key, it.Label)
	}
	fmt.Fprint(r.output, "> ")
}
