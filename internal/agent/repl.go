package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

// TurnFunc handles one line of user input.
type TurnFunc func(ctx context.Context, line string) error

// REPL reads one line per turn until EOF, exit or quit.
type REPL struct {
	In     io.Reader
	Out    io.Writer
	Prompt string

	// Interactive enables the input prompt. Set it when In is a terminal.
	Interactive bool

	// OnError reports a failed turn. Defaults to printing with ancli.
	OnError func(error)
}

func (r *REPL) Run(ctx context.Context, turn TurnFunc) error {
	onError := r.OnError
	if onError == nil {
		onError = func(err error) {
			ancli.PrintErr(fmt.Sprintf("%v\n", err))
		}
	}
	prompt := r.Prompt
	if prompt == "" {
		prompt = "> "
	}

	done := make(chan struct{})
	defer close(done)
	lines, readErr := r.readLines(done)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		if r.Interactive {
			fmt.Fprint(r.Out, ancli.ColoredMessage(ancli.CYAN, prompt))
		}
		var raw string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return <-readErr
			}
			raw = l
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if isExit(line) {
			return nil
		}

		if err := turn(ctx, line); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			onError(err)
		}
	}
}

// readLines scans In on its own goroutine so a blocked read never holds up
// cancellation. The goroutine stops once done is closed, or at the next
// line In delivers after that.
func (r *REPL) readLines(done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.In)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

func isExit(line string) bool {
	switch strings.ToLower(line) {
	case "exit", "quit":
		return true
	}
	return false
}
