// Package session runs the interactive read loop around an interpreter.
package session

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/interp"
	"github.com/hpungsan/tally/internal/logging"
)

const (
	Greeting  = "Hello! Tally here. What can I do for you today? Type 'help' to see the commands."
	Farewell  = "Bye. Hope to see you again soon!"
	Separator = "____________________________________________________________"
)

// exitWords end a session, matched case-insensitively.
var exitWords = map[string]bool{
	"bye":  true,
	"exit": true,
	"end":  true,
	"quit": true,
}

// IsExitCommand reports whether line is a session-terminating word.
func IsExitCommand(line string) bool {
	return exitWords[strings.ToLower(strings.TrimSpace(line))]
}

// HelpText lists every accepted command.
func HelpText() string {
	return strings.Join([]string{
		"Available commands:",
		"  list                                   list all tasks",
		"  todo <description>                     add a todo",
		"  deadline <description> /by <date>      add a deadline",
		"  event <description> /from <t> /to <t>  add an event",
		"  mark <n>                               mark task n as done",
		"  unmark <n>                             mark task n as not done",
		"  delete <n>                             delete task n",
		"  help                                   show this message",
		"  bye | exit | end | quit                end the session",
	}, "\n")
}

// Executor runs one command line.
type Executor interface {
	Execute(ctx context.Context, line string) (*interp.Result, error)
}

// Options configures a Session.
type Options struct {
	// Prompt is written before each line is read. Empty means no prompt.
	Prompt string

	// Quiet suppresses the greeting and farewell.
	Quiet bool

	Logger *slog.Logger
}

// Session feeds input lines to an Executor and writes rendered responses.
type Session struct {
	exec   Executor
	opts   Options
	logger *slog.Logger
}

// New creates a Session.
func New(exec Executor, opts Options) *Session {
	return &Session{
		exec:   exec,
		opts:   opts,
		logger: logging.Module(opts.Logger, "session"),
	}
}

// Run reads commands from in until an exit word, end of input, or ctx is
// done. Command errors are rendered to out and never end the session; only
// read and write failures are returned.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	w := &writer{out: out}
	if !s.opts.Quiet {
		w.block(Greeting)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lines := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.opts.Prompt != "" {
			w.printf("%s", s.opts.Prompt)
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines++

		if IsExitCommand(line) {
			if !s.opts.Quiet {
				w.block(Farewell)
			}
			s.logger.Info("session ended", "commands", lines)
			return w.err
		}

		w.block(s.Respond(ctx, line))
		if w.err != nil {
			return w.err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	s.logger.Info("input closed", "commands", lines)
	return w.err
}

// Respond executes one line and renders the response text, including any
// error or storage warning.
func (s *Session) Respond(ctx context.Context, line string) string {
	if strings.EqualFold(strings.TrimSpace(line), "help") {
		return HelpText()
	}

	res, err := s.exec.Execute(ctx, line)
	if err != nil {
		return "Error: " + describe(err)
	}
	if res.StorageErr != nil {
		return res.Message + "\nWarning: changes were not saved: " + describe(res.StorageErr)
	}
	return res.Message
}

// describe drops the code prefix from coded errors.
func describe(err error) string {
	if tErr, ok := errors.As(err); ok {
		return tErr.Message
	}
	return err.Error()
}

// writer keeps the first write error so Run can report it once.
type writer struct {
	out io.Writer
	err error
}

func (w *writer) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.out, format, args...)
}

func (w *writer) block(msg string) {
	w.printf("%s\n%s\n", msg, Separator)
}
