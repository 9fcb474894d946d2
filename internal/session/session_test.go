package session

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/tally/internal/interp"
	"github.com/hpungsan/tally/internal/task"
	"github.com/hpungsan/tally/internal/tasklist"
)

type failingSaver struct{}

func (failingSaver) Save(context.Context, []task.Task) error {
	return fmt.Errorf("disk full")
}

func newSession(saver interp.Saver, opts Options) (*Session, *tasklist.List) {
	list := tasklist.New()
	return New(interp.New(list, saver, interp.Options{StrictDates: true}), opts), list
}

func run(t *testing.T, s *Session, input string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, s.Run(context.Background(), strings.NewReader(input), &out))
	return out.String()
}

func TestIsExitCommand(t *testing.T) {
	for _, line := range []string{"bye", "EXIT", " End ", "Quit"} {
		if !IsExitCommand(line) {
			t.Errorf("IsExitCommand(%q) = false", line)
		}
	}
	for _, line := range []string{"", "list", "bye now", "goodbye"} {
		if IsExitCommand(line) {
			t.Errorf("IsExitCommand(%q) = true", line)
		}
	}
}

func TestHelpTextListsCommands(t *testing.T) {
	help := HelpText()
	for _, cmd := range interp.Commands() {
		require.Contains(t, help, cmd)
	}
	require.Contains(t, help, "bye")
}

func TestRun_FullSession(t *testing.T) {
	s, list := newSession(nil, Options{})

	out := run(t, s, "todo Buy milk\nlist\nmark 1\nbye\ntodo never reached\n")

	require.True(t, strings.HasPrefix(out, Greeting+"\n"+Separator+"\n"))
	require.Contains(t, out, "Added todo: [T][ ] Buy milk\nNow you have 1 task in the list.")
	require.Contains(t, out, "Here are the tasks in your list:\n1. [T][ ] Buy milk")
	require.Contains(t, out, "Marked task 1 as done: [T][X] Buy milk")
	require.True(t, strings.HasSuffix(out, Farewell+"\n"+Separator+"\n"))
	require.Equal(t, 1, list.Len())
}

func TestRun_ErrorsDoNotEndSession(t *testing.T) {
	s, list := newSession(nil, Options{Quiet: true})

	out := run(t, s, "blah\ntodo\ndelete 3\ntodo ok\n")

	require.Contains(t, out, `Error: unknown command "blah"`)
	require.Contains(t, out, "Error: the description of a todo cannot be empty")
	require.Contains(t, out, "Error: task 3 does not exist; the list is empty")
	require.Equal(t, 1, list.Len())
	require.NotContains(t, out, Greeting)
}

func TestRun_EndOfInput(t *testing.T) {
	s, _ := newSession(nil, Options{Quiet: true})

	out := run(t, s, "\n\n  \nlist")
	require.Equal(t, "Your task list is empty. Add a task to get started.\n"+Separator+"\n", out)
}

func TestRun_Prompt(t *testing.T) {
	s, _ := newSession(nil, Options{Quiet: true, Prompt: "> "})

	out := run(t, s, "bye\n")
	require.Equal(t, "> ", out)
}

func TestRun_CanceledContext(t *testing.T) {
	s, _ := newSession(nil, Options{Quiet: true})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Run(ctx, strings.NewReader("list\n"), &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRespond_Help(t *testing.T) {
	s, _ := newSession(nil, Options{})
	require.Equal(t, HelpText(), s.Respond(context.Background(), "HELP"))
}

func TestRespond_StorageWarning(t *testing.T) {
	s, list := newSession(failingSaver{}, Options{})

	msg := s.Respond(context.Background(), "todo Read book")
	require.Contains(t, msg, "Added todo: [T][ ] Read book")
	require.Contains(t, msg, "Warning: changes were not saved: save failed: disk full")
	require.Equal(t, 1, list.Len())
}
