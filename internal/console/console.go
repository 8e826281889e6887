// Package console drives a session manager from line-oriented text commands.
// Each command acts on the currently selected session; results, errors and
// the events the command produced are written to the output.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"

	"github.com/duelhall/duel-server-go/internal/events"
	"github.com/duelhall/duel-server-go/internal/session"
)

// Console is a command interpreter bound to one manager.
type Console struct {
	mgr    *session.Manager
	out    io.Writer
	logger *zap.Logger

	current string

	mu      sync.Mutex
	pending []events.Envelope
	handle  int
}

// New creates a console writing to out. Close releases its bus subscription.
func New(mgr *session.Manager, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Console{mgr: mgr, out: out, logger: logger}
	c.handle = mgr.Bus().Subscribe(c.collect)
	return c
}

// Close detaches the console from the event bus.
func (c *Console) Close() {
	c.mgr.Bus().Unsubscribe(c.handle)
}

// Current returns the selected session id, or "" when none is selected.
func (c *Console) Current() string {
	return c.current
}

func (c *Console) collect(env events.Envelope) {
	c.mu.Lock()
	c.pending = append(c.pending, env)
	c.mu.Unlock()
}

func (c *Console) flushEvents() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, env := range pending {
		c.printf("event %s#%d %s\n", shortID(env.SessionID), env.Sequence, events.Describe(env.Event))
	}
}

// Run reads commands from in until EOF, a quit command or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if quit := c.Execute(scanner.Text()); quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

// Execute runs one command line and reports whether the console should stop.
func (c *Console) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}
	name, args := cutFields(line, 1)
	name[0] = strings.ToLower(name[0])

	switch name[0] {
	case "quit", "exit":
		return true
	case "help":
		c.printHelp()
		return false
	}

	cmd, ok := commands[name[0]]
	if !ok {
		c.printf("unknown command %q (try help)\n", name[0])
		return false
	}

	c.logger.Debug("console command", zap.String("command", name[0]), zap.String("session_id", c.current))
	err := cmd.run(c, args)
	c.flushEvents()
	if err != nil {
		c.printError(cmd, err)
	}
	return false
}

func (c *Console) printError(cmd command, err error) {
	var usage usageError
	if errors.As(err, &usage) {
		c.printf("usage: %s\n", cmd.usage)
		return
	}
	c.printf("%s\n", FormatError(err))
}

func (c *Console) printHelp() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c.printf("  %-44s %s\n", commands[name].usage, commands[name].help)
	}
	c.printf("  %-44s %s\n", "help", "show this list")
	c.printf("  %-44s %s\n", "quit", "leave the console")
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// cutFields splits the first n whitespace-separated fields off s and returns
// them along with the trimmed remainder. Missing fields are empty strings.
func cutFields(s string, n int) ([]string, string) {
	fields := make([]string, n)
	rest := strings.TrimSpace(s)
	for i := 0; i < n && rest != ""; i++ {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			fields[i], rest = rest, ""
			break
		}
		fields[i] = rest[:end]
		rest = strings.TrimSpace(rest[end:])
	}
	return fields, rest
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
