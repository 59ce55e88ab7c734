package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"shellgate/bot"
	"shellgate/util"
)

// Console is the shipped chat frontend: a line-oriented REPL that
// feeds the router and prints its replies.  Other frontends plug in
// the same way — hand (callerID, text) to the router, send back the
// returned string.
type Console struct {
	Router   *bot.Router
	CallerID string
	Input    io.Reader
	Output   io.Writer
	Logger   *util.Logger
}

// Run reads lines until EOF or context cancellation.
//
// "/add_server host user" with the secret omitted prompts for it
// without echo, so credentials stay out of shell history.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintf(c.Output, "shellgate console (caller %s). /help for commands, Ctrl-D to quit.\n", c.CallerID)

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.Input)
		scanner.Buffer(make([]byte, 64*1024), 64*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		errs <- scanner.Err()
	}()

	fmt.Fprint(c.Output, "> ")
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.Output)
			return nil
		case err := <-errs:
			fmt.Fprintln(c.Output)
			return err
		case line := <-lines:
			if text := c.expandSecretPrompt(line); text != "" {
				if reply := c.Router.Handle(ctx, c.CallerID, text); reply != "" {
					fmt.Fprintln(c.Output, reply)
				}
			}
			fmt.Fprint(c.Output, "> ")
		}
	}
}

// expandSecretPrompt completes a two-argument /add_server by asking
// for the secret interactively.  Returns the full command line, or ""
// if the prompt was aborted.
func (c *Console) expandSecretPrompt(line string) string {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "/add_server" {
		return line
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return line // non-interactive input; let the router report usage
	}
	fmt.Fprintf(c.Output, "Secret for %s@%s: ", fields[2], fields[1])
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(c.Output)
	if err != nil || len(secret) == 0 {
		c.Logger.Warn("secret prompt aborted")
		return ""
	}
	return line + " " + string(secret)
}
