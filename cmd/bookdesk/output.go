// ABOUTME: Shared output, prompting and argument helpers for CLI commands
// ABOUTME: Converts failed outcomes to errors and reads passwords without echo on a TTY

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/2389/bookdesk/internal/transport"
)

// EnvPassword supplies the password for login and register without a prompt.
const EnvPassword = "BOOKDESK_PASSWORD"

// result returns the outcome's data, or its message as an error.
func result[T any](out transport.Outcome[T]) (T, error) {
	if !out.Success {
		return out.Data, errors.New(out.Error)
	}
	return out.Data, nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func success(cmd *cobra.Command, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func heading(cmd *cobra.Command, title string) {
	cyan := color.New(color.FgCyan)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	cyan.Fprintf(out, "  %s\n", title)
	cyan.Fprintf(out, "  %s\n", strings.Repeat("-", len(title)))
}

func field(cmd *cobra.Command, label, value string) {
	fmt.Fprintf(cmd.OutOrStdout(), "  %-14s %s\n", label+":", value)
}

func activeLabel(active bool) string {
	if active {
		return color.GreenString("active")
	}
	return color.HiBlackString("inactive")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// password returns the --password flag, then $BOOKDESK_PASSWORD, then prompts. The
// prompt hides input on a terminal and reads one line otherwise.
func (c *cli) password(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(EnvPassword); env != "" {
		return env, nil
	}

	fmt.Fprint(c.stderr, "Password: ")
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(c.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
