// ABOUTME: Entry point for the bookdesk business operator CLI
// ABOUTME: Builds the cobra command tree and runs every command through the navigation guard

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/2389/bookdesk/internal/app"
	"github.com/2389/bookdesk/internal/config"
	"github.com/2389/bookdesk/internal/guard"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _                 _       _           _
| |__   ___   ___ | | ____| | ___  ___| | __
| '_ \ / _ \ / _ \| |/ / _' |/ _ \/ __| |/ /
| |_) | (_) | (_) |   < (_| |  __/\__ \   <
|_.__/ \___/ \___/|_|\_\__,_|\___||___/_|\_\
`

// annotationAuth marks a command (and every command below it) as requiring a session.
const annotationAuth = "requires_auth"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries the state shared by every command of one invocation.
type cli struct {
	configPath string
	stdin      io.Reader
	stderr     io.Writer

	app *app.App
}

// redirectError reports a navigation the guard refused.
type redirectError struct {
	decision guard.Decision
}

func (e *redirectError) Error() string {
	if e.decision.Reason == guard.ReasonAlreadyLoggedIn {
		return "already logged in (run `bookdesk logout` to switch accounts)"
	}
	return fmt.Sprintf("%s (run `bookdesk %s`)", e.decision.Reason, e.decision.Target.Name)
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdin: stdin, stderr: stderr}

	root := &cobra.Command{
		Use:   "bookdesk",
		Short: "bookdesk - manage your business on the booking platform",
		Long: `bookdesk signs you in to the booking platform API and manages your
business: services, employees, bookings, opening hours and the business profile.

Credentials are kept between runs; expired sessions are refreshed silently.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.before,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			color.New(color.FgCyan).Fprint(cmd.OutOrStdout(), banner)
			_ = cmd.Help()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("bookdesk version {{.Version}}\n")
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default: $BOOKDESK_CONFIG, ./bookdesk.yaml, ~/.config/bookdesk/config.yaml)")

	root.AddCommand(
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.businessCmd(),
		c.hoursCmd(),
		c.servicesCmd(),
		c.employeesCmd(),
		c.bookingsCmd(),
		c.meCmd(),
	)
	return root
}

// requireAuth marks cmd as guarded.
func requireAuth(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[annotationAuth] = "true"
	return cmd
}

// routeFor maps a command to its navigation route: "services list" becomes the route
// named "services list" at /services/list.
func routeFor(cmd *cobra.Command) guard.Route {
	name := strings.TrimSpace(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()))
	route := guard.Route{Name: name, Path: "/" + strings.ReplaceAll(name, " ", "/")}
	for p := cmd; p != nil; p = p.Parent() {
		if p.Annotations[annotationAuth] == "true" {
			route.RequiresAuth = true
			break
		}
	}
	return route
}

func (c *cli) before(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd == cmd.Root() {
		return nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.Logging, c.stderr)

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("starting client: %w", err)
	}
	c.app = a

	a.Start(cmd.Context(), guard.NavigatorFunc(func(to guard.Route) {
		color.New(color.FgYellow).Fprintf(c.stderr, "Session expired. Run `bookdesk %s` to sign in again.\n", to.Name)
	}))

	route := routeFor(cmd)
	if d := a.Guard.Check(route); d.Action == guard.Redirect {
		logger.Debug("command redirected", "command", route.Name, "target", d.Target.Name, "reason", d.Reason)
		_ = c.close()
		return &redirectError{decision: d}
	}
	return nil
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}
	cfg, _, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// execute runs fn and always releases the app, even when fn fails and cobra skips the
// post-run hook.
func (c *cli) execute(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err != nil {
			return errors.Join(err, c.close())
		}
		return nil
	}
}
