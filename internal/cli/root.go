// Package cli is the orl command line: sign in to the consultation backend,
// inspect the stored session and run the companion server.
package cli

import (
	"bufio"
	"context"
	"os"

	"orl-assistant/internal/bootstrap"
	"orl-assistant/internal/config"
	"orl-assistant/internal/pkg/logger"
	"orl-assistant/internal/tracer"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type app struct {
	cfg       *config.Config
	log       logger.ILogger
	container *bootstrap.Container
	shutdown  func(context.Context) error

	verbose bool
	in      *bufio.Reader
}

// NewRootCmd builds the command tree. Every subcommand gets a fully wired
// container with the stored session already loaded.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "orl",
		Short:         "ORL consultation assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log to the console as well as the log file")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.statusCmd(),
		a.forgotPasswordCmd(),
		a.resetPasswordCmd(),
		a.serveCmd(),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	a.cfg = config.Load()

	log := logger.NewZapLogger(a.cfg.App.LogFilePath, a.cfg.IsProduction(), !a.verbose)
	a.log = log
	a.shutdown = tracer.InitTracer(a.cfg.Tracing, log)

	c, err := bootstrap.NewContainer(cmd.Context(), a.cfg, log)
	if err != nil {
		return err
	}
	a.container = c

	c.Session.InitFromStorage(cmd.Context())
	switch cmd.Name() {
	case "login", "register", "reset-password":
		// a 401 there is a failed sign-in, reported by the command itself
		return nil
	}
	c.Session.OnUnauthorized(func(context.Context) {
		color.New(color.FgYellow).Fprintln(cmd.ErrOrStderr(), "Session expired or rejected, run `orl login` to sign in again.")
	})
	return nil
}

func (a *app) close() error {
	if a.shutdown != nil {
		_ = a.shutdown(context.Background())
	}
	if a.container != nil {
		_ = a.container.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
	return nil
}
