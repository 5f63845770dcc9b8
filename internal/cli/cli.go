package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vk/modkit/internal/app"
	"github.com/vk/modkit/internal/settings"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// options are the flags shared by every command.
type options struct {
	modulesPath   string
	instancesPath string
	dataDir       string
	debug         bool
	strict        bool
	logLevel      string
	logFormat     string
}

// NewRootCommand builds the modkit command tree. Command output goes to outW,
// logs to logW.
func NewRootCommand(outW, logW io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "modkit",
		Short: "Inspect descriptor-driven modules and their configuration",
		Long: `modkit discovers module.desc descriptors, constructs every module instance
and resolves each instance's configuration file through the layered lookup:

  <data-dir override>/modules/<file>        (only candidate when overridden)
  <cwd>/src/modules/<module>/<file>         (debug mode)
  /etc/modkit/modules/<file>
  <data dir>/modules/<file>`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.modulesPath, "modules", "m", "/usr/lib/modkit/modules", "Directory searched for module.desc files.")
	flags.StringVarP(&opts.instancesPath, "instances", "i", "", "Document listing extra module instances.")
	flags.StringVarP(&opts.dataDir, "data-dir", "c", "", "Override the application data directory.")
	flags.BoolVarP(&opts.debug, "debug", "d", false, "Debug mode: also look in ./src/modules/<module>/.")
	flags.BoolVar(&opts.strict, "strict", false, "Fail when any module fails to load.")
	flags.StringVar(&opts.logLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log output format: 'text' or 'json'.")

	root.AddCommand(
		newListCommand(opts, logW),
		newShowCommand(opts, logW),
		newCandidatesCommand(opts, logW),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, outW, logW io.Writer) error {
	root := NewRootCommand(outW, logW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		return usageError("%v", err)
	}
	return &ExitError{Code: 1, Message: err.Error()}
}

// buildConfig merges environment settings with the flags the user set.
func buildConfig(cmd *cobra.Command, opts *options) (*app.Config, error) {
	s, err := settings.Load()
	if err != nil {
		return nil, usageError("%v", err)
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		s.OverrideDataDir = opts.dataDir
	}
	if flags.Changed("debug") {
		s.Debug = opts.debug
	}
	if flags.Changed("log-level") {
		s.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		s.LogFormat = opts.logFormat
	}

	s.LogFormat = strings.ToLower(s.LogFormat)
	if err := app.CheckFormat(s.LogFormat); err != nil {
		return nil, usageError("%v", err)
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	if _, err := app.ParseLevel(s.LogLevel); err != nil {
		return nil, usageError("%v", err)
	}

	cfg, err := app.NewConfig(app.Config{
		ModulesPath:   opts.modulesPath,
		InstancesPath: opts.instancesPath,
		Strict:        opts.strict,
		Settings:      s,
	})
	if err != nil {
		return nil, usageError("%v", err)
	}
	return cfg, nil
}

// loadApp builds the app and loads every module.
func loadApp(cmd *cobra.Command, opts *options, logW io.Writer) (*app.App, error) {
	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(logW, cfg)
	if err != nil {
		return nil, usageError("%v", err)
	}
	if err := a.Load(cmd.Context()); err != nil {
		return nil, err
	}
	return a, nil
}
