// Package main implements the fsexport command line and MCP server.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/fsexport"
	"github.com/taigrr/fsexport/internal/config"
	"github.com/taigrr/fsexport/internal/logging"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	fsx    *fsexport.FS
	flags  globalFlags
	closer func()
}

type globalFlags struct {
	logLevel    string
	logDev      bool
	loaders     []string
	ignore      []string
	selfName    string
	evalTimeout time.Duration
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(&app{}),
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsexport",
		Short: "Export directory trees as JSON and thread values through module files",
		Long: `fsexport loads a directory tree into one nested value: JSON files are
parsed, JavaScript files are evaluated and their module.exports kept,
and any other picked extension is read as text. It can also pass a
value through every module in a directory, read and write JSON files,
and serve all of this to MCP clients over stdio.`,
		Example: `fsexport export ./config --pick json --pick txt
fsexport pass ./steps 0
fsexport serve ~/project`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (env FSEXPORT_LOG_LEVEL)")
	pf.BoolVar(&a.flags.logDev, "log-dev", false, "human readable logs (env FSEXPORT_LOG_DEV)")
	pf.StringSliceVar(&a.flags.loaders, "loaders", nil, "extra loaders to enable: yaml, toml, star, md (env FSEXPORT_LOADERS)")
	pf.StringSliceVar(&a.flags.ignore, "ignore", nil, "glob patterns to skip, relative to the walked directory (env FSEXPORT_IGNORE)")
	pf.StringVar(&a.flags.selfName, "self-name", "", "entry name skipped in every directory (env FSEXPORT_SELF_NAME)")
	pf.DurationVar(&a.flags.evalTimeout, "eval-timeout", 0, "limit for evaluating a module or calling one of its functions (env FSEXPORT_EVAL_TIMEOUT)")

	cmd.AddCommand(
		newExportCmd(a),
		newPassCmd(a),
		newReadJSONCmd(a),
		newWriteJSONCmd(a),
		newExistsCmd(a),
		newLsCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// setup loads the environment configuration, applies flag overrides and
// builds the logger and the unconfined FS.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if flags.Changed("log-dev") {
		cfg.LogDev = a.flags.logDev
	}
	if flags.Changed("loaders") {
		cfg.Loaders = a.flags.loaders
	}
	if flags.Changed("ignore") {
		cfg.Ignore = a.flags.ignore
	}
	if flags.Changed("self-name") {
		cfg.SelfName = a.flags.selfName
	}
	if flags.Changed("eval-timeout") {
		cfg.EvalTimeout = a.flags.evalTimeout
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Development: cfg.LogDev})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.log = logger.Named("fsexport")
	a.closer = func() { _ = logger.Sync() }

	a.log.Debug("configuration loaded",
		zap.String("log_level", cfg.LogLevel),
		zap.Strings("loaders", cfg.Loaders),
		zap.Strings("ignore", cfg.Ignore),
		zap.String("self_name", cfg.SelfName),
		zap.Duration("eval_timeout", cfg.EvalTimeout),
	)

	a.fsx, err = a.newFS("")
	return err
}

// newFS builds an FS from the loaded configuration, confined to root when
// root is not empty.
func (a *app) newFS(root string) (*fsexport.FS, error) {
	opts := []fsexport.Option{
		fsexport.WithLoaders(a.cfg.Loaders...),
		fsexport.WithIgnore(a.cfg.Ignore...),
		fsexport.WithSelfName(a.cfg.SelfName),
		fsexport.WithEvalTimeout(a.cfg.EvalTimeout),
		fsexport.WithLogger(a.log),
	}
	if root != "" {
		opts = append(opts, fsexport.WithRoot(root))
	}
	return fsexport.New(opts...)
}

func (a *app) close() {
	if a.closer != nil {
		a.closer()
	}
}
