// Command host runs one export of a WebAssembly core module:
//
//	host [flags] <module-path> <export-name> [args...]
//
// The module may be a binary or its text format. Each argument is parsed
// according to the export's declared parameter type. Results are printed to
// stdout one per line. Flags must precede the module path, so negative
// numbers after it are passed through as arguments. Every failure,
// including a malformed command line, exits with status 1.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-host/registry"
	"github.com/wippyai/wasm-host/runtime"
)

const (
	exitOK      = 0
	exitFailure = 1
)

// ExitError carries the process exit status for a failed command. Usage
// marks command line mistakes, which also print the usage line.
type ExitError struct {
	Err   error
	Code  int
	Usage bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: exitFailure, Usage: true, Err: fmt.Errorf(format, args...)}
}

type options struct {
	policy      string
	timeout     time.Duration
	memoryPages uint32
	list        bool
	interactive bool
	verbose     bool
}

func main() {
	stdio, err := registry.InheritStdio()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitFailure)
	}
	os.Exit(run(os.Args[1:], stdio.Stdin, stdio.Stdout, stdio.Stderr))
}

// run executes the command line and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if args == nil {
		args = []string{}
	}
	cmd := newRootCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Usage {
			fmt.Fprintf(stderr, "Usage: %s\n", cmd.UseLine())
		}
		return exitErr.Code
	}
	return exitFailure
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "host [flags] <module-path> <export-name> [args...]",
		Short: "Run an export of a WebAssembly core module",
		Long: `Load a core module, link its imports against wasi_snapshot_preview1,
wasi_unstable and the calculator namespace, then call one export with
arguments parsed from the command line.

Examples:
  host add.wasm consume_add 3 4      Print 7
  host add.wat consume_add 3 4       Text format works the same
  host add.wasm add -3 4             Negative arguments pass through
  host --list add.wasm               List exports with their signatures
  host -i add.wasm                   Pick an export interactively`,
		Args: func(_ *cobra.Command, args []string) error {
			switch {
			case opts.list && opts.interactive:
				return usageError("--list and --interactive are mutually exclusive")
			case opts.list || opts.interactive:
				if len(args) != 1 {
					return usageError("expected exactly one module path, got %d argument(s)", len(args))
				}
			case len(args) < 2:
				return usageError("expected a module path and an export name")
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(cmd.Context(), opts, args, registry.Stdio{Stdin: stdin, Stdout: stdout, Stderr: stderr})
		},
	}

	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: exitFailure, Usage: true, Err: err}
	})

	flags := cmd.Flags()
	flags.SetInterspersed(false)
	flags.StringVar(&opts.policy, "policy", runtime.DefaultConfig().Policy, "unresolved import policy: strict or permissive")
	flags.DurationVar(&opts.timeout, "timeout", 0, "abort the call after this long (0 disables)")
	flags.Uint32Var(&opts.memoryPages, "memory-limit-pages", 0, "cap guest memory in 64KiB pages (0 keeps the default)")
	flags.BoolVarP(&opts.list, "list", "l", false, "list exports with their signatures and exit")
	flags.BoolVarP(&opts.interactive, "interactive", "i", false, "pick an export and enter arguments in a terminal UI")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "write debug logs to stderr")

	return cmd
}

func execute(ctx context.Context, opts *options, args []string, stdio registry.Stdio) error {
	if opts.verbose {
		logger := newLogger(stdio.Stderr)
		runtime.SetLogger(logger)
		defer func() {
			_ = logger.Sync()
			runtime.SetLogger(zap.NewNop())
		}()
	}

	cfg := runtime.Config{
		Policy:           opts.policy,
		MemoryLimitPages: opts.memoryPages,
		Timeout:          opts.timeout,
		Stdio:            stdio,
	}
	if err := cfg.Validate(); err != nil {
		return &ExitError{Code: exitFailure, Usage: true, Err: err}
	}

	path := args[0]
	switch {
	case opts.interactive:
		return runInteractive(ctx, cfg, path)
	case opts.list:
		return listExports(ctx, cfg, path)
	}

	_, err := runtime.Run(ctx, cfg, path, args[1], args[2:])
	return err
}

// newLogger returns a development logger writing to w.
func newLogger(w io.Writer) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zap.DebugLevel,
	)
	return zap.New(core, zap.Development())
}

func listExports(ctx context.Context, cfg runtime.Config, path string) error {
	data, err := runtime.ReadModule(path)
	if err != nil {
		return err
	}
	rt, err := runtime.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	mod, err := rt.Load(ctx, data)
	if err != nil {
		return err
	}
	defer mod.Close(ctx)

	for _, e := range mod.Exports() {
		fmt.Fprintln(cfg.Stdio.Stdout, e.String())
	}
	return nil
}
