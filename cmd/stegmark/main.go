// Command stegmark hides a black-and-white secret image in a cover image and
// recovers it.
//
//	stegmark capacity -carrier spatial|frequency -cover IN
//	stegmark embed    -carrier spatial   -cover IN.png -secret S.png -out OUT.png
//	stegmark embed    -carrier frequency -cover IN.jpg -secret S.png -out OUT.smc [-preview P.png]
//	stegmark extract  -carrier spatial   -in OUT.png [-w W -h H] -out SECRET.png
//	stegmark extract  -carrier frequency -in OUT.smc [-w W -h H] -out SECRET.png
//
// The spatial carrier needs a lossless output, so embed always writes PNG.
// The frequency carrier writes quantized coefficient blocks to a zstd
// container; -preview renders them back to a grayscale PNG.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `usage: stegmark <capacity|embed|extract> [flags]

Run "stegmark <command> -h" for the flags of a command.`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "stegmark:", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usage)
		return fmt.Errorf("%w: command is required", errUsage)
	}
	var cmd command
	switch args[0] {
	case "capacity":
		cmd = &capacityCommand{}
	case "embed":
		cmd = &embedCommand{}
	case "extract":
		cmd = &extractCommand{}
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(stdout, usage)
		return nil
	default:
		fmt.Fprintln(stderr, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	cmd.register(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if err := common.check(); err != nil {
		return err
	}

	logger := newLogger(common.verbose, stderr)
	defer func() { _ = logger.Sync() }()

	env, err := common.env(fs, logger)
	if err != nil {
		return err
	}
	env.stdout = stdout
	return cmd.run(ctx, env)
}

type command interface {
	register(fs *flag.FlagSet)
	run(ctx context.Context, env *env) error
}

// newLogger writes console records to w, debug and up with -v.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}
