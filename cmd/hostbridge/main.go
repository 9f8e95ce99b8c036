package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/config"
	"github.com/wippyai/hostbridge/generic"
	"github.com/wippyai/hostbridge/lazy"
	"github.com/wippyai/hostbridge/mixin"
	"github.com/wippyai/hostbridge/runtime"
)

func main() {
	var (
		cfgFile     = flag.String("config", "", "Path to YAML configuration")
		scriptFile  = flag.String("script", "", "Script to evaluate")
		expr        = flag.String("expr", "", "Expression to evaluate and inspect per isolate")
		advance     = flag.Duration("advance", 0, "Advance the timer clock after evaluation")
		schema      = flag.Bool("schema", false, "Print the configuration JSON schema and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *schema {
		out, err := config.Schema()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	if *scriptFile == "" && *expr == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: hostbridge [-config file.yaml] -script <file.js> [-advance 1s]")
		fmt.Fprintln(os.Stderr, "       hostbridge [-config file.yaml] -expr '<expression>'")
		fmt.Fprintln(os.Stderr, "       hostbridge [-config file.yaml] -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       hostbridge -schema")
		os.Exit(1)
	}

	cfg, err := loadConfig(*cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, *scriptFile, *expr, *advance, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newRuntime builds the logger from cfg, hands it to every package and
// creates a runtime with the console host registered.
func newRuntime(cfg *config.Config, out io.Writer) (*runtime.Runtime, *zap.Logger, error) {
	logger, err := cfg.Log.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	generic.SetLogger(logger)
	mixin.SetLogger(logger)
	lazy.SetLogger(logger)

	rt, err := runtime.New(runtime.Options{
		Config: cfg,
		Logger: logger,
		OnError: func(err error) {
			fmt.Fprintf(out, "timer error: %v\n", err)
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create runtime: %w", err)
	}
	if err := rt.RegisterHost(&console{out: out}); err != nil {
		rt.Close()
		return nil, nil, fmt.Errorf("register console: %w", err)
	}
	return rt, logger, nil
}

func run(cfg *config.Config, scriptFile, expr string, advance time.Duration, out io.Writer) error {
	rt, logger, err := newRuntime(cfg, out)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	defer rt.Close()

	if scriptFile != "" {
		src, err := os.ReadFile(scriptFile)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		res, err := rt.Eval(string(src))
		if err != nil {
			return fmt.Errorf("eval %s: %w", scriptFile, err)
		}
		if res != nil {
			fmt.Fprintf(out, "Result: %s\n", describe(res))
		}
	}

	if advance > 0 {
		fired := rt.Advance(advance)
		fmt.Fprintf(out, "Advanced %s, %d timer(s) fired\n", advance, fired)
	}

	if expr != "" {
		views, err := inspect(rt, expr)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n", expr)
		for _, v := range views {
			fmt.Fprintf(out, "  %s\n", v)
		}
	}

	fmt.Fprintf(out, "Cache: %s\n", rt.Bridge().Objects().Stats())
	return nil
}
