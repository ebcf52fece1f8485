package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/viant/afs"

	compatdata "github.com/thunderbird/webext-compat-data"
	"github.com/thunderbird/webext-compat-data/diag"
)

// Options are the command line options.
type Options struct {
	ConfigURL string `short:"c" long:"config" description:"run configuration URL" required:"true"`
	Verbose   bool   `short:"v" long:"verbose" description:"enable debug logging"`
}

func main() {
	options := &Options{}
	if _, err := flags.ParseArgs(options, os.Args[1:]); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(2)
	}
	if err := run(options); err != nil {
		fmt.Fprintf(os.Stderr, "gen-compat-data: %v\n", err)
		os.Exit(1)
	}
}

func run(options *Options) error {
	ctx := context.Background()
	fs := afs.New()
	cfg, err := compatdata.LoadConfig(ctx, fs, options.ConfigURL)
	if err != nil {
		return err
	}
	reporter := diag.New(diag.NewLogger(os.Stderr, options.Verbose))
	summary, err := compatdata.New(cfg, fs, reporter).Generate(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("namespaces=%d entries=%d overrides=%d coverage-problems=%d files=%d\n",
		summary.Namespaces, summary.EntriesUpdated, summary.OverridesApplied,
		summary.CoverageProblems, summary.FilesWritten)
	return nil
}
