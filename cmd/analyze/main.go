// Command analyze runs WAV files, or a synthetic tone when none are given,
// through the receptors and prints one JSON result per input.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/metalblueberry/receptor/internal/cli"
	"github.com/metalblueberry/receptor/pkg/analysis"
	"github.com/metalblueberry/receptor/pkg/audio"
)

var logger *slog.Logger

func analyzeFile(ctx context.Context, flags *cli.Flags, path string) (*analysis.Result, error) {
	w, err := audio.OpenWav(path, flags.BlockSize)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	cfg, err := flags.Config(w.SampleRate())
	if err != nil {
		return nil, err
	}
	return analysis.Run(ctx, path, w, cfg)
}

func analyzeTone(ctx context.Context, flags *cli.Flags) (*analysis.Result, error) {
	flags.Source = cli.SourceTone
	flags.Realtime = false
	src, closer, err := flags.OpenSource(logger)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	cfg, err := flags.Config(src.SampleRate())
	if err != nil {
		return nil, err
	}
	return analysis.Run(ctx, "tone "+flags.Tone, src, cfg)
}

func main() {
	var flags cli.Flags
	flags.Register(flag.CommandLine)
	jobs := flag.Int("jobs", runtime.NumCPU(), "files analysed in parallel")
	indent := flag.Bool("indent", false, "indent the JSON output")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [file.wav ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	logger = cli.InitLogger(flags.Debug)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	paths := flag.Args()
	results := make([]*analysis.Result, max(len(paths), 1))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(*jobs, 1))
	if len(paths) == 0 {
		g.Go(func() error {
			r, err := analyzeTone(ctx, &flags)
			results[0] = r
			return err
		})
	}
	for i, path := range paths {
		g.Go(func() error {
			r, err := analyzeFile(ctx, &flags, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if best, ok := r.Strongest(); ok {
				logger.Info("analysed", "file", path, "duration", r.Duration, "strongest", best.Name,
					"frequency", best.Snapshot.InstantFrequency)
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("analysis failed", "err", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			logger.Error("encode", "err", err)
			os.Exit(1)
		}
	}
}
