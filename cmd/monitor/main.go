// Command monitor prints the state of every receptor of an instrument to the
// terminal while audio plays.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/metalblueberry/receptor/internal/cli"
	"github.com/metalblueberry/receptor/pkg/audio"
	"github.com/metalblueberry/receptor/pkg/crosscheck"
	"github.com/metalblueberry/receptor/pkg/report"
	"github.com/metalblueberry/receptor/pkg/tuner"
)

const clearScreen = "\x1b[H\x1b[2J"

var logger *slog.Logger

type monitor struct {
	out    io.Writer
	clear  bool
	proc   *tuner.Processor
	source audio.Source
	check  *crosscheck.AsyncTuner
}

func (m *monitor) print(f *tuner.Frame) error {
	w := bufio.NewWriter(m.out)
	if m.clear {
		w.WriteString(clearScreen)
	}
	fmt.Fprintf(w, "%s  t=%v\n", report.Level(f), f.Time.Round(time.Millisecond))
	if m.check != nil {
		if e, ok := m.check.Result(); ok {
			fmt.Fprintf(w, "fft %-4s %8.2f Hz %+4d cents\n", e.Note, e.Frequency, e.Cents)
		}
	}
	fmt.Fprintln(w, report.Header)
	if err := report.Write(w, f, f.Reference); err != nil {
		return err
	}
	return w.Flush()
}

func (m *monitor) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	streamCtx, stop := context.WithCancel(ctx)
	defer stop()

	rate := m.source.SampleRate()
	g.Go(func() error {
		defer stop()
		return m.source.Run(streamCtx, func(block [][]float32) {
			m.proc.Process(block)
			if m.check != nil {
				m.check.Process(block, rate)
			}
		})
	})

	if m.check != nil {
		g.Go(func() error {
			m.check.Run(streamCtx)
			return nil
		})
	}

	g.Go(func() error {
		mailbox := m.proc.Mailbox()
		for {
			select {
			case f := <-mailbox.C():
				if err := m.print(f); err != nil {
					return err
				}
			case <-streamCtx.Done():
				if f, ok := mailbox.Latest(); ok {
					return m.print(f)
				}
				return nil
			}
		}
	})

	return g.Wait()
}

// start opens the source, builds the tuner and monitors until the source
// ends or ctx is cancelled.
func start(ctx context.Context, flags *cli.Flags, check, clear bool) error {
	source, closer, err := flags.OpenSource(logger)
	if err != nil {
		return fmt.Errorf("open source %s: %w", flags.Source, err)
	}
	defer closer.Close()

	cfg, err := flags.Config(source.SampleRate())
	if err != nil {
		return fmt.Errorf("configure tuner: %w", err)
	}
	proc, err := tuner.Create(cfg)
	if err != nil {
		return fmt.Errorf("create tuner: %w", err)
	}
	logger.Info("monitoring",
		"source", flags.Source,
		"instrument", cfg.Instrument,
		"targets", len(proc.Names()),
		"sample_rate", cfg.SampleRate,
	)

	m := &monitor{out: os.Stdout, clear: clear, proc: proc, source: source}
	if check {
		m.check = crosscheck.NewAsyncTuner(logger)
	}
	if err := m.run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func main() {
	var flags cli.Flags
	flags.Register(flag.CommandLine)
	check := flag.Bool("crosscheck", false, "run the FFT tuner beside the receptors")
	clear := flag.Bool("clear", true, "redraw in place instead of scrolling")
	flag.Parse()

	logger = cli.InitLogger(flags.Debug)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := start(ctx, &flags, *check, *clear)
	cancel()
	if err != nil {
		logger.Error("monitor stopped", "err", err)
		os.Exit(1)
	}
}
