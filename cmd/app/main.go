// Command app shows the receptors of an instrument in a window: one row per
// target with its note, magnitude, phase and a trail of its free energy.
//
// Arrow keys move the A4 reference by one hertz, R restores it and Escape
// quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/sync/errgroup"

	"github.com/metalblueberry/receptor/internal/cli"
	"github.com/metalblueberry/receptor/pkg/audio"
	"github.com/metalblueberry/receptor/pkg/circular"
	"github.com/metalblueberry/receptor/pkg/report"
	"github.com/metalblueberry/receptor/pkg/tuner"
)

const (
	screenWidth  = 960
	screenHeight = 540
	trailLength  = 240
	labelWidth   = 180
	gaugeWidth   = 120
)

var logger *slog.Logger

var (
	magnitudeColor = color.RGBA{0x40, 0xc0, 0x60, 0xff}
	phaseColor     = color.RGBA{0x60, 0x80, 0xe0, 0xff}
	gridColor      = color.RGBA{0x30, 0x30, 0x30, 0xff}
)

type Game struct {
	ctx    context.Context
	cancel context.CancelFunc
	proc   *tuner.Processor
	start  time.Time

	// reference is owned by the game; retune hands changes to the audio
	// goroutine, which owns the processor.
	reference float64
	initial   float64
	retune    chan float64

	frame  *tuner.Frame
	trails []*circular.Buffer[float64]
	buff   []float64

	vertices []ebiten.Vertex
	indices  []uint16
}

func newGame(ctx context.Context, cancel context.CancelFunc, proc *tuner.Processor) *Game {
	names := proc.Names()
	trails := make([]*circular.Buffer[float64], len(names))
	for i := range trails {
		trails[i] = circular.CreateBuffer[float64](trailLength)
	}
	ref := proc.Config().Reference
	return &Game{
		ctx:       ctx,
		cancel:    cancel,
		proc:      proc,
		start:     time.Now(),
		reference: ref,
		initial:   ref,
		retune:    make(chan float64, 1),
		trails:    trails,
	}
}

// requestRetune replaces any pending request with reference.
func (g *Game) requestRetune(reference float64) {
	g.reference = reference
	select {
	case <-g.retune:
	default:
	}
	g.retune <- reference
}

// process runs on the audio goroutine.
func (g *Game) process(block [][]float32) {
	select {
	case ref := <-g.retune:
		if err := g.proc.Retune(ref); err != nil {
			logger.Warn("retune", "reference", ref, "err", err)
		} else {
			logger.Info("retuned", "reference", ref)
		}
	default:
	}
	g.proc.Process(block)
}

func (g *Game) Update() error {
	if err := g.ctx.Err(); err != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.cancel()
		return ebiten.Termination
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.requestRetune(g.reference + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && g.reference > 1:
		g.requestRetune(g.reference - 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.requestRetune(g.initial)
	}

	g.proc.SyncClock(time.Since(g.start))

	if f, ok := g.proc.Mailbox().Latest(); ok {
		g.frame = f
		for i, s := range f.Values {
			g.trails[i].Push(s.F)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	f := g.frame
	if f == nil {
		ebitenutil.DebugPrint(screen, "waiting for audio")
		return
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("A4 %.0f Hz  %s", g.reference, report.Level(f)), 4, 2)

	bounds := screen.Bounds()
	top := 20
	rowHeight := (bounds.Dy() - top) / max(len(f.Names), 1)
	for i, name := range f.Names {
		y := top + i*rowHeight
		row := screen.SubImage(image.Rect(0, y, bounds.Dx(), y+rowHeight)).(*ebiten.Image)
		g.drawRow(row, name, i)
	}
}

func (g *Game) drawRow(row *ebiten.Image, name string, i int) {
	s := g.frame.Values[i]
	b := row.Bounds()
	x0, y0 := float32(b.Min.X), float32(b.Min.Y)
	h := float32(b.Dy())

	ebitenutil.DebugPrintAt(row, fmt.Sprintf("%-4s %s", name, report.Note(s, g.frame.Reference)), b.Min.X+4, b.Min.Y+2)

	scale := s.MaxR
	if !(scale > 0) {
		scale = 1
	}
	gx := x0 + labelWidth
	vector.DrawFilledRect(row, gx, y0+2, gaugeWidth, h/2-3, gridColor, false)
	vector.DrawFilledRect(row, gx, y0+2, float32(min(s.R/scale, 1))*gaugeWidth, h/2-3, magnitudeColor, false)

	phase := s.Phi
	if phase < 0 {
		phase++
	}
	vector.DrawFilledRect(row, gx, y0+h/2+1, gaugeWidth, h/2-3, gridColor, false)
	vector.DrawFilledRect(row, gx, y0+h/2+1, float32(phase)*gaugeWidth, h/2-3, phaseColor, false)

	tx := b.Min.X + labelWidth + gaugeWidth + 8
	trail := row.SubImage(image.Rect(tx, b.Min.Y, b.Max.X, b.Max.Y)).(*ebiten.Image)
	vector.StrokeLine(trail, float32(tx), y0+h/2, float32(b.Max.X), y0+h/2, 1, gridColor, false)
	g.buff = g.trails[i].Values(g.buff[:0])
	g.drawWave(trail, g.buff, scale)
}

var (
	whiteImage = ebiten.NewImage(3, 3)

	// whiteSubImage is an internal sub image of whiteImage.
	// Use whiteSubImage at DrawTriangles instead of whiteImage in order to avoid bleeding edges.
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// drawWave plots data across screen, with size mapped to half its height.
func (g *Game) drawWave(screen *ebiten.Image, data []float64, size float64) {
	if len(data) < 2 {
		return
	}
	b := screen.Bounds()
	mid := float64(b.Min.Y) + float64(b.Dy())/2
	scale := float64(b.Dy()) / 2 / size

	var path vector.Path
	for i, v := range data {
		v = max(-size, min(v, size))
		x := float32(b.Min.X) + float32(i*b.Dx())/float32(trailLength)
		y := float32(mid - v*scale)
		if i == 0 {
			path.MoveTo(x, y)
		} else {
			path.LineTo(x, y)
		}
	}

	op := &vector.StrokeOptions{}
	op.Width = 1
	vs, is := path.AppendVerticesAndIndicesForStroke(g.vertices[:0], g.indices[:0], op)
	for i := range vs {
		vs[i].SrcX = 1
		vs[i].SrcY = 1
		vs[i].ColorR = 1
		vs[i].ColorG = 1
		vs[i].ColorB = 1
		vs[i].ColorA = 1
	}
	screen.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{
		AntiAlias: false,
	})
	g.vertices, g.indices = vs, is
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func runAudio(ctx context.Context, source audio.Source, g *Game) error {
	err := source.Run(ctx, g.process)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	logger.Info("audio finished")
	return err
}

// start opens the source and shows the window until it is closed. Audio
// runs beside the window and stops with it.
func start(ctx context.Context, flags *cli.Flags) error {
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

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	game := newGame(ctx, stop, proc)

	var g errgroup.Group
	g.Go(func() error {
		return runAudio(ctx, source, game)
	})

	logger.Info("ready", "instrument", cfg.Instrument, "targets", len(proc.Names()))
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("receptor: " + cfg.Instrument)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		logger.Error("window", "err", err)
	}

	stop()
	if err := g.Wait(); err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	return nil
}

func main() {
	var flags cli.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()

	logger = cli.InitLogger(flags.Debug)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	err := start(ctx, &flags)
	cancel()
	if err != nil {
		logger.Error("receptor stopped", "err", err)
		os.Exit(1)
	}
}
