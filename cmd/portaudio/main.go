// Command portaudio lists the audio input devices the capture source can
// open.
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gordonklaus/portaudio"

	"github.com/metalblueberry/receptor/internal/cli"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()
	logger := cli.InitLogger(*debug)

	if err := portaudio.Initialize(); err != nil {
		logger.Error("initialize portaudio", "err", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		logger.Error("list devices", "err", err)
		os.Exit(1)
	}
	def, err := portaudio.DefaultInputDevice()
	if err != nil {
		logger.Warn("no default input", "err", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tDEVICE\tHOST API\tINPUTS\tRATE\tLATENCY")
	for _, d := range devices {
		if d.MaxInputChannels == 0 {
			continue
		}
		mark := ""
		if def != nil && d.Name == def.Name {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f\t%v\n", mark, d.Name, d.HostApi.Name, d.MaxInputChannels,
			d.DefaultSampleRate, d.DefaultLowInputLatency)
	}
	w.Flush()
}
