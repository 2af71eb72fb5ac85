package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/njyeung/blockreel/config"
	"github.com/njyeung/blockreel/player"
	"github.com/njyeung/blockreel/tui"
)

func main() {
	buffer := flag.Int("buffer", 0, "frames decoded ahead of the screen, 0 sizes the buffer from the terminal height")
	volume := flag.Float64("volume", 1.0, "playback volume, 1 is unity gain, higher amplifies")
	mute := flag.Bool("mute", false, "start muted")
	loop := flag.Bool("loop", false, "restart the video when it ends")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <video file>\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	homeDir, _ := os.UserHomeDir()
	settings := config.Load(filepath.Join(homeDir, ".config", "blockreel"))

	// Flags that were set on the command line win over the conf file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "buffer":
			settings.BufferFrames = *buffer
		case "volume":
			settings.Volume = *volume
		case "mute":
			settings.Mute = *mute
		case "loop":
			settings.Loop = *loop
		}
	})

	if os.Getenv("BLOCKREEL_DEBUG") == "1" {
		if f, err := tea.LogToFile("blockreel.log", "debug"); err == nil {
			defer f.Close()
		}
	}

	pl := player.NewAVPlayer()
	pl.SetBufferFrames(settings.BufferFrames)
	pl.SetVolume(settings.Volume)
	pl.SetLoop(settings.Loop)
	if settings.Mute {
		pl.Mute()
	}

	p := tea.NewProgram(tui.NewModel(path, pl), tea.WithAltScreen())

	m, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if model, ok := m.(tui.Model); ok && model.Err() != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", model.Err())
		os.Exit(1)
	}
}
