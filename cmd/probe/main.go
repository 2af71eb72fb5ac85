package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/njyeung/blockreel/player"
)

// probe prints the stream layout of a media file the way the player
// will see it, useful when a file plays back oddly.
func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s <video file>\n", filepath.Base(os.Args[0]))
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	d, err := player.NewDemuxer(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer d.Close()

	cp := d.VideoCodecParameters()
	fps := d.FrameRate()
	frames := d.TotalFrames()

	fmt.Printf("video:    %s %dx%d\n", cp.CodecID(), cp.Width(), cp.Height())
	fmt.Printf("fps:      %.3f\n", fps)
	if frames > 0 {
		dur := time.Duration(float64(frames) / fps * float64(time.Second))
		fmt.Printf("frames:   %d\n", frames)
		fmt.Printf("duration: %s\n", dur.Round(time.Millisecond))
	} else {
		fmt.Printf("frames:   unknown\n")
	}
	if d.HasAudio() {
		ap := d.AudioCodecParameters()
		fmt.Printf("audio:    %s %dHz %dch\n", ap.CodecID(), ap.SampleRate(), ap.ChannelLayout().Channels())
	} else {
		fmt.Printf("audio:    none\n")
	}
}
