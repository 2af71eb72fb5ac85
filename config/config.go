package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Settings struct {
	BufferFrames int
	Volume       float64
	Loop         bool
	Mute         bool
}

func defaultSettings() Settings {
	return Settings{
		BufferFrames: 0,
		Volume:       1.0,
		Loop:         false,
		Mute:         false,
	}
}

// Load reads blockreel.conf from configDir. Unknown keys and unparsable
// values are ignored, and a missing file is written out with defaults so
// the user has something to edit
func Load(configDir string) Settings {
	s := defaultSettings()

	path := filepath.Join(configDir, "blockreel.conf")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(configDir, 0755); err == nil {
			writeConf(path, s)
		}
		return s
	}

	conf := parseConf(path)

	if v, ok := conf["buffer_frames"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			s.BufferFrames = n
		}
	}
	if v, ok := conf["volume"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			s.Volume = f
		}
	}
	if v, ok := conf["loop"]; ok {
		s.Loop = (v == "true")
	}
	if v, ok := conf["mute"]; ok {
		s.Mute = (v == "true")
	}

	return s
}

func writeConf(path string, s Settings) error {
	var b strings.Builder
	b.WriteString("# blockreel config\n\n")
	b.WriteString("# frames decoded ahead of the screen, 0 sizes the buffer from the terminal height\n")
	b.WriteString(fmt.Sprintf("buffer_frames = %d\n", s.BufferFrames))
	b.WriteString("# playback volume, 1 is full volume\n")
	b.WriteString(fmt.Sprintf("volume = %g\n", s.Volume))
	b.WriteString(fmt.Sprintf("loop = %t\n", s.Loop))
	b.WriteString(fmt.Sprintf("mute = %t\n", s.Mute))
	return os.WriteFile(path, []byte(b.String()), 0644)
}

func parseConf(path string) map[string]string {
	result := make(map[string]string)
	file, err := os.Open(path)
	if err != nil {
		return result
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, "="); ok {
			result[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return result
}
