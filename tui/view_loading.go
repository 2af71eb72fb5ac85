package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) viewLoading() string {
	if m.width == 0 || m.height == 0 {
		return fmt.Sprintf("\n\n   %s %s\n\n", m.spinner.View(), m.status)
	}

	return renderLoadingScreen(m.width, m.height, m.spinner.View(), m.status)
}

func renderLoadingScreen(width, height int, spinnerView, status string) string {
	logo := []string{
		" ____   _       ___    ____  _  __ ____   _____  _____  _     ",
		"| __ ) | |     / _ \\  / ___|| |/ /|  _ \\ | ____|| ____|| |    ",
		"|  _ \\ | |    | | | || |    | ' / | |_) ||  _|  |  _|  | |    ",
		"| |_) || |___ | |_| || |___ | . \\ |  _ < | |___ | |___ | |___ ",
		"|____/ |_____| \\___/  \\____||_|\\_\\|_| \\_\\|_____||_____||_____|",
	}

	// Logo, a blank row, the status line, another blank row, key hints
	blockHeight := len(logo) + 4
	startRow := (height - blockHeight) / 2
	if startRow < 0 {
		startRow = 0
	}

	statusLine := spinnerView + " " + captionStyle.Render(status)
	hints := navStyle.Render("space: pause  m: mute  q: quit")

	var b strings.Builder
	for y := range height {
		var line string
		switch {
		case y >= startRow && y < startRow+len(logo):
			text := logo[y-startRow]
			pad := width - len(text)
			if pad < 0 {
				pad = 0
				text = text[:width]
			}
			left := pad / 2
			right := pad - left
			line = strings.Repeat(" ", left) + titleStyle.Render(text) + strings.Repeat(" ", right)
		case y == startRow+len(logo)+1:
			line = centerANSI(statusLine, width)
		case y == startRow+len(logo)+3:
			line = centerANSI(hints, width)
		default:
			line = strings.Repeat(" ", width)
		}
		b.WriteString(line)
		if y < height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// centerANSI left-pads a styled line whose printable width differs from
// its byte length
func centerANSI(text string, width int) string {
	left := (width - lipgloss.Width(text)) / 2
	if left < 0 {
		left = 0
	}
	return strings.Repeat(" ", left) + text
}
