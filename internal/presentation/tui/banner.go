package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the scopetrace banner to w, coloured when w supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text, color string
	}{
		{"                           _                       ", "#34d399"},
		{"  ___  ___ ___  _ __   ___| |_ _ __ __ _  ___ ___  ", "#2dd4bf"},
		{" / __|/ __/ _ \\| '_ \\ / _ \\ __| '__/ _` |/ __/ _ \\ ", "#22d3ee"},
		{" \\__ \\ (_| (_) | |_) |  __/ |_| | | (_| | (_|  __/ ", "#38bdf8"},
		{" |___/\\___\\___/| .__/ \\___|\\__|_|  \\__,_|\\___\\___| ", "#60a5fa"},
		{"               |_|                                  ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status formats a one-line outcome, green on success and red otherwise.
func Status(w io.Writer, ok bool, msg string) string {
	out := termenv.NewOutput(w)
	mark, color := "✔", "#22c55e"
	if !ok {
		mark, color = "✘", "#ef4444"
	}
	return out.String(mark + " " + msg).Foreground(out.Color(color)).String()
}
