package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type checkState int

const (
	checkPassed checkState = iota
	checkFailed
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiCyan  = "\x1b[36m"
)

const checkLabelWidth = 18

// renderCheckLine formats one readiness check as "  label: [PASS] detail".
func renderCheckLine(label string, state checkState, detail string, colorize bool) string {
	tag, color := "PASS", ansiGreen
	if state == checkFailed {
		tag, color = "FAIL", ansiRed
	}
	line := fmt.Sprintf("  %-*s [%s]", checkLabelWidth, label+":", tag)
	if detail != "" {
		line += " " + detail
	}
	if !colorize {
		return line
	}
	return color + line + ansiReset
}

func renderHeading(out io.Writer, title string, colorize bool) {
	title = strings.TrimSpace(title)
	rule := strings.Repeat("=", len(title))
	if colorize {
		title, rule = ansiCyan+title+ansiReset, ansiCyan+rule+ansiReset
	}
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, rule)
}

// isTerminal reports whether writer is an interactive terminal. Colour and
// progress bars are only drawn when it is.
func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
