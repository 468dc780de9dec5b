package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"winnow/internal/queue"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	fieldLabelWidth = 12
	fieldIndent     = "  "
)

// statusKindFor maps a job status onto a render kind for colorized output.
func statusKindFor(status queue.Status) statusKind {
	switch status {
	case queue.StatusDone:
		return statusOK
	case queue.StatusFailed:
		return statusError
	case queue.StatusRunning:
		return statusWarn
	default:
		return statusInfo
	}
}

func renderFieldLine(label, value string, colorize bool, kind statusKind) string {
	line := fmt.Sprintf("%s%-*s %s", fieldIndent, fieldLabelWidth, label+":", value)
	if colorize {
		if color := kindColor(kind); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func kindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
