package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/unowned-ai/nin/pkg/notepad"
)

// Color palette "Blue Moon" from https://gogh-co.github.io/Gogh/
const (
	colorGray     = "#353b52"
	colorGreenDim = "#b4c4b4"
	colorRed      = "#e61f44"
	colorRedDim   = "#d06178"
	colorPurple   = "#b9a3eb"
	colorBlue     = "#89ddff"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorBlue))
	positionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPurple))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreenDim))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRedDim))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorRed))
)

// row is one line of a listing: the 1-based position, a title, a trailing
// date and an optional detail line.
type row struct {
	title  string
	date   string
	detail string
}

func printList(w io.Writer, heading, empty string, rows []row) {
	fmt.Fprintln(w, titleStyle.Render(heading))
	if len(rows) == 0 {
		fmt.Fprintln(w, dimStyle.Render(empty))
		return
	}

	width := len(strconv.Itoa(len(rows)))
	for i, r := range rows {
		pos := fmt.Sprintf("%*d.", width, i+1)
		line := positionStyle.Render(pos) + " " + r.title
		if r.date != "" {
			line += "  " + dimStyle.Render(r.date)
		}
		fmt.Fprintln(w, line)
		if r.detail != "" {
			indent := strings.Repeat(" ", width+2)
			for _, l := range strings.Split(strings.TrimRight(r.detail, "\n"), "\n") {
				fmt.Fprintln(w, indent+l)
			}
		}
	}
}

func printOK(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(format, args...)))
}

// describe turns service errors into the messages shown to the user.
func describe(err error) string {
	var verr *notepad.ValidationError
	var perr *notepad.PermissionError
	switch {
	case errors.As(err, &verr):
		return verr.Message
	case errors.As(err, &perr):
		return "If you want a notification, please grant the notification permission first."
	default:
		return err.Error()
	}
}
