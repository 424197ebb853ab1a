package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/huimingz/commitpanel/internal/panel"
)

// PrinterOption is a functional option for Printer
type PrinterOption func(*Printer)

// WithColor enables or disables color output
func WithColor(enabled bool) PrinterOption {
	return func(p *Printer) {
		p.colorEnabled = enabled
	}
}

// Printer writes status lines to the terminal
type Printer struct {
	writer       io.Writer
	colorEnabled bool
}

// NewPrinter creates a new Printer
func NewPrinter(writer io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{
		writer:       writer,
		colorEnabled: true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Printer) print(attr color.Attribute, icon, message string) error {
	if p.colorEnabled {
		_, err := color.New(attr).Fprintf(p.writer, "%s %s\n", icon, message)
		return err
	}
	_, err := fmt.Fprintf(p.writer, "%s %s\n", icon, message)
	return err
}

// PrintProgress prints a progress message
func (p *Printer) PrintProgress(message string) error {
	return p.print(color.FgYellow, "⏳", message)
}

// PrintInfo prints an info message
func (p *Printer) PrintInfo(message string) error {
	return p.print(color.FgCyan, "ℹ️ ", message)
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) error {
	return p.print(color.FgGreen, "✅", message)
}

// PrintWarning prints a warning message
func (p *Printer) PrintWarning(message string) error {
	return p.print(color.FgYellow, "⚠️ ", message)
}

// PrintError prints an error message
func (p *Printer) PrintError(message string) error {
	return p.print(color.FgRed, "❌", message)
}

// PrintInfoEvent prints a controller notice at its level
func (p *Printer) PrintInfoEvent(e panel.InfoEvent) error {
	switch e.Level {
	case panel.LevelSuccess:
		return p.PrintSuccess(e.Text)
	case panel.LevelWarning:
		return p.PrintWarning(e.Text)
	case panel.LevelError:
		return p.PrintError(e.Text)
	default:
		return p.PrintInfo(e.Text)
	}
}

// PrintCheck prints one line of a diagnostics list
func (p *Printer) PrintCheck(name string, err error) error {
	if err == nil {
		return p.print(color.FgGreen, "✓", name)
	}
	return p.print(color.FgRed, "✗", fmt.Sprintf("%s: %v", name, err))
}

// PrintDuration prints how long generation took
func (p *Printer) PrintDuration(seconds float64) error {
	msg := fmt.Sprintf("Commit message generated in %s", FormatDuration(time.Duration(seconds*float64(time.Second))))
	if p.colorEnabled {
		_, err := color.New(color.FgHiBlack).Fprintln(p.writer, msg)
		return err
	}
	_, err := fmt.Fprintln(p.writer, msg)
	return err
}

// Newline prints a newline
func (p *Printer) Newline() error {
	_, err := fmt.Fprintln(p.writer)
	return err
}

// FormatDuration formats a duration in a human-readable format
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
