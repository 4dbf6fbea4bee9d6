package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	tempmail "github.com/tempmail-go/client-go"
)

// Printer writes styled output. Messages go to Out, errors to Err.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// NewPrinter creates a printer over the given writers.
func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{Out: out, Err: errOut}
}

// Line prints a plain line.
func (p *Printer) Line(format string, args ...any) {
	fmt.Fprintf(p.Out, format+"\n", args...)
}

func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintf(p.Err, "%s %s\n", ErrorIcon, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.Out, "%s %s\n", SuccessIcon, SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.Out, "%s %s\n", InfoIcon, InfoStyle.Render(fmt.Sprintf(format, args...)))
}

// Waiting announces a blocking wait for mail.
func (p *Printer) Waiting(format string, args ...any) {
	fmt.Fprintf(p.Out, "%s %s\n", WaitIcon, WaitStyle.Render(fmt.Sprintf(format, args...)))
}

// Timeout reports a wait that ended without new mail.
func (p *Printer) Timeout(format string, args ...any) {
	fmt.Fprintf(p.Out, "%s %s\n", TimeoutIcon, TimeoutStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintMessage displays a single message with its details.
func (p *Printer) PrintMessage(address string, msg *tempmail.Message) {
	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}

	fmt.Fprintf(p.Out, "%s %s %s\n", MessageIcon, SubjectStyle.Render(subject), AddressStyle.Render(address))
	fmt.Fprintf(p.Out, "  %s %s\n", LabelStyle.Render("from    "), orDash(msg.From))
	fmt.Fprintf(p.Out, "  %s %s\n", LabelStyle.Render("received"), FormatTime(msg.ReceivedAt))
	if msg.BodyPreview != "" {
		fmt.Fprintf(p.Out, "  %s %s\n", LabelStyle.Render("preview "), msg.BodyPreview)
	}
}

// PrintMessageList displays messages as a table, in service order.
func (p *Printer) PrintMessageList(address string, messages []*tempmail.Message) {
	if len(messages) == 0 {
		p.Info("No messages in %s", address)
		return
	}

	tbl := NewTable("#", "FROM", "SUBJECT", "PREVIEW", "RECEIVED").WithWriter(p.Out)
	for i, msg := range messages {
		tbl.AddRow(i+1, orDash(msg.From), orDash(msg.Subject), Truncate(msg.BodyPreview, 40), FormatTime(msg.ReceivedAt))
	}

	fmt.Fprintf(p.Out, "\n%s %s (%d)\n", MailboxIcon, AddressStyle.Render(address), len(messages))
	tbl.Print()
	fmt.Fprintln(p.Out)
}

// FormatTime formats a timestamp relative to now.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	diff := time.Since(t)
	switch {
	case diff < 0:
		return t.Local().Format("2006-01-02 15:04")
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Local().Format("2006-01-02 15:04")
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return orDash(s)
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
