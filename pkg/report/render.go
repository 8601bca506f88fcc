package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"frameworks/dbdoctor/pkg/health"
)

// TextOptions controls human-readable rendering.
type TextOptions struct {
	Color bool
}

// ColorEnabled reports whether w is a terminal and NO_COLOR is unset.
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type palette struct {
	ok, warn, fail, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		fail: color.New(color.FgRed),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.fail, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) mark(s health.Severity) string {
	switch s {
	case health.SeverityOK:
		return p.ok.Sprint("✓")
	case health.SeverityWarning:
		return p.warn.Sprint("⚠")
	default:
		return p.fail.Sprint("✗")
	}
}

func (p palette) status(s health.Status) string {
	label := strings.ToUpper(string(s))
	switch s {
	case health.StatusHealthy:
		return p.ok.Sprint(label)
	case health.StatusDegraded:
		return p.warn.Sprint(label)
	default:
		return p.fail.Sprint(label)
	}
}

var titleCase = cases.Title(language.English)

func categoryLabel(c health.Category) string {
	return titleCase.String(strings.ReplaceAll(string(c), "_", " "))
}

// RenderText writes the multi-section human report.
func RenderText(w io.Writer, r *Report, opts TextOptions) error {
	p := newPalette(opts.Color)
	var b strings.Builder

	fmt.Fprintln(&b, p.bold.Sprint("Connection parameters"))
	t := r.Target
	fmt.Fprintf(&b, "  %-10s %s\n", "url:", t.Redacted)
	if t.Host != "" || t.Port != 0 || t.Database != "" {
		fmt.Fprintf(&b, "  %-10s %s\n", "host:", dash(t.Host))
		fmt.Fprintf(&b, "  %-10s %s\n", "port:", dash(portString(t.Port)))
		fmt.Fprintf(&b, "  %-10s %s\n", "database:", dash(t.Database))
		fmt.Fprintf(&b, "  %-10s %s\n", "user:", dash(t.User))
		fmt.Fprintf(&b, "  %-10s %s\n", "sslmode:", dash(t.SSLMode))
		fmt.Fprintf(&b, "  %-10s %s\n", "pooling:", dash(strings.Join(t.Pooling, ", ")))
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, p.bold.Sprint("Probes"))
	for _, f := range r.Findings {
		line := fmt.Sprintf(" %s %-18s %s", p.mark(f.Severity), f.Probe+":", f.Message)
		if d, ok := f.Duration(); ok && d > 0 {
			line += fmt.Sprintf(" [%v]", d)
		}
		if f.Advisory {
			line += " (advisory)"
		}
		fmt.Fprintln(&b, line)
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, p.bold.Sprint("Summary"))
	fmt.Fprintf(&b, "  status:   %s\n", p.status(r.Status))
	fmt.Fprintf(&b, "  findings: %d ok, %d warning, %d error\n",
		r.Count(health.SeverityOK), r.Count(health.SeverityWarning), r.Count(health.SeverityError))
	if d := r.Duration(); d > 0 {
		fmt.Fprintf(&b, "  elapsed:  %v\n", d.Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "  run id:   %s\n", r.RunID)

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, p.bold.Sprint("Recommendations"))
		for _, c := range health.Categories {
			var texts []string
			for _, rec := range r.Recommendations {
				if rec.Category == c {
					texts = append(texts, rec.Text)
				}
			}
			if len(texts) == 0 {
				continue
			}
			fmt.Fprintf(&b, "  %s\n", categoryLabel(c))
			for _, text := range texts {
				fmt.Fprintf(&b, "    - %s\n", text)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderBatchText renders every report followed by the merged status.
func RenderBatchText(w io.Writer, batch *Batch, opts TextOptions) error {
	if len(batch.Reports) == 1 {
		return RenderText(w, batch.Reports[0], opts)
	}
	p := newPalette(opts.Color)
	for i, r := range batch.Reports {
		if i > 0 {
			if _, err := fmt.Fprintln(w, strings.Repeat("─", 60)); err != nil {
				return err
			}
		}
		if err := RenderText(w, r, opts); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nOverall: %s (%d targets)\n", p.status(batch.Status), len(batch.Reports))
	return err
}

// RenderJSON writes r as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// RenderBatchJSON writes a single report unwrapped, several as a batch.
func RenderBatchJSON(w io.Writer, batch *Batch) error {
	if len(batch.Reports) == 1 {
		return RenderJSON(w, batch.Reports[0])
	}
	return RenderJSON(w, batch)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func portString(p int) string {
	if p == 0 {
		return ""
	}
	return fmt.Sprintf("%d", p)
}
