package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/pkg/form"
)

// report is the outcome of one validation run.
type report struct {
	Valid  bool                `json:"valid"`
	Fields map[string][]string `json:"fields,omitempty"`
	order  []string
}

func newReport(verr *form.ValidationError) report {
	if verr == nil || verr.Len() == 0 {
		return report{Valid: true}
	}
	return report{Fields: verr.Map(), order: verr.Keys()}
}

type styles struct {
	ok    lipgloss.Style
	fail  lipgloss.Style
	key   lipgloss.Style
	faint lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		fail:  r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		key:   r.NewStyle().Bold(true),
		faint: r.NewStyle().Faint(true),
	}
}

func writeReport(w io.Writer, format string, rep report) error {
	if format == config.OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	st := newStyles(w)
	if rep.Valid {
		_, err := fmt.Fprintln(w, st.ok.Render("✓ valid"))
		return err
	}
	if _, err := fmt.Fprintln(w, st.fail.Render(fmt.Sprintf("✗ %d invalid field(s)", len(rep.order)))); err != nil {
		return err
	}
	for _, key := range rep.order {
		for _, message := range rep.Fields[key] {
			if _, err := fmt.Fprintf(w, "  %s %s\n", st.key.Render(key), st.faint.Render(message)); err != nil {
				return err
			}
		}
	}
	return nil
}

// fieldEvent is one line of watch output.
type fieldEvent struct {
	Field   string `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func writeFieldEvent(w io.Writer, format string, ev fieldEvent) error {
	if format == config.OutputJSON {
		return json.NewEncoder(w).Encode(ev)
	}
	st := newStyles(w)
	if ev.Valid {
		_, err := fmt.Fprintf(w, "%s %s\n", st.ok.Render("✓"), st.key.Render(ev.Field))
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s %s\n", st.fail.Render("✗"), st.key.Render(ev.Field), st.faint.Render(ev.Message))
	return err
}
