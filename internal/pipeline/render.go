package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/veracitylab/veracity/internal/model"
)

// RenderJSON writes the report as indented JSON
func RenderJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// RenderText writes a human-readable summary of the report
func RenderText(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "URL:      %s\n", report.URL)
	fmt.Fprintf(w, "Score:    %d/100\n", report.VeracityScore)
	fmt.Fprintf(w, "Verdict:  %s\n", report.Verdict)
	if report.Degraded {
		fmt.Fprintln(w, "Degraded: yes (one or more sources did not answer)")
	}
	if len(report.Flags) > 0 {
		fmt.Fprintf(w, "Flags:    %s\n", strings.Join(report.Flags, ", "))
	}
	fmt.Fprintf(w, "Summary:  %s\n", report.Summary)

	for _, src := range model.SourcePriority {
		sig, ok := report.Signals[src]
		if !ok {
			continue
		}
		switch sig.Status {
		case model.StatusOk:
			fmt.Fprintf(w, "  %-20s ok (risk %.2f)\n", src, sig.Risk)
		default:
			fmt.Fprintf(w, "  %-20s %s: %s\n", src, sig.Status, sig.Detail)
		}
	}
}
