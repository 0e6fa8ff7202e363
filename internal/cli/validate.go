package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"regnify/internal/domain"
	"regnify/internal/validator"
	"regnify/internal/validator/invoice"
)

// ErrValidationFailed is returned when at least one submission did not pass.
var ErrValidationFailed = errors.New("one or more submissions failed validation")

// Result is the validation outcome of one submission.
type Result struct {
	InvoiceNumber string             `json:"invoice_number"`
	Outcome       *validator.Outcome `json:"outcome,omitempty"`
	Error         string             `json:"error,omitempty"`
}

func (r Result) passed() bool {
	return r.Outcome != nil && r.Outcome.Passed()
}

// Evaluate runs the engine over subs in order.
func Evaluate(ctx context.Context, engine *validator.Engine, subs []*invoice.Submission) []Result {
	results := make([]Result, 0, len(subs))
	for _, sub := range subs {
		res := Result{InvoiceNumber: sub.InvoiceNumber}
		outcome, err := engine.Evaluate(ctx, sub)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Outcome = &outcome
		}
		results = append(results, res)
	}
	return results
}

// WriteResults prints results as a table, one row per submission. The result
// label is coloured after alignment so escape codes do not skew column widths.
func WriteResults(w io.Writer, results []Result) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INVOICE\tRESULT\tSCORE\tVIOLATIONS")
	labels := make([]*color.Color, 0, len(results))
	for _, r := range results {
		switch {
		case r.Error != "":
			fmt.Fprintf(tw, "%s\t%s\t-\t%s\n", r.InvoiceNumber, labelError, r.Error)
			labels = append(labels, color.New(color.FgYellow))
		case r.Outcome.Passed():
			fmt.Fprintf(tw, "%s\t%s\t%d\t\n", r.InvoiceNumber, labelPass, r.Outcome.Score())
			labels = append(labels, color.New(color.FgGreen))
		default:
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.InvoiceNumber, labelFail,
				r.Outcome.Score(), strings.Join(r.Outcome.Messages(), validator.ErrorSeparator))
			labels = append(labels, color.New(color.FgRed))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	lines := strings.SplitAfter(buf.String(), "\n")
	for i, r := range results {
		if i+1 >= len(lines) {
			break
		}
		lines[i+1] = colorLabel(lines[i+1], len(r.InvoiceNumber), r.label(), labels[i])
	}
	_, err := io.WriteString(w, strings.Join(lines, ""))
	return err
}

const (
	labelError = "ERROR"
	labelPass  = "PASS"
	labelFail  = "FAIL"
)

func (r Result) label() string {
	switch {
	case r.Error != "":
		return labelError
	case r.Outcome.Passed():
		return labelPass
	default:
		return labelFail
	}
}

// colorLabel colours the first occurrence of label after the first skip bytes.
func colorLabel(line string, skip int, label string, c *color.Color) string {
	if skip > len(line) {
		return line
	}
	i := strings.Index(line[skip:], label)
	if i < 0 {
		return line
	}
	i += skip
	return line[:i] + c.Sprint(label) + line[i+len(label):]
}

// newEngine builds an engine from the builtin rules plus any extra rule file.
func newEngine(rulesFile string, now func() time.Time) (*validator.Engine, *validator.Registry, error) {
	registry, err := validator.NewRegistry()
	if err != nil {
		return nil, nil, err
	}
	if rulesFile != "" {
		specs, err := LoadRuleSpecs(rulesFile)
		if err != nil {
			return nil, nil, err
		}
		for _, spec := range specs {
			spec.Jurisdiction = domain.Jurisdiction(strings.ToUpper(string(spec.Jurisdiction)))
			if err := registry.Register(spec); err != nil {
				return nil, nil, err
			}
		}
	}
	return validator.NewEngine(registry, validator.WithClock(now)), registry, nil
}

// ValidateCmd validates invoice submissions offline.
func ValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate invoice submissions from a JSON or XLSX file",
		Long: `Runs the validation engine over each submission in the file and prints
the outcome. Exits non-zero when any submission fails or cannot be evaluated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rulesFile, _ := cmd.Flags().GetString("rules")
			today, _ := cmd.Flags().GetString("today")
			asJSON, _ := cmd.Flags().GetBool("json")

			now := time.Now
			if today != "" {
				t, err := time.Parse(dateLayout, today)
				if err != nil {
					return fmt.Errorf("invalid --today: %w", err)
				}
				now = func() time.Time { return t }
			}

			engine, _, err := newEngine(rulesFile, now)
			if err != nil {
				return err
			}
			subs, err := LoadSubmissions(args[0])
			if err != nil {
				return err
			}

			results := Evaluate(cmd.Context(), engine, subs)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(results); err != nil {
					return err
				}
			} else if err := WriteResults(out, results); err != nil {
				return err
			}

			for _, r := range results {
				if !r.passed() {
					return ErrValidationFailed
				}
			}
			return nil
		},
	}
	cmd.Flags().String("rules", "", "JSON file with additional format rules")
	cmd.Flags().String("today", "", "evaluate as of this date (YYYY-MM-DD)")
	cmd.Flags().Bool("json", false, "print results as JSON")
	return cmd
}
