// Package report formats a completed jsck scan for human consumption.
package report

import (
	"fmt"
	"strings"

	"objectdb/jsck"
)

// Format names an available rendering.
type Format string

const (
	FormatHuman   Format = "human"
	FormatJSON    Format = "json"
	FormatSummary Format = "summary"
)

// Formatter renders a jsck.Report as a string.
type Formatter interface {
	Format(*jsck.Report) (string, error)
}

// NewFormatter resolves name to a Formatter. An empty name defaults to human.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman:
		return humanFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatSummary:
		return summaryFormatter{}, nil
	default:
		return nil, fmt.Errorf("report: unsupported format %q; use 'human', 'json', or 'summary'", name)
	}
}
