package report

import (
	"fmt"
	"sort"
	"strings"

	"objectdb/jsck"
)

type summaryFormatter struct{}

// Format renders a compact counts-by-kind table.
//
// Example output:
//
//	Consistency Summary
//	===================
//
//	missing_index_entry:         2
//	stale_index_entry:           1
//
//	Total: 3
func (summaryFormatter) Format(r *jsck.Report) (string, error) {
	if r == nil || len(r.Issues) == 0 {
		return "No inconsistencies found.\n", nil
	}

	counts := r.CountsByKind()
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	var sb strings.Builder
	sb.WriteString("Consistency Summary\n")
	sb.WriteString("===================\n\n")
	for _, kind := range kinds {
		fmt.Fprintf(&sb, "%-28s %d\n", kind+":", counts[jsck.IssueKind(kind)])
	}
	fmt.Fprintf(&sb, "\nTotal: %d\n", len(r.Issues))
	return sb.String(), nil
}
