package report

import (
	"fmt"
	"strings"

	"objectdb/jsck"
)

type humanFormatter struct{}

// Format renders one line per issue, in the order the report lists them.
func (humanFormatter) Format(r *jsck.Report) (string, error) {
	if r == nil || len(r.Issues) == 0 {
		return "No inconsistencies found.\n", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d inconsistenc%s:\n\n", len(r.Issues), plural(len(r.Issues)))
	for _, issue := range r.Issues {
		if issue.ObjectType != "" {
			fmt.Fprintf(&sb, "[%s] %s %s: %s\n", issue.Kind, issue.ObjectType, issue.ID, issue.Description)
		} else {
			fmt.Fprintf(&sb, "[%s] %s\n", issue.Kind, issue.Description)
		}
	}
	return sb.String(), nil
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
