package report

import (
	"encoding/json"

	"objectdb/jsck"
)

type issuePayload struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	ObjectType  string `json:"objectType,omitempty"`
	ObjectID    string `json:"objectId,omitempty"`
}

type reportPayload struct {
	Format  string         `json:"format"`
	Summary map[string]int `json:"summary"`
	Issues  []issuePayload `json:"issues,omitempty"`
}

type jsonFormatter struct{}

func (jsonFormatter) Format(r *jsck.Report) (string, error) {
	payload := reportPayload{Format: string(FormatJSON), Summary: map[string]int{}}
	if r != nil {
		for kind, count := range r.CountsByKind() {
			payload.Summary[string(kind)] = count
		}
		payload.Issues = make([]issuePayload, 0, len(r.Issues))
		for _, issue := range r.Issues {
			p := issuePayload{Kind: string(issue.Kind), Description: issue.Description, ObjectType: issue.ObjectType}
			if issue.ObjectType != "" {
				p.ObjectID = issue.ID.String()
			}
			payload.Issues = append(payload.Issues, p)
		}
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
