// Package redmine imports Redmine testing issues as tasks, then chains
// into the spreadsheet importers through the links carried on the issue.
package redmine

// Named is a Redmine id/name pair.
type Named struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CustomField is one custom field attached to an issue. Value is
// typically a string but Redmine also emits arrays for multi-value
// fields.
type CustomField struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Issue is the subset of a Redmine issue the importer reads.
type Issue struct {
	ID          int    `json:"id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Project     Named  `json:"project"`
	Status      Named  `json:"status"`
	Author      Named  `json:"author"`
	AssignedTo  *Named `json:"assigned_to,omitempty"`
	Parent      *struct {
		ID int `json:"id"`
	} `json:"parent,omitempty"`
	StartDate      string        `json:"start_date"`
	DueDate        string        `json:"due_date"`
	DoneRatio      int           `json:"done_ratio"`
	EstimatedHours *float64      `json:"estimated_hours,omitempty"`
	SpentHours     *float64      `json:"spent_hours,omitempty"`
	CustomFields   []CustomField `json:"custom_fields"`
}

// Custom field names carried on testing issues.
const (
	FieldTestcaseLink = "testcase_link"
	FieldBugLink      = "bug_link"
	FieldStgBugsVN    = "stg_bugs_vn"
	FieldStgBugsJP    = "stg_bugs_jp"
	FieldProdBugs     = "production_bugs"
)

// CustomFieldValue returns the string value of the named custom field,
// or "".
func (i *Issue) CustomFieldValue(name string) string {
	for _, f := range i.CustomFields {
		if f.Name != name {
			continue
		}
		if s, ok := f.Value.(string); ok {
			return s
		}
	}
	return ""
}

type issueResponse struct {
	Issue Issue `json:"issue"`
}

type issuesResponse struct {
	Issues     []Issue `json:"issues"`
	TotalCount int     `json:"total_count"`
	Offset     int     `json:"offset"`
	Limit      int     `json:"limit"`
}
