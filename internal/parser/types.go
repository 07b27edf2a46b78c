package parser

// ColumnNone marks a semantic column that is absent from the header.
const ColumnNone = -1

// DeviceColumn is one device/environment result column, in header order.
type DeviceColumn struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// ColumnMapping maps semantic fields to 0-based column indices for one
// sheet. It is built once per sheet and reused for every data row. Fields
// the header does not carry stay ColumnNone; readers must treat them as
// absent, never as an error.
type ColumnMapping struct {
	ID                 int
	TestType           int
	Function           int
	TestCase           int
	Action             int
	ExpectedResult     int
	Target             int
	AcceptanceCriteria int
	UserStory          int
	DeviceColumns      []DeviceColumn
}

// NewColumnMapping returns a mapping with every semantic field absent.
func NewColumnMapping() ColumnMapping {
	return ColumnMapping{
		ID:                 ColumnNone,
		TestType:           ColumnNone,
		Function:           ColumnNone,
		TestCase:           ColumnNone,
		Action:             ColumnNone,
		ExpectedResult:     ColumnNone,
		Target:             ColumnNone,
		AcceptanceCriteria: ColumnNone,
		UserStory:          ColumnNone,
	}
}

// BugColumnMapping maps bug-sheet columns. Same absent-by-default
// contract as ColumnMapping.
type BugColumnMapping struct {
	No          int
	Content     int
	Application int
	Category    int
	Priority    int
	Dev         int
	Tester      int
	Status      int
	Media       int
	BugType     int
}

// NewBugColumnMapping returns a bug mapping with every field absent.
func NewBugColumnMapping() BugColumnMapping {
	return BugColumnMapping{
		No:          ColumnNone,
		Content:     ColumnNone,
		Application: ColumnNone,
		Category:    ColumnNone,
		Priority:    ColumnNone,
		Dev:         ColumnNone,
		Tester:      ColumnNone,
		Status:      ColumnNone,
		Media:       ColumnNone,
		BugType:     ColumnNone,
	}
}
