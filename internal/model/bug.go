package model

// BugCategory is the environment/origin bucket of a bug.
type BugCategory string

const (
	BugCategoryStgVN          BugCategory = "stg_vn"
	BugCategoryStgJP          BugCategory = "stg_jp"
	BugCategoryProd           BugCategory = "prod"
	BugCategoryNewRequirement BugCategory = "new_requirement"
)

// BugPriority levels.
type BugPriority string

const (
	BugPriorityHigh   BugPriority = "high"
	BugPriorityNormal BugPriority = "normal"
	BugPriorityLow    BugPriority = "low"
)

// BugStatus is the workflow state of a bug.
type BugStatus string

const (
	BugStatusNew     BugStatus = "new"
	BugStatusFixing  BugStatus = "fixing"
	BugStatusTesting BugStatus = "testing"
	BugStatusDone    BugStatus = "done"
	BugStatusPending BugStatus = "pending"
)

// BugApplication is the platform a bug was found on.
type BugApplication string

const (
	BugApplicationSPPC BugApplication = "sp_pc"
	BugApplicationApp  BugApplication = "app"
	BugApplicationSP   BugApplication = "sp"
	BugApplicationPC   BugApplication = "pc"
	BugApplicationAll  BugApplication = "all"
)

// BugType distinguishes freshly reported bugs from re-opened known ones.
type BugType string

const (
	BugTypeNew BugType = "new_bug"
	BugTypeOld BugType = "old_bug"
)

// Bug is one bug report under a task. Title is the natural key within the
// owning task; imported bugs derive it from the first content line.
type Bug struct {
	ID            int64          `json:"id"`
	TaskID        int64          `json:"taskId"`
	Title         string         `json:"title"`
	Content       string         `json:"content,omitempty"`
	Application   BugApplication `json:"application"`
	Category      BugCategory    `json:"category"`
	Priority      BugPriority    `json:"priority"`
	Status        BugStatus      `json:"status"`
	BugType       BugType        `json:"bugType"`
	ImageVideoURL string         `json:"imageVideoUrl,omitempty"`
	DevName       string         `json:"devName,omitempty"`
	TesterName    string         `json:"testerName,omitempty"`
}
