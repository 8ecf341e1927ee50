package domain

import (
	"time"

	"github.com/google/uuid"
)

// CaseDocument is the combined, clipped text of one patient case folder.
// Immutable once loaded.
type CaseDocument struct {
	CaseID  string   // subfolder name, used as the patient surrogate ID
	Files   []string // source file paths that contributed text
	RawText string   // combined raw text before section filtering
	Context string   // task-relevant segment sent to the model
}

// TaskItem is one clinical concept the model is asked to classify.
type TaskItem struct {
	// Name is the canonical column/judgment name.
	Name string
	// Synonyms are lowercase substrings that standardize model phrasings
	// (including German variants) back to Name.
	Synonyms []string
	Format   AnswerFormat
}

// ExtractionTask is a named list of items to classify plus the zero-shot
// instruction block that enumerates them.
type ExtractionTask struct {
	Name         string
	Instructions string
	Items        []TaskItem
}

// ItemNames returns the canonical item names in column order.
func (t *ExtractionTask) ItemNames() []string {
	names := make([]string, len(t.Items))
	for i := range t.Items {
		names[i] = t.Items[i].Name
	}
	return names
}

// Item returns the item with the given canonical name, or nil.
func (t *ExtractionTask) Item(name string) *TaskItem {
	for i := range t.Items {
		if t.Items[i].Name == name {
			return &t.Items[i]
		}
	}
	return nil
}

// Judgment is a single stored classification.
type Judgment struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	RunID     uuid.UUID     `db:"run_id" json:"run_id"`
	CaseID    string        `db:"case_id" json:"case_id"`
	Provider  string        `db:"provider" json:"provider"`
	Model     string        `db:"model" json:"model"`
	Iteration int           `db:"iteration" json:"iteration"`
	Item      string        `db:"item" json:"item"`
	Value     JudgmentValue `db:"value" json:"value"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// ResultRow is one output row: all judgments for a (case, model, iteration)
// plus the raw model reply and the context it was shown.
type ResultRow struct {
	CaseID    string
	Provider  string
	Model     string
	Iteration int
	Values    map[string]JudgmentValue
	Response  string // full model reply
	Context   string // extracted segment sent to the model
	ErrorNote string // non-empty when the model call failed for this case
}

// Value returns the judgment for an item, defaulting to Unknown.
func (r *ResultRow) Value(item string) JudgmentValue {
	if v, ok := r.Values[item]; ok {
		return v
	}
	return JudgmentUnknown
}

// Run records one batch execution in the results store.
type Run struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Task        string     `db:"task" json:"task"`
	Provider    string     `db:"provider" json:"provider"`
	Model       string     `db:"model" json:"model"`
	Iteration   int        `db:"iteration" json:"iteration"`
	Status      RunStatus  `db:"status" json:"status"`
	CasesTotal  int        `db:"cases_total" json:"cases_total"`
	CasesFailed int        `db:"cases_failed" json:"cases_failed"`
	OutputFile  string     `db:"output_file" json:"output_file"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	FinishedAt  *time.Time `db:"finished_at" json:"finished_at"`
}
