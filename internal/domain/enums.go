package domain

// JudgmentValue is the classification result for a single extraction item.
type JudgmentValue string

const (
	JudgmentYes JudgmentValue = "Yes"
	JudgmentNo  JudgmentValue = "No"
	// JudgmentUnknown is recorded when no line of the model reply matched the item.
	JudgmentUnknown JudgmentValue = "Unknown"
	// JudgmentNotProvided is a valid answer only for ternary items.
	JudgmentNotProvided JudgmentValue = "Not provided"
)

// AnswerFormat is the expected answer shape for an extraction item.
type AnswerFormat string

const (
	// FormatBinary expects Yes or No.
	FormatBinary AnswerFormat = "binary"
	// FormatTernary expects Yes, No, or Not provided.
	FormatTernary AnswerFormat = "ternary"
)

// RunStatus represents the lifecycle of a stored extraction run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// DocFileExtensions lists the file extensions the document loader reads,
// keyed without the leading dot.
var DocFileExtensions = map[string]bool{
	"docx": true,
	"txt":  true,
}
