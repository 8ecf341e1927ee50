package port

import "context"

// RunSummary is the payload of a batch-completion notification.
type RunSummary struct {
	Task        string
	Providers   []string
	CasesTotal  int
	CasesFailed int
	OutputFiles []string
	Elapsed     string
}

// EmailSender delivers batch-completion notifications to the researcher.
type EmailSender interface {
	SendRunCompleted(ctx context.Context, toEmail string, summary RunSummary) error
}
