package noop

import (
	"context"
	"log"
	"strings"

	"clinex/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs run summaries to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendRunCompleted(_ context.Context, toEmail string, summary port.RunSummary) error {
	log.Printf("[NOOP EMAIL] Run completed notification for %s: task=%s models=%s cases=%d failed=%d",
		toEmail, summary.Task, strings.Join(summary.Providers, ","), summary.CasesTotal, summary.CasesFailed)
	return nil
}
