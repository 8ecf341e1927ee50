// Package service orchestrates extraction batches: load cases, query each
// configured model, parse replies, and tabulate judgments to workbooks.
package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clinex/internal/config"
	"clinex/internal/docload"
	"clinex/internal/domain"
	"clinex/internal/port"
	"clinex/internal/prompt"
	"clinex/internal/report"
	"clinex/internal/respparse"
	"clinex/internal/task"
)

// ModelClientFactory builds a ModelClient for one provider config.
type ModelClientFactory func(cfg *config.ProviderConfig) (port.ModelClient, error)

// BatchResult summarizes one completed extraction batch. CasesFailed is the
// worst single (provider, iteration) pass, so it never exceeds CasesTotal;
// per-pass figures live on the Run rows.
type BatchResult struct {
	Task        string
	Providers   []string
	CasesTotal  int
	CasesFailed int
	OutputFiles []string
	Elapsed     time.Duration
}

// ExtractService runs the sequential extraction batch. Cases are processed
// one at a time per provider and iteration; there is no request concurrency,
// which keeps vendor rate limits and the local model's memory in check.
type ExtractService struct {
	cfg          *config.Config
	loader       *docload.Loader
	newClient    ModelClientFactory
	runRepo      port.RunRepository      // nil disables the results store
	judgmentRepo port.JudgmentRepository // nil disables the results store
	email        port.EmailSender        // nil disables notifications
	storage      port.ObjectStorage      // nil disables the S3 case source
}

// NewExtractService creates the batch orchestrator. runRepo, judgmentRepo,
// email and storage may be nil; the corresponding side effects are skipped.
func NewExtractService(
	cfg *config.Config,
	loader *docload.Loader,
	newClient ModelClientFactory,
	runRepo port.RunRepository,
	judgmentRepo port.JudgmentRepository,
	email port.EmailSender,
	storage port.ObjectStorage,
) *ExtractService {
	return &ExtractService{
		cfg:          cfg,
		loader:       loader,
		newClient:    newClient,
		runRepo:      runRepo,
		judgmentRepo: judgmentRepo,
		email:        email,
		storage:      storage,
	}
}

// Run executes the configured task against every configured provider for the
// configured number of iterations. Per-case model failures are recorded as
// error rows and never abort the batch; a canceled context does.
func (s *ExtractService) Run(ctx context.Context) (*BatchResult, error) {
	t, err := task.Get(s.cfg.Run.Task)
	if err != nil {
		return nil, err
	}

	providers := s.cfg.Providers.Configured()
	if len(providers) == 0 {
		return nil, fmt.Errorf("extract: no providers configured")
	}

	if s.storage != nil && s.cfg.S3.Bucket != "" {
		if err := s.syncInputFolder(ctx); err != nil {
			return nil, err
		}
	}

	docs, failedLoad, err := s.loader.LoadAll()
	if err != nil {
		return nil, err
	}
	log.Printf("extract: loaded %d cases (%d unreadable) from %s",
		len(docs), len(failedLoad), s.cfg.Docs.InputFolder)

	if err := os.MkdirAll(s.cfg.Docs.OutputFolder, 0o755); err != nil {
		return nil, fmt.Errorf("extract: creating output folder: %w", err)
	}

	started := time.Now()
	result := &BatchResult{
		Task:       t.Name,
		CasesTotal: len(docs) + len(failedLoad),
	}

	for _, pcfg := range providers {
		client, err := s.newClient(pcfg)
		if err != nil {
			return nil, fmt.Errorf("extract: provider %s: %w", pcfg.Provider, err)
		}
		result.Providers = append(result.Providers, pcfg.FileNickname())

		iterations := s.cfg.Run.Iterations
		if iterations < 1 {
			iterations = 1
		}
		for it := 1; it <= iterations; it++ {
			failed, outFile, err := s.runIteration(ctx, t, pcfg, client, docs, failedLoad, it)
			if err != nil {
				return nil, err
			}
			if failed > result.CasesFailed {
				result.CasesFailed = failed
			}
			result.OutputFiles = append(result.OutputFiles, outFile)
		}
	}

	result.Elapsed = time.Since(started)
	s.notify(ctx, result)
	return result, nil
}

// runIteration processes every case once for one (provider, iteration) and
// saves the workbook. Returns the number of failed cases.
func (s *ExtractService) runIteration(
	ctx context.Context,
	t *domain.ExtractionTask,
	pcfg *config.ProviderConfig,
	client port.ModelClient,
	docs []domain.CaseDocument,
	failedLoad []string,
	iteration int,
) (int, string, error) {
	filename := report.BuildFilename(t.Name, pcfg.FileNickname(), iteration)

	run := &domain.Run{
		ID:         uuid.New(),
		Task:       t.Name,
		Provider:   pcfg.Provider,
		Model:      pcfg.DefaultModel,
		Iteration:  iteration,
		Status:     domain.RunStatusRunning,
		OutputFile: filename,
		StartedAt:  time.Now(),
	}
	if s.runRepo != nil {
		if err := s.runRepo.Create(ctx, run); err != nil {
			return 0, "", err
		}
	}

	writer, err := report.NewWriter(t)
	if err != nil {
		return 0, "", err
	}

	var judgments []domain.Judgment
	failed := 0

	// Cases that never yielded text still get a row, so the workbook stays
	// aligned with the input folder.
	for _, caseID := range failedLoad {
		row := domain.ResultRow{
			CaseID:    caseID,
			Provider:  pcfg.Provider,
			Model:     pcfg.DefaultModel,
			Iteration: iteration,
			ErrorNote: domain.ErrDocumentRead.Error(),
		}
		if err := writer.Append(&row); err != nil {
			return 0, "", err
		}
		failed++
	}

	for i := range docs {
		doc := &docs[i]
		if err := ctx.Err(); err != nil {
			return 0, "", err
		}

		row := domain.ResultRow{
			CaseID:    doc.CaseID,
			Provider:  pcfg.Provider,
			Model:     pcfg.DefaultModel,
			Iteration: iteration,
			Context:   doc.Context,
		}

		reply, cerr := client.Complete(ctx, prompt.Build(t, doc.Context))
		if cerr != nil {
			log.Printf("extract: case %s, model %s, run %d: %v",
				doc.CaseID, pcfg.FileNickname(), iteration, cerr)
			row.ErrorNote = cerr.Error()
			failed++
		} else {
			row.Response = reply
			row.Values = respparse.Parse(t, reply)
		}
		if err := writer.Append(&row); err != nil {
			return 0, "", err
		}

		if s.judgmentRepo != nil && cerr == nil {
			now := time.Now()
			for _, item := range t.ItemNames() {
				judgments = append(judgments, domain.Judgment{
					ID:        uuid.New(),
					RunID:     run.ID,
					CaseID:    doc.CaseID,
					Provider:  pcfg.Provider,
					Model:     pcfg.DefaultModel,
					Iteration: iteration,
					Item:      item,
					Value:     row.Value(item),
					CreatedAt: now,
				})
			}
		}
	}

	outPath := filepath.Join(s.cfg.Docs.OutputFolder, filename)
	if err := writer.SaveAs(outPath); err != nil {
		return 0, "", err
	}
	log.Printf("extract: wrote %d rows to %s", writer.Rows(), outPath)

	if s.judgmentRepo != nil {
		if err := s.judgmentRepo.CreateBatch(ctx, judgments); err != nil {
			return 0, "", err
		}
	}
	if s.runRepo != nil {
		now := time.Now()
		run.Status = domain.RunStatusCompleted
		run.CasesTotal = len(docs) + len(failedLoad)
		run.CasesFailed = failed
		run.FinishedAt = &now
		if err := s.runRepo.Finish(ctx, run); err != nil {
			return 0, "", err
		}
	}

	return failed, outPath, nil
}

// syncInputFolder mirrors the configured bucket prefix into the local input
// folder before loading. Object keys map to paths relative to the prefix.
func (s *ExtractService) syncInputFolder(ctx context.Context) error {
	bucket, prefix := s.cfg.S3.Bucket, s.cfg.S3.Prefix
	keys, err := s.storage.ListKeys(ctx, bucket, prefix)
	if err != nil {
		return fmt.Errorf("extract: listing case objects: %w", err)
	}
	log.Printf("extract: syncing %d objects from s3://%s/%s", len(keys), bucket, prefix)

	for _, key := range keys {
		rel := strings.TrimPrefix(strings.TrimPrefix(key, prefix), "/")
		if rel == "" || strings.HasSuffix(key, "/") {
			continue
		}
		data, err := s.storage.Download(ctx, bucket, key)
		if err != nil {
			return fmt.Errorf("extract: downloading %s: %w", key, err)
		}
		dest := filepath.Join(s.cfg.Docs.InputFolder, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("extract: creating case folder: %w", err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("extract: writing %s: %w", dest, err)
		}
	}
	return nil
}

func (s *ExtractService) notify(ctx context.Context, result *BatchResult) {
	if s.email == nil || s.cfg.Run.NotifyEmail == "" {
		return
	}
	summary := port.RunSummary{
		Task:        result.Task,
		Providers:   result.Providers,
		CasesTotal:  result.CasesTotal,
		CasesFailed: result.CasesFailed,
		OutputFiles: result.OutputFiles,
		Elapsed:     result.Elapsed.Round(time.Second).String(),
	}
	if err := s.email.SendRunCompleted(ctx, s.cfg.Run.NotifyEmail, summary); err != nil {
		// Notification failure never fails a finished batch.
		log.Printf("extract: sending completion email: %v", err)
	}
}
