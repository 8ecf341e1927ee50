package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinex/internal/config"
	"clinex/internal/docload"
	"clinex/internal/domain"
	"clinex/internal/port"
	"clinex/internal/report"
	"clinex/internal/service"
	"clinex/internal/task"
)

// fakeModelClient answers with a fixed judgment block and fails for cases
// whose context carries the failure token.
type fakeModelClient struct {
	calls   int
	prompts []string
}

func (f *fakeModelClient) Complete(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if strings.Contains(prompt, "FAILME") {
		return "", errors.New("model unavailable: connection refused")
	}
	return "- CSF Leak: Yes\n- Infection: No", nil
}

type fakeRunRepo struct {
	created  []domain.Run
	finished []domain.Run
}

func (f *fakeRunRepo) Create(_ context.Context, run *domain.Run) error {
	f.created = append(f.created, *run)
	return nil
}

func (f *fakeRunRepo) Finish(_ context.Context, run *domain.Run) error {
	f.finished = append(f.finished, *run)
	return nil
}

func (f *fakeRunRepo) GetByID(_ context.Context, _ uuid.UUID) (*domain.Run, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeRunRepo) List(_ context.Context, _, _ int) ([]domain.Run, int, error) {
	return nil, 0, nil
}

type fakeJudgmentRepo struct {
	batches [][]domain.Judgment
}

func (f *fakeJudgmentRepo) CreateBatch(_ context.Context, judgments []domain.Judgment) error {
	f.batches = append(f.batches, judgments)
	return nil
}

func (f *fakeJudgmentRepo) ListByRun(_ context.Context, _ uuid.UUID) ([]domain.Judgment, error) {
	return nil, nil
}

type fakeEmailSender struct {
	to      string
	summary port.RunSummary
	sends   int
}

func (f *fakeEmailSender) SendRunCompleted(_ context.Context, toEmail string, summary port.RunSummary) error {
	f.sends++
	f.to = toEmail
	f.summary = summary
	return nil
}

func writeCase(t *testing.T, root, name, body string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	text := "Diagnose: " + body + "\nMit freundlichen Grüßen"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "letter.txt"), []byte(text), 0o644))
}

func testConfig(input, output string) *config.Config {
	return &config.Config{
		Docs: config.DocsConfig{
			InputFolder:  input,
			OutputFolder: output,
			StartMarker:  "diagnos",
			EndMarker:    "grüße",
		},
		Run: config.RunConfig{
			Task:        task.PostOp,
			Iterations:  1,
			NotifyEmail: "researcher@clinic.example",
		},
		Providers: config.ProvidersConfig{
			Primary: config.ProviderConfig{
				Provider:     "claude",
				DefaultModel: "claude-3-5-sonnet-20241022",
				Nickname:     "sonnet",
			},
		},
	}
}

func TestRun_PartialFailureContinues(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	writeCase(t, input, "case001", "Liquorleck postoperativ")
	writeCase(t, input, "case002", "FAILME")
	writeCase(t, input, "case003", "unauffälliger Verlauf")
	// An unreadable case folder still gets an error row.
	require.NoError(t, os.MkdirAll(filepath.Join(input, "case000"), 0o755))

	cfg := testConfig(input, output)
	client := &fakeModelClient{}
	runRepo := &fakeRunRepo{}
	judgmentRepo := &fakeJudgmentRepo{}
	sender := &fakeEmailSender{}

	svc := service.NewExtractService(cfg, docload.NewLoader(cfg.Docs),
		func(_ *config.ProviderConfig) (port.ModelClient, error) { return client, nil },
		runRepo, judgmentRepo, sender, nil)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, task.PostOp, result.Task)
	assert.Equal(t, []string{"sonnet"}, result.Providers)
	assert.Equal(t, 4, result.CasesTotal)
	assert.Equal(t, 2, result.CasesFailed) // unreadable folder + model failure
	assert.Equal(t, 3, client.calls)       // every readable case was queried

	// The workbook holds one row per case, error rows included.
	require.Len(t, result.OutputFiles, 1)
	assert.Equal(t, "postop_sonnet_run1.xlsx", filepath.Base(result.OutputFiles[0]))

	postop, err := task.Get(task.PostOp)
	require.NoError(t, err)
	rows, err := report.Read(result.OutputFiles[0], postop, "claude")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byCase := map[string]domain.ResultRow{}
	for _, r := range rows {
		byCase[r.CaseID] = r
	}
	assert.NotEmpty(t, byCase["case000"].ErrorNote)
	row001, row002 := byCase["case001"], byCase["case002"]
	assert.Equal(t, domain.JudgmentYes, row001.Value("CSF Leak"))
	assert.Equal(t, domain.JudgmentNo, row001.Value("Infection"))
	assert.NotEmpty(t, row002.ErrorNote)
	assert.Equal(t, domain.JudgmentUnknown, row002.Value("CSF Leak"))

	// Store got one run, finished, with judgments only for successful cases.
	require.Len(t, runRepo.created, 1)
	require.Len(t, runRepo.finished, 1)
	assert.Equal(t, domain.RunStatusCompleted, runRepo.finished[0].Status)
	assert.Equal(t, 4, runRepo.finished[0].CasesTotal)
	assert.Equal(t, 2, runRepo.finished[0].CasesFailed)
	require.Len(t, judgmentRepo.batches, 1)
	assert.Len(t, judgmentRepo.batches[0], 2*len(postop.Items))

	// Completion notification went out once.
	assert.Equal(t, 1, sender.sends)
	assert.Equal(t, "researcher@clinic.example", sender.to)
	assert.Equal(t, 2, sender.summary.CasesFailed)
}

func TestRun_IterationsProduceSeparateWorkbooks(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	writeCase(t, input, "case001", "Befund")

	cfg := testConfig(input, output)
	cfg.Run.Iterations = 3
	cfg.Run.NotifyEmail = ""

	client := &fakeModelClient{}
	svc := service.NewExtractService(cfg, docload.NewLoader(cfg.Docs),
		func(_ *config.ProviderConfig) (port.ModelClient, error) { return client, nil },
		nil, nil, nil, nil)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.OutputFiles, 3)
	assert.Equal(t, "postop_sonnet_run1.xlsx", filepath.Base(result.OutputFiles[0]))
	assert.Equal(t, "postop_sonnet_run3.xlsx", filepath.Base(result.OutputFiles[2]))
	assert.Equal(t, 3, client.calls)
}

func TestRun_SummaryFailuresNotMultipliedByIterations(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	writeCase(t, input, "case001", "FAILME")
	writeCase(t, input, "case002", "unauffälliger Verlauf")

	cfg := testConfig(input, output)
	cfg.Run.Iterations = 3

	client := &fakeModelClient{}
	runRepo := &fakeRunRepo{}
	sender := &fakeEmailSender{}
	svc := service.NewExtractService(cfg, docload.NewLoader(cfg.Docs),
		func(_ *config.ProviderConfig) (port.ModelClient, error) { return client, nil },
		runRepo, nil, sender, nil)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	// The same case fails in every pass; the summary reports it once.
	assert.Equal(t, 2, result.CasesTotal)
	assert.Equal(t, 1, result.CasesFailed)
	assert.Equal(t, 1, sender.summary.CasesFailed)

	// Each Run row still carries its own per-pass failure count.
	require.Len(t, runRepo.finished, 3)
	for _, run := range runRepo.finished {
		assert.Equal(t, 2, run.CasesTotal)
		assert.Equal(t, 1, run.CasesFailed)
	}
}

func TestRun_UnknownTask(t *testing.T) {
	cfg := testConfig(t.TempDir(), t.TempDir())
	cfg.Run.Task = "nonexistent"

	svc := service.NewExtractService(cfg, docload.NewLoader(cfg.Docs),
		func(_ *config.ProviderConfig) (port.ModelClient, error) { return &fakeModelClient{}, nil },
		nil, nil, nil, nil)

	_, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnknownTask)
}

func TestRun_NoProvidersConfigured(t *testing.T) {
	cfg := testConfig(t.TempDir(), t.TempDir())
	cfg.Providers = config.ProvidersConfig{}

	svc := service.NewExtractService(cfg, docload.NewLoader(cfg.Docs),
		func(_ *config.ProviderConfig) (port.ModelClient, error) { return &fakeModelClient{}, nil },
		nil, nil, nil, nil)

	_, err := svc.Run(context.Background())
	assert.ErrorContains(t, err, "no providers")
}

func TestRun_CanceledContextAborts(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	writeCase(t, input, "case001", "Befund")

	cfg := testConfig(input, output)
	cfg.Run.NotifyEmail = ""
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := service.NewExtractService(cfg, docload.NewLoader(cfg.Docs),
		func(_ *config.ProviderConfig) (port.ModelClient, error) { return &fakeModelClient{}, nil },
		nil, nil, nil, nil)

	_, err := svc.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_PromptCarriesCaseContext(t *testing.T) {
	input, output := t.TempDir(), t.TempDir()
	writeCase(t, input, "case001", "Trigeminusneuralgie rechts")

	cfg := testConfig(input, output)
	cfg.Run.NotifyEmail = ""
	client := &fakeModelClient{}
	svc := service.NewExtractService(cfg, docload.NewLoader(cfg.Docs),
		func(_ *config.ProviderConfig) (port.ModelClient, error) { return client, nil },
		nil, nil, nil, nil)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Trigeminusneuralgie rechts")
	assert.Contains(t, client.prompts[0], "<context>")
}
