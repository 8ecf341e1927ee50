package report_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinex/internal/domain"
	"clinex/internal/report"
	"clinex/internal/task"
)

func TestWriter_RoundTrip(t *testing.T) {
	postop, err := task.Get(task.PostOp)
	require.NoError(t, err)

	w, err := report.NewWriter(postop)
	require.NoError(t, err)

	rows := []domain.ResultRow{
		{
			CaseID:    "case001",
			Provider:  "claude",
			Model:     "claude-3-5-sonnet-20241022",
			Iteration: 1,
			Values: map[string]domain.JudgmentValue{
				"CSF Leak":  domain.JudgmentYes,
				"Infection": domain.JudgmentNo,
			},
			Response: "- CSF Leak: Yes\n- Infection: No",
			Context:  "Diagnose: ...",
		},
		{
			CaseID:    "case002",
			Provider:  "claude",
			Model:     "claude-3-5-sonnet-20241022",
			Iteration: 1,
			ErrorNote: "model unavailable",
		},
	}
	for i := range rows {
		require.NoError(t, w.Append(&rows[i]))
	}
	assert.Equal(t, 2, w.Rows())

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, w.SaveAs(path))

	got, err := report.Read(path, postop, "claude")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "case001", got[0].CaseID)
	assert.Equal(t, "claude", got[0].Provider)
	assert.Equal(t, "claude-3-5-sonnet-20241022", got[0].Model)
	assert.Equal(t, 1, got[0].Iteration)
	assert.Equal(t, domain.JudgmentYes, got[0].Value("CSF Leak"))
	assert.Equal(t, domain.JudgmentNo, got[0].Value("Infection"))
	// Items the writer row never set come back Unknown.
	assert.Equal(t, domain.JudgmentUnknown, got[0].Value("Hearing Loss"))
	assert.Equal(t, "- CSF Leak: Yes\n- Infection: No", got[0].Response)

	assert.Equal(t, "case002", got[1].CaseID)
	assert.Equal(t, "model unavailable", got[1].ErrorNote)
	for _, item := range postop.ItemNames() {
		assert.Equal(t, domain.JudgmentUnknown, got[1].Value(item), item)
	}
}

func TestColumns(t *testing.T) {
	preop, err := task.Get(task.PreOp)
	require.NoError(t, err)

	cols := report.Columns(preop)
	assert.Equal(t, "Patient ID", cols[0])
	assert.Equal(t, "Model", cols[1])
	assert.Equal(t, "Iteration", cols[2])
	assert.Contains(t, cols, "Trigeminal Pain")
	assert.Equal(t, "Error", cols[len(cols)-1])
}

func TestBuildFilename(t *testing.T) {
	assert.Equal(t, "preop_geminiflash_run1.xlsx", report.BuildFilename("preop", "geminiflash", 1))
	// Unsafe characters are folded to underscores.
	assert.Equal(t, "postop_llama3_1_70b_run2.xlsx", report.BuildFilename("postop", "llama3.1:70b", 2))
}

func TestRead_MissingFile(t *testing.T) {
	preop, err := task.Get(task.PreOp)
	require.NoError(t, err)

	_, err = report.Read(filepath.Join(t.TempDir(), "missing.xlsx"), preop, "")
	assert.Error(t, err)
}
