package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinex/internal/prompt"
	"clinex/internal/task"
)

func TestBuild_WrapsContextInTags(t *testing.T) {
	preop, err := task.Get(task.PreOp)
	require.NoError(t, err)

	p := prompt.Build(preop, "Patient reports sudden facial pain.")

	assert.Contains(t, p, "<context>\nPatient reports sudden facial pain.\n</context>")
	assert.Contains(t, p, preop.Instructions)
	assert.True(t, strings.HasPrefix(p, "You are a helpful physician assistant"))
}

func TestBuild_CarriesStudyInstructionText(t *testing.T) {
	preop, err := task.Get(task.PreOp)
	require.NoError(t, err)
	postop, err := task.Get(task.PostOp)
	require.NoError(t, err)

	p := prompt.Build(preop, "ctx")
	assert.Contains(t, p, "- If you don't know, just say that you don't know.\n")
	assert.Contains(t, p, "- If the context doesn't give you the information asked for, say so.\n")

	// The postoperative questionnaire warns about the retroauricular access
	// area and forbids bold text in the reply.
	p = prompt.Build(postop, "ctx")
	assert.Contains(t, p, "Please be mindful about the fact that the surgical access area is behind the ear, "+
		"therefore numbness in that area should NOT be considered under facial numbness.")
	assert.Contains(t, p, "Do not use bold text.")
}

func TestBuild_Deterministic(t *testing.T) {
	preop, err := task.Get(task.PreOp)
	require.NoError(t, err)

	a := prompt.Build(preop, "same context")
	b := prompt.Build(preop, "same context")
	assert.Equal(t, a, b)
}

func TestBuild_DiffersPerTask(t *testing.T) {
	preop, err := task.Get(task.PreOp)
	require.NoError(t, err)
	postop, err := task.Get(task.PostOp)
	require.NoError(t, err)

	assert.NotEqual(t, prompt.Build(preop, "ctx"), prompt.Build(postop, "ctx"))
}
