package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinex/internal/domain"
	"clinex/internal/task"
)

func TestGet_BuiltinTasksRegistered(t *testing.T) {
	for _, name := range []string{task.PreOp, task.PostOp, task.DiseaseCourse} {
		got, err := task.Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, got.Name)
		assert.NotEmpty(t, got.Instructions)
		assert.NotEmpty(t, got.Items)
	}
}

func TestGet_UnknownTask(t *testing.T) {
	_, err := task.Get("nonexistent")
	assert.ErrorIs(t, err, domain.ErrUnknownTask)
}

func TestNames_Sorted(t *testing.T) {
	names := task.Names()
	assert.Contains(t, names, task.PreOp)
	assert.Contains(t, names, task.PostOp)
	assert.Contains(t, names, task.DiseaseCourse)
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i])
	}
}

func TestPreOpItems(t *testing.T) {
	preop, err := task.Get(task.PreOp)
	require.NoError(t, err)

	names := preop.ItemNames()
	assert.Equal(t, []string{
		"Trigeminal Pain", "Facial Numbness", "Vertigo",
		"Lacrimation", "Facial Muscle Spasm", "Other",
	}, names)
	for _, item := range preop.Items {
		assert.Equal(t, domain.FormatBinary, item.Format, item.Name)
	}
}

func TestDiseaseCourseFormats(t *testing.T) {
	dc, err := task.Get(task.DiseaseCourse)
	require.NoError(t, err)

	ternary := map[string]bool{
		"Free of pain after second surgery": true,
		"Recurrence after second surgery":   true,
		"Thermocoagulation":                 true,
	}
	for _, item := range dc.Items {
		if ternary[item.Name] {
			assert.Equal(t, domain.FormatTernary, item.Format, item.Name)
		} else {
			assert.Equal(t, domain.FormatBinary, item.Format, item.Name)
		}
	}

	// The second-surgery outcome items rely on exact-name matching only.
	assert.Empty(t, dc.Item("Free of pain after second surgery").Synonyms)
	assert.Empty(t, dc.Item("Recurrence after second surgery").Synonyms)
}

func TestRegister_CustomTask(t *testing.T) {
	custom := &domain.ExtractionTask{
		Name:  "custom-study",
		Items: []domain.TaskItem{{Name: "Marker", Format: domain.FormatBinary}},
	}
	task.Register(custom)

	got, err := task.Get("custom-study")
	require.NoError(t, err)
	assert.Same(t, custom, got)
}
