// Package task defines the built-in extraction tasks: the named item lists a
// model is asked to classify and the zero-shot instruction block for each.
package task

import (
	"fmt"
	"sort"

	"clinex/internal/domain"
)

var tasks = map[string]*domain.ExtractionTask{}

// Register adds a task under its name. Built-in tasks register themselves;
// callers may add custom tasks before a run.
func Register(t *domain.ExtractionTask) {
	tasks[t.Name] = t
}

// Get returns the task registered under name.
func Get(name string) (*domain.ExtractionTask, error) {
	t, ok := tasks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTask, name)
	}
	return t, nil
}

// Names returns the registered task names, sorted.
func Names() []string {
	names := make([]string, 0, len(tasks))
	for name := range tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
