// Package prompt builds the zero-shot query sent to every model backend.
package prompt

import "clinex/internal/domain"

// Build assembles the full prompt for a task and an extracted document segment.
// It is a pure function: identical (task, context) inputs always produce the
// identical prompt string, with no per-vendor variation.
func Build(task *domain.ExtractionTask, context string) string {
	return "You are a helpful physician assistant tasked with extracting clinical data for a study. " +
		"Use the following context as your learned knowledge, inside <context></context> XML tags.\n" +
		"<context>\n" + context + "\n</context>\n\n" +
		"When answering the user:\n" +
		"- If you don't know, just say that you don't know.\n" +
		"- If the context doesn't give you the information asked for, say so.\n" +
		"Avoid mentioning that you obtained the information from the context.\n" +
		"Always strictly stand by the information given in the context.\n\n" +
		"Given the context information, answer the query.\nQuery: " + task.Instructions
}
