// Package respparse extracts per-item judgments from a free-text model reply.
//
// Matching is a literal line-pattern scan: an item the model phrases outside
// the task's known synonyms is not recognized and stays Unknown. That is a
// documented limitation of the study protocol, not something to fix silently.
package respparse

import (
	"regexp"
	"strings"

	"clinex/internal/domain"
)

// bulletPattern matches bulleted judgment lines in the forms the models
// actually produce: "*", "**", "•", "-", numbered "1."-"9." bullets, optional
// bold markers and quotes, e.g. `- **CSF Leak**: Yes (resolved)`.
var bulletPattern = regexp.MustCompile(
	`(?i)^\s*(?:\*+\s*|[•\-]\s*|[1-9]\.\s*)\**\s*([^:]+?)\**\s*:\s*['"]?(Yes|No|Ja|Nein|Not\s+provided)['"]?`)

// standalonePattern matches bare "Item: Yes" lines without a bullet, as
// produced in "Final answer:" blocks and by terser models.
var standalonePattern = regexp.MustCompile(
	`(?i)^\s*\**\s*([A-Za-zÄÖÜäöüß0-9][A-Za-zÄÖÜäöüß0-9 .\-]*?)\**\s*:\s*['"]?(Yes|No|Ja|Nein|Not\s+provided)['"]?`)

// Parse scans a model reply line by line and returns one judgment per task
// item. Items never mentioned default to Unknown; Parse does not error.
// A later line for the same item overrides an earlier one, so the model's
// final-answer block wins over judgments embedded in its reasoning.
func Parse(task *domain.ExtractionTask, reply string) map[string]domain.JudgmentValue {
	values := make(map[string]domain.JudgmentValue, len(task.Items))
	for i := range task.Items {
		values[task.Items[i].Name] = domain.JudgmentUnknown
	}

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)

		m := bulletPattern.FindStringSubmatch(line)
		if m == nil {
			m = standalonePattern.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}

		item := Standardize(task, m[1])
		if item == nil {
			continue
		}
		if v, ok := normalizeValue(m[2], item.Format); ok {
			values[item.Name] = v
		}
	}

	return values
}

// Standardize maps a captured variable name back to the canonical task item.
// Exact (case-insensitive) name matches win before synonym substring matches,
// so specific items are never swallowed by a broader synonym declared earlier.
// Returns nil when the name matches no known item.
func Standardize(task *domain.ExtractionTask, raw string) *domain.TaskItem {
	name := strings.ToLower(strings.Trim(strings.TrimSpace(raw), `*'"`))
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	for i := range task.Items {
		if name == strings.ToLower(task.Items[i].Name) {
			return &task.Items[i]
		}
	}
	for i := range task.Items {
		for _, syn := range task.Items[i].Synonyms {
			if strings.Contains(name, syn) {
				return &task.Items[i]
			}
		}
	}
	return nil
}

// normalizeValue folds German answers into English and gates "Not provided"
// to ternary items. Binary items answered "Not provided" stay Unknown.
func normalizeValue(raw string, format domain.AnswerFormat) (domain.JudgmentValue, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(raw), " ")) {
	case "yes", "ja":
		return domain.JudgmentYes, true
	case "no", "nein":
		return domain.JudgmentNo, true
	case "not provided":
		if format == domain.FormatTernary {
			return domain.JudgmentNotProvided, true
		}
		return domain.JudgmentUnknown, false
	}
	return domain.JudgmentUnknown, false
}
