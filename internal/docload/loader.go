// Package docload walks a folder of anonymized case folders and turns each
// into the text segment the extraction prompt is built from.
package docload

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"code.sajari.com/docconv"

	"clinex/internal/config"
	"clinex/internal/domain"
)

// contextFileName is the per-case audit copy of the extracted segment.
const contextFileName = "context.txt"

var blankRuns = regexp.MustCompile(`\n{2,}`)

// Loader reads case folders according to the document configuration.
type Loader struct {
	cfg  config.DocsConfig
	span *regexp.Regexp // clips each document to start..end marker, nil when unset
}

// NewLoader creates a Loader. When both markers are configured, each
// document's text is clipped to the first start..end span (case-insensitive,
// markers included), matching the anonymization protocol of the corpus.
func NewLoader(cfg config.DocsConfig) *Loader {
	l := &Loader{cfg: cfg}
	if cfg.StartMarker != "" && cfg.EndMarker != "" {
		l.span = regexp.MustCompile(
			`(?is)(` + regexp.QuoteMeta(cfg.StartMarker) + `.*?` + regexp.QuoteMeta(cfg.EndMarker) + `)`)
	}
	return l
}

// LoadAll loads every case subfolder of the input folder in lexical order,
// bounded by MaxCases. Unreadable cases are logged and returned in failed;
// they never abort the batch.
func (l *Loader) LoadAll() (docs []domain.CaseDocument, failed []string, err error) {
	entries, err := os.ReadDir(l.cfg.InputFolder)
	if err != nil {
		return nil, nil, fmt.Errorf("docload: reading input folder: %w", err)
	}

	var caseDirs []string
	for _, e := range entries {
		if e.IsDir() {
			caseDirs = append(caseDirs, e.Name())
		}
	}
	sort.Strings(caseDirs)
	if l.cfg.MaxCases > 0 && len(caseDirs) > l.cfg.MaxCases {
		caseDirs = caseDirs[:l.cfg.MaxCases]
	}

	for _, name := range caseDirs {
		doc, loadErr := l.LoadCase(filepath.Join(l.cfg.InputFolder, name))
		if loadErr != nil {
			log.Printf("docload: skipping case %s: %v", name, loadErr)
			failed = append(failed, name)
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, failed, nil
}

// LoadCase combines the text of all readable documents in one case folder,
// applies section filtering, and optionally writes the context.txt audit copy.
// Returns ErrDocumentRead when the folder yields no extractable text.
func (l *Loader) LoadCase(dir string) (*domain.CaseDocument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentRead, err)
	}

	doc := &domain.CaseDocument{CaseID: filepath.Base(dir)}
	var parts []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == contextFileName {
			continue
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(e.Name())), ".")
		if !domain.DocFileExtensions[ext] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		text, readErr := l.readFile(path, ext)
		if readErr != nil {
			// A single bad file is skipped; the rest of the case still counts.
			log.Printf("docload: error processing file %s: %v", e.Name(), readErr)
			continue
		}
		if text = l.clip(text); text != "" {
			parts = append(parts, text)
			doc.Files = append(doc.Files, path)
		}
	}

	doc.RawText = strings.Join(parts, "\n")
	if strings.TrimSpace(doc.RawText) == "" {
		return nil, fmt.Errorf("%w: no extractable text in %s", domain.ErrDocumentRead, dir)
	}

	doc.Context = ExtractSections(doc.RawText, l.cfg.SectionList())

	if l.cfg.SaveContext {
		if werr := os.WriteFile(filepath.Join(dir, contextFileName), []byte(doc.Context), 0o644); werr != nil {
			log.Printf("docload: could not save %s for case %s: %v", contextFileName, doc.CaseID, werr)
		}
	}

	return doc, nil
}

func (l *Loader) readFile(path, ext string) (string, error) {
	if ext == "txt" {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	text, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return "", fmt.Errorf("converting docx: %w", err)
	}
	return text, nil
}

// clip reduces a document to its marker span and collapses blank-line runs.
// Documents without the span contribute nothing.
func (l *Loader) clip(text string) string {
	if l.span == nil {
		return strings.TrimSpace(blankRuns.ReplaceAllString(text, "\n"))
	}
	m := l.span.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(m[1], "\n"))
}

// ExtractSections keeps the paragraphs under the given section headings: each
// heading line plus the one immediately following it. A nil or empty heading
// list keeps the full text.
func ExtractSections(text string, sections []string) string {
	if len(sections) == 0 {
		return text
	}

	paragraphs := strings.Split(text, "\n")
	var kept []string
	for i, p := range paragraphs {
		match := false
		for _, heading := range sections {
			if strings.Contains(strings.ToLower(p), strings.ToLower(heading)) {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		kept = append(kept, p)
		if i+1 < len(paragraphs) && strings.TrimSpace(paragraphs[i+1]) != "" {
			kept = append(kept, paragraphs[i+1])
		}
	}
	return strings.Join(kept, "\n")
}
