// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract normalizes reference records into typed ContentElements.
//
// Extraction is a pure transform: one TEXT element per reference body, one
// TABLE, IMAGE, or FORMULA element per table, figure, or formula. A
// malformed reference is skipped with an *ExtractionError and never aborts
// the batch.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/synthesis-engine/pkg/types"
)

const (
	// abstractConfidence is assigned to TEXT elements built from an abstract
	// when the reference carries no body text.
	abstractConfidence = 0.8

	originContent  = "content"
	originAbstract = "abstract"
)

// ExtractionError reports one malformed reference.
type ExtractionError struct {
	// Index is the reference's position in the input batch.
	Index int

	// Title is the reference title, possibly empty.
	Title string

	// Reason describes what is wrong.
	Reason string
}

func (e *ExtractionError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("reference %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("reference %d (%q): %s", e.Index, e.Title, e.Reason)
}

// Result holds the output of one extraction batch.
type Result struct {
	// Elements are all extracted elements in reference order.
	Elements []types.ContentElement

	// ValidSources counts references extracted without error.
	ValidSources int

	// Errors lists the skipped references.
	Errors []*ExtractionError
}

// Extract converts refs into ContentElements. Malformed references are
// logged and skipped.
func Extract(refs []types.Reference, logger *zap.Logger) Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	var res Result
	for i, ref := range refs {
		if err := validate(i, ref); err != nil {
			logger.Warn("skipping malformed reference",
				zap.Int("index", i),
				zap.String("title", ref.SourceTitle),
				zap.String("reason", err.Reason),
			)
			res.Errors = append(res.Errors, err)
			continue
		}

		elems := extractReference(i, ref)
		logger.Debug("extracted reference",
			zap.Int("index", i),
			zap.String("title", ref.SourceTitle),
			zap.Int("elements", len(elems)),
		)
		res.Elements = append(res.Elements, elems...)
		res.ValidSources++
	}
	return res
}

// validate checks the structural requirements of a reference.
func validate(index int, ref types.Reference) *ExtractionError {
	title := strings.TrimSpace(ref.SourceTitle)
	if title == "" {
		return &ExtractionError{Index: index, Reason: "missing source_title"}
	}
	for j, img := range ref.Images {
		if strings.TrimSpace(img.Path) == "" && strings.TrimSpace(img.Caption) == "" {
			return &ExtractionError{Index: index, Title: title, Reason: fmt.Sprintf("image %d has neither path nor caption", j)}
		}
	}
	for j, tbl := range ref.Tables {
		if strings.TrimSpace(tbl.Caption) == "" && len(tbl.Rows) == 0 {
			return &ExtractionError{Index: index, Title: title, Reason: fmt.Sprintf("table %d has neither caption nor rows", j)}
		}
	}
	return nil
}

func extractReference(index int, ref types.Reference) []types.ContentElement {
	source := strings.TrimSpace(ref.SourceTitle)
	citation := FormatCitation(ref)
	base := func(t types.ElementType, content string, page int) types.ContentElement {
		return types.ContentElement{
			Type:       t,
			Content:    content,
			Source:     source,
			Citation:   citation,
			PageNumber: page,
			Confidence: 1.0,
			Metadata:   map[string]any{types.MetaReference: index},
		}
	}

	var elems []types.ContentElement

	switch {
	case strings.TrimSpace(ref.Content) != "":
		e := base(types.ElementText, strings.TrimSpace(ref.Content), 0)
		e.Metadata[types.MetaOrigin] = originContent
		elems = append(elems, e)
	case strings.TrimSpace(ref.Abstract) != "":
		e := base(types.ElementText, strings.TrimSpace(ref.Abstract), 0)
		e.Confidence = abstractConfidence
		e.Metadata[types.MetaOrigin] = originAbstract
		elems = append(elems, e)
	}

	for _, tbl := range ref.Tables {
		e := base(types.ElementTable, serializeTable(tbl), tbl.Page)
		if tbl.Caption != "" {
			e.Metadata[types.MetaCaption] = strings.TrimSpace(tbl.Caption)
		}
		elems = append(elems, e)
	}

	for _, img := range ref.Images {
		e := base(types.ElementImage, strings.TrimSpace(img.Caption), img.Page)
		e.Metadata[types.MetaCaption] = strings.TrimSpace(img.Caption)
		e.Metadata[types.MetaPath] = strings.TrimSpace(img.Path)
		e.Metadata[types.MetaFigureNumber] = strings.TrimSpace(img.FigureNumber)
		e.Metadata[types.MetaDraggable] = true
		elems = append(elems, e)
	}

	for _, f := range ref.Formulas {
		if strings.TrimSpace(f) == "" {
			continue
		}
		elems = append(elems, base(types.ElementFormula, strings.TrimSpace(f), 0))
	}

	return elems
}

// serializeTable renders a table as a caption line followed by pipe-delimited rows.
func serializeTable(tbl types.TableRecord) string {
	var b strings.Builder
	if tbl.Caption != "" {
		b.WriteString(strings.TrimSpace(tbl.Caption))
		b.WriteString("\n")
	}
	if len(tbl.Headers) > 0 {
		b.WriteString("| " + strings.Join(tbl.Headers, " | ") + " |\n")
	}
	for _, row := range tbl.Rows {
		b.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
	return strings.TrimSpace(b.String())
}

// FormatCitation returns ref.Citation when set, otherwise an author-year
// citation: "Smith (2020). Title.", "Smith & Jones (2020). Title.", or
// "Smith et al. (2020). Title.". Missing parts are left out.
func FormatCitation(ref types.Reference) string {
	if c := strings.TrimSpace(ref.Citation); c != "" {
		return c
	}

	var authors []string
	for _, a := range ref.Authors {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}

	var who string
	switch len(authors) {
	case 0:
	case 1:
		who = authors[0]
	case 2:
		who = authors[0] + " & " + authors[1]
	default:
		who = authors[0] + " et al."
	}

	year := strings.TrimSpace(ref.Year)
	if year != "" {
		if _, err := strconv.Atoi(year); err != nil {
			year = strings.Trim(year, "()")
		}
	}

	title := strings.TrimSuffix(strings.TrimSpace(ref.SourceTitle), ".")

	var parts []string
	switch {
	case who != "" && year != "":
		parts = append(parts, fmt.Sprintf("%s (%s).", who, year))
	case who != "":
		parts = append(parts, who+".")
	case year != "":
		parts = append(parts, fmt.Sprintf("(%s).", year))
	}
	if title != "" {
		parts = append(parts, title+".")
	}
	return strings.Join(parts, " ")
}
