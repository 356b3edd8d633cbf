// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the synthesis pipeline:
// reference records, content elements, the relationship analysis, and the
// synthesized document with its output contract.
package types

import "fmt"

// ElementType categorizes a ContentElement extracted from a reference.
type ElementType string

const (
	ElementText    ElementType = "text"
	ElementTable   ElementType = "table"
	ElementImage   ElementType = "image"
	ElementFormula ElementType = "formula"
	ElementDiagram ElementType = "diagram"
)

// Valid reports whether t is one of the known element types.
func (t ElementType) Valid() bool {
	switch t {
	case ElementText, ElementTable, ElementImage, ElementFormula, ElementDiagram:
		return true
	}
	return false
}

// Well-known metadata keys carried by ContentElements.
const (
	MetaCaption      = "caption"
	MetaFigureNumber = "figure_number"
	MetaPath         = "path"
	MetaDraggable    = "draggable"
	MetaOrigin       = "origin"
	MetaReference    = "reference_index"
)

// ContentElement is a single typed unit of extracted source material.
// Elements are created once during extraction and are never modified
// afterwards; every later stage reads them concurrently.
type ContentElement struct {
	// Type is the element variant: text, table, image, formula, or diagram.
	Type ElementType `json:"type" yaml:"type"`

	// Content is the raw text or serialized payload.
	Content string `json:"content" yaml:"content"`

	// Source is the human-readable origin label (the reference title).
	Source string `json:"source" yaml:"source"`

	// Citation is the formatted reference string used in inline notes.
	Citation string `json:"citation" yaml:"citation"`

	// PageNumber is the page the element came from. Zero means unknown.
	PageNumber int `json:"page_number,omitempty" yaml:"page_number,omitempty"`

	// Confidence is the extraction confidence between 0.0 and 1.0.
	Confidence float64 `json:"confidence_score" yaml:"confidence_score"`

	// Metadata holds free-form attributes such as image captions.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Caption returns the image or table caption, or "" when absent.
func (e ContentElement) Caption() string {
	return e.metaString(MetaCaption)
}

// ImagePath returns the image path, or "" when absent.
func (e ContentElement) ImagePath() string {
	return e.metaString(MetaPath)
}

// FigureNumber returns the figure label (e.g. "3" or "2b"), or "".
func (e ContentElement) FigureNumber() string {
	return e.metaString(MetaFigureNumber)
}

// Draggable reports whether downstream UIs may drag the element into a document.
func (e ContentElement) Draggable() bool {
	v, ok := e.Metadata[MetaDraggable].(bool)
	return ok && v
}

func (e ContentElement) metaString(key string) string {
	v, ok := e.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
