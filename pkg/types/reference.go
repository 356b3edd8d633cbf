// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TableRecord is a table delivered by the upstream content-extraction collaborator.
type TableRecord struct {
	// Caption is the table caption, if any.
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// Headers lists the column headings.
	Headers []string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// Rows holds the table body, one slice of cells per row.
	Rows [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`

	// Page is the page the table appears on. Zero means unknown.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`
}

// ImageRecord is a figure delivered by the upstream content-extraction collaborator.
type ImageRecord struct {
	// Path is the stored image location.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Caption is the figure caption.
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`

	// FigureNumber is the figure label as printed in the source.
	FigureNumber string `json:"figure_number,omitempty" yaml:"figure_number,omitempty"`

	// Page is the page the figure appears on. Zero means unknown.
	Page int `json:"page,omitempty" yaml:"page,omitempty"`
}

// Reference is one input record: a source document already parsed into
// text, tables, images, and formulas, plus citation metadata.
type Reference struct {
	// SourceTitle is the document title. Required.
	SourceTitle string `json:"source_title" yaml:"source_title"`

	// Content is the full body text.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Abstract is the document abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Authors lists the authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Year is the publication year as printed.
	Year string `json:"year,omitempty" yaml:"year,omitempty"`

	// Citation is a preformatted citation string. When empty one is
	// derived from authors, year, and title.
	Citation string `json:"citation,omitempty" yaml:"citation,omitempty"`

	Tables   []TableRecord `json:"tables,omitempty" yaml:"tables,omitempty"`
	Images   []ImageRecord `json:"images,omitempty" yaml:"images,omitempty"`
	Formulas []string      `json:"formulas,omitempty" yaml:"formulas,omitempty"`
}
