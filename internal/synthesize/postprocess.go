// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"regexp"
	"strings"

	"github.com/pdiddy/synthesis-engine/internal/textutil"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// trimHeading drops a leading line that only repeats the section name, in
// any Markdown heading or emphasis form.
func trimHeading(text, section string) string {
	text = strings.TrimLeft(text, "\r\n\t ")
	line, rest, _ := strings.Cut(text, "\n")
	bare := strings.Trim(strings.TrimSpace(line), "#*_ ")
	bare = strings.TrimSpace(strings.TrimSuffix(bare, ":"))
	bare = strings.Trim(bare, "*_ ")
	if strings.EqualFold(bare, section) {
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(text)
}

// imageLine renders one image reference: figure label, caption, citation, path.
func imageLine(img types.ContentElement) string {
	label := img.Caption()
	if label == "" {
		label = img.ImagePath()
	}
	if fig := img.FigureNumber(); fig != "" {
		label = "Figure " + fig + ": " + label
	}
	if img.Citation != "" {
		label += " [" + img.Citation + "]"
	}
	if p := img.ImagePath(); p != "" && img.Caption() != "" {
		label += " (" + p + ")"
	}
	return label
}

// imageBlock renders the "Relevant Images" list.
func imageBlock(images []types.ContentElement) string {
	var b strings.Builder
	b.WriteString("Relevant Images:")
	seen := make(map[string]bool)
	for _, img := range images {
		line := imageLine(img)
		if seen[line] {
			continue
		}
		seen[line] = true
		b.WriteString("\n- " + line)
	}
	return b.String()
}

// unreferencedImages returns the images whose caption (or path, when
// uncaptioned) does not appear in text.
func unreferencedImages(text string, images []types.ContentElement) []types.ContentElement {
	lower := strings.ToLower(text)
	var out []types.ContentElement
	for _, img := range images {
		ref := img.Caption()
		if ref == "" {
			ref = img.ImagePath()
		}
		if ref != "" && strings.Contains(lower, strings.ToLower(ref)) {
			continue
		}
		out = append(out, img)
	}
	return out
}

// disagreementMarker matches whole words that state a disagreement.
var disagreementMarker = regexp.MustCompile(`(?i)\b(?:disagree\w*|conflict\w*|contradict\w*|inconsistent|discrepan\w*|var(?:y|ies))\b`)

// acknowledges reports whether a single sentence of text states a
// disagreement and names one of c's terms. A contradiction without terms is
// acknowledged by any sentence stating a disagreement.
func acknowledges(text string, c types.Relationship) bool {
	for _, s := range textutil.Sentences(text) {
		if !disagreementMarker.MatchString(s) {
			continue
		}
		if len(c.Terms) == 0 {
			return true
		}
		words := " " + strings.Join(textutil.Tokens(s), " ") + " "
		for _, term := range c.Terms {
			if tw := textutil.Tokens(term); len(tw) > 0 && strings.Contains(words, " "+strings.Join(tw, " ")+" ") {
				return true
			}
		}
	}
	return false
}

// unacknowledged returns the contradictions text does not acknowledge.
func unacknowledged(text string, contradictions []types.Relationship) []types.Relationship {
	var out []types.Relationship
	for _, c := range contradictions {
		if !acknowledges(text, c) {
			out = append(out, c)
		}
	}
	return out
}

// hedgeNote is appended when a section's contradictions are not mentioned in its prose.
func hedgeNote(contradictions []types.Relationship) string {
	var terms []string
	for _, c := range contradictions {
		terms = append(terms, c.Terms...)
	}
	terms = textutil.Dedupe(terms)
	if len(terms) == 0 {
		return "Note: the sources disagree on parts of this section, and reported findings vary between references."
	}
	return "Note: the sources disagree on " + strings.Join(terms, ", ") + ", and reported values vary between references."
}

// concerns reports whether a contradiction is about the section: one of its
// terms or its description contains a section keyword, or its description
// shares a significant word with the section name.
func concerns(c types.Relationship, section string, keywords []string) bool {
	for _, t := range c.Terms {
		if textutil.ContainsAny(t, keywords) {
			return true
		}
	}
	return textutil.ContainsAny(c.Description, keywords) || textutil.Overlaps(c.Description, section)
}

// citationPattern matches inline citations: [Key] or [Key1; Key2].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// citationMarkers returns the citation-like entries of every bracket in text.
func citationMarkers(text string) []string {
	var markers []string
	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		for _, p := range strings.Split(m[1], ";") {
			p = strings.TrimSpace(p)
			if p != "" && looksLikeCitation(p) {
				markers = append(markers, p)
			}
		}
	}
	return markers
}

// looksLikeCitation accepts author-year style strings: at least one letter
// and one digit, and not a URL.
func looksLikeCitation(s string) bool {
	if strings.HasPrefix(strings.ToLower(s), "http") {
		return false
	}
	hasLetter, hasDigit := false, false
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// countUnknownCitations counts citation markers that match no known
// citation. A marker matches when it equals a known citation or is a prefix
// or fragment of one, ignoring case and trailing periods.
func countUnknownCitations(text string, known []string) int {
	norm := func(s string) string { return strings.TrimRight(textutil.Normalize(s), ".") }
	knownNorm := make([]string, len(known))
	for i, k := range known {
		knownNorm[i] = norm(k)
	}

	unknown := 0
	for _, m := range citationMarkers(text) {
		nm := norm(m)
		found := false
		for _, k := range knownNorm {
			if nm == k || strings.Contains(k, nm) {
				found = true
				break
			}
		}
		if !found {
			unknown++
		}
	}
	return unknown
}
