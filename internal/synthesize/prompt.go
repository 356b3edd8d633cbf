// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/synthesis-engine/internal/textutil"
	"github.com/pdiddy/synthesis-engine/pkg/types"
)

// sectionPromptTmpl instructs the generator to write one section strictly
// from the supplied evidence.
var sectionPromptTmpl = template.Must(template.New("section").Parse(`You are writing the "{{.Section}}" section of a comprehensive review on "{{.Topic}}".

Rules:
- Use only the evidence below. Do not add facts, numbers, or sources that are not in the evidence.
- After every claim, cite its source in square brackets using the citation exactly as given, for example [{{.ExampleCitation}}].
- Where sources disagree, say so explicitly and present each position with its citation.
- If the evidence does not support a statement, leave it out.
- Write plain paragraphs. Do not repeat the section title as a heading.
{{- if .Images}}
- Where a figure below illustrates a point, refer to it by its caption.
{{- end}}

Evidence:
{{range $i, $e := .Evidence}}
[{{$e.Citation}}] (source: {{$e.Source}}{{if $e.Page}}, page {{$e.Page}}{{end}})
{{$e.Excerpt}}
{{end}}
{{- if .Supporting}}
Supporting tables:
{{range .Supporting}}
[{{.Citation}}]
{{.Excerpt}}
{{end}}
{{- end}}
{{- if .Contradictions}}
Known disagreements between sources:
{{range .Contradictions}}- {{.Description}}
{{end}}
{{- end}}
{{- if .Images}}
Figures:
{{range .Images}}- {{.}}
{{end}}
{{- end}}`))

type promptEvidence struct {
	Citation string
	Source   string
	Page     int
	Excerpt  string
}

type promptData struct {
	Section         string
	Topic           string
	ExampleCitation string
	Evidence        []promptEvidence
	Supporting      []promptEvidence
	Contradictions  []types.Relationship
	Images          []string
}

func renderPrompt(section, topic string, ev types.AggregatedEvidence, contradictions []types.Relationship, excerptChars int) (string, error) {
	data := promptData{
		Section:         section,
		Topic:           topic,
		ExampleCitation: "Author (Year). Title.",
		Contradictions:  contradictions,
	}
	for _, it := range ev.Items {
		data.Evidence = append(data.Evidence, toPromptEvidence(it.Element, excerptChars))
	}
	for _, it := range ev.Supporting {
		data.Supporting = append(data.Supporting, toPromptEvidence(it.Element, excerptChars))
	}
	for _, img := range ev.Images {
		data.Images = append(data.Images, imageLine(img))
	}
	if len(data.Evidence) > 0 && data.Evidence[0].Citation != "" {
		data.ExampleCitation = data.Evidence[0].Citation
	}

	var buf bytes.Buffer
	if err := sectionPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toPromptEvidence(e types.ContentElement, excerptChars int) promptEvidence {
	return promptEvidence{
		Citation: e.Citation,
		Source:   e.Source,
		Page:     e.PageNumber,
		Excerpt:  textutil.Truncate(e.Content, excerptChars),
	}
}
