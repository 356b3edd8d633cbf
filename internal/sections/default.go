// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import "github.com/pdiddy/synthesis-engine/pkg/types"

const (
	defaultControversyThreshold     = 2
	defaultMaxSectionContradictions = 3
)

var anchorNames = []string{
	types.SectionIntroduction,
	types.SectionConclusion,
	types.SectionReferences,
}

// Default returns a fresh copy of the built-in medical-topic section table.
func Default() *Table {
	return &Table{
		Sections: []Section{
			{Name: types.SectionIntroduction, Anchor: true, Keywords: []string{
				"overview", "introduction", "background", "is a condition", "is a disease", "is a disorder",
			}},
			{Name: "Definition and Classification", Keywords: []string{
				"defined as", "definition", "classification", "classified", "subtype", "grading system",
			}},
			{Name: "Epidemiology", Keywords: []string{
				"incidence", "prevalence", "epidemiolog", "per 100,000", "annual rate", "demographic",
			}},
			{Name: "Etiology and Risk Factors", Keywords: []string{
				"etiology", "aetiology", "risk factor", "caused by", "genetic", "predispos",
			}},
			{Name: "Pathophysiology", Keywords: []string{
				"pathophysiolog", "pathogenesis", "mechanism", "histolog", "inflammat",
			}},
			{Name: "Clinical Presentation", Keywords: []string{
				"symptom", "presents with", "presentation", "clinical feature", "physical exam", "complain",
			}},
			{Name: "Diagnosis", Keywords: []string{
				"diagnos", "biopsy", "laboratory", "sensitivity", "specificity", "criteria",
			}},
			{Name: "Imaging", Keywords: []string{
				"imaging", "mri", "computed tomography", "ct scan", "radiograph", "ultrasound", "x-ray",
			}},
			{Name: "Differential Diagnosis", Keywords: []string{
				"differential", "mimic", "distinguish", "misdiagnos",
			}},
			{Name: "Treatment", Keywords: []string{
				"treatment", "therapy", "therapeutic", "medication", "dosage", "conservative management",
			}},
			{Name: "Surgical Management", Keywords: []string{
				"surgery", "surgical", "resection", "approach", "operative", "incision", "fixation",
			}},
			{Name: "Complications", Keywords: []string{
				"complication", "adverse event", "infection rate", "recurrence", "morbidity",
			}},
			{Name: "Prognosis", Keywords: []string{
				"prognosis", "prognostic", "survival", "long-term outcome", "follow-up", "mortality",
			}},
			{Name: "Pediatric Considerations", Keywords: []string{
				"pediatric", "paediatric", "children", "infant", "neonat", "adolescent",
			}},
			{Name: types.SectionConclusion, Anchor: true, Keywords: []string{
				"in conclusion", "conclusion", "in summary", "we conclude", "future research",
			}},
			{Name: types.SectionReferences, Anchor: true},
		},
		Exclusions: []Exclusion{
			{
				SectionContains: "Pediatric",
				UnlessTopic: []string{
					"pediatric", "paediatric", "child", "infant", "neonat", "juvenile", "congenital", "adolescent",
				},
			},
		},
		ControversyThreshold:     defaultControversyThreshold,
		MaxSectionContradictions: defaultMaxSectionContradictions,
	}
}
