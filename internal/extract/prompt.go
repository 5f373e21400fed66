// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/curation-engine/pkg/types"
)

// responseFormat is appended to every category prompt. It instructs the
// model to answer with the JSON shape candidateResponse expects.
const responseFormat = `Respond with a JSON object only, no text outside it:
{"has_evidence": true|false, "findings": [{"evidence_level": "strong"|"moderate"|"weak", "description": "one-sentence summary", "confidence": 0.0-1.0, "key_terms": ["term", ...], "attributes": {"field": "value", ...}}]}

If the abstract contains no relevant evidence, respond {"has_evidence": false, "findings": []}.`

// Category prompt templates, one per evidence dimension. The grading
// rubrics follow the curation protocol's evidence-level definitions.
var promptTemplates = map[types.EvidenceCategory]*template.Template{
	types.CategoryVariant: template.Must(template.New("variant").Parse(`Analyze this abstract for genetic variants in {{.Gene}} related to {{.Disease}}.

Look for: specific variants, variant types, patient counts, inheritance patterns, pathogenicity.

Evidence levels:
- strong: multiple patients, clear pathogenic variants, segregation data
- moderate: few patients but clear variant descriptions
- weak: variants mentioned but limited detail

Useful attributes: "variant_type", "zygosity", "inheritance_pattern", "num_patients".

Abstract: {{.Abstract}}

` + responseFormat)),

	types.CategoryFunctional: template.Must(template.New("functional").Parse(`Analyze this abstract for functional studies of {{.Gene}} related to {{.Disease}}.

Look for: experimental methods, assays, model organisms, rescue experiments, mechanism.

Evidence levels:
- strong: clear functional defects, rescue experiments, mechanism shown
- moderate: basic functional studies with disease relevance
- weak: functional studies mentioned but limited detail

Useful attributes: "assay_type", "model_organism", "rescue_experiment", "disease_mechanism".

Abstract: {{.Abstract}}

` + responseFormat)),

	types.CategoryCohort: template.Must(template.New("cohort").Parse(`Analyze this abstract for cohort or population studies of {{.Gene}} and {{.Disease}}.

Look for: patient numbers, study design, statistics, controls.

Evidence levels:
- strong: large cohort (>50), controls, statistical significance
- moderate: medium cohort (10-50) or good design
- weak: small cohort (<10) or case series

Useful attributes: "cohort_size", "num_families", "study_type", "statistical_significance".

Abstract: {{.Abstract}}

` + responseFormat)),

	types.CategorySegregation: template.Must(template.New("segregation").Parse(`Analyze this abstract for family segregation of {{.Gene}} with {{.Disease}}.

Look for: families studied, affected members, inheritance patterns, segregation confirmation.

Evidence levels:
- strong: multiple families, clear segregation
- moderate: few families but clear segregation
- weak: family data mentioned but limited

Useful attributes: "num_families", "affected_members", "inheritance_pattern", "segregation_confirmed".

Abstract: {{.Abstract}}

` + responseFormat)),
}

// promptData feeds a category template.
type promptData struct {
	Gene     string
	Disease  string
	Abstract string
}

// renderPrompt executes the category's template against the query pair and
// the (possibly truncated) abstract.
func renderPrompt(cat types.EvidenceCategory, gene, disease, abstract string, maxChars int) (string, error) {
	tmpl, ok := promptTemplates[cat]
	if !ok {
		return "", fmt.Errorf("no prompt template for category %q", cat)
	}

	if maxChars <= 0 {
		maxChars = 1500
	}
	if len(abstract) > maxChars {
		abstract = abstract[:maxChars]
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, promptData{Gene: gene, Disease: disease, Abstract: abstract}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
