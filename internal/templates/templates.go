// Package templates renders the prompt texts sent to the AI gateway.
package templates

import (
	"fmt"
	"strings"
	"text/template"
)

const proposalsGenerateText = `You are helping plan software development work for the project "{{.ProjectName}}".

Project intake:
{{.Intake}}

{{if .Existing}}Existing proposals (do not duplicate these):
{{range .Existing}}- {{.}}
{{end}}
{{end}}Break the intake down into discrete, independently deliverable units of work.
Respond with ONLY a JSON array, no prose. Each element:
{"name": "<short imperative title>", "description": "<what and why, 1-3 sentences>", "early_plan": "<rough implementation sketch>"}`

const intakeRefineText = `Rewrite the following raw project intake as a clear, structured product brief.
Keep every requirement; remove filler; group related points. Respond with the refined text only.

Raw intake:
{{.Raw}}`

const planSummaryText = `Summarize the following implementation plan for the work item "{{.JourneyName}}" in at most five bullet points.
Respond with the bullets only.

Plan:
{{.Plan}}`

// ProposalsGenerateData feeds the proposal-generation prompt.
type ProposalsGenerateData struct {
	ProjectName string
	Intake      string
	Existing    []string
}

// IntakeRefineData feeds the intake-refinement prompt.
type IntakeRefineData struct {
	Raw string
}

// PlanSummaryData feeds the plan-summary prompt.
type PlanSummaryData struct {
	JourneyName string
	Plan        string
}

// Renderer holds the parsed prompt templates. Construction fails fast
// on a malformed template rather than at first use.
type Renderer struct {
	proposalsGenerate *template.Template
	intakeRefine      *template.Template
	planSummary       *template.Template
}

// NewRenderer parses all prompt templates.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{}
	var err error
	if r.proposalsGenerate, err = template.New("proposals_generate").Parse(proposalsGenerateText); err != nil {
		return nil, fmt.Errorf("templates: parse proposals_generate: %w", err)
	}
	if r.intakeRefine, err = template.New("intake_refine").Parse(intakeRefineText); err != nil {
		return nil, fmt.Errorf("templates: parse intake_refine: %w", err)
	}
	if r.planSummary, err = template.New("plan_summary").Parse(planSummaryText); err != nil {
		return nil, fmt.Errorf("templates: parse plan_summary: %w", err)
	}
	return r, nil
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("templates: render %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}

// ProposalsGenerate renders the proposal-generation prompt.
func (r *Renderer) ProposalsGenerate(data ProposalsGenerateData) (string, error) {
	return render(r.proposalsGenerate, data)
}

// IntakeRefine renders the intake-refinement prompt.
func (r *Renderer) IntakeRefine(data IntakeRefineData) (string, error) {
	return render(r.intakeRefine, data)
}

// PlanSummary renders the plan-summary prompt.
func (r *Renderer) PlanSummary(data PlanSummaryData) (string, error) {
	return render(r.planSummary, data)
}
