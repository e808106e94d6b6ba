package skill

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/extract_concepts.md
var extractConceptsPromptRaw string

//go:embed prompts/generate_roadmap.md
var generateRoadmapPromptRaw string

//go:embed prompts/create_summary.md
var createSummaryPromptRaw string

//go:embed prompts/describe_concept_map.md
var describeConceptMapPromptRaw string

// Prompt templates, parsed once at package init. Each receives promptData.
var (
	ExtractConceptsTemplate    = template.Must(template.New("extract_concepts").Parse(extractConceptsPromptRaw))
	GenerateRoadmapTemplate    = template.Must(template.New("generate_roadmap").Parse(generateRoadmapPromptRaw))
	CreateSummaryTemplate      = template.Must(template.New("create_summary").Parse(createSummaryPromptRaw))
	DescribeConceptMapTemplate = template.Must(template.New("describe_concept_map").Parse(describeConceptMapPromptRaw))
)

type promptData struct {
	Input string
}
