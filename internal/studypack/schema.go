package studypack

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/amishk599/studypack/internal/model"
)

//go:embed schemas/concepts.json
var conceptsSchema string

//go:embed schemas/roadmap.json
var roadmapSchema string

//go:embed schemas/summary.json
var summarySchema string

var compiledSchemas = sync.OnceValues(func() (map[string]*gojsonschema.Schema, error) {
	sources := map[string]string{
		model.SectionConcepts: conceptsSchema,
		model.SectionRoadmap:  roadmapSchema,
		model.SectionSummary:  summarySchema,
	}
	out := make(map[string]*gojsonschema.Schema, len(sources))
	for key, src := range sources {
		s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", key, err)
		}
		out[key] = s
	}
	return out, nil
})

// validate checks a decoded section against its schema. Sections without a
// schema (visualization) have nothing to check.
func validate(key string, data any) ([]string, error) {
	schemas, err := compiledSchemas()
	if err != nil {
		return nil, err
	}
	schema, ok := schemas[key]
	if !ok {
		return nil, nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, fmt.Errorf("validate %s: %w", key, err)
	}
	if result.Valid() {
		return nil, nil
	}

	warnings := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		warnings[i] = desc.String()
	}
	return warnings, nil
}
