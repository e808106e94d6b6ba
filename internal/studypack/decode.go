// Package studypack decodes pipeline output for presentation. Nothing here
// fails: a section that cannot be parsed is shown as its raw string.
package studypack

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/amishk599/studypack/internal/model"
)

// Section is one decoded slot of a study pack.
type Section struct {
	Key      string
	Raw      string // the string exactly as produced by the pipeline
	JSON     string // the text that parsed; empty when Parsed is false
	Data     any    // generic decoded document
	Parsed   bool
	Repaired bool     // parsed only after a second repair pass
	Failed   bool     // the pipeline step itself reported an error
	Warnings []string // schema findings, informational only
}

// Decode parses text for section key. When plain decoding fails it retries
// once on a jsonrepair'd copy before keeping the raw text.
func Decode(key, text string) Section {
	s := Section{Key: key, Raw: text}
	if key == model.SectionVisualization {
		return s
	}

	var data any
	if err := json.Unmarshal([]byte(text), &data); err == nil {
		s.JSON, s.Data, s.Parsed = text, data, true
	} else if strings.ContainsAny(text, "{[") {
		fixed, repairErr := jsonrepair.JSONRepair(text)
		if repairErr == nil && json.Unmarshal([]byte(fixed), &data) == nil {
			s.JSON, s.Data, s.Parsed, s.Repaired = fixed, data, true, true
		}
	}

	if !s.Parsed {
		return s
	}

	warnings, err := validate(key, s.Data)
	if err != nil {
		warnings = []string{err.Error()}
	}
	s.Warnings = warnings
	return s
}

// DecodeOutcome decodes a pipeline outcome. Error outcomes are never parsed.
func DecodeOutcome(key string, o model.Outcome) Section {
	if o.Failed() {
		return Section{Key: key, Raw: o.String(), Failed: true}
	}
	return Decode(key, o.Text)
}

// DecodePack decodes all four slots in pipeline order.
func DecodePack(pack model.StudyPack) []Section {
	out := make([]Section, 0, len(model.Sections))
	for _, key := range model.Sections {
		o, _ := pack.Section(key)
		out = append(out, DecodeOutcome(key, o))
	}
	return out
}

// Pretty returns indented JSON for a parsed section and the raw string otherwise.
func (s Section) Pretty() string {
	if !s.Parsed {
		return s.Raw
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s.JSON), "", "  "); err != nil {
		return s.Raw
	}
	return buf.String()
}
