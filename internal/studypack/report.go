package studypack

import (
	"fmt"
	"strings"

	"github.com/amishk599/studypack/internal/model"
)

var sectionTitles = map[string]string{
	model.SectionConcepts:      "Key Concepts",
	model.SectionRoadmap:       "7-Day Roadmap",
	model.SectionSummary:       "Summary",
	model.SectionVisualization: "Concept Map",
}

// Title returns the human-readable heading for a section key.
func Title(key string) string {
	if t, ok := sectionTitles[key]; ok {
		return t
	}
	return key
}

// Report renders a study pack as plain text.
func Report(pack model.StudyPack) string {
	var b strings.Builder
	for i, s := range DecodePack(pack) {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "== %s ==\n", Title(s.Key))
		b.WriteString(RenderSection(s))
	}
	return b.String()
}

// RenderSection formats one decoded section. Sections that do not match the
// expected shape fall back to their pretty or raw text.
func RenderSection(s Section) string {
	var body string
	var ok bool
	if s.Parsed {
		switch s.Key {
		case model.SectionConcepts:
			body, ok = renderConcepts(s.JSON)
		case model.SectionRoadmap:
			body, ok = renderRoadmap(s.JSON)
		case model.SectionSummary:
			body, ok = renderSummary(s.JSON)
		}
	}

	var b strings.Builder
	switch {
	case ok:
		b.WriteString(body)
	case s.Parsed:
		b.WriteString(s.Pretty())
		b.WriteString("\n")
	case s.Failed || s.Key == model.SectionVisualization:
		b.WriteString(s.Raw)
		b.WriteString("\n")
	default:
		b.WriteString("(could not parse output, showing raw text)\n")
		b.WriteString(s.Raw)
		b.WriteString("\n")
	}
	for _, w := range s.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return b.String()
}

func renderConcepts(text string) (string, bool) {
	c, err := ParseConcepts(text)
	if err != nil || len(c.Items) == 0 {
		return "", false
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s", c.Topic())
	if c.Metadata.DifficultyLevel != "" {
		fmt.Fprintf(&b, " (%s)", c.Metadata.DifficultyLevel)
	}
	b.WriteString("\n")
	for _, item := range c.Items {
		fmt.Fprintf(&b, "- %s: %s\n", item.Name, item.Definition)
		if f, ok := item.FormulaText(); ok {
			fmt.Fprintf(&b, "    formula: %s\n", f)
		}
		if item.Code.Library != "" || item.Code.ClassFunction != "" {
			fmt.Fprintf(&b, "    code: %s %s\n", item.Code.Library, item.Code.ClassFunction)
		}
		for _, l := range item.Limitations {
			fmt.Fprintf(&b, "    limitation: %s\n", l)
		}
	}
	return b.String(), true
}

func renderRoadmap(text string) (string, bool) {
	r, err := ParseRoadmap(text)
	if err != nil {
		return "", false
	}
	days := r.Days()
	if len(days) == 0 {
		return "", false
	}
	var b strings.Builder
	for _, d := range days {
		fmt.Fprintf(&b, "%-5s %s", d.Key, d.Topic)
		if d.TimeEstimate != "" {
			fmt.Fprintf(&b, " [%s]", d.TimeEstimate)
		}
		b.WriteString("\n")
		if d.Activities != "" {
			fmt.Fprintf(&b, "      %s\n", d.Activities)
		}
	}
	return b.String(), true
}

func renderSummary(text string) (string, bool) {
	s, err := ParseSummary(text)
	if err != nil || (s.Title == "" && s.Summary == "") {
		return "", false
	}
	var b strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&b, "%s\n", s.Title)
	}
	if s.Summary != "" {
		fmt.Fprintf(&b, "%s\n", s.Summary)
	}
	for i, step := range s.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	return b.String(), true
}
