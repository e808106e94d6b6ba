package studypack

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/amishk599/studypack/internal/model"
)

// DefaultTopic labels a concept map whose metadata carries no topic.
const DefaultTopic = "Main Topic"

// Concepts is the concept-extraction document.
type Concepts struct {
	Metadata DocumentMetadata `json:"document_metadata"`
	Items    []Concept        `json:"extracted_concepts"`
}

type DocumentMetadata struct {
	Topic           string `json:"topic"`
	DifficultyLevel string `json:"difficulty_level"`
}

type Concept struct {
	Name          string             `json:"concept_name"`
	Definition    string             `json:"definition"`
	ProblemSolved string             `json:"problem_solved"`
	Formula       *string            `json:"mathematical_formula"`
	Code          CodeImplementation `json:"code_implementation"`
	Limitations   []string           `json:"limitations"`
}

type CodeImplementation struct {
	Library       string `json:"library"`
	ClassFunction string `json:"class_function"`
}

// Topic returns the document topic or DefaultTopic.
func (c Concepts) Topic() string {
	if c.Metadata.Topic == "" {
		return DefaultTopic
	}
	return c.Metadata.Topic
}

// FormulaText returns the formula and whether one is present. Models often
// write the literal string "null" instead of a JSON null.
func (c Concept) FormulaText() (string, bool) {
	if c.Formula == nil {
		return "", false
	}
	f := strings.TrimSpace(*c.Formula)
	if f == "" || f == "null" {
		return "", false
	}
	return f, true
}

// Day is one entry of the study roadmap.
type Day struct {
	Topic        string `json:"topic"`
	Activities   string `json:"activities"`
	TimeEstimate string `json:"time_estimate"`
}

// Roadmap maps "day1".."day7" to days.
type Roadmap map[string]Day

// RoadmapDay pairs a day with its key.
type RoadmapDay struct {
	Key string
	Day
}

// Days returns the dayN entries in numeric order; other keys are ignored.
func (r Roadmap) Days() []RoadmapDay {
	type numbered struct {
		n   int
		key string
	}
	var keys []numbered
	for k := range r {
		n, ok := dayNumber(k)
		if !ok {
			continue
		}
		keys = append(keys, numbered{n, k})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].n < keys[j].n })

	out := make([]RoadmapDay, len(keys))
	for i, k := range keys {
		out[i] = RoadmapDay{Key: k.key, Day: r[k.key]}
	}
	return out
}

func dayNumber(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "day")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Summary is the summary document.
type Summary struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Steps   []string `json:"steps"`
}

// Relationship is one labelled edge between two concepts.
type Relationship struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Relationships is the concept-map description document.
type Relationships struct {
	Links []Relationship `json:"relationships"`
}

func ParseConcepts(text string) (Concepts, error) {
	var c Concepts
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		return Concepts{}, fmt.Errorf("parse concepts: %w", err)
	}
	return c, nil
}

func ParseRoadmap(text string) (Roadmap, error) {
	var r Roadmap
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, fmt.Errorf("parse roadmap: %w", err)
	}
	return r, nil
}

func ParseSummary(text string) (Summary, error) {
	var s Summary
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return Summary{}, fmt.Errorf("parse summary: %w", err)
	}
	return s, nil
}

func ParseRelationships(text string) (Relationships, error) {
	var r Relationships
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return Relationships{}, fmt.Errorf("parse relationships: %w", err)
	}
	return r, nil
}

// PackTopic returns the topic named by a pack's concepts section, and false
// when the section failed, did not parse or names no topic.
func PackTopic(pack model.StudyPack) (string, bool) {
	if pack.Concepts.Failed() {
		return "", false
	}
	c, err := ParseConcepts(pack.Concepts.Text)
	if err != nil || c.Metadata.Topic == "" {
		return "", false
	}
	return c.Metadata.Topic, true
}
