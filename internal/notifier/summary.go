package notifier

import (
	"github.com/amishk599/studypack/internal/conceptmap"
	"github.com/amishk599/studypack/internal/model"
	"github.com/amishk599/studypack/internal/studypack"
)

// packTopic returns the topic from the concepts section, or the source file
// name when the concepts did not decode.
func packTopic(rec model.PackRecord) string {
	if topic, ok := studypack.PackTopic(rec.Pack); ok {
		return topic
	}
	return rec.Source
}

// packHeadline returns the summary title and body, empty when the summary
// section failed or did not decode.
func packHeadline(rec model.PackRecord) (string, string) {
	if rec.Pack.Summary.Failed() {
		return "", ""
	}
	s, err := studypack.ParseSummary(rec.Pack.Summary.Text)
	if err != nil {
		return "", ""
	}
	return s.Title, s.Summary
}

// sectionStatus lists each section as "name ok" or "name failed".
func sectionStatus(rec model.PackRecord) []string {
	out := make([]string, 0, len(model.Sections))
	for _, key := range model.Sections {
		o, _ := rec.Pack.Section(key)
		state := "ok"
		if o.Failed() {
			state = "failed"
		}
		out = append(out, key+" "+state)
	}
	return out
}

// conceptMapPath returns the PNG path from a successful visualization status.
func conceptMapPath(rec model.PackRecord) string {
	path, _ := conceptmap.ImagePath(rec.Pack.Visualization)
	return path
}
