package notifier

import (
	"log/slog"
	"strings"

	"github.com/amishk599/studypack/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new study packs to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each pack via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each pack with id, source, topic and section status.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(records []model.PackRecord) error {
	for _, r := range records {
		args := []any{
			"id", r.ID,
			"source", r.Source,
			"topic", packTopic(r),
			"sections", strings.Join(sectionStatus(r), ", "),
		}
		if path := conceptMapPath(r); path != "" {
			args = append(args, "concept_map", path)
		}
		n.logger.Info("new study pack", args...)
	}
	return nil
}
