package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/amishk599/studypack/internal/model"
)

// PackGenerator builds a study pack from extracted text.
type PackGenerator interface {
	GenerateStudyPack(ctx context.Context, text string) model.StudyPack
}

// ContentHash identifies extracted text for dedup: hex SHA-256.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ErrIncompletePack reports a pack whose concept step failed. The roadmap and
// concept map are built from that step, so the pack has nothing to study.
var ErrIncompletePack = errors.New("concept extraction failed")

// CheckArchivable returns ctx.Err() when generation was interrupted and
// ErrIncompletePack when the concept step failed. Saving a pack marks its
// content hash processed, so only a nil result may be saved.
func CheckArchivable(ctx context.Context, pack model.StudyPack) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pack.Concepts.Failed() {
		return ErrIncompletePack
	}
	return nil
}
