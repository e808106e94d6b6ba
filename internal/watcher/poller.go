package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/studypack/internal/model"
)

// InboxPoller owns the full poll pipeline for one inbox directory:
// list → filter → extract → dedup → generate → save → notify.
type InboxPoller struct {
	Name      string
	source    model.DocumentSource
	filter    model.DocumentFilter
	extractor model.Extractor
	generator PackGenerator
	store     model.PackStore
	notifier  model.Notifier
	logger    *slog.Logger
}

// NewInboxPoller creates a poller wired with all its dependencies.
func NewInboxPoller(
	name string,
	source model.DocumentSource,
	filter model.DocumentFilter,
	extractor model.Extractor,
	generator PackGenerator,
	store model.PackStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *InboxPoller {
	return &InboxPoller{
		Name:      name,
		source:    source,
		filter:    filter,
		extractor: extractor,
		generator: generator,
		store:     store,
		notifier:  notifier,
		logger:    logger,
	}
}

// Poll runs one cycle. A document that cannot be read, or whose pack comes
// back without concepts, is logged and left unprocessed for the next cycle.
// Cancellation stops the cycle before the in-flight pack is saved; store and
// notifier failures abort it.
func (p *InboxPoller) Poll(ctx context.Context) error {
	docs, err := p.source.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("polling %s: %w", p.Name, err)
	}

	var matched []model.Document
	for _, doc := range docs {
		if p.filter.Match(doc) {
			matched = append(matched, doc)
		}
	}

	var created []model.PackRecord
	seenThisCycle := make(map[string]bool)
	skipped := 0
	for _, doc := range matched {
		if ctx.Err() != nil {
			break
		}

		text := p.extractor.Extract(doc.Path)
		if text.Failed() {
			p.logger.Warn("skipping unreadable document", "inbox", p.Name, "file", doc.Name, "error", text.Err.Message)
			skipped++
			continue
		}
		if strings.TrimSpace(text.Text) == "" {
			p.logger.Warn("skipping empty document", "inbox", p.Name, "file", doc.Name)
			skipped++
			continue
		}

		hash := ContentHash(text.Text)
		if seenThisCycle[hash] {
			continue
		}
		seenThisCycle[hash] = true

		done, err := p.store.HasProcessed(hash)
		if err != nil {
			return fmt.Errorf("polling %s: checking processed status: %w", p.Name, err)
		}
		if done {
			continue
		}

		p.logger.Info("generating study pack", "inbox", p.Name, "file", doc.Name)
		pack := p.generator.GenerateStudyPack(ctx, text.Text)
		if err := CheckArchivable(ctx, pack); err != nil {
			if ctx.Err() != nil {
				p.logger.Warn("generation interrupted, leaving document for the next cycle", "inbox", p.Name, "file", doc.Name)
				break
			}
			p.logger.Warn("study pack not saved, retrying next cycle",
				"inbox", p.Name,
				"file", doc.Name,
				"reason", err,
				"concepts", pack.Concepts.String(),
			)
			skipped++
			continue
		}

		rec, err := p.store.Save(model.PackRecord{Source: doc.Name, ContentHash: hash, Pack: pack})
		if err != nil {
			return fmt.Errorf("polling %s: %w", p.Name, err)
		}
		created = append(created, rec)
	}

	if len(created) > 0 {
		if err := p.notifier.Notify(created); err != nil {
			return fmt.Errorf("polling %s: notifying: %w", p.Name, err)
		}
	}

	p.logger.Info("polled inbox",
		"inbox", p.Name,
		"listed", len(docs),
		"matched", len(matched),
		"skipped", skipped,
		"new", len(created),
	)

	return nil
}
