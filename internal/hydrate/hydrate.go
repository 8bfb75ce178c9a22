// Package hydrate projects bill summaries into the vector index.
package hydrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/TobiSchelling/legisync/internal/database"
	"github.com/TobiSchelling/legisync/internal/embed"
	"github.com/TobiSchelling/legisync/internal/vecstore"
)

// truncationMarker is appended whenever a bill's text had to be cut to
// fit an embedding tier, so downstream consumers can tell.
const truncationMarker = " [TRUNCATED]"

// minSummaryLength filters out bills whose summary is too short to be
// worth embedding.
const minSummaryLength = 10

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex receives the finished vectors, keyed by bill id so a
// re-run overwrites instead of duplicating.
type VectorIndex interface {
	Upsert(ctx context.Context, billID int64, vector []float32, meta vecstore.Metadata) error
}

// Hydrator embeds every bill with a non-trivial summary, shrinking the
// input through a descending list of size ceilings until the embedding
// service accepts it.
type Hydrator struct {
	db       *database.DB
	embedder Embedder
	index    VectorIndex
	tiers    []int
	log      *logrus.Logger
}

// Result summarizes one hydration run.
type Result struct {
	Embedded int
	Skipped  int
}

// New creates a hydrator. tiers must be in descending order; the config
// layer validates this.
func New(db *database.DB, embedder Embedder, index VectorIndex, tiers []int, logger *logrus.Logger) *Hydrator {
	return &Hydrator{db: db, embedder: embedder, index: index, tiers: tiers, log: logger}
}

// Run hydrates all eligible bills. Per-bill failures are permanent skips,
// not run failures; only context cancellation aborts the run.
func (h *Hydrator) Run(ctx context.Context) (*Result, error) {
	bills, err := h.db.GetBillsWithSummaries(minSummaryLength)
	if err != nil {
		return nil, fmt.Errorf("loading bills: %w", err)
	}
	h.log.WithField("bills", len(bills)).Info("starting vector hydration")

	result := &Result{}
	for i := range bills {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if h.hydrateBill(ctx, &bills[i]) {
			result.Embedded++
		} else {
			result.Skipped++
		}
	}

	h.log.WithFields(logrus.Fields{
		"embedded": result.Embedded,
		"skipped":  result.Skipped,
	}).Info("vector hydration finished")
	return result, nil
}

// hydrateBill tries each truncation tier in order and writes the vector
// produced by the first accepted input. Returns false when the bill was
// skipped; no partial vector is ever written.
func (h *Hydrator) hydrateBill(ctx context.Context, bill *database.Bill) bool {
	title := "No Title"
	if bill.Title != nil {
		title = *bill.Title
	}
	summary := "No Summary"
	if bill.Summary != nil {
		summary = *bill.Summary
	}
	fullText := title + " \nSummary: " + summary

	for _, limit := range h.tiers {
		text := fullText
		if len(text) > limit {
			text = text[:limit] + truncationMarker
		}

		vector, err := h.embedder.Embed(ctx, text)
		if errors.Is(err, embed.ErrInputTooLarge) {
			continue
		}
		if err != nil {
			h.log.WithFields(logrus.Fields{
				"bill": bill.OfficialNumber,
				"tier": limit,
			}).WithError(err).Warn("embedding failed, skipping bill")
			return false
		}

		meta := vecstore.Metadata{
			BillNumber:  bill.OfficialNumber,
			Title:       title,
			TextPreview: summary,
		}
		if err := h.index.Upsert(ctx, bill.ID, vector, meta); err != nil {
			h.log.WithField("bill", bill.OfficialNumber).WithError(err).
				Warn("vector upsert failed, skipping bill")
			return false
		}
		return true
	}

	h.log.WithField("bill", bill.OfficialNumber).
		Warn("text too large for every truncation tier, skipping bill")
	return false
}
