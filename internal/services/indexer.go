package services

import (
	"context"
	"fmt"

	"photo-points-backend/internal/models"
	"photo-points-backend/internal/search"

	"github.com/rs/zerolog/log"
)

const indexBatchSize = 500

// IndexMaintenance rebuilds and clears the photo search index
type IndexMaintenance struct {
	photos PhotoStore
	index  SearchIndex
}

// NewIndexMaintenance creates a new index maintenance service
func NewIndexMaintenance(photos PhotoStore, index SearchIndex) *IndexMaintenance {
	return &IndexMaintenance{photos: photos, index: index}
}

// Reindex uploads an add document for every photo record and returns how many were sent
func (m *IndexMaintenance) Reindex(ctx context.Context) (int, error) {
	total := 0
	batch := make([]search.Document, 0, indexBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := m.index.Upload(ctx, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	err := m.photos.ForEach(ctx, func(photo *models.Photo) error {
		doc, err := search.AddPhoto(photo)
		if err != nil {
			log.Warn().Err(err).Str("photo_id", photo.ID).Msg("Skipping photo")
			return nil
		}
		batch = append(batch, doc)
		if len(batch) >= indexBatchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return total, fmt.Errorf("failed to reindex photos: %w", err)
	}

	log.Info().Int("documents", total).Msg("Photo index rebuilt")
	return total, nil
}

// ClearIndex deletes every document the index returns in one scan
func (m *IndexMaintenance) ClearIndex(ctx context.Context) (int, error) {
	ids, err := m.index.AllIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list indexed documents: %w", err)
	}

	total := 0
	for start := 0; start < len(ids); start += indexBatchSize {
		end := min(start+indexBatchSize, len(ids))
		docs := make([]search.Document, 0, end-start)
		for _, id := range ids[start:end] {
			docs = append(docs, search.DeletePhoto(id))
		}
		if err := m.index.Upload(ctx, docs); err != nil {
			return total, fmt.Errorf("failed to delete indexed documents: %w", err)
		}
		total += len(docs)
	}

	log.Info().Int("documents", total).Msg("Photo index cleared")
	return total, nil
}
