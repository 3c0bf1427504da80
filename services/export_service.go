package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/krushndayshmookh/krushn-calendar/metrics"
	"github.com/krushndayshmookh/krushn-calendar/models"
	"github.com/krushndayshmookh/krushn-calendar/repositories"
	"github.com/krushndayshmookh/krushn-calendar/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Snapshot is the exported state of one user's local annotations.
type Snapshot struct {
	UserID     uint                   `json:"userId"`
	ExportedAt time.Time              `json:"exportedAt"`
	Categories []models.Category      `json:"categories"`
	Metadata   []models.EventMetadata `json:"metadata"`
}

// ExportResult describes a written snapshot.
type ExportResult struct {
	Key        string `json:"key"`
	Categories int    `json:"categories"`
	Metadata   int    `json:"metadata"`
}

type ExportService struct {
	categories repositories.CategoryRepository
	metadata   repositories.MetadataRepository
	store      storage.Storage
	now        func() time.Time
}

func NewExportService(categories repositories.CategoryRepository, metadata repositories.MetadataRepository, store storage.Storage) *ExportService {
	return &ExportService{
		categories: categories,
		metadata:   metadata,
		store:      store,
		now:        time.Now,
	}
}

// Export writes the caller's categories and metadata as one JSON document.
func (s *ExportService) Export(ctx context.Context, user *models.User) (ExportResult, error) {
	snapshot := Snapshot{UserID: user.ID, ExportedAt: s.now().UTC()}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		categories, err := s.categories.ListByOwner(gctx, user.ID)
		if err != nil {
			return err
		}
		snapshot.Categories = categories
		return nil
	})
	g.Go(func() error {
		records, err := s.metadata.ListByOwner(gctx, user.ID)
		if err != nil {
			return err
		}
		snapshot.Metadata = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return ExportResult{}, storeErr("load export data", err)
	}

	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to encode export: %w", err)
	}

	key := fmt.Sprintf("exports/%d/%d.json", user.ID, snapshot.ExportedAt.UnixNano())
	if err := s.store.Put(ctx, key, bytes.NewReader(body)); err != nil {
		return ExportResult{}, storeErr("write export", err)
	}
	metrics.Exports.Inc()

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"key":     key,
	}).Info("Metadata exported")

	return ExportResult{
		Key:        key,
		Categories: len(snapshot.Categories),
		Metadata:   len(snapshot.Metadata),
	}, nil
}
