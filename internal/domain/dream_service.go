package domain

import (
	"context"
	"fmt"
	"sort"

	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

type dreamService struct {
	repo ports.DreamRepo
}

func NewDreamService(repo ports.DreamRepo) ports.DreamService {
	return &dreamService{repo: repo}
}

func (s *dreamService) Add(ctx context.Context, d ports.NewDream) (*ports.DreamRecord, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	rec, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("insert dream: %w", err)
	}
	return rec, nil
}

// List: все сны владельца, новые сверху
func (s *dreamService) List(ctx context.Context, ownerID string) ([]ports.DreamRecord, error) {
	records, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
