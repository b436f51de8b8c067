package org

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/passdesk/passdesk/internal/cache"
	"github.com/passdesk/passdesk/internal/models"
)

type Repo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	ListPublic(ctx context.Context) ([]models.Organization, error)
}

const (
	publicOrgsKey = "orgs:public"
	publicOrgsTTL = time.Minute
)

type Service struct {
	orgs  Repo
	cache *cache.Cache
}

func NewService(orgs Repo, c *cache.Cache) *Service {
	return &Service{orgs: orgs, cache: c}
}

type PublicOrg struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// PublicList returns the id+name projection shown on registration pickers.
// Served from redis when possible; any cache failure falls through to the
// store.
func (s *Service) PublicList(ctx context.Context) ([]PublicOrg, error) {
	if s.cache != nil {
		var cached []PublicOrg
		if err := s.cache.Get(ctx, publicOrgsKey, &cached); err == nil {
			return cached, nil
		}
	}

	orgs, err := s.orgs.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]PublicOrg, 0, len(orgs))
	for _, o := range orgs {
		items = append(items, PublicOrg{ID: o.ID, Name: o.Name})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, publicOrgsKey, items, publicOrgsTTL); err != nil {
			slog.Warn("failed to cache public orgs", "error", err)
		}
	}
	return items, nil
}

// Invalidate drops the cached public list after a new org registers.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, publicOrgsKey); err != nil {
		slog.Warn("failed to invalidate public orgs cache", "error", err)
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return s.orgs.GetByID(ctx, id)
}
