// Package auth gates mutating operations on the admins table.
package auth

import (
	"context"
	"fmt"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/repository"
)

// Service answers whether an identity may perform admin operations.
type Service interface {
	// Authorize returns nil for admins, domain.ErrNotAuthorized otherwise.
	Authorize(ctx context.Context, adminID string) error
}

type service struct {
	repo repository.Admin
}

// NewService creates an auth service over the admin repository.
func NewService(repo repository.Admin) Service {
	return &service{repo: repo}
}

func (s *service) Authorize(ctx context.Context, adminID string) error {
	if adminID == "" {
		return fmt.Errorf("%w: missing admin identity", domain.ErrNotAuthorized)
	}

	ok, err := s.repo.IsAdmin(ctx, adminID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if !ok {
		logger.FromContext(ctx).Warn("Admin check rejected", "admin_id", adminID)
		return fmt.Errorf("%w: %s", domain.ErrNotAuthorized, adminID)
	}
	return nil
}
