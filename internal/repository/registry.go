package repository

import (
	"context"

	"github.com/lmguild/lootkeeper/internal/domain"
)

// Registry defines the interface for loot-registry persistence.
// Registries are append-only: CreateRegistry writes the frozen line
// snapshots, MarkProcessed/MarkProcessError only touch the status fields.
type Registry interface {
	CreateRegistry(ctx context.Context, registry *domain.Registry) error
	GetRegistryByID(ctx context.Context, registryID string) (*domain.Registry, error)
	GetRegistriesByMember(ctx context.Context, memberID string) ([]domain.Registry, error)
	GetUnprocessedRegistries(ctx context.Context, limit int) ([]domain.Registry, error)
	MarkProcessed(ctx context.Context, registryID, notifierResponse string) error
	MarkProcessError(ctx context.Context, registryID, errText string) error
}
