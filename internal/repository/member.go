package repository

import (
	"context"

	"github.com/lmguild/lootkeeper/internal/domain"
)

// Member defines the interface for member persistence.
// DeleteMember cascades server-side: the member's inventory entries go
// with it in one statement, never a client-side loop. Registries are
// retained as the audit trail, keyed by the frozen member_name.
type Member interface {
	GetAllMembers(ctx context.Context) ([]domain.Member, error)
	GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error)
	SearchMembersByName(ctx context.Context, namePrefix string, limit int) ([]domain.Member, error)
	UpsertMember(ctx context.Context, member *domain.Member) error
	DeleteMember(ctx context.Context, memberID string) error
}
