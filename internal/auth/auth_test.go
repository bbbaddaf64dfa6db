package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/repository"
)

func TestAuthorize(t *testing.T) {
	repo := repository.NewFakeRepository()
	repo.AddAdmin("discord-123")
	svc := NewService(repo)
	ctx := context.Background()

	assert.NoError(t, svc.Authorize(ctx, "discord-123"))
	assert.ErrorIs(t, svc.Authorize(ctx, "discord-999"), domain.ErrNotAuthorized)
	assert.ErrorIs(t, svc.Authorize(ctx, ""), domain.ErrNotAuthorized)
}

func TestAuthorize_PersistenceError(t *testing.T) {
	repo := repository.NewFakeRepository()
	repo.FailWith = errors.New("db down")
	svc := NewService(repo)

	err := svc.Authorize(context.Background(), "discord-123")
	assert.ErrorIs(t, err, domain.ErrPersistence)
}
