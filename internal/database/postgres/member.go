package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/repository"
)

// MemberRepository implements repository.Member for PostgreSQL
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(pool *pgxpool.Pool) repository.Member {
	return &MemberRepository{pool: pool}
}

const memberColumns = "member_id, member_name, discord_id, avatar_url, rank_id, bonus_tier, created_at, updated_at"

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.ID, &m.Name, &m.DiscordID, &m.AvatarURL, &m.RankID, &m.BonusTier, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetAllMembers retrieves the whole roster ordered by name
func (r *MemberRepository) GetAllMembers(ctx context.Context) ([]domain.Member, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+memberColumns+" FROM members ORDER BY member_name")
	if err != nil {
		return nil, fmt.Errorf("failed to get all members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// GetMemberByID retrieves a member by ID, nil when absent
func (r *MemberRepository) GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	m, err := scanMember(r.pool.QueryRow(ctx,
		"SELECT "+memberColumns+" FROM members WHERE member_id = $1", memberID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return m, nil
}

// SearchMembersByName finds members whose name starts with the prefix,
// case-insensitive.
func (r *MemberRepository) SearchMembersByName(ctx context.Context, namePrefix string, limit int) ([]domain.Member, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+memberColumns+" FROM members WHERE member_name ILIKE $1 || '%' ORDER BY member_name LIMIT $2",
		namePrefix, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

// UpsertMember inserts or replaces a member profile
func (r *MemberRepository) UpsertMember(ctx context.Context, member *domain.Member) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO members (member_id, member_name, discord_id, avatar_url, rank_id, bonus_tier)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (member_id) DO UPDATE
		SET member_name = EXCLUDED.member_name,
		    discord_id = EXCLUDED.discord_id,
		    avatar_url = EXCLUDED.avatar_url,
		    rank_id = EXCLUDED.rank_id,
		    bonus_tier = EXCLUDED.bonus_tier,
		    updated_at = NOW()
		RETURNING created_at, updated_at`,
		member.ID, member.Name, member.DiscordID, member.AvatarURL, member.RankID, member.BonusTier,
	).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert member: %w", err)
	}
	return nil
}

// DeleteMember removes a member; inventory entries cascade server-side.
func (r *MemberRepository) DeleteMember(ctx context.Context, memberID string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM members WHERE member_id = $1", memberID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}
