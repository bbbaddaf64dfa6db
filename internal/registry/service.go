// Package registry implements the loot-registry submission workflow.
//
// The step order is an invariant, not an implementation detail: the
// registry row is persisted before any inventory mutation and before the
// notification attempt, so an audit record exists even when later steps
// fail. Notification is best-effort; a failed webhook call only leaves the
// registry unprocessed with the error recorded.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lmguild/lootkeeper/internal/domain"
	"github.com/lmguild/lootkeeper/internal/logger"
	"github.com/lmguild/lootkeeper/internal/metrics"
	"github.com/lmguild/lootkeeper/internal/notifier"
	"github.com/lmguild/lootkeeper/internal/pricing"
	"github.com/lmguild/lootkeeper/internal/refdata"
	"github.com/lmguild/lootkeeper/internal/repository"
)

// SubmitLine is one requested loot line, by catalog item ID.
type SubmitLine struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// SubmitInput is a full registry submission.
type SubmitInput struct {
	AuthorID   string       `json:"author_id" validate:"required"`
	AuthorName string       `json:"author_name"`
	MemberID   string       `json:"member_id" validate:"required"`
	Activity   string       `json:"activity" validate:"required"`
	Lines      []SubmitLine `json:"lines" validate:"required,min=1,dive"`
}

// SubmitResult reports the created registry and whether the Discord
// notification went through. Notified=false is a warning, never an error.
type SubmitResult struct {
	RegistryID string `json:"registry_id"`
	Notified   bool   `json:"notified"`
	TotalValue int64  `json:"total_value"`
}

// Service defines the registry operations
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (SubmitResult, error)
	GetByID(ctx context.Context, registryID string) (*domain.Registry, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Registry, error)

	// ProcessUnprocessed retries notification for registries whose webhook
	// call failed at submission time. Returns how many were marked
	// processed. Used by the catch-up processor binary.
	ProcessUnprocessed(ctx context.Context, limit int) (int, error)
}

type service struct {
	registries repository.Registry
	members    repository.Member
	items      repository.Item
	inventory  repository.Inventory
	store      *refdata.Store
	notify     notifier.Notifier
}

// NewService creates a registry service.
func NewService(registries repository.Registry, members repository.Member, items repository.Item, inventory repository.Inventory, store *refdata.Store, notify notifier.Notifier) Service {
	return &service{
		registries: registries,
		members:    members,
		items:      items,
		inventory:  inventory,
		store:      store,
		notify:     notify,
	}
}

// Submit runs the full workflow: validate, freeze line snapshots, persist
// the registry, upsert inventory, notify Discord, mark the outcome.
func (s *service) Submit(ctx context.Context, input SubmitInput) (SubmitResult, error) {
	log := logger.FromContext(ctx)

	// Step 1: validate before any write.
	if err := validateInput(input); err != nil {
		return SubmitResult{}, err
	}

	member, err := s.members.GetMemberByID(ctx, input.MemberID)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if member == nil {
		return SubmitResult{}, fmt.Errorf("%w: member %q", domain.ErrValidation, input.MemberID)
	}

	// Step 2: freeze line snapshots from the catalog as it is right now.
	lines, err := s.resolveLines(ctx, input.Lines)
	if err != nil {
		return SubmitResult{}, err
	}

	// Step 3: persist the registry first. If this fails nothing else runs;
	// if later steps fail the row stays behind as the audit trail.
	reg := &domain.Registry{
		ID:         uuid.NewString(),
		AuthorID:   input.AuthorID,
		AuthorName: input.AuthorName,
		MemberID:   member.ID,
		MemberName: member.Name,
		Activity:   strings.TrimSpace(input.Activity),
		Lines:      lines,
		CreatedAt:  time.Now().UTC(),
		Processed:  false,
	}
	if err := s.registries.CreateRegistry(ctx, reg); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: create registry: %v", domain.ErrPersistence, err)
	}
	metrics.RegistriesSubmitted.WithLabelValues(reg.Activity).Inc()

	// Step 4: apply each line to the member's inventory. Each upsert is
	// atomic on its own; a failure partway leaves prior lines applied and
	// the registry unprocessed.
	for _, line := range lines {
		if err := s.inventory.IncrementEntry(ctx, member.ID, line.ItemID, line.Name, line.Quantity); err != nil {
			persistErr := fmt.Errorf("%w: inventory upsert for %s: %v", domain.ErrPersistence, line.ItemID, err)
			if markErr := s.registries.MarkProcessError(ctx, reg.ID, persistErr.Error()); markErr != nil {
				log.Error("Failed to record inventory error on registry", "registry_id", reg.ID, "error", markErr)
			}
			return SubmitResult{}, persistErr
		}
	}

	// Step 5 and 6: compute the payout summary and fire the webhook.
	rank := s.rankFor(ctx, member)
	payload, total := buildPayload(reg, member, rank)
	notified := s.attemptNotify(ctx, reg.ID, payload)

	metrics.PayoutAmount.Add(float64(total))
	if err := s.store.Refresh(ctx); err != nil {
		log.Warn("Snapshot refresh after submission failed", "error", err)
	}

	log.Info("Registry submitted",
		"registry_id", reg.ID,
		"member", member.ID,
		"activity", reg.Activity,
		"lines", len(lines),
		"total", total,
		"notified", notified)

	return SubmitResult{RegistryID: reg.ID, Notified: notified, TotalValue: total}, nil
}

func (s *service) GetByID(ctx context.Context, registryID string) (*domain.Registry, error) {
	reg, err := s.registries.GetRegistryByID(ctx, registryID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: registry %q", domain.ErrNotFound, registryID)
	}
	return reg, nil
}

func (s *service) ListByMember(ctx context.Context, memberID string) ([]domain.Registry, error) {
	regs, err := s.registries.GetRegistriesByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return regs, nil
}

// ProcessUnprocessed retries the notification for stuck registries using
// their frozen line snapshots and the member's current rank.
func (s *service) ProcessUnprocessed(ctx context.Context, limit int) (int, error) {
	log := logger.FromContext(ctx)

	regs, err := s.registries.GetUnprocessedRegistries(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	processed := 0
	for i := range regs {
		reg := &regs[i]

		member, err := s.members.GetMemberByID(ctx, reg.MemberID)
		if err != nil {
			log.Error("Skipping registry, member lookup failed", "registry_id", reg.ID, "error", err)
			continue
		}
		if member == nil {
			// Member deleted after submission; nothing left to notify about.
			member = &domain.Member{ID: reg.MemberID, Name: reg.MemberName}
		}

		rank := s.rankFor(ctx, member)
		payload, _ := buildPayload(reg, member, rank)
		if s.attemptNotify(ctx, reg.ID, payload) {
			processed++
		}
	}

	log.Info("Unprocessed registries handled", "found", len(regs), "notified", processed)
	return processed, nil
}

// validateInput enforces submission rules before any I/O.
func validateInput(input SubmitInput) error {
	if input.AuthorID == "" {
		return fmt.Errorf("%w: author is required", domain.ErrValidation)
	}
	if input.MemberID == "" {
		return fmt.Errorf("%w: member is required", domain.ErrValidation)
	}
	if strings.TrimSpace(input.Activity) == "" {
		return fmt.Errorf("%w: activity is required", domain.ErrValidation)
	}
	if len(input.Lines) == 0 {
		return fmt.Errorf("%w: at least one line is required", domain.ErrValidation)
	}
	hasQuantity := false
	for _, line := range input.Lines {
		if line.ItemID == "" {
			return fmt.Errorf("%w: line item is required", domain.ErrValidation)
		}
		if line.Quantity < 0 {
			return fmt.Errorf("%w: negative quantity for %s", domain.ErrValidation, line.ItemID)
		}
		if line.Quantity > 0 {
			hasQuantity = true
		}
	}
	if !hasQuantity {
		return fmt.Errorf("%w: at least one line with quantity > 0 is required", domain.ErrValidation)
	}
	return nil
}

// resolveLines copies catalog state into frozen snapshots. Zero-quantity
// lines are dropped here rather than stored.
func (s *service) resolveLines(ctx context.Context, lines []SubmitLine) ([]domain.RegistryLine, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 {
			ids = append(ids, l.ItemID)
		}
	}

	items, err := s.items.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: load catalog items: %v", domain.ErrPersistence, err)
	}
	byID := make(map[string]domain.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	snapshots := make([]domain.RegistryLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		item, ok := byID[l.ItemID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown item %q", domain.ErrValidation, l.ItemID)
		}
		snapshots = append(snapshots, domain.RegistryLine{
			ItemID:      item.ID,
			Name:        item.Name,
			Quantity:    l.Quantity,
			BaseValue:   item.BaseValue,
			Payable:     item.Payable,
			PctOverride: item.PctOverride,
		})
	}
	return snapshots, nil
}

// rankFor resolves the member's rank from the snapshot; pricing treats a
// missing or deleted rank as 0%.
func (s *service) rankFor(_ context.Context, member *domain.Member) *domain.Rank {
	return s.store.Snapshot().RankFor(member)
}

// buildPayload prices every frozen line and assembles the webhook payload.
func buildPayload(reg *domain.Registry, member *domain.Member, rank *domain.Rank) (notifier.Payload, int64) {
	payload := notifier.Payload{
		MemberName: member.Name,
		Activity:   reg.Activity,
		AuthorName: reg.AuthorName,
		Timestamp:  reg.CreatedAt,
	}
	if payload.AuthorName == "" {
		payload.AuthorName = reg.AuthorID
	}

	var total int64
	for _, line := range reg.Lines {
		unit := pricing.LineUnitPrice(line, member, rank)
		lineTotal := pricing.LineTotal(unit, line.Quantity)
		total += lineTotal
		payload.Lines = append(payload.Lines, notifier.Line{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: unit,
			Total:     lineTotal,
		})
	}
	payload.TotalValue = total
	return payload, total
}

// attemptNotify makes the single best-effort webhook call and records the
// outcome on the registry. Returns whether the registry is now processed.
func (s *service) attemptNotify(ctx context.Context, registryID string, payload notifier.Payload) bool {
	log := logger.FromContext(ctx)

	result, err := s.notify.Notify(ctx, payload)
	if err != nil || !result.OK {
		errText := notifyErrText(result, err)
		metrics.Notifications.WithLabelValues(metrics.OutcomeFailure).Inc()
		log.Warn("Notification failed", "registry_id", registryID, "error", errText)
		if markErr := s.registries.MarkProcessError(ctx, registryID, errText); markErr != nil {
			log.Error("Failed to record notification error", "registry_id", registryID, "error", markErr)
		}
		return false
	}

	metrics.Notifications.WithLabelValues(metrics.OutcomeSuccess).Inc()
	if err := s.registries.MarkProcessed(ctx, registryID, result.Body); err != nil {
		log.Error("Failed to mark registry processed", "registry_id", registryID, "error", err)
		return false
	}
	return true
}

func notifyErrText(result notifier.Result, err error) string {
	if err != nil {
		notifErr := fmt.Errorf("%w: %v", domain.ErrNotification, err)
		return notifErr.Error()
	}
	return fmt.Sprintf("%s: status %d: %s", domain.ErrMsgNotification, result.StatusCode, truncate(result.Body, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
