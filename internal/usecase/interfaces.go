package usecase

import (
	"context"
	"log/slog"

	"github.com/agencyscout/scout-funnel/internal/entity"
)

// AssetStorage uploads the captured portrait. The returned URL must be
// publicly resolvable.
type AssetStorage interface {
	Upload(ctx context.Context, key string, blob []byte, contentType string) (string, error)
}

// LeadNotifier tells the sales team about a fresh lead. Best-effort.
type LeadNotifier interface {
	NotifyNewLead(lead *entity.Lead) error
}

// LeadEventPublisher fans the created lead out to downstream consumers
// (scouting-partner sync). Best-effort.
type LeadEventPublisher interface {
	PublishLeadCreated(ctx context.Context, lead *entity.Lead) error
}

// SubmitLeadUseCase validates uniqueness of contact identifiers,
// uploads the portrait as a best-effort side channel and persists the
// lead with its analysis snapshot.
type SubmitLeadUseCase struct {
	Repo      entity.LeadRepositoryInterface
	Storage   AssetStorage
	Notifier  LeadNotifier
	Publisher LeadEventPublisher

	logger *slog.Logger
}
