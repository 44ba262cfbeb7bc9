package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/agencyscout/scout-funnel/internal/entity"
	"github.com/agencyscout/scout-funnel/internal/metrics"
)

func NewSubmitLeadUseCase(
	repo entity.LeadRepositoryInterface,
	storage AssetStorage,
	notifier LeadNotifier,
	publisher LeadEventPublisher,
	logger *slog.Logger,
) *SubmitLeadUseCase {
	return &SubmitLeadUseCase{
		Repo:      repo,
		Storage:   storage,
		Notifier:  notifier,
		Publisher: publisher,
		logger:    logger,
	}
}

// Execute runs the submission sequence: uniqueness checks first (no
// side effect happens for a duplicate, not even the upload), then the
// best-effort portrait upload, then the insert. Upload failure is
// non-fatal, since the lead is still valuable without the photo; an
// insert failure is fatal.
func (uc *SubmitLeadUseCase) Execute(ctx context.Context, input SubmitLeadInput, snapshot entity.AnalysisResult, imageBlob []byte) (*entity.Lead, error) {
	validationErrors := ValidateSubmitLeadInput(input)
	if len(validationErrors) > 0 {
		errMsg := "validation failed: "
		for _, e := range validationErrors {
			errMsg += e.Field + " (" + e.Message + "), "
		}
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: strings.TrimSuffix(errMsg, ", "),
		}
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := uc.Repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "email lookup failed: " + err.Error()}
	}
	if exists {
		return nil, &DuplicateError{Field: "email"}
	}

	exists, err = uc.Repo.ExistsByPhone(ctx, input.Phone)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "phone lookup failed: " + err.Error()}
	}
	if exists {
		return nil, &DuplicateError{Field: "phone"}
	}

	var imageURL string
	if len(imageBlob) > 0 && uc.Storage != nil {
		key := portraitKey(email, time.Now().UTC())
		imageURL, err = uc.Storage.Upload(ctx, key, imageBlob, "image/jpeg")
		if err != nil {
			// Non-fatal: record and continue without a reference.
			uc.logger.Warn("portrait upload failed, continuing without image", "key", key, "error", err)
			metrics.RecordUploadFailure()
			imageURL = ""
		}
	}

	lead := entity.NewLead(
		strings.TrimSpace(input.FirstName),
		strings.TrimSpace(input.LastName),
		input.Age,
		strings.ToLower(strings.TrimSpace(input.Gender)),
		input.Phone,
		email,
		strings.TrimSpace(input.Postcode),
		snapshot,
	)
	lead.ImageURL = imageURL

	if err := uc.Repo.Insert(ctx, lead); err != nil {
		// The unique indexes catch the check-then-insert race; a loser of
		// that race gets the same inline duplicate error.
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			return nil, &DuplicateError{Field: "email"}
		}
		if errors.Is(err, entity.ErrPhoneAlreadyExists) {
			return nil, &DuplicateError{Field: "phone"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to persist lead: " + err.Error()}
	}

	uc.logger.Info("lead created", "id", lead.ID, "score", lead.Score, "has_image", imageURL != "")

	go func() {
		if uc.Notifier != nil {
			if err := uc.Notifier.NotifyNewLead(lead); err != nil {
				uc.logger.Warn("sales notification failed", "id", lead.ID, "error", err)
			}
		}
		if uc.Publisher != nil {
			if err := uc.Publisher.PublishLeadCreated(context.Background(), lead); err != nil {
				uc.logger.Warn("lead event publish failed", "id", lead.ID, "error", err)
			}
		}
	}()

	return lead, nil
}

var keyUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// portraitKey derives a collision-resistant yet traceable object name
// from the sanitized email and a timestamp.
func portraitKey(email string, now time.Time) string {
	sanitized := keyUnsafe.ReplaceAllString(strings.ToLower(email), "-")
	sanitized = strings.Trim(sanitized, "-")
	return fmt.Sprintf("%s-%d.jpg", sanitized, now.Unix())
}
