package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agencyscout/scout-funnel/internal/entity"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

// MockAssetStorage
type MockAssetStorage struct {
	mock.Mock
}

func (m *MockAssetStorage) Upload(ctx context.Context, key string, blob []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, blob, contentType)
	return args.String(0), args.Error(1)
}

func validInput() SubmitLeadInput {
	return SubmitLeadInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Age:       34,
		Gender:    "female",
		Phone:     "+44 7700 900123",
		Email:     "Jane@Example.com",
		Postcode:  "SW1A 1AA",
	}
}

func snapshot() entity.AnalysisResult {
	return entity.AnalysisResult{
		SuitabilityScore: 88,
		Category:         entity.MarketCategorization{Primary: "Editorial"},
		FaceGeometry:     entity.FaceGeometry{PrimaryShape: "Oval", JawlineDefinition: "Defined"},
		ScoutFeedback:    "Strong editorial potential.",
	}
}

func newUC(repo *MockLeadRepository, storage *MockAssetStorage) *SubmitLeadUseCase {
	var st AssetStorage
	if storage != nil {
		st = storage
	}
	return NewSubmitLeadUseCase(repo, st, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubmitLeadSuccessWithUpload(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	storage := new(MockAssetStorage)

	repo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
	repo.On("ExistsByPhone", ctx, "+44 7700 900123").Return(false, nil)
	storage.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
		return len(key) > 0
	}), []byte("img"), "image/jpeg").Return("https://cdn.example.com/p.jpg", nil)
	repo.On("Insert", ctx, mock.Anything).Return(nil)

	uc := newUC(repo, storage)
	lead, err := uc.Execute(ctx, validInput(), snapshot(), []byte("img"))

	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.Equal(t, "jane@example.com", lead.Email, "email is normalized")
	assert.Equal(t, "https://cdn.example.com/p.jpg", lead.ImageURL)
	assert.Equal(t, entity.LeadCode, lead.LeadCode)
	assert.Equal(t, 88, lead.Score)
	assert.Equal(t, "Editorial", lead.Category)
	repo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestSubmitLeadDuplicateEmailFailsFast(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	storage := new(MockAssetStorage)

	repo.On("ExistsByEmail", ctx, "jane@example.com").Return(true, nil)

	uc := newUC(repo, storage)
	lead, err := uc.Execute(ctx, validInput(), snapshot(), []byte("img"))

	require.Nil(t, lead)
	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "email", dup.Field)

	// No side effect of any kind: no phone check, no upload, no insert.
	repo.AssertNotCalled(t, "ExistsByPhone", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitLeadDuplicatePhoneFailsBeforeUpload(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	storage := new(MockAssetStorage)

	repo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
	repo.On("ExistsByPhone", ctx, "+44 7700 900123").Return(true, nil)

	uc := newUC(repo, storage)
	_, err := uc.Execute(ctx, validInput(), snapshot(), []byte("img"))

	var dup *DuplicateError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "phone", dup.Field)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestSubmitLeadUploadFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	storage := new(MockAssetStorage)

	repo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
	repo.On("ExistsByPhone", ctx, "+44 7700 900123").Return(false, nil)
	storage.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("bucket unavailable"))
	repo.On("Insert", ctx, mock.MatchedBy(func(lead *entity.Lead) bool {
		return lead.ImageURL == ""
	})).Return(nil)

	uc := newUC(repo, storage)
	lead, err := uc.Execute(ctx, validInput(), snapshot(), []byte("img"))

	require.NoError(t, err, "submission succeeds without the photo")
	assert.Empty(t, lead.ImageURL)
	repo.AssertExpectations(t)
}

func TestSubmitLeadWithoutImageSkipsUpload(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	storage := new(MockAssetStorage)

	repo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
	repo.On("ExistsByPhone", ctx, "+44 7700 900123").Return(false, nil)
	repo.On("Insert", ctx, mock.Anything).Return(nil)

	uc := newUC(repo, storage)
	lead, err := uc.Execute(ctx, validInput(), snapshot(), nil)

	require.NoError(t, err)
	assert.Empty(t, lead.ImageURL)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitLeadInsertRaceMapsToDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)

	repo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
	repo.On("ExistsByPhone", ctx, "+44 7700 900123").Return(false, nil)
	repo.On("Insert", ctx, mock.Anything).Return(entity.ErrEmailAlreadyExists)

	uc := newUC(repo, nil)
	_, err := uc.Execute(ctx, validInput(), snapshot(), nil)

	var dup *DuplicateError
	require.True(t, errors.As(err, &dup), "unique-index loser gets the same inline error")
	assert.Equal(t, "email", dup.Field)
}

func TestSubmitLeadPersistenceFailureIsTechnical(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)

	repo.On("ExistsByEmail", ctx, "jane@example.com").Return(false, nil)
	repo.On("ExistsByPhone", ctx, "+44 7700 900123").Return(false, nil)
	repo.On("Insert", ctx, mock.Anything).Return(errors.New("connection refused"))

	uc := newUC(repo, nil)
	_, err := uc.Execute(ctx, validInput(), snapshot(), nil)

	assert.True(t, IsTechnicalError(err))
}

func TestSubmitLeadValidationRejectsUnderage(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)

	input := validInput()
	input.Age = 25

	uc := newUC(repo, nil)
	_, err := uc.Execute(ctx, input, snapshot(), nil)

	require.True(t, IsDomainError(err))
	assert.Contains(t, err.Error(), "age")
	repo.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
}

func TestPortraitKeyIsSanitizedAndTraceable(t *testing.T) {
	key := portraitKey("Jane.Doe+test@Example.com", time.Unix(1700000000, 0).UTC())
	assert.Equal(t, "jane-doe-test-example-com-1700000000.jpg", key)
}
