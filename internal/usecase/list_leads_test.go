package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/agencyscout/scout-funnel/internal/entity"
)

func TestListLeadsDateRangeIsInclusiveOfToDay(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)

	var captured entity.LeadFilter
	repo.On("List", ctx, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(entity.LeadFilter)
	}).Return([]*entity.Lead{}, nil)

	uc := NewListLeadsUseCase(repo)
	_, err := uc.Execute(ctx, ListLeadsInput{From: "2026-01-01", To: "2026-01-31"})
	require.NoError(t, err)

	require.NotNil(t, captured.From)
	require.NotNil(t, captured.To)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *captured.From)
	// To is pushed to the next midnight so the whole of the 31st matches.
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), *captured.To)
}

func TestListLeadsRejectsMalformedDates(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	uc := NewListLeadsUseCase(repo)

	_, err := uc.Execute(ctx, ListLeadsInput{From: "01/01/2026"})
	assert.True(t, IsDomainError(err))

	_, err = uc.Execute(ctx, ListLeadsInput{To: "yesterday"})
	assert.True(t, IsDomainError(err))

	repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestListLeadsUnknownSortFieldFallsBackToCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)

	var captured entity.LeadFilter
	repo.On("List", ctx, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(entity.LeadFilter)
	}).Return([]*entity.Lead{}, nil)

	uc := NewListLeadsUseCase(repo)
	_, err := uc.Execute(ctx, ListLeadsInput{SortBy: "password; DROP TABLE leads", SortDesc: true})
	require.NoError(t, err)

	assert.Equal(t, "created_at", captured.SortField)
	assert.True(t, captured.SortDesc)
}

func TestListLeadsAcceptsWhitelistedSortField(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)

	var captured entity.LeadFilter
	repo.On("List", ctx, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).(entity.LeadFilter)
	}).Return([]*entity.Lead{}, nil)

	uc := NewListLeadsUseCase(repo)
	_, err := uc.Execute(ctx, ListLeadsInput{SortBy: "score"})
	require.NoError(t, err)
	assert.Equal(t, "score", captured.SortField)
}

func TestExportCSVColumnOrderAndContent(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)

	lead := entity.NewLead("Jane", "Doe", 34, "female", "+44 7700 900123",
		"jane@example.com", "SW1A 1AA", snapshot())
	lead.ImageURL = "https://cdn.example.com/p.jpg"
	lead.CreatedAt = time.Date(2026, 8, 30, 15, 4, 5, 0, time.UTC)

	repo.On("List", ctx, mock.Anything).Return([]*entity.Lead{lead}, nil)

	var buf bytes.Buffer
	uc := NewListLeadsUseCase(repo)
	require.NoError(t, uc.ExportCSV(ctx, ListLeadsInput{}, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"First Name", "Last Name", "Age", "Gender", "Email", "Phone",
		"Postcode", "Score", "Category", "Image URL", "Date",
	}, rows[0])
	assert.Equal(t, []string{
		"Jane", "Doe", "34", "female", "jane@example.com", "+44 7700 900123",
		"SW1A 1AA", "88", "Editorial", "https://cdn.example.com/p.jpg", "2026-08-30",
	}, rows[1])
}

func TestExportCSVEmptySetStillWritesHeader(t *testing.T) {
	ctx := context.Background()
	repo := new(MockLeadRepository)
	repo.On("List", ctx, mock.Anything).Return([]*entity.Lead{}, nil)

	var buf bytes.Buffer
	uc := NewListLeadsUseCase(repo)
	require.NoError(t, uc.ExportCSV(ctx, ListLeadsInput{}, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "First Name", rows[0][0])
}

func TestExportFileNameCarriesDate(t *testing.T) {
	name := ExportFileName(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, "mature-leads-2026-09-01.csv", name)
}
