package usecase

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/agencyscout/scout-funnel/internal/entity"
)

// Report-view sort fields accepted from clients. Anything else falls
// back to created_at.
var sortFields = map[string]bool{
	"first_name": true,
	"last_name":  true,
	"age":        true,
	"gender":     true,
	"email":      true,
	"phone":      true,
	"postcode":   true,
	"score":      true,
	"category":   true,
	"created_at": true,
}

// ListLeadsUseCase is the read side over persisted leads: filter by
// creation-date range, sort by a single field, export the current set.
// Pure read/transform, no coordination.
type ListLeadsUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewListLeadsUseCase(repo entity.LeadRepositoryInterface) *ListLeadsUseCase {
	return &ListLeadsUseCase{Repo: repo}
}

// ListLeadsInput carries the raw query parameters. Dates are
// day-granularity YYYY-MM-DD strings; To is made exclusive by adding a
// day, so a range of 2026-01-01..2026-01-31 includes the whole of the
// 31st.
type ListLeadsInput struct {
	From     string
	To       string
	SortBy   string
	SortDesc bool
}

func (uc *ListLeadsUseCase) Execute(ctx context.Context, input ListLeadsInput) ([]*entity.Lead, error) {
	filter := entity.LeadFilter{
		SortField: input.SortBy,
		SortDesc:  input.SortDesc,
	}
	if !sortFields[filter.SortField] {
		filter.SortField = "created_at"
	}

	if input.From != "" {
		t, err := time.Parse("2006-01-02", input.From)
		if err != nil {
			return nil, &DomainError{Code: "INVALID_FILTER", Message: "from: must be a valid date (YYYY-MM-DD)"}
		}
		filter.From = &t
	}
	if input.To != "" {
		t, err := time.Parse("2006-01-02", input.To)
		if err != nil {
			return nil, &DomainError{Code: "INVALID_FILTER", Message: "to: must be a valid date (YYYY-MM-DD)"}
		}
		end := t.AddDate(0, 0, 1)
		filter.To = &end
	}

	leads, err := uc.Repo.List(ctx, filter)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "lead query failed: " + err.Error()}
	}
	return leads, nil
}

// csvHeader fixes the export column order.
var csvHeader = []string{
	"First Name", "Last Name", "Age", "Gender", "Email", "Phone",
	"Postcode", "Score", "Category", "Image URL", "Date",
}

// ExportCSV streams the filtered/sorted set as CSV in the fixed column
// order.
func (uc *ListLeadsUseCase) ExportCSV(ctx context.Context, input ListLeadsInput, w io.Writer) error {
	leads, err := uc.Execute(ctx, input)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, lead := range leads {
		row := []string{
			lead.FirstName,
			lead.LastName,
			strconv.Itoa(lead.Age),
			lead.Gender,
			lead.Email,
			lead.Phone,
			lead.Postcode,
			strconv.Itoa(lead.Score),
			lead.Category,
			lead.ImageURL,
			lead.CreatedAt.Format("2006-01-02"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName is the attachment name for a CSV download.
func ExportFileName(now time.Time) string {
	return "mature-leads-" + now.Format("2006-01-02") + ".csv"
}
