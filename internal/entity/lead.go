package entity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// LeadCode tags every record produced by this funnel campaign.
const LeadCode = "#MOD30-SCOUT"

// Gender values accepted on the lead form.
const (
	GenderFemale    = "female"
	GenderMale      = "male"
	GenderNonBinary = "non-binary"
)

var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrPhoneAlreadyExists = errors.New("phone already registered")
)

// Lead is one captured applicant. Created exactly once per successful
// submission, never updated.
type Lead struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Postcode  string `json:"postcode"`

	// AnalysisSnapshot is the result captured at submission time, stored
	// verbatim and never re-fetched.
	AnalysisSnapshot AnalysisResult `json:"analysis_json"`
	Score            int            `json:"score"`
	Category         string         `json:"category"`

	// ImageURL points at the uploaded portrait; empty when the upload was
	// skipped or failed.
	ImageURL string `json:"image_url,omitempty"`

	LeadCode  string    `json:"lead_code"`
	CreatedAt time.Time `json:"created_at"`
}

// NewLead builds an unsaved lead with the snapshot denormalized into the
// sortable score/category columns the report view reads.
func NewLead(firstName, lastName string, age int, gender, phone, email, postcode string, snapshot AnalysisResult) *Lead {
	return &Lead{
		ID:               uuid.New().String(),
		FirstName:        firstName,
		LastName:         lastName,
		Age:              age,
		Gender:           gender,
		Phone:            phone,
		Email:            email,
		Postcode:         postcode,
		AnalysisSnapshot: snapshot,
		Score:            snapshot.SuitabilityScore,
		Category:         snapshot.DisplayCategory(),
		LeadCode:         LeadCode,
		CreatedAt:        time.Now().UTC(),
	}
}

// LeadFilter narrows and orders report queries. From is inclusive, To is
// exclusive (callers pass the day after the last day they want).
type LeadFilter struct {
	From      *time.Time
	To        *time.Time
	SortField string
	SortDesc  bool
}

type LeadRepositoryInterface interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Insert(ctx context.Context, lead *Lead) error
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
}
