package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/agencyscout/scout-funnel/internal/entity"
)

// Unique index names on the leads table; the insert maps violations back
// to the matching duplicate error so the check-then-insert race cannot
// produce a second record.
const (
	emailUniqueConstraint = "leads_email_key"
	phoneUniqueConstraint = "leads_phone_key"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM leads WHERE email = $1)`, email,
	).Scan(&exists)
	return exists, err
}

func (r *LeadRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM leads WHERE phone = $1)`, phone,
	).Scan(&exists)
	return exists, err
}

func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	snapshot, err := json.Marshal(lead.AnalysisSnapshot)
	if err != nil {
		return fmt.Errorf("marshal analysis snapshot: %w", err)
	}

	query := `
		INSERT INTO leads (
			id, first_name, last_name, age, gender, phone, email, postcode,
			score, category, analysis_json, image_url, lead_code, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = r.DB.ExecContext(ctx, query,
		lead.ID,
		lead.FirstName,
		lead.LastName,
		lead.Age,
		lead.Gender,
		lead.Phone,
		lead.Email,
		lead.Postcode,
		lead.Score,
		lead.Category,
		snapshot,
		nullString(lead.ImageURL),
		lead.LeadCode,
		lead.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if pqErr.Constraint == phoneUniqueConstraint {
				return entity.ErrPhoneAlreadyExists
			}
			return entity.ErrEmailAlreadyExists
		}
		return err
	}

	return nil
}

func (r *LeadRepository) List(ctx context.Context, filter entity.LeadFilter) ([]*entity.Lead, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, first_name, last_name, age, gender, phone, email, postcode,
		       score, category, analysis_json, image_url, lead_code, created_at
		FROM leads
	`)

	var args []any
	var where []string
	if filter.From != nil {
		args = append(args, *filter.From)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	// Sort field is whitelisted by the use case; never interpolated from
	// raw client input.
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s", filter.SortField, direction))

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		var lead entity.Lead
		var snapshot []byte
		var imageURL sql.NullString
		if err := rows.Scan(
			&lead.ID,
			&lead.FirstName,
			&lead.LastName,
			&lead.Age,
			&lead.Gender,
			&lead.Phone,
			&lead.Email,
			&lead.Postcode,
			&lead.Score,
			&lead.Category,
			&snapshot,
			&imageURL,
			&lead.LeadCode,
			&lead.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(snapshot) > 0 {
			if err := json.Unmarshal(snapshot, &lead.AnalysisSnapshot); err != nil {
				return nil, fmt.Errorf("unmarshal analysis snapshot for %s: %w", lead.ID, err)
			}
		}
		lead.ImageURL = imageURL.String
		leads = append(leads, &lead)
	}

	return leads, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
