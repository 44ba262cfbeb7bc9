package vision

import "github.com/agencyscout/scout-funnel/internal/entity"

// analyzeResponse mirrors the scoring endpoint's JSON body. The shape is
// the same as the domain result; keeping a separate wire type means the
// endpoint can grow fields without touching the entity.
type analyzeResponse struct {
	SuitabilityScore int                         `json:"suitability_score"`
	Category         entity.MarketCategorization `json:"market_categorization"`
	FaceGeometry     entity.FaceGeometry         `json:"face_geometry"`
	Audit            entity.AestheticAudit       `json:"aesthetic_audit"`
	ScoutFeedback    string                      `json:"scout_feedback"`
	Error            string                      `json:"error,omitempty"`
}

func (r *analyzeResponse) toEntity() *entity.AnalysisResult {
	return &entity.AnalysisResult{
		SuitabilityScore: r.SuitabilityScore,
		Category:         r.Category,
		FaceGeometry:     r.FaceGeometry,
		Audit:            r.Audit,
		ScoutFeedback:    r.ScoutFeedback,
		Error:            r.Error,
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
