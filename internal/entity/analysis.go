package entity

// FaceGeometry carries the structural attributes the scoring service
// extracts from a portrait.
type FaceGeometry struct {
	PrimaryShape      string `json:"primary_shape"`
	JawlineDefinition string `json:"jawline_definition"`
	StructuralNote    string `json:"structural_note"`
}

// MarketCategorization is the market segment the scoring service assigns.
type MarketCategorization struct {
	Primary   string `json:"primary"`
	Rationale string `json:"rationale,omitempty"`
}

// AestheticAudit describes the technical quality of the submitted photo.
type AestheticAudit struct {
	LightingQuality       string `json:"lighting_quality"`
	ProfessionalReadiness string `json:"professional_readiness"`
	TechnicalFlaw         string `json:"technical_flaw"`
}

// AnalysisResult is the outcome of one scoring call. Immutable once
// received; the funnel stores it verbatim and the lead snapshot keeps it
// verbatim too.
//
// Synthetic results (fallback when the remote service is unreachable) are
// always fully populated. Real results may arrive with missing fields and
// consumers must render an "unknown" marker instead of failing.
type AnalysisResult struct {
	SuitabilityScore int                  `json:"suitability_score"`
	Category         MarketCategorization `json:"market_categorization"`
	FaceGeometry     FaceGeometry         `json:"face_geometry"`
	Audit            AestheticAudit       `json:"aesthetic_audit"`
	ScoutFeedback    string               `json:"scout_feedback"`

	// Error is the service's explicit failure marker (e.g. the model ran
	// but could not produce an audit). Empty on success.
	Error string `json:"error,omitempty"`

	// Synthetic marks a locally generated placeholder. Never shown to the
	// end user; kept for observability and tests.
	Synthetic bool `json:"is_synthetic,omitempty"`
}

// Failed reports an outright analysis failure: the service flagged an
// error and produced no usable geometry. Distinct from Declined.
func (a *AnalysisResult) Failed() bool {
	return a.Error != "" && a.FaceGeometry.PrimaryShape == ""
}

// Declined reports that the service ran but refused to score the photo
// (no clear face). The funnel routes this to the retry-only view.
func (a *AnalysisResult) Declined() bool {
	return !a.Failed() && a.SuitabilityScore == 0
}

// Qualifies applies the product qualification threshold.
func (a *AnalysisResult) Qualifies(threshold int) bool {
	return !a.Failed() && a.SuitabilityScore >= threshold
}

// orUnknown backs the display helpers below: real results may omit any
// field and must render a visible marker rather than an empty cell.
func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// DisplayCategory is the category label safe for rendering.
func (a *AnalysisResult) DisplayCategory() string { return orUnknown(a.Category.Primary) }

// DisplayShape is the face shape label safe for rendering.
func (a *AnalysisResult) DisplayShape() string { return orUnknown(a.FaceGeometry.PrimaryShape) }

// DisplayJawline is the jawline label safe for rendering.
func (a *AnalysisResult) DisplayJawline() string { return orUnknown(a.FaceGeometry.JawlineDefinition) }
