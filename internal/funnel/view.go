package funnel

import "github.com/agencyscout/scout-funnel/internal/entity"

// View is the render-safe snapshot handed to clients. The full detail
// (aesthetic audit and scout feedback) stays gated until the visitor has
// completed the contact submission, so it only appears from the complete
// stage.
type View struct {
	Stage  Stage  `json:"stage"`
	Notice string `json:"notice,omitempty"`

	// Processing captions for the progress presentation.
	Messages []string `json:"messages,omitempty"`

	// Preview fields, pre-gate.
	Qualified bool   `json:"qualified,omitempty"`
	Score     int    `json:"score,omitempty"`
	Category  string `json:"category,omitempty"`
	FaceShape string `json:"face_shape,omitempty"`
	Jawline   string `json:"jawline,omitempty"`

	// Gated detail, revealed after submission.
	Audit    *entity.AestheticAudit `json:"aesthetic_audit,omitempty"`
	Feedback string                 `json:"scout_feedback,omitempty"`
	LeadCode string                 `json:"lead_code,omitempty"`
}

// View builds the current gated snapshot.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{Stage: c.stage, Notice: c.notice}

	switch c.stage {
	case StageProcessing, StageAwaitingResult:
		v.Messages = ProcessingMessages
	case StagePreview:
		v.Qualified = c.result.Qualifies(c.cfg.QualifyThreshold)
		v.Score = c.result.SuitabilityScore
		v.Category = c.result.DisplayCategory()
		v.FaceShape = c.result.DisplayShape()
		v.Jawline = c.result.DisplayJawline()
	case StageComplete:
		v.Qualified = true
		v.Score = c.result.SuitabilityScore
		v.Category = c.result.DisplayCategory()
		v.FaceShape = c.result.DisplayShape()
		v.Jawline = c.result.DisplayJawline()
		audit := c.result.Audit
		v.Audit = &audit
		v.Feedback = c.result.ScoutFeedback
		v.LeadCode = entity.LeadCode
	}

	return v
}
