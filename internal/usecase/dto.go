package usecase

// SubmitLeadInput is the contact form payload.
type SubmitLeadInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
	Gender    string `json:"gender"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Postcode  string `json:"postcode"`
}

// SubmitLeadOutput acknowledges a created lead.
type SubmitLeadOutput struct {
	ID       string `json:"id"`
	LeadCode string `json:"lead_code"`
	ImageURL string `json:"image_url,omitempty"`
	Msg      string `json:"msg"`
}
