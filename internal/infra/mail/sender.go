package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/agencyscout/scout-funnel/internal/entity"
)

const leadTemplate = `
<h2>New scouting lead</h2>
<p><b>{{.FirstName}} {{.LastName}}</b> ({{.Age}}) scored <b>{{.Score}}/100</b> — {{.Category}}.</p>
<ul>
  <li>Email: {{.Email}}</li>
  <li>Phone: {{.Phone}}</li>
  {{if .ImageURL}}<li>Portrait: <a href="{{.ImageURL}}">{{.ImageURL}}</a></li>{{end}}
</ul>
<p>Campaign tag: {{.LeadCode}}</p>
`

func NewEmailSender(host string, port int, user, password, salesTo string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     "no-reply@agencyscout.ai",
		SalesTo:  salesTo,
	}
}

// NotifyNewLead mails the sales inbox about a freshly captured lead.
// Called asynchronously after persistence; failures are logged by the caller.
func (s *EmailSender) NotifyNewLead(lead *entity.Lead) error {
	data := LeadEmailData{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Age:       lead.Age,
		Score:     lead.Score,
		Category:  lead.Category,
		ImageURL:  lead.ImageURL,
		LeadCode:  lead.LeadCode,
	}

	t, err := template.New("lead").Parse(leadTemplate)
	if err != nil {
		return fmt.Errorf("parse lead template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("render lead template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.SalesTo)
	m.SetHeader("Subject", fmt.Sprintf("New lead: %s %s (score %d)", lead.FirstName, lead.LastName, lead.Score))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send lead email: %w", err)
	}

	return nil
}
