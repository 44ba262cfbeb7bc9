package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/agencyscout/scout-funnel/internal/entity"
)

// LeadCreatedPayload goes to the scouting-partner sync consumers. It
// carries the denormalized fields they need without the full snapshot.
type LeadCreatedPayload struct {
	LeadID    string    `json:"lead_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       int       `json:"age"`
	Gender    string    `json:"gender"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Postcode  string    `json:"postcode"`
	Score     int       `json:"score"`
	Category  string    `json:"category"`
	ImageURL  string    `json:"image_url,omitempty"`
	LeadCode  string    `json:"lead_code"`
	CreatedAt time.Time `json:"created_at"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Conn: conn, Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadCreated(ctx context.Context, lead *entity.Lead) error {
	payload := LeadCreatedPayload{
		LeadID:    lead.ID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Age:       lead.Age,
		Gender:    lead.Gender,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Postcode:  lead.Postcode,
		Score:     lead.Score,
		Category:  lead.Category,
		ImageURL:  lead.ImageURL,
		LeadCode:  lead.LeadCode,
		CreatedAt: lead.CreatedAt,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal lead payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish lead.created: %w", err)
	}

	return nil
}
