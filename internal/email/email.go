package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/confbooking/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	switch event.Type {
	case "offer_sent":
		fmt.Printf("notify user %s: a seat for %s is yours until %s\n", event.UserID, event.ConferenceName, event.OfferExpiresAt)
	default:
		fmt.Printf("notify user %s about %s for conference %s\n", event.UserID, event.Type, event.ConferenceName)
	}
	return nil
}
