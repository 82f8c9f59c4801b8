package email

import (
	"context"
	"fmt"
	"html"

	"github.com/swarupnama50/cf-py/internal/mailer"
	"github.com/swarupnama50/cf-py/internal/modules/orders"
)

// ReceiptService sends a payment receipt once an order reaches completed.
// Failures are the caller's to log; a receipt never blocks reconciliation.
type ReceiptService struct {
	mailer   mailer.Service
	from     string
	fromName string
}

func NewReceiptService(m mailer.Service, from, fromName string) *ReceiptService {
	return &ReceiptService{mailer: m, from: from, fromName: fromName}
}

func (s *ReceiptService) PaymentCompleted(ctx context.Context, o orders.Order) error {
	if o.CustomerEmail == "" {
		return nil
	}

	amount := fmt.Sprintf("%s %.2f", o.Currency, float64(o.AmountPaise)/100)
	subject := "Payment received for order " + o.OrderID

	textBody := "Hello " + o.CustomerName + ",\n\n" +
		"We received your payment for order " + o.OrderID + ".\n" +
		"Amount: " + amount + "\n\nThank you!"

	htmlBody := `
<html>
  <body style="font-family: sans-serif;">
    <h2>Payment received</h2>
    <p>Hello ` + html.EscapeString(o.CustomerName) + `,</p>
    <p>We received your payment for order <strong>` + html.EscapeString(o.OrderID) + `</strong>.</p>
    <p><strong>Amount:</strong> ` + amount + `</p>
    <p>Thank you!</p>
  </body>
</html>
`

	return s.mailer.Send(ctx, mailer.Email{
		From:     s.from,
		FromName: s.fromName,
		To:       []string{o.CustomerEmail},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	})
}
