package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/swarupnama50/cf-py/internal/modules/payments"
)

type webhookPayload struct {
	Type      string `json:"type"`
	EventTime string `json:"event_time"`
	Data      struct {
		Order struct {
			OrderID     string `json:"order_id"`
			OrderStatus string `json:"order_status"`
		} `json:"order"`
		Payment struct {
			CfPaymentID   int64  `json:"cf_payment_id"`
			PaymentStatus string `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}

func main() {
	url := flag.String("url", "http://localhost:8080/webhook", "Webhook URL")
	secret := flag.String("secret", os.Getenv("CASHFREE_SECRET_KEY"), "Webhook secret")
	orderID := flag.String("order-id", "", "Order ID (required)")
	status := flag.String("status", "SUCCESS", "Payment status (SUCCESS, CANCELLED, EXPIRED, ...)")
	paymentID := flag.Int64("payment-id", time.Now().UnixNano(), "cf_payment_id (dedupe key)")
	dryRun := flag.Bool("dry-run", false, "Only print signature header, don't send")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintf(os.Stderr, "Error: secret not provided and CASHFREE_SECRET_KEY not set\n")
		os.Exit(1)
	}
	if *orderID == "" {
		fmt.Fprintf(os.Stderr, "Error: -order-id is required\n")
		os.Exit(1)
	}

	payload := webhookPayload{
		Type:      "PAYMENT_SUCCESS_WEBHOOK",
		EventTime: time.Now().Format(time.RFC3339),
	}
	payload.Data.Order.OrderID = *orderID
	payload.Data.Payment.CfPaymentID = *paymentID
	payload.Data.Payment.PaymentStatus = *status

	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
		os.Exit(1)
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := payments.ComputeWebhookSignature(*secret, ts, body)

	fmt.Printf("%s: %s\n", payments.HeaderWebhookTimestamp, ts)
	fmt.Printf("%s: %s\n", payments.HeaderWebhookSignature, sig)
	fmt.Printf("Body: %s\n", string(body))

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest("POST", *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(payments.HeaderWebhookTimestamp, ts)
	req.Header.Set(payments.HeaderWebhookSignature, sig)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", string(respBody))

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
