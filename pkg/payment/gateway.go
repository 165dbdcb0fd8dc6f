package payment

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"fleetbook/pkg/client"
	"fleetbook/pkg/logger"
)

// Provider-side limits on order notes. Booking parameters round-trip
// through notes in the deferred-creation design, so initiation must stay
// inside this envelope.
const (
	MaxNotes       = 15
	MaxNoteValue   = 256
	refundSpeedOpt = "normal"
)

type Order struct {
	ID       string            `json:"id"`
	Amount   float64           `json:"-"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
	Status   string            `json:"status"`
}

type Refund struct {
	ID        string  `json:"id"`
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"-"`
	Status    string  `json:"status"`
}

type CreateOrderInput struct {
	Amount   float64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Gateway is the payment-provider surface the booking workflow consumes.
type Gateway interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
	Refund(ctx context.Context, paymentID string, amount float64, notes map[string]string) (*Refund, error)
}

type httpGateway struct {
	http    *client.HttpClient
	log     *logger.Logger
	timeout time.Duration
}

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
	Log       *logger.Logger
}

func NewHTTPGateway(cfg Config) Gateway {
	httpClient := client.NewHttpClient(cfg.BaseURL, cfg.Timeout).
		WithBasicAuth(cfg.KeyID, cfg.KeySecret)
	return &httpGateway{
		http:    httpClient,
		log:     cfg.Log,
		timeout: cfg.Timeout,
	}
}

type orderPayload struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
	Status   string            `json:"status"`
}

type refundPayload struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

func (g *httpGateway) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	if err := validateNotes(in.Notes); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body := map[string]any{
		"amount":   toMinorUnits(in.Amount),
		"currency": in.Currency,
		"receipt":  in.Receipt,
		"notes":    in.Notes,
	}

	resp, err := g.http.POST(ctx, "/orders", body)
	if err != nil {
		return nil, fmt.Errorf("create order request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("create order rejected with status %d", resp.StatusCode)
	}

	var payload orderPayload
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	g.log.Info("Payment order opened",
		"order_id", payload.ID,
		"receipt", payload.Receipt,
		"amount", payload.Amount,
		"currency", payload.Currency,
	)
	return payload.toOrder(), nil
}

func (g *httpGateway) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.http.GET(ctx, "/orders/"+orderID)
	if err != nil {
		return nil, fmt.Errorf("fetch order request failed: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrOrderNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch order rejected with status %d", resp.StatusCode)
	}

	var payload orderPayload
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	return payload.toOrder(), nil
}

func (g *httpGateway) Refund(ctx context.Context, paymentID string, amount float64, notes map[string]string) (*Refund, error) {
	if err := validateNotes(notes); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body := map[string]any{
		"amount": toMinorUnits(amount),
		"speed":  refundSpeedOpt,
		"notes":  notes,
	}

	resp, err := g.http.POST(ctx, "/payments/"+paymentID+"/refund", body)
	if err != nil {
		return nil, fmt.Errorf("refund request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("refund rejected with status %d", resp.StatusCode)
	}

	var payload refundPayload
	if err := resp.DecodeJSON(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode refund response: %w", err)
	}

	g.log.Info("Refund issued",
		"refund_id", payload.ID,
		"payment_id", payload.PaymentID,
		"amount", payload.Amount,
	)
	return &Refund{
		ID:        payload.ID,
		PaymentID: payload.PaymentID,
		Amount:    fromMinorUnits(payload.Amount),
		Status:    payload.Status,
	}, nil
}

func (p *orderPayload) toOrder() *Order {
	return &Order{
		ID:       p.ID,
		Amount:   fromMinorUnits(p.Amount),
		Currency: p.Currency,
		Receipt:  p.Receipt,
		Notes:    p.Notes,
		Status:   p.Status,
	}
}

func validateNotes(notes map[string]string) error {
	if len(notes) > MaxNotes {
		return fmt.Errorf("%w: %d notes exceeds limit of %d", ErrNotesTooLarge, len(notes), MaxNotes)
	}
	for key, value := range notes {
		if len(value) > MaxNoteValue {
			return fmt.Errorf("%w: note %q is %d chars, limit %d", ErrNotesTooLarge, key, len(value), MaxNoteValue)
		}
	}
	return nil
}

// The provider accounts in minor currency units (paise, cents).
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}
