package remote

import (
	"context"
	"time"

	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

type wasteSummaryDTO struct {
	From      time.Time       `json:"from"`
	To        time.Time       `json:"to"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Entries   int             `json:"entries"`
}

// RemoteWasteLedger implements inventory.WasteLedger against the shop backend.
type RemoteWasteLedger struct {
	client *Client
}

// NewRemoteWasteLedger creates a ledger backed by client
func NewRemoteWasteLedger(client *Client) *RemoteWasteLedger {
	return &RemoteWasteLedger{client: client}
}

// GetWasteCostForPeriod asks the backend for the waste cost in [period.Start, period.End)
func (l *RemoteWasteLedger) GetWasteCostForPeriod(ctx context.Context, period inventory.Period) (decimal.Decimal, error) {
	var body envelope[wasteSummaryDTO]
	var apiErr envelope[any]
	resp, err := l.client.http.R().
		SetContext(ctx).
		SetQueryParam("from", period.Start.UTC().Format(time.RFC3339)).
		SetQueryParam("to", period.End.UTC().Format(time.RFC3339)).
		SetResult(&body).
		SetError(&apiErr).
		Get("/waste/summary")
	if err := l.client.check("get waste summary", resp, err, &apiErr); err != nil {
		return decimal.Zero, err
	}
	return valueobject.RoundMoney(body.Data.TotalCost), nil
}

var _ inventory.WasteLedger = (*RemoteWasteLedger)(nil)
