package ads

import (
	"context"
	"encoding/json"
	"fmt"

	"giga/internal/config"
	"giga/internal/logger"
)

type searchBody struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

// Search runs a GAQL query against customerID, following pagination, and
// returns the raw result rows. An empty customerID uses the client's
// account.
func (c *Client) Search(ctx context.Context, customerID, query string) ([]json.RawMessage, error) {
	customerID = config.NormalizeCustomerID(customerID)
	if customerID == "" {
		customerID = c.CustomerID()
	}
	if customerID == "" {
		return nil, ErrMissingCustomerID
	}

	service := fmt.Sprintf("customers/%s/googleAds:search", customerID)
	body := searchBody{Query: query}
	var rows []json.RawMessage
	for {
		var resp searchResponse
		if err := c.post(ctx, service, body, &resp); err != nil {
			return nil, err
		}
		rows = append(rows, resp.Results...)
		if resp.NextPageToken == "" {
			break
		}
		body.PageToken = resp.NextPageToken
	}
	logger.Debug("GAQL query finished", "customer_id", customerID, "rows", len(rows))
	return rows, nil
}

// Query runs a GAQL query and decodes every row into T.
func Query[T any](ctx context.Context, c *Client, customerID, query string) ([]T, error) {
	rows, err := c.Search(ctx, customerID, query)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var v T
		if err := json.Unmarshal(row, &v); err != nil {
			return nil, fmt.Errorf("failed to decode GAQL row %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
