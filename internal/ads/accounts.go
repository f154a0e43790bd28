package ads

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ptmyrd/google-ads-mcp-server/internal/logging"
)

const customerQuery = `SELECT customer.id, customer.descriptive_name, ` +
	`customer.currency_code, customer.time_zone, customer.manager FROM customer`

const customerClientQuery = `SELECT customer_client.id, customer_client.descriptive_name, ` +
	`customer_client.currency_code, customer_client.time_zone, customer_client.manager, ` +
	`customer_client.level FROM customer_client WHERE customer_client.level = 1`

// customerRow and customerClientRow mirror the REST JSON of the customer
// and customer_client resources (int64 fields arrive as strings).
type customerRow struct {
	ID              string `json:"id"`
	DescriptiveName string `json:"descriptiveName"`
	CurrencyCode    string `json:"currencyCode"`
	TimeZone        string `json:"timeZone"`
	Manager         bool   `json:"manager"`
}

type customerClientRow struct {
	ID              string `json:"id"`
	DescriptiveName string `json:"descriptiveName"`
	CurrencyCode    string `json:"currencyCode"`
	TimeZone        string `json:"timeZone"`
	Manager         bool   `json:"manager"`
	Level           int64  `json:"level,string"`
}

// ListAccounts returns every account reachable by the authenticated user:
// the directly accessible accounts, enriched with their descriptive data,
// plus the client accounts under any manager, two levels deep. Accounts are
// deduplicated by ID. Enrichment is best effort; an account whose details
// cannot be read still appears as a bare ID.
func (c *Client) ListAccounts(ctx context.Context, logger *slog.Logger) ([]Account, error) {
	ids, err := c.ListAccessibleCustomers(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var accounts []Account

	add := func(a Account) {
		if seen[a.CustomerID] {
			return
		}
		seen[a.CustomerID] = true
		accounts = append(accounts, a)
	}

	// Enrich the directly accessible accounts first so their entries win
	// over any customer_client row found under a manager later.
	var managers []string
	for _, id := range ids {
		account, err := c.describeAccount(ctx, id)
		if err != nil {
			logger.Warn("failed to enrich account, returning bare ID",
				logging.CustomerID(id), logging.Err(err))
			add(Account{CustomerID: id, ResourceName: "customers/" + id})
			continue
		}
		add(*account)

		if account.Manager {
			managers = append(managers, id)
		}
	}

	for _, id := range managers {
		subs, err := c.listClientAccounts(ctx, id)
		if err != nil {
			logger.Warn("failed to list client accounts under manager",
				logging.CustomerID(id), logging.Err(err))
			continue
		}

		for _, sub := range subs {
			add(sub)

			if !sub.Manager {
				continue
			}

			nested, err := c.listClientAccounts(ctx, sub.CustomerID)
			if err != nil {
				logger.Warn("failed to list client accounts under sub-manager",
					logging.CustomerID(sub.CustomerID), logging.Err(err))
				continue
			}
			for i := range nested {
				nested[i].Level = 2
				add(nested[i])
			}
		}
	}

	return accounts, nil
}

// describeAccount reads one customer resource via GAQL.
func (c *Client) describeAccount(ctx context.Context, customerID string) (*Account, error) {
	page, err := c.search(ctx, customerID, customerQuery, 1, "")
	if err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return &Account{CustomerID: customerID, ResourceName: "customers/" + customerID}, nil
	}

	var row customerRow
	if err := decodeRow(page.Results[0], "customer", &row); err != nil {
		return nil, err
	}

	id := customerID
	if row.ID != "" {
		if formatted, err := FormatCustomerID(row.ID); err == nil {
			id = formatted
		}
	}

	return &Account{
		CustomerID:      id,
		ResourceName:    "customers/" + id,
		DescriptiveName: row.DescriptiveName,
		CurrencyCode:    row.CurrencyCode,
		TimeZone:        row.TimeZone,
		Manager:         row.Manager,
	}, nil
}

// listClientAccounts returns the direct (level 1) client accounts under a
// manager.
func (c *Client) listClientAccounts(ctx context.Context, managerID string) ([]Account, error) {
	result, err := c.Search(ctx, managerID, customerClientQuery, 0, 0)
	if err != nil {
		return nil, err
	}

	var accounts []Account
	for _, raw := range result.Results {
		var row customerClientRow
		if err := decodeRow(raw, "customerClient", &row); err != nil {
			return nil, err
		}

		id, err := FormatCustomerID(row.ID)
		if err != nil {
			continue
		}

		accounts = append(accounts, Account{
			CustomerID:      id,
			ResourceName:    "customers/" + id,
			DescriptiveName: row.DescriptiveName,
			CurrencyCode:    row.CurrencyCode,
			TimeZone:        row.TimeZone,
			Manager:         row.Manager,
			ManagerID:       managerID,
			Level:           1,
		})
	}
	return accounts, nil
}

// decodeRow extracts one resource object out of a GAQL result row.
func decodeRow(row map[string]any, key string, out any) error {
	data, err := json.Marshal(row[key])
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
