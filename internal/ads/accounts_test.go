package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAdsAPI serves a small account hierarchy:
//
//	1111111111 (manager, directly accessible)
//	├── 2222222222 (also directly accessible)
//	└── 3333333333 (sub-manager)
//	    └── 4444444444
type fakeAdsAPI struct {
	failCustomer map[string]bool
}

func (f *fakeAdsAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/v22/customers:listAccessibleCustomers", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(listAccessibleCustomersResponse{
			ResourceNames: []string{"customers/1111111111", "customers/2222222222"},
		})
	})

	mux.HandleFunc("/v22/customers/", func(w http.ResponseWriter, r *http.Request) {
		// Path: /v22/customers/{id}/googleAds:search
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v22/customers/"), "/")
		customerID := parts[0]

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if strings.Contains(req.Query, "FROM customer_client") {
			json.NewEncoder(w).Encode(searchResponse{Results: f.clientRows(customerID)})
			return
		}

		if f.failCustomer[customerID] {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"error":{"code":500,"message":"internal error","status":"INTERNAL"}}`)
			return
		}
		json.NewEncoder(w).Encode(searchResponse{Results: f.customerRows(customerID)})
	})

	return mux
}

func (f *fakeAdsAPI) customerRows(id string) []map[string]any {
	manager := id == "1111111111"
	return []map[string]any{{
		"customer": map[string]any{
			"id":              id,
			"descriptiveName": "Account " + id[:1],
			"currencyCode":    "EUR",
			"timeZone":        "Europe/Berlin",
			"manager":         manager,
		},
	}}
}

func (f *fakeAdsAPI) clientRows(managerID string) []map[string]any {
	row := func(id string, manager bool) map[string]any {
		return map[string]any{
			"customerClient": map[string]any{
				"id":              id,
				"descriptiveName": "Account " + id[:1],
				"manager":         manager,
				"level":           "1",
			},
		}
	}

	switch managerID {
	case "1111111111":
		return []map[string]any{row("2222222222", false), row("3333333333", true)}
	case "3333333333":
		return []map[string]any{row("4444444444", false)}
	default:
		return nil
	}
}

func TestListAccounts_HierarchyAndDedup(t *testing.T) {
	api := &fakeAdsAPI{}
	c := newTestClient(t, api.handler(t))

	accounts, err := c.ListAccounts(context.Background(), discardLogger())
	require.NoError(t, err)

	byID := make(map[string]Account)
	for _, a := range accounts {
		assert.False(t, byID[a.CustomerID].CustomerID == a.CustomerID, "account %s returned twice", a.CustomerID)
		byID[a.CustomerID] = a
	}
	require.Len(t, accounts, 4)

	assert.True(t, byID["1111111111"].Manager)
	assert.Equal(t, int64(0), byID["1111111111"].Level)

	// 2222222222 is directly accessible, so the enriched entry wins over
	// the customer_client row under the manager.
	assert.Equal(t, "", byID["2222222222"].ManagerID)
	assert.Equal(t, "EUR", byID["2222222222"].CurrencyCode)

	assert.Equal(t, "1111111111", byID["3333333333"].ManagerID)
	assert.Equal(t, int64(1), byID["3333333333"].Level)
	assert.True(t, byID["3333333333"].Manager)

	assert.Equal(t, "3333333333", byID["4444444444"].ManagerID)
	assert.Equal(t, int64(2), byID["4444444444"].Level)
}

func TestListAccounts_EnrichmentFailureFallsBackToBareID(t *testing.T) {
	api := &fakeAdsAPI{failCustomer: map[string]bool{"2222222222": true}}
	c := newTestClient(t, api.handler(t))

	accounts, err := c.ListAccounts(context.Background(), discardLogger())
	require.NoError(t, err)

	var bare *Account
	for i := range accounts {
		if accounts[i].CustomerID == "2222222222" {
			bare = &accounts[i]
		}
	}
	require.NotNil(t, bare, "failed account should still be listed")
	assert.Equal(t, Account{CustomerID: "2222222222", ResourceName: "customers/2222222222"}, *bare)
}
