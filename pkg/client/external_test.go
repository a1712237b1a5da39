package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohit-R-04/FarmToMarket/pkg/client"
)

func TestRecordSaleFromOutsideThePackage(t *testing.T) {
	productID := uuid.New()
	var got client.SaleRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/products/"+productID.String()+"/sales", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"id":       productID,
				"quantity": 60,
				"status":   "PARTIALLY_SOLD",
				"tags":     []string{"organic"},
			},
		})
	}))
	defer srv.Close()

	api := client.New(srv.URL+"/api", "tok")
	product, err := api.RecordSale(context.Background(), productID, client.SaleRequest{Quantity: 40, Reason: "market day"})
	require.NoError(t, err)

	assert.Equal(t, 40.0, got.Quantity)
	assert.Equal(t, "market day", got.Reason)
	assert.Equal(t, productID, product.ID)
	assert.Equal(t, 60.0, product.Quantity)
	assert.Equal(t, "PARTIALLY_SOLD", product.Status)
	assert.Equal(t, []string{"organic"}, product.Tags)
}

func TestRespondToCancellationFromOutsideThePackage(t *testing.T) {
	bookingID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "REJECT", body["action"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"id": bookingID, "status": "PICKED_UP", "cancellation_status": "REJECTED"},
		})
	}))
	defer srv.Close()

	booking, err := client.New(srv.URL, "tok").RespondToCancellation(context.Background(), bookingID, client.CancellationReject)
	require.NoError(t, err)
	assert.Equal(t, "REJECTED", booking.CancellationStatus)

	n := client.Notification{Type: client.NotificationCancellationRequest, Status: client.NotificationActionRequired}
	assert.True(t, n.NeedsAction())
	assert.True(t, n.IsUnread())
}
