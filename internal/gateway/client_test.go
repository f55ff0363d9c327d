package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		keyID, keySecret, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_id", keyID)
		assert.Equal(t, "key_secret", keySecret)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(6), body["amount"])
		assert.Equal(t, "INR", body["currency"])
		assert.Equal(t, "fine-7", body["receipt"])

		json.NewEncoder(w).Encode(Order{
			ID: "order_abc", Amount: 6, Currency: "INR", Receipt: "fine-7", Status: "created",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_id", "key_secret")

	order, err := client.CreateOrder(context.Background(), 6, "fine-7")

	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(6), order.Amount)
}

func TestCreateOrder_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_id", "bad_secret")

	_, err := client.CreateOrder(context.Background(), 6, "fine-7")

	assert.Error(t, err)
}

func TestCreateOrder_EmptyOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Order{Status: "created"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key_id", "key_secret")

	_, err := client.CreateOrder(context.Background(), 6, "fine-7")

	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	client := NewClient("http://gateway", "key_id", "key_secret")
	sig := SignPayload("order_abc", "pay_xyz", "key_secret")

	assert.True(t, client.VerifySignature("order_abc", "pay_xyz", sig))
}

func TestVerifySignature_Tampered(t *testing.T) {
	client := NewClient("http://gateway", "key_id", "key_secret")
	sig := SignPayload("order_abc", "pay_xyz", "key_secret")

	assert.False(t, client.VerifySignature("order_abc", "pay_other", sig))
	assert.False(t, client.VerifySignature("order_other", "pay_xyz", sig))
	assert.False(t, client.VerifySignature("order_abc", "pay_xyz", sig+"00"))
	assert.False(t, client.VerifySignature("order_abc", "pay_xyz", ""))
}

func TestSignPayload_DependsOnSecret(t *testing.T) {
	a := SignPayload("order_abc", "pay_xyz", "secret_a")
	b := SignPayload("order_abc", "pay_xyz", "secret_b")

	assert.NotEqual(t, a, b)
}
