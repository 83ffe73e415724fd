package vending

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", nil)
}

func TestListProducts(t *testing.T) {
	client := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/productos", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id": 1, "nombre": "Agua", "cantidad_ml": 500, "precio": 1.5},
			{"id": "x-2", "nombre": "Soda", "cantidad_ml": 350, "precio": 2}
		]`)
	})

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, ProductID("1"), products[0].ID)
	assert.Equal(t, "Agua", products[0].Name)
	assert.Equal(t, 500, products[0].VolumeML)
	assert.True(t, decimal.RequireFromString("1.5").Equal(products[0].Price))
	assert.Equal(t, ProductID("x-2"), products[1].ID)
}

func TestListProducts_DispenserFilter(t *testing.T) {
	client := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/productos", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("dispenser_id"))
		_, _ = io.WriteString(w, `[{"id": 9, "nombre": "Agua", "cantidad_ml": 500, "precio": 1}]`)
	})
	client.DispenserID = "3"

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, ProductID("9"), products[0].ID)
}

func TestListProducts_Empty(t *testing.T) {
	client := setup(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})

	products, err := client.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestListProducts_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		client := setup(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.ListProducts(context.Background())

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
		assert.Equal(t, "status_error", Outcome(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		client := setup(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>`)
		})
		_, err := client.ListProducts(context.Background())

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, CallListProducts, te.Call)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := NewClient(srv.URL, nil)

		_, err := client.ListProducts(context.Background())

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "", ErrorMessage(err))
	})
}

func TestCreateProduct(t *testing.T) {
	var body string
	var contentType string
	client := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/productos", r.URL.Path)
		contentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"ok": true}`)
	})

	volume := decimal.NewFromInt(350)
	price := decimal.RequireFromString("1.5")
	err := client.CreateProduct(context.Background(), NewProduct{Name: "Soda", VolumeML: &volume, Price: &price})

	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, `{"nombre":"Soda","cantidad_ml":350,"precio":1.5}`, body)
}

func TestCreateProduct_ServerError(t *testing.T) {
	client := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": "nombre requerido", "detail": null}`)
	})

	err := client.CreateProduct(context.Background(), NewProduct{})

	require.Error(t, err)
	assert.Equal(t, "nombre requerido", ErrorMessage(err))
}

func TestNewProduct_NullNumbers(t *testing.T) {
	data, err := NewProduct{Name: "X"}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"nombre":"X","cantidad_ml":null,"precio":null}`, string(data))
}

func TestGeneratePayment(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := setup(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/generar_qr/7", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			data, _ := io.ReadAll(r.Body)
			assert.Equal(t, `{}`, string(data))
			_, _ = io.WriteString(w, `{"status": "success", "qr_data": "PAYLOAD"}`)
		})

		payload, err := client.GeneratePayment(context.Background(), "7")
		require.NoError(t, err)
		assert.Equal(t, "PAYLOAD", payload)
	})

	t.Run("application error", func(t *testing.T) {
		client := setup(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status": "error", "error": "no stock"}`)
		})

		_, err := client.GeneratePayment(context.Background(), "7")

		var ae *AppError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "no stock", ErrorMessage(err))
		assert.Equal(t, "app_error", Outcome(err))
	})

	t.Run("success without payload", func(t *testing.T) {
		client := setup(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status": "success"}`)
		})

		_, err := client.GeneratePayment(context.Background(), "7")

		var ae *AppError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "", ae.Message)
	})
}

func TestOnRequest(t *testing.T) {
	client := setup(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "ok"}`)
	})

	var calls []string
	client.OnRequest = func(call, outcome string, _ time.Duration) {
		calls = append(calls, call+":"+outcome)
	}

	require.NoError(t, client.Health(context.Background()))
	assert.Equal(t, []string{"health:ok"}, calls)
}
