package vending

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ProductID is the backend's opaque product key. The backend sends it as a JSON
// number; strings are accepted too.
type ProductID string

// UnmarshalJSON accepts both `7` and `"7"`
func (id *ProductID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrapf(err, "invalid product id %s", data)
	}
	*id = ProductID(n.String())
	return nil
}

// Product is a dispensable item as listed by the backend
type Product struct {
	ID       ProductID       `json:"id"`
	Name     string          `json:"nombre"`
	VolumeML int             `json:"cantidad_ml"`
	Price    decimal.Decimal `json:"precio"`
}

// NewProduct is the body of a create-product request. A nil VolumeML or Price is
// sent as JSON null, which is what a browser form sends for an unparsable number.
// VolumeML holds a whole number of any size.
type NewProduct struct {
	Name     string
	VolumeML *decimal.Decimal
	Price    *decimal.Decimal
}

// MarshalJSON writes {"nombre","cantidad_ml","precio"} with volume and price as
// bare JSON numbers.
func (p NewProduct) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name     string          `json:"nombre"`
		VolumeML json.RawMessage `json:"cantidad_ml"`
		Price    json.RawMessage `json:"precio"`
	}{
		Name:     p.Name,
		VolumeML: rawNumber(p.VolumeML),
		Price:    rawNumber(p.Price),
	})
}

func rawNumber(d *decimal.Decimal) json.RawMessage {
	if d == nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(d.String())
}

type paymentResponse struct {
	Status string `json:"status"`
	QRData string `json:"qr_data"`
	Error  string `json:"error"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// errorBody is the backend's error envelope: {"error": msg, "detail": ...}
type errorBody struct {
	Error string `json:"error"`
}
