package kiosk

import (
	"fmt"

	"github.com/dispenagua/kiosk/internal/vending"
)

// StatusKind tells the page how to style a status message
type StatusKind string

const (
	KindInfo    StatusKind = "info"
	KindSuccess StatusKind = "success"
	KindError   StatusKind = "error"
)

// Screen is a snapshot of everything the kiosk page shows
type Screen struct {
	Version  uint64            `json:"version"`
	View     View              `json:"view"`
	Regions  map[Region]bool   `json:"regions"`
	List     ListArea          `json:"list"`
	Payment  PaymentArea       `json:"payment"`
	Form     FormArea          `json:"form"`
	Selected vending.ProductID `json:"selected,omitempty"`
}

// ListArea is either a set of cards or a message (empty list, error, loading)
type ListArea struct {
	Cards   []Card     `json:"cards"`
	Message string     `json:"message,omitempty"`
	Kind    StatusKind `json:"kind,omitempty"`
}

// Card is one product as rendered in the list
type Card struct {
	ProductID vending.ProductID `json:"id"`
	Name      string            `json:"name"`
	Volume    string            `json:"volume"`
	Price     string            `json:"price"`
}

// PaymentArea is the payment view: status line and QR image
type PaymentArea struct {
	ProductName string     `json:"product_name,omitempty"`
	Status      string     `json:"status,omitempty"`
	Kind        StatusKind `json:"kind,omitempty"`
	QRImageURL  string     `json:"qr_image_url,omitempty"`
}

// FormArea is the add-product form. Field values echo the last submission and
// are cleared after a successful create.
type FormArea struct {
	Name   string     `json:"name"`
	Volume string     `json:"volume"`
	Price  string     `json:"price"`
	Status string     `json:"status,omitempty"`
	Kind   StatusKind `json:"kind,omitempty"`
}

// NewCard renders a product for the list
func NewCard(p vending.Product) Card {
	return Card{
		ProductID: p.ID,
		Name:      p.Name,
		Volume:    fmt.Sprintf("%d ml", p.VolumeML),
		Price:     p.Price.StringFixed(2),
	}
}

func (s Screen) clone() Screen {
	out := s
	out.Regions = make(map[Region]bool, len(s.Regions))
	for r, visible := range s.Regions {
		out.Regions[r] = visible
	}
	out.List.Cards = make([]Card, len(s.List.Cards))
	copy(out.List.Cards, s.List.Cards)
	return out
}

// Visible reports whether region is shown
func (s Screen) Visible(region Region) bool {
	return s.Regions[region]
}
