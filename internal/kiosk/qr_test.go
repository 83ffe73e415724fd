package kiosk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQRRenderer_ImageURL(t *testing.T) {
	r := QRRenderer{BaseURL: "https://api.qrserver.com/v1/create-qr-code/", Size: "200x200"}

	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=PAYLOAD",
		r.ImageURL("PAYLOAD"))
	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=a%20b%26c%3Dd%2Fe",
		r.ImageURL("a b&c=d/e"))
}

func TestQRRenderer_ImageURL_ComponentEncoding(t *testing.T) {
	r := QRRenderer{BaseURL: "https://api.qrserver.com/v1/create-qr-code/", Size: "200x200"}

	assert.Equal(t,
		"https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=it's%20(a)*b!~-_.%2B%25",
		r.ImageURL("it's (a)*b!~-_.+%"))
}

func TestQRRenderer_Defaults(t *testing.T) {
	r := QRRenderer{BaseURL: "http://qr.local/render?fmt=png"}

	assert.Equal(t, "http://qr.local/render?fmt=png&size=200x200&data=x", r.ImageURL("x"))
}
