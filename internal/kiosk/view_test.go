package kiosk

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseView(t *testing.T) {
	for _, v := range []View{ProductList, Payment, Dispensing} {
		parsed, err := ParseView(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, parsed)
	}

	_, err := ParseView("checkout")
	assert.Error(t, err)
}

func TestView_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		View View `json:"view"`
	}{Payment})
	require.NoError(t, err)
	assert.JSONEq(t, `{"view":"payment"}`, string(b))

	_, err = json.Marshal(View(7))
	assert.Error(t, err)
}

func TestRegionsOf_ExclusiveViews(t *testing.T) {
	seen := map[Region]View{}
	for _, v := range []View{ProductList, Payment, Dispensing} {
		regions, ok := RegionsOf(v)
		require.True(t, ok)
		for _, r := range regions {
			other, dup := seen[r]
			assert.False(t, dup, "region %s shown by %s and %s", r, v, other)
			seen[r] = v
		}
	}
	assert.Len(t, seen, len(Regions))

	_, ok := RegionsOf(View(-1))
	assert.False(t, ok)
}
