package kiosk

import (
	"github.com/pkg/errors"
)

// View is one of the mutually exclusive screens of the kiosk
type View int

const (
	ProductList View = iota
	Payment
	Dispensing
)

var viewNames = map[View]string{
	ProductList: "product-list",
	Payment:     "payment",
	Dispensing:  "dispensing",
}

func (v View) String() string {
	if name, ok := viewNames[v]; ok {
		return name
	}
	return "unknown"
}

// MarshalText writes the view name, so Screens serialize as {"view":"payment"}
func (v View) MarshalText() ([]byte, error) {
	if _, ok := viewNames[v]; !ok {
		return nil, errors.Errorf("unknown view %d", int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText parses a view name
func (v *View) UnmarshalText(text []byte) error {
	parsed, err := ParseView(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseView maps a view name back to its View
func ParseView(name string) (View, error) {
	for v, n := range viewNames {
		if n == name {
			return v, nil
		}
	}
	return 0, errors.Errorf("unknown view %q", name)
}

// Region is a fixed area of the kiosk page
type Region string

const (
	RegionProductList Region = "product-list-view"
	RegionAddProduct  Region = "add-product-form"
	RegionPayment     Region = "payment-section"
	RegionDispensing  Region = "dispensing-section"
)

// Regions lists every region the controller tracks
var Regions = []Region{
	RegionProductList,
	RegionAddProduct,
	RegionPayment,
	RegionDispensing,
}

// viewRegions maps each view to the regions visible while it is shown.
// Regions not listed for a view are hidden.
var viewRegions = map[View][]Region{
	ProductList: {RegionProductList, RegionAddProduct},
	Payment:     {RegionPayment},
	Dispensing:  {RegionDispensing},
}

// RegionsOf returns the regions visible in view
func RegionsOf(view View) ([]Region, bool) {
	regions, ok := viewRegions[view]
	if !ok {
		return nil, false
	}
	out := make([]Region, len(regions))
	copy(out, regions)
	return out, true
}
