package enums

import "fmt"

// AddonKind groups add-ons for presentation and filtering.
type AddonKind string

const (
	AddonKindTopping    AddonKind = "topping"
	AddonKindDecoration AddonKind = "decoration"
	AddonKindCandle     AddonKind = "candle"
	AddonKindAccessory  AddonKind = "accessory"
)

var validAddonKinds = []AddonKind{
	AddonKindTopping,
	AddonKindDecoration,
	AddonKindCandle,
	AddonKindAccessory,
}

// String implements fmt.Stringer.
func (a AddonKind) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AddonKind.
func (a AddonKind) IsValid() bool {
	for _, candidate := range validAddonKinds {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAddonKind converts raw input into an AddonKind.
func ParseAddonKind(value string) (AddonKind, error) {
	for _, candidate := range validAddonKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid addon kind %q", value)
}
