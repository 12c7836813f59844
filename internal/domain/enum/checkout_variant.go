package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// CheckoutVariant identifies one of the two checkout screens
type CheckoutVariant int

const (
	CheckoutDrinks  CheckoutVariant = 0
	CheckoutSession CheckoutVariant = 1
)

var checkoutVariantNames = [...]string{"drinks", "session"}

func (v CheckoutVariant) String() string {
	if v < 0 || int(v) >= len(checkoutVariantNames) {
		return "unknown"
	}
	return checkoutVariantNames[v]
}

// ParseCheckoutVariant converts a path segment such as "drinks" into a variant
func ParseCheckoutVariant(s string) (CheckoutVariant, bool) {
	for i, name := range checkoutVariantNames {
		if name == s {
			return CheckoutVariant(i), true
		}
	}
	return 0, false
}

// CheckoutVariants lists every known variant
func CheckoutVariants() []CheckoutVariant {
	return []CheckoutVariant{CheckoutDrinks, CheckoutSession}
}

func (v CheckoutVariant) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *CheckoutVariant) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*v = CheckoutVariant(i)
		return nil
	}
	parsed, ok := ParseCheckoutVariant(str)
	if !ok {
		return fmt.Errorf("enum: unknown checkout variant %q", str)
	}
	*v = parsed
	return nil
}

func (v CheckoutVariant) Value() (driver.Value, error) {
	return v.String(), nil
}

func (v *CheckoutVariant) Scan(value interface{}) error {
	switch s := value.(type) {
	case nil:
		*v = CheckoutDrinks
	case string:
		*v, _ = ParseCheckoutVariant(s)
	case []byte:
		*v, _ = ParseCheckoutVariant(string(s))
	}
	return nil
}
