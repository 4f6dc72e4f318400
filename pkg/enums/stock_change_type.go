package enums

import "fmt"

// StockChangeType labels every row in the stock audit trail.
type StockChangeType string

const (
	StockChangeTypeUsage      StockChangeType = "usage"
	StockChangeTypePurchase   StockChangeType = "purchase"
	StockChangeTypeAdjustment StockChangeType = "adjustment"
)

var validStockChangeTypes = []StockChangeType{
	StockChangeTypeUsage,
	StockChangeTypePurchase,
	StockChangeTypeAdjustment,
}

// IsValid reports whether the value matches the canonical stock change enum.
func (s StockChangeType) IsValid() bool {
	for _, candidate := range validStockChangeTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockChangeType converts the raw string to StockChangeType.
func ParseStockChangeType(value string) (StockChangeType, error) {
	for _, candidate := range validStockChangeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock change type %q", value)
}
