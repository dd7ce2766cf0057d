package types

// StringList is a JSON-serialized list column (sand types, payment methods).
type StringList []string

// PriceMap maps a sand type label to its unit price per m³.
type PriceMap map[string]float64
