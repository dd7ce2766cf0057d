package enums

import "fmt"

// FinancialScheme discriminates which computation produced a delivery's stored
// financial fields. Legacy records predate the truck/management split and carry
// only a flat commission; both schemes coexist in the table with no backfill.
type FinancialScheme string

const (
	// FinancialSchemeLegacyCommission: commission_amount and net_amount are
	// authoritative (net = gross - gross*rate/100).
	FinancialSchemeLegacyCommission FinancialScheme = "legacy_commission"
	// FinancialSchemeGraniteSplit: the three-way split fields are
	// authoritative (management_share, partner_share, agent_commission,
	// management_net).
	FinancialSchemeGraniteSplit FinancialScheme = "granite_split"
)

var validFinancialSchemes = []FinancialScheme{
	FinancialSchemeLegacyCommission,
	FinancialSchemeGraniteSplit,
}

// IsValid reports whether the value matches the canonical scheme enum.
func (s FinancialScheme) IsValid() bool {
	for _, candidate := range validFinancialSchemes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseFinancialScheme converts the raw string to FinancialScheme.
func ParseFinancialScheme(value string) (FinancialScheme, error) {
	for _, candidate := range validFinancialSchemes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid financial scheme %q", value)
}
