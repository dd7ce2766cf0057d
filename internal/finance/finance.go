// Package finance implements the revenue split and balance arithmetic the
// whole application is built around. Everything here is a pure function over
// float64 inputs so services and reports share one source of truth.
package finance

import "math"

const (
	// TruckCapacityM3 is the maximum volume a single truck carries.
	TruckCapacityM3 = 30.0
	// ManagementEntitlementM3 is the volume credited to management per truck.
	ManagementEntitlementM3 = 3.0
	// DefaultAgentRate is the commission percentage applied when a delivery
	// does not carry an explicit rate.
	DefaultAgentRate = 35.0
	// MinDeliveryVolumeM3 is the smallest volume a truck is dispatched for.
	// Enforced by the delivery service at creation time, not by the math here.
	MinDeliveryVolumeM3 = 10.0
)

// Breakdown is the result of splitting one delivery's revenue between the
// partner, management, and the agent.
type Breakdown struct {
	GrossAmount     float64
	ManagementShare float64
	PartnerShare    float64
	AgentCommission float64
	ManagementNet   float64
	TruckCount      int
	OtherFees       float64
}

// ComputeFinances splits a delivery's revenue.
//
// Each truck carries at most 30 m³ and credits management with 3 m³ of the
// load. Fees come out of the management share before the agent commission is
// taken, and the partner share is never reduced below zero.
func ComputeFinances(volume, unitPrice, agentRate, otherFees float64) Breakdown {
	truckCount := int(math.Max(1, math.Ceil(volume/TruckCapacityM3)))
	managementVolume := float64(truckCount) * ManagementEntitlementM3

	grossAmount := volume * unitPrice
	managementShare := managementVolume * unitPrice
	partnerShare := math.Max(0, volume-managementVolume) * unitPrice

	managementRemaining := math.Max(0, managementShare-otherFees)

	agentCommission := managementRemaining * agentRate / 100
	managementNet := managementRemaining - agentCommission

	return Breakdown{
		GrossAmount:     grossAmount,
		ManagementShare: managementShare,
		PartnerShare:    partnerShare,
		AgentCommission: agentCommission,
		ManagementNet:   managementNet,
		TruckCount:      truckCount,
		OtherFees:       otherFees,
	}
}

// LegacyCommission computes the flat commission used by records persisted
// before the split model was introduced.
func LegacyCommission(gross, rate float64) float64 {
	return gross * rate / 100
}

// LegacyNet is the net amount under the flat commission scheme.
func LegacyNet(gross, commission float64) float64 {
	return gross - commission
}
