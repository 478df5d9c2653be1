package model

// ImpactKind names one dimension of disruption.
type ImpactKind int

// Impact kinds. Magnitudes are percentages except DemandReduction and
// PriceVolatility, which are relative indices on the same scale.
const (
	ImpactDelayIncrease ImpactKind = iota
	ImpactCostIncrease
	ImpactCapacityReduction
	ImpactRouteDisruption
	ImpactPortClosure
	ImpactSpeedReduction
	ImpactDemandReduction
	ImpactPriceVolatility
	ImpactInfrastructureDamage
	ImpactCommunicationDisruption
	ImpactNavigationDisruption
)

var impactKindNames = []string{
	"delay_increase", "cost_increase", "capacity_reduction", "route_disruption",
	"port_closure", "speed_reduction", "demand_reduction", "price_volatility",
	"infrastructure_damage", "communication_disruption", "navigation_disruption",
}

// String returns the snake_case kind name.
func (k ImpactKind) String() string {
	if k.Valid() {
		return impactKindNames[k]
	}
	return "unknown"
}

// Valid reports whether k is a known impact kind.
func (k ImpactKind) Valid() bool {
	return k >= ImpactDelayIncrease && k <= ImpactNavigationDisruption
}

// Capped reports whether magnitudes of this kind are bounded at 100.
func (k ImpactKind) Capped() bool {
	return k == ImpactPortClosure || k == ImpactCapacityReduction
}

// MarshalText implements encoding.TextMarshaler.
func (k ImpactKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ImpactKind) UnmarshalText(b []byte) error {
	return unmarshalName(impactKindNames, "impact kind", b, k)
}

// Impact is one disruption dimension with its magnitude.
type Impact struct {
	Kind      ImpactKind `json:"kind"`
	Magnitude float64    `json:"magnitude"`
}
