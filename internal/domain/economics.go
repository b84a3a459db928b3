package domain

const (
	FuelBaseRatePerKm    = 5.0
	FuelHighTrafficExtra = 2.0
	LatePenalty          = 50.0
	GraceWindowMin       = 10.0
	BonusValueThreshold  = 1000.0
	BonusRate            = 0.10
)

// FuelCost charges 5 per km, plus 2 per km on High traffic routes.
func FuelCost(distanceKm float64, traffic TrafficLevel) float64 {
	surcharge := 0.0
	if traffic == TrafficHigh {
		surcharge = FuelHighTrafficExtra
	}
	return distanceKm * (FuelBaseRatePerKm + surcharge)
}

// IsLate reports whether a delivery overran its base time by more than the grace window.
// Arriving exactly at base+10 is on time.
func IsLate(actualTimeMin, baseTimeMin float64) bool {
	return actualTimeMin > baseTimeMin+GraceWindowMin
}

// Bonus pays 10% of high-value orders delivered on time.
func Bonus(valueRs float64, late bool) float64 {
	if valueRs > BonusValueThreshold && !late {
		return BonusRate * valueRs
	}
	return 0
}

func Penalty(late bool) float64 {
	if late {
		return LatePenalty
	}
	return 0
}

// OrderProfit is not floored; it may be negative.
func OrderProfit(valueRs, bonus, penalty, fuelCost float64) float64 {
	return valueRs + bonus - penalty - fuelCost
}
