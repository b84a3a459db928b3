package domain

import "testing"

func TestFuelCost(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		traffic  TrafficLevel
		want     float64
	}{
		{"high traffic surcharge", 10, TrafficHigh, 70},
		{"medium has no surcharge", 10, TrafficMedium, 50},
		{"low", 10, TrafficLow, 50},
		{"zero distance", 0, TrafficHigh, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FuelCost(tt.distance, tt.traffic)
			if got != tt.want {
				t.Fatalf("FuelCost(%v, %q) = %v, want %v", tt.distance, tt.traffic, got, tt.want)
			}
			if again := FuelCost(tt.distance, tt.traffic); again != got {
				t.Fatalf("FuelCost not stable: %v then %v", got, again)
			}
		})
	}
}

func TestIsLate(t *testing.T) {
	if IsLate(120, 110) {
		t.Fatalf("IsLate(120, 110) = true, want false at grace boundary")
	}
	if !IsLate(121, 110) {
		t.Fatalf("IsLate(121, 110) = false, want true")
	}
	if IsLate(60, 60) {
		t.Fatalf("IsLate(60, 60) = true, want false")
	}
}

func TestBonusAndPenalty(t *testing.T) {
	if got := Bonus(1500, false); got != 150 {
		t.Fatalf("Bonus(1500, on time) = %v, want 150", got)
	}
	if got := Bonus(1500, true); got != 0 {
		t.Fatalf("Bonus(1500, late) = %v, want 0", got)
	}
	if got := Bonus(1000, false); got != 0 {
		t.Fatalf("Bonus(1000, on time) = %v, want 0 (threshold is exclusive)", got)
	}
	if got := Penalty(true); got != 50 {
		t.Fatalf("Penalty(late) = %v, want 50", got)
	}
	if got := Penalty(false); got != 0 {
		t.Fatalf("Penalty(on time) = %v, want 0", got)
	}
}

func TestOrderProfit(t *testing.T) {
	if got := OrderProfit(2000, 200, 50, 100); got != 2050 {
		t.Fatalf("OrderProfit = %v, want 2050", got)
	}
	if got := OrderProfit(10, 0, 50, 70); got != -110 {
		t.Fatalf("OrderProfit = %v, want -110 (no floor)", got)
	}
}
