package dto

type DriverRequest struct {
	Name          string    `json:"name"`
	ShiftHours    float64   `json:"shift_hours"`
	PastWeekHours []float64 `json:"past_week_hours"`
}

type DriverResponse struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	ShiftHours        float64   `json:"shift_hours"`
	PastWeekHours     []float64 `json:"past_week_hours"`
	FatigueMultiplier float64   `json:"fatigue_multiplier"`
}

type ListDriversResponse struct {
	Drivers []DriverResponse `json:"drivers"`
}
