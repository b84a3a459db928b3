package dto

type RouteRequest struct {
	RouteID      int     `json:"route_id"`
	DistanceKm   float64 `json:"distance_km"`
	TrafficLevel string  `json:"traffic_level"`
	BaseTimeMin  float64 `json:"base_time_min"`
}

type RouteResponse struct {
	RouteID      int     `json:"route_id"`
	DistanceKm   float64 `json:"distance_km"`
	TrafficLevel string  `json:"traffic_level"`
	BaseTimeMin  float64 `json:"base_time_min"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}
