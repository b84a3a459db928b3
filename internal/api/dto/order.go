package dto

type OrderRequest struct {
	OrderID          int     `json:"order_id"`
	ValueRs          float64 `json:"value_rs"`
	RouteID          int     `json:"route_id"`
	DeliveryTime     string  `json:"delivery_time"`
	AssignedDriverID *int64  `json:"assigned_driver_id"`
	Status           string  `json:"status"`
}

type OrderResponse struct {
	OrderID          int            `json:"order_id"`
	ValueRs          float64        `json:"value_rs"`
	RouteID          int            `json:"route_id"`
	Route            *RouteResponse `json:"route,omitempty"`
	DeliveryTime     string         `json:"delivery_time"`
	AssignedDriverID *int64         `json:"assigned_driver_id"`
	Status           string         `json:"status"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}
