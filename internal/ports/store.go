package ports

// FleetStore groups every repository the service needs from one backing store.
type FleetStore interface {
	DriverRepository
	RouteRepository
	OrderRepository
	SimulationRepository
}
