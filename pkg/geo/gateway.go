package geo

// GeocodeResult is the resolved location for a free-form address
type GeocodeResult struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
}

// DistanceResult is the road distance and travel time between two addresses
type DistanceResult struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
	DistanceText    string  `json:"distance_text"`
	DurationText    string  `json:"duration_text"`
}

// Gateway is the façade over the external geocoding/distance provider.
// Implementations do request/response plumbing only; callers own the policy
// for what to do when the provider is unreachable.
type Gateway interface {
	Geocode(address string) (*GeocodeResult, error)
	CalculateDistance(origin, destination string, waypoints []string) (*DistanceResult, error)
	GetName() string
}
