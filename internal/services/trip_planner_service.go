package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/schooltransit/transport-planner-backend/internal/database"
	"github.com/schooltransit/transport-planner-backend/internal/models"
	"github.com/schooltransit/transport-planner-backend/pkg/geo"
	"github.com/sirupsen/logrus"
)

// TripPlannerService generates trip suggestions from the student roster and
// persists accepted suggestions as trips with scheduled stops.
type TripPlannerService struct {
	db                  database.DB
	tripRepo            *database.TransportTripRepository
	stopRepo            *database.TripStopRepository
	rosterRepo          *database.StudentRosterRepository
	profileRepo         *database.RouteProfileRepository
	settingRepo         *database.SystemSettingRepository
	geoGateway          geo.Gateway
	defaultCapacity     int
	stopIntervalMinutes int
	logger              *logrus.Logger
}

// NewTripPlannerService creates a new TripPlannerService. geoGateway may be
// nil, in which case suggestions carry no distance estimates.
func NewTripPlannerService(
	db database.DB,
	tripRepo *database.TransportTripRepository,
	stopRepo *database.TripStopRepository,
	rosterRepo *database.StudentRosterRepository,
	profileRepo *database.RouteProfileRepository,
	settingRepo *database.SystemSettingRepository,
	geoGateway geo.Gateway,
	defaultCapacity int,
	stopIntervalMinutes int,
	logger *logrus.Logger,
) *TripPlannerService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if defaultCapacity <= 0 {
		defaultCapacity = 40
	}
	if stopIntervalMinutes <= 0 {
		stopIntervalMinutes = 5
	}
	return &TripPlannerService{
		db:                  db,
		tripRepo:            tripRepo,
		stopRepo:            stopRepo,
		rosterRepo:          rosterRepo,
		profileRepo:         profileRepo,
		settingRepo:         settingRepo,
		geoGateway:          geoGateway,
		defaultCapacity:     defaultCapacity,
		stopIntervalMinutes: stopIntervalMinutes,
		logger:              logger,
	}
}

// AutoGenerateTrips builds trip suggestions for a route profile's roster.
// Students are grouped by pickup address and packed greedily into trips of at
// most the vehicle capacity, keeping same-address students together where
// possible. The run is read-only: nothing is persisted until the caller
// accepts the suggestions.
func (s *TripPlannerService) AutoGenerateTrips(req *models.AutoGenerateRequest) (*models.AutoGenerateResult, error) {
	if req.RouteProfileID == "" || req.SchoolID == "" {
		return nil, fmt.Errorf("route_profile_id and school_id are required")
	}
	if req.VehicleCapacity < 0 {
		return nil, fmt.Errorf("vehicle_capacity must not be negative")
	}

	profile, err := s.profileRepo.GetByID(req.RouteProfileID)
	if err != nil {
		return nil, err
	}

	capacity := s.resolveCapacity(req.VehicleCapacity, profile)

	students, err := s.rosterRepo.GetByRouteProfile(req.SchoolID, req.RouteProfileID)
	if err != nil {
		return nil, err
	}

	result := &models.AutoGenerateResult{
		TotalStudents:   len(students),
		VehicleCapacity: capacity,
		TripsNeeded:     (len(students) + capacity - 1) / capacity,
		Suggestions:     []models.TripSuggestion{},
	}
	if len(students) == 0 {
		return result, nil
	}

	for i, chunk := range packByAddress(students, capacity) {
		suggestion := models.TripSuggestion{
			TripNumber:    i + 1,
			Name:          fmt.Sprintf("Trip %d", i+1),
			StudentCount:  len(chunk),
			StudentIDs:    make([]string, 0, len(chunk)),
			Addresses:     []string{},
			AddressGroups: []models.AddressGroup{},
		}

		counts := map[string]int{}
		for _, student := range chunk {
			suggestion.StudentIDs = append(suggestion.StudentIDs, student.ID)
			if _, seen := counts[student.PickupAddress]; !seen {
				suggestion.Addresses = append(suggestion.Addresses, student.PickupAddress)
			}
			counts[student.PickupAddress]++
		}
		for _, address := range suggestion.Addresses {
			suggestion.AddressGroups = append(suggestion.AddressGroups, models.AddressGroup{
				Address:      address,
				StudentCount: counts[address],
			})
		}
		suggestion.StopCount = len(suggestion.Addresses)

		s.estimateRoute(&suggestion)
		result.Suggestions = append(result.Suggestions, suggestion)
	}

	return result, nil
}

// resolveCapacity picks the effective vehicle capacity: explicit request
// value, then the route profile default, then the school-wide setting.
// Any source resolving to zero or negative is treated as absent, so the
// result is always positive even when the stored setting is "0".
func (s *TripPlannerService) resolveCapacity(requested int, profile *models.RouteProfile) int {
	if requested > 0 {
		return requested
	}
	if profile != nil && profile.DefaultVehicleCapacity > 0 {
		return profile.DefaultVehicleCapacity
	}
	if s.settingRepo != nil {
		if value := s.settingRepo.GetIntValue(database.SettingDefaultVehicleCapacity, s.defaultCapacity); value > 0 {
			return value
		}
	}
	return s.defaultCapacity
}

// packByAddress orders students so same-address groups are contiguous (by
// first appearance in roster order), then chunks them into capacity-sized
// trips. A group larger than the remaining seats spills into the next trip,
// so every trip except possibly the last is full.
func packByAddress(students []models.RosterStudent, capacity int) [][]models.RosterStudent {
	byAddress := map[string][]models.RosterStudent{}
	addressOrder := []string{}
	for _, student := range students {
		if _, seen := byAddress[student.PickupAddress]; !seen {
			addressOrder = append(addressOrder, student.PickupAddress)
		}
		byAddress[student.PickupAddress] = append(byAddress[student.PickupAddress], student)
	}

	ordered := make([]models.RosterStudent, 0, len(students))
	for _, address := range addressOrder {
		ordered = append(ordered, byAddress[address]...)
	}

	chunks := [][]models.RosterStudent{}
	for start := 0; start < len(ordered); start += capacity {
		end := start + capacity
		if end > len(ordered) {
			end = len(ordered)
		}
		chunks = append(chunks, ordered[start:end])
	}
	return chunks
}

// estimateRoute fills in distance and duration text for a suggestion.
// Best-effort: provider first, great-circle fallback second, and a suggestion
// without estimates is still valid.
func (s *TripPlannerService) estimateRoute(suggestion *models.TripSuggestion) {
	if s.geoGateway == nil || len(suggestion.Addresses) == 0 {
		return
	}

	origin := suggestion.Addresses[0]
	destination := suggestion.Addresses[len(suggestion.Addresses)-1]
	var waypoints []string
	if len(suggestion.Addresses) > 2 {
		waypoints = suggestion.Addresses[1 : len(suggestion.Addresses)-1]
	}

	result, err := s.geoGateway.CalculateDistance(origin, destination, waypoints)
	if err == nil {
		suggestion.EstimatedDistance = fmt.Sprintf("%.1f km", result.DistanceKm)
		suggestion.EstimatedDuration = fmt.Sprintf("%.0f min", result.DurationMinutes)
		return
	}

	s.logger.WithError(err).WithField("trip", suggestion.Name).
		Warn("Distance calculation failed, falling back to great-circle estimate")

	route := make([]geo.Point, 0, len(suggestion.Addresses))
	for _, address := range suggestion.Addresses {
		located, err := s.geoGateway.Geocode(address)
		if err != nil {
			s.logger.WithError(err).WithField("address", address).
				Warn("Geocoding failed, skipping route estimate")
			return
		}
		route = append(route, geo.Point{Lat: located.Lat, Lng: located.Lng})
	}

	distanceKm := geo.RouteDistanceKm(route)
	suggestion.EstimatedDistance = fmt.Sprintf("%.1f km", distanceKm)
	suggestion.EstimatedDuration = fmt.Sprintf("%.0f min", geo.EstimateDurationMinutes(distanceKm))
}

// CreateTripsFromSuggestions persists accepted suggestions as trips with
// their stops in a single transaction. Either every trip and stop lands or
// none do. An empty suggestion list is a no-op.
func (s *TripPlannerService) CreateTripsFromSuggestions(req *models.CreateFromSuggestionsRequest) ([]models.TransportTrip, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Suggestions) == 0 {
		return []models.TransportTrip{}, nil
	}

	interval := s.stopIntervalMinutes
	if s.settingRepo != nil {
		interval = s.settingRepo.GetIntValue(database.SettingStopIntervalMinutes, s.stopIntervalMinutes)
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	trips := make([]models.TransportTrip, 0, len(req.Suggestions))
	for _, suggestion := range req.Suggestions {
		addresses := dedupeAddresses(suggestion.Addresses)

		trip := models.TransportTrip{
			ID:                       uuid.New().String(),
			SchoolID:                 req.SchoolID,
			RouteProfileID:           req.RouteProfileID,
			Name:                     suggestion.Name,
			Code:                     newTripCode(),
			TripType:                 req.TripType,
			ScheduledStartTime:       req.StartTime,
			EstimatedDurationMinutes: len(addresses) * interval,
			AssignedStudents:         0,
			Status:                   models.TripStatusActive,
		}
		if trip.Name == "" {
			trip.Name = fmt.Sprintf("Trip %d", suggestion.TripNumber)
		}

		if err := s.tripRepo.CreateInTx(tx, &trip); err != nil {
			return nil, err
		}

		for i, address := range addresses {
			stop := models.TripStop{
				TripID:               trip.ID,
				Name:                 fmt.Sprintf("Stop %d", i+1),
				Address:              address,
				StopOrder:            i + 1,
				ScheduledArrivalTime: addMinutes(req.StartTime, i*interval),
				WaitDurationMinutes:  interval,
				TotalStudentsAtStop:  studentsAtAddress(&suggestion, address, len(addresses)),
				AssignedStudents:     0,
				AssignmentStatus:     models.AssignmentStatusRed,
			}
			if err := s.stopRepo.CreateInTx(tx, &stop); err != nil {
				return nil, err
			}
		}

		trips = append(trips, trip)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit trip batch: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"school_id":        req.SchoolID,
		"route_profile_id": req.RouteProfileID,
		"trips_created":    len(trips),
	}).Info("Created trips from suggestions")

	return trips, nil
}

// studentsAtAddress returns the expected student count for a stop. Exact
// per-address tallies come from the suggestion's address groups; suggestions
// built by older clients without groups fall back to an even split.
func studentsAtAddress(suggestion *models.TripSuggestion, address string, stopCount int) int {
	for _, group := range suggestion.AddressGroups {
		if group.Address == address {
			return group.StudentCount
		}
	}
	if stopCount == 0 {
		return 0
	}
	return (suggestion.StudentCount + stopCount - 1) / stopCount
}

// dedupeAddresses removes duplicates while preserving first-seen order
func dedupeAddresses(addresses []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, address := range addresses {
		if address == "" || seen[address] {
			continue
		}
		seen[address] = true
		out = append(out, address)
	}
	return out
}

// newTripCode generates a short human-readable trip code
func newTripCode() string {
	return "TRP-" + strings.ToUpper(uuid.New().String()[:8])
}

// addMinutes offsets a zero-padded HH:MM time by the given minutes,
// wrapping past midnight.
func addMinutes(hhmm string, minutes int) string {
	hours, _ := strconv.Atoi(hhmm[:2])
	mins, _ := strconv.Atoi(hhmm[3:])

	total := (hours*60 + mins + minutes) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}

	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
