package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/schooltransit/transport-planner-backend/internal/database"
)

// MaintenanceService manages scheduled background jobs
type MaintenanceService struct {
	cron     *cron.Cron
	stopRepo *database.TripStopRepository
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(stopRepo *database.TripStopRepository) *MaintenanceService {
	// Create cron with seconds precision (optional)
	c := cron.New(cron.WithSeconds())

	return &MaintenanceService{
		cron:     c,
		stopRepo: stopRepo,
	}
}

// Start starts all cron jobs
func (s *MaintenanceService) Start() error {
	log.Println("Starting maintenance service...")

	// Refresh stop assignment statuses nightly at 2:30 AM
	// Cron format: second minute hour day month weekday
	_, err := s.cron.AddFunc("0 30 2 * * *", s.refreshAssignmentStatusesJob)
	if err != nil {
		return fmt.Errorf("failed to schedule assignment status refresh job: %w", err)
	}
	log.Println("✓ Scheduled: Refresh stop assignment statuses (Daily at 2:30 AM)")

	s.cron.Start()
	log.Println("✓ Maintenance service started successfully")

	return nil
}

// Stop stops all cron jobs
func (s *MaintenanceService) Stop() {
	log.Println("Stopping maintenance service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✓ Maintenance service stopped")
}

// refreshAssignmentStatusesJob recomputes the traffic-light status of every
// stop from its stored counts, converging rows touched by other services.
func (s *MaintenanceService) refreshAssignmentStatusesJob() {
	log.Println("[CRON] Starting assignment status refresh job...")
	startTime := time.Now()

	rowsUpdated, err := s.stopRepo.RefreshAssignmentStatuses()
	if err != nil {
		log.Printf("[CRON ERROR] Failed to refresh assignment statuses: %v\n", err)
		return
	}

	duration := time.Since(startTime)
	log.Printf("[CRON] ✓ Refreshed %d stop statuses in %v\n", rowsUpdated, duration)
}

// RunRefreshNow runs the assignment status refresh immediately, returning
// the number of stops whose status changed. Backs the manual admin trigger.
func (s *MaintenanceService) RunRefreshNow() (int64, error) {
	log.Println("[MANUAL] Running assignment status refresh now...")
	return s.stopRepo.RefreshAssignmentStatuses()
}
