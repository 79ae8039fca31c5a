package jobs

import (
	"log"
	"time"

	"gorm.io/gorm"

	"spark/internal/services"
)

// StatsJob periodically snapshots platform statistics for the admin
// dashboard. It only reads and aggregates; topic lifecycle state is never
// mutated here, deadline passage included.
type StatsJob struct {
	db      *gorm.DB
	service *services.AdminService
}

func NewStatsJob(db *gorm.DB) *StatsJob {
	return &StatsJob{
		db:      db,
		service: services.NewAdminService(db),
	}
}

// Start begins the periodic snapshot job
func (j *StatsJob) Start(interval time.Duration) {
	go func() {
		// Run immediately on start
		if err := j.service.SnapshotPlatformStats(time.Now()); err != nil {
			log.Printf("Initial stats snapshot error: %v", err)
		}

		// Then run periodically
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if err := j.service.SnapshotPlatformStats(time.Now()); err != nil {
				log.Printf("Stats snapshot error: %v", err)
			}
		}
	}()
}
