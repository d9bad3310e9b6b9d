package cron

import (
	"context"
	"log"
	"time"

	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/services"
	"github.com/r56149203/EduSphere/services/storage"
	"github.com/r56149203/EduSphere/utils/auth"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Retention windows for the daily cleanup
const (
	AuditRetention   = 180 * 24 * time.Hour
	CronLogRetention = 30 * 24 * time.Hour
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	db        *gorm.DB
	store     storage.FileStore
	blacklist *auth.BlacklistService
	audit     *services.AuditService
	grace     time.Duration
	now       func() time.Time
}

// NewCronManager creates a new cron manager; files younger than grace are never treated as orphans
func NewCronManager(db *gorm.DB, store storage.FileStore, grace time.Duration) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron:      c,
		db:        db,
		store:     store,
		blacklist: auth.NewBlacklistService(db),
		audit:     services.NewAuditService(db),
		grace:     grace,
		now:       time.Now,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	// Register all jobs
	if err := m.registerJobs(); err != nil {
		return err
	}

	// Start the cron scheduler
	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// Entries returns the number of registered jobs
func (m *CronManager) Entries() int {
	return len(m.cron.Entries())
}

type job struct {
	name     string
	schedule string
	run      func(ctx context.Context) (string, error)
}

func (m *CronManager) jobs() []job {
	return []job{
		// Every 30 minutes: remove uploaded files no resource references
		{"cleanup_orphan_files", "0 */30 * * * *", m.CleanupOrphanFiles},
		// Every hour: purge expired session blacklist entries
		{"cleanup_expired_tokens", "0 0 * * * *", m.CleanupExpiredTokens},
		// Daily at 3 AM: purge old audit and cron logs
		{"cleanup_old_logs", "0 0 3 * * *", m.CleanupOldLogs},
	}
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	for _, j := range m.jobs() {
		j := j
		if _, err := m.cron.AddFunc(j.schedule, func() { m.RunJob(j.name, j.run) }); err != nil {
			return err
		}
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// RunJob executes fn and records the run in cron_job_logs
func (m *CronManager) RunJob(jobName string, fn func(ctx context.Context) (string, error)) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	entry := m.logJobStart(jobName)
	message, err := fn(ctx)
	if err != nil {
		m.logJobError(entry, err)
		return
	}
	m.logJobComplete(entry, message)
}

// logJobStart logs the start of a cron job
func (m *CronManager) logJobStart(jobName string) *model.CronJobLog {
	log.Printf("[CRON] Starting job: %s at %s", jobName, m.now().Format(time.RFC3339))

	// Log to database
	cronLog := &model.CronJobLog{
		JobName:   jobName,
		Status:    model.CronStatusRunning,
		StartedAt: m.now(),
	}
	if err := m.db.Create(cronLog).Error; err != nil {
		log.Printf("[CRON] Failed to record start of %s: %v", jobName, err)
	}
	return cronLog
}

// logJobComplete logs successful completion of a cron job
func (m *CronManager) logJobComplete(entry *model.CronJobLog, message string) {
	log.Printf("[CRON] Completed job: %s - %s", entry.JobName, message)
	m.finish(entry, map[string]interface{}{
		"status":  model.CronStatusCompleted,
		"message": message,
	})
}

// logJobError logs a cron job error
func (m *CronManager) logJobError(entry *model.CronJobLog, err error) {
	log.Printf("[CRON] Error in job: %s - %v", entry.JobName, err)
	m.finish(entry, map[string]interface{}{
		"status":    model.CronStatusFailed,
		"error_msg": err.Error(),
	})
}

func (m *CronManager) finish(entry *model.CronJobLog, updates map[string]interface{}) {
	if entry.ID == 0 {
		return
	}
	completed := m.now()
	updates["completed_at"] = completed
	updates["duration"] = completed.Sub(entry.StartedAt).Milliseconds()
	if err := m.db.Model(entry).Updates(updates).Error; err != nil {
		log.Printf("[CRON] Failed to record end of %s: %v", entry.JobName, err)
	}
}
