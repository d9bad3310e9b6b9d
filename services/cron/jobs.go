package cron

import (
	"context"
	"fmt"
	"log"

	"github.com/r56149203/EduSphere/model"
	"github.com/r56149203/EduSphere/services"
)

// CleanupOrphanFiles deletes stored PDFs that no resource references and that are
// older than the grace period, so uploads still being attached are left alone
func (m *CronManager) CleanupOrphanFiles(ctx context.Context) (string, error) {
	files, err := m.store.List()
	if err != nil {
		return "", err
	}

	refs, err := services.ReferencedFiles(m.db.WithContext(ctx))
	if err != nil {
		return "", err
	}

	cutoff := m.now().Add(-m.grace)
	removed := 0
	for _, f := range files {
		if refs[services.PDFDir+"/"+f.Name] || f.ModTime.After(cutoff) {
			continue
		}
		if err := m.store.Delete(ctx, f.Name); err != nil {
			log.Printf("[CRON] Failed to delete orphan %s: %v", f.Name, err)
			continue
		}
		removed++
	}

	return fmt.Sprintf("Removed %d orphaned files of %d", removed, len(files)), nil
}

// CleanupExpiredTokens purges blacklist entries whose tokens have expired anyway
func (m *CronManager) CleanupExpiredTokens(ctx context.Context) (string, error) {
	n, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted %d expired blacklist entries", n), nil
}

// CleanupOldLogs purges audit entries and cron run records past their retention
func (m *CronManager) CleanupOldLogs(ctx context.Context) (string, error) {
	audits, err := m.audit.PurgeOlderThan(ctx, m.now().Add(-AuditRetention))
	if err != nil {
		return "", err
	}

	result := m.db.WithContext(ctx).
		Where("created_at < ?", m.now().Add(-CronLogRetention)).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		return "", fmt.Errorf("failed to purge cron logs: %w", result.Error)
	}

	return fmt.Sprintf("Deleted %d audit entries and %d cron logs", audits, result.RowsAffected), nil
}
