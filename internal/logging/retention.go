package logging

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/herozvz07-ctrl/guilder/internal/models"
)

// StartRetention runs a daily goroutine that deletes system_logs older than
// the retention window.
func StartRetention(db *gorm.DB, retentionDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cutoff := time.Now().AddDate(0, 0, -retentionDays)
				result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
				if result.Error != nil {
					slog.Error("log retention sweep failed", "error", result.Error)
				} else if result.RowsAffected > 0 {
					slog.Info("log retention sweep completed", "deleted", result.RowsAffected)
				}
			case <-done:
				return
			}
		}
	}()
}
