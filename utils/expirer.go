package utils

import (
	"time"

	"github.com/geostash/geostash/config"
	"github.com/geostash/geostash/models"
)

// StartTreasureExpirer launches a background goroutine that periodically
// deactivates treasures past their expiry time. It is best-effort and logs failures.
func StartTreasureExpirer(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			if !config.Get().TreasureExpiryEnabled {
				continue
			}
			result := db.Model(&models.Treasure{}).
				Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, time.Now()).
				Update("is_active", false)
			if result.Error != nil {
				if Sugar != nil {
					Sugar.Warnf("treasure expirer update failed: %v", result.Error)
				}
				continue
			}
			if result.RowsAffected > 0 && Sugar != nil {
				Sugar.Infof("deactivated %d expired treasures", result.RowsAffected)
			}
		}
	}()
}
