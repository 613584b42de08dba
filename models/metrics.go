package models

import "time"

// ProgressMetrics is the per-user rollup of check-in history. It is a cache:
// every field can be recomputed from DailyCheckIn and TaskCompletion rows.
type ProgressMetrics struct {
	UserID           string    `json:"userId" gorm:"type:varchar(128);primaryKey"`
	WinsStacked      int       `json:"winsStacked" gorm:"not null;default:0"`
	ConsistencyRate  float64   `json:"consistencyRate" gorm:"not null;default:0"`
	BaselineStreak   int       `json:"baselineStreak" gorm:"not null;default:0"`
	RecoveryStrength int       `json:"recoveryStrength" gorm:"not null;default:0"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

func (ProgressMetrics) TableName() string {
	return "progress_metrics"
}
