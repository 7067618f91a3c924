package domain

import "time"

// PostureReport is the snapshot rendered by the terminal reporters.
type PostureReport struct {
	Title       string
	GeneratedAt time.Time
	Posture     SecurityPosture
	Stats       DashboardStats
}
