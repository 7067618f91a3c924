package api

import "time"

type Incident struct {
	ID                    int64      `json:"id"`
	Title                 string     `json:"title"`
	Description           string     `json:"description,omitempty"`
	IncidentType          string     `json:"incident_type"`
	Status                string     `json:"status"`
	Severity              string     `json:"severity"`
	DetectedAt            *time.Time `json:"detected_at"`
	ContainedAt           *time.Time `json:"contained_at"`
	ResolvedAt            *time.Time `json:"resolved_at"`
	ResponseTimeMinutes   *int64     `json:"response_time_minutes"`
	ResolutionTimeMinutes *int64     `json:"resolution_time_minutes"`
	AffectedAssets        string     `json:"affected_assets,omitempty"`
	RootCause             string     `json:"root_cause,omitempty"`
	LessonsLearned        string     `json:"lessons_learned,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

type IncidentCreate struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	IncidentType   string `json:"incident_type"`
	Severity       string `json:"severity"`
	AffectedAssets string `json:"affected_assets"`
}

type IncidentUpdate struct {
	Status         *string    `json:"status"`
	ContainedAt    *time.Time `json:"contained_at"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	RootCause      *string    `json:"root_cause"`
	LessonsLearned *string    `json:"lessons_learned"`
}
