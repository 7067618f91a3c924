package api

import "time"

type Vulnerability struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	CVEID            string     `json:"cve_id,omitempty"`
	CVSSScore        *float64   `json:"cvss_score,omitempty"`
	Severity         string     `json:"severity"`
	Status           string     `json:"status"`
	AssetName        string     `json:"asset_name,omitempty"`
	AssetType        string     `json:"asset_type,omitempty"`
	Source           string     `json:"source,omitempty"`
	DiscoveredAt     time.Time  `json:"discovered_at"`
	ResolvedAt       *time.Time `json:"resolved_at"`
	SLADeadline      *time.Time `json:"sla_deadline"`
	RemediationNotes string     `json:"remediation_notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type VulnerabilityCreate struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CVEID       string   `json:"cve_id"`
	CVSSScore   *float64 `json:"cvss_score"`
	Severity    string   `json:"severity"`
	AssetName   string   `json:"asset_name"`
	AssetType   string   `json:"asset_type"`
	Source      string   `json:"source"`
}

type VulnerabilityUpdate struct {
	Status           *string    `json:"status"`
	RemediationNotes *string    `json:"remediation_notes"`
	ResolvedAt       *time.Time `json:"resolved_at"`
	SLADeadline      *time.Time `json:"sla_deadline"`
}
