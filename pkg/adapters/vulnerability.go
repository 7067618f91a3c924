package adapters

import (
	"fmt"

	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/models/store"
)

func MapStoreVulnerabilityToDomain(v store.Vulnerability) (domain.Vulnerability, error) {
	sev, err := domain.ParseSeverity(v.Severity)
	if err != nil {
		return domain.Vulnerability{}, fmt.Errorf("vulnerability %d: %w", v.ID, err)
	}
	status, err := domain.ParseVulnerabilityStatus(v.Status)
	if err != nil {
		return domain.Vulnerability{}, fmt.Errorf("vulnerability %d: %w", v.ID, err)
	}

	return domain.Vulnerability{
		ID:               v.ID,
		Title:            v.Title,
		Description:      v.Description.String,
		CVEID:            v.CVEID.String,
		CVSSScore:        floatPtr(v.CVSSScore),
		Severity:         sev,
		Status:           status,
		AssetName:        v.AssetName.String,
		AssetType:        v.AssetType.String,
		Source:           v.Source.String,
		DiscoveredAt:     v.DiscoveredAt.UTC(),
		ResolvedAt:       timePtr(v.ResolvedAt),
		SLADeadline:      timePtr(v.SLADeadline),
		RemediationNotes: v.RemediationNotes.String,
		CreatedAt:        v.CreatedAt.UTC(),
		UpdatedAt:        v.UpdatedAt.UTC(),
	}, nil
}

func MapDomainVulnerabilityToStore(v domain.Vulnerability) store.Vulnerability {
	return store.Vulnerability{
		ID:               v.ID,
		Title:            v.Title,
		Description:      nullString(v.Description),
		CVEID:            nullString(v.CVEID),
		CVSSScore:        nullFloat(v.CVSSScore),
		Severity:         string(v.Severity),
		Status:           string(v.Status),
		AssetName:        nullString(v.AssetName),
		AssetType:        nullString(v.AssetType),
		Source:           nullString(v.Source),
		DiscoveredAt:     v.DiscoveredAt.UTC(),
		ResolvedAt:       nullTime(v.ResolvedAt),
		SLADeadline:      nullTime(v.SLADeadline),
		RemediationNotes: nullString(v.RemediationNotes),
		CreatedAt:        v.CreatedAt.UTC(),
		UpdatedAt:        v.UpdatedAt.UTC(),
	}
}

func MapVulnerabilityDomainToApi(v domain.Vulnerability) api.Vulnerability {
	return api.Vulnerability{
		ID:               v.ID,
		Title:            v.Title,
		Description:      v.Description,
		CVEID:            v.CVEID,
		CVSSScore:        v.CVSSScore,
		Severity:         string(v.Severity),
		Status:           string(v.Status),
		AssetName:        v.AssetName,
		AssetType:        v.AssetType,
		Source:           v.Source,
		DiscoveredAt:     v.DiscoveredAt,
		ResolvedAt:       v.ResolvedAt,
		SLADeadline:      v.SLADeadline,
		RemediationNotes: v.RemediationNotes,
		CreatedAt:        v.CreatedAt,
	}
}

func MapVulnerabilityCreateApiToDomain(c api.VulnerabilityCreate) (domain.Vulnerability, error) {
	if c.Title == "" {
		return domain.Vulnerability{}, fmt.Errorf("%w: title is required", domain.ErrInvalidValue)
	}
	sev, err := domain.ParseSeverity(c.Severity)
	if err != nil {
		return domain.Vulnerability{}, err
	}
	if c.CVSSScore != nil && (*c.CVSSScore < 0 || *c.CVSSScore > 10) {
		return domain.Vulnerability{}, fmt.Errorf("%w: cvss_score must be within [0, 10]", domain.ErrInvalidValue)
	}
	return domain.Vulnerability{
		Title:       c.Title,
		Description: c.Description,
		CVEID:       c.CVEID,
		CVSSScore:   c.CVSSScore,
		Severity:    sev,
		AssetName:   c.AssetName,
		AssetType:   c.AssetType,
		Source:      c.Source,
	}, nil
}

func MapVulnerabilityUpdateApiToDomain(u api.VulnerabilityUpdate) (domain.VulnerabilityUpdate, error) {
	res := domain.VulnerabilityUpdate{
		RemediationNotes: u.RemediationNotes,
		ResolvedAt:       u.ResolvedAt,
		SLADeadline:      u.SLADeadline,
	}
	if u.Status != nil {
		st, err := domain.ParseVulnerabilityStatus(*u.Status)
		if err != nil {
			return domain.VulnerabilityUpdate{}, err
		}
		res.Status = &st
	}
	return res, nil
}
