package adapters

import (
	"fmt"

	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/models/store"
)

func MapStoreIncidentToDomain(i store.Incident) (domain.Incident, error) {
	typ, err := domain.ParseIncidentType(i.IncidentType)
	if err != nil {
		return domain.Incident{}, fmt.Errorf("incident %d: %w", i.ID, err)
	}
	status, err := domain.ParseIncidentStatus(i.Status)
	if err != nil {
		return domain.Incident{}, fmt.Errorf("incident %d: %w", i.ID, err)
	}
	sev, err := domain.ParseSeverity(i.Severity)
	if err != nil {
		return domain.Incident{}, fmt.Errorf("incident %d: %w", i.ID, err)
	}

	return domain.Incident{
		ID:                    i.ID,
		Title:                 i.Title,
		Description:           i.Description.String,
		Type:                  typ,
		Status:                status,
		Severity:              sev,
		DetectedAt:            timePtr(i.DetectedAt),
		ContainedAt:           timePtr(i.ContainedAt),
		ResolvedAt:            timePtr(i.ResolvedAt),
		ResponseTimeMinutes:   intPtr(i.ResponseTimeMinutes),
		ResolutionTimeMinutes: intPtr(i.ResolutionTimeMinutes),
		AffectedAssets:        i.AffectedAssets.String,
		RootCause:             i.RootCause.String,
		LessonsLearned:        i.LessonsLearned.String,
		CreatedAt:             i.CreatedAt.UTC(),
		UpdatedAt:             i.UpdatedAt.UTC(),
	}, nil
}

func MapDomainIncidentToStore(i domain.Incident) store.Incident {
	return store.Incident{
		ID:                    i.ID,
		Title:                 i.Title,
		Description:           nullString(i.Description),
		IncidentType:          string(i.Type),
		Status:                string(i.Status),
		Severity:              string(i.Severity),
		DetectedAt:            nullTime(i.DetectedAt),
		ContainedAt:           nullTime(i.ContainedAt),
		ResolvedAt:            nullTime(i.ResolvedAt),
		ResponseTimeMinutes:   nullInt(i.ResponseTimeMinutes),
		ResolutionTimeMinutes: nullInt(i.ResolutionTimeMinutes),
		AffectedAssets:        nullString(i.AffectedAssets),
		RootCause:             nullString(i.RootCause),
		LessonsLearned:        nullString(i.LessonsLearned),
		CreatedAt:             i.CreatedAt.UTC(),
		UpdatedAt:             i.UpdatedAt.UTC(),
	}
}

func MapIncidentDomainToApi(i domain.Incident) api.Incident {
	return api.Incident{
		ID:                    i.ID,
		Title:                 i.Title,
		Description:           i.Description,
		IncidentType:          string(i.Type),
		Status:                string(i.Status),
		Severity:              string(i.Severity),
		DetectedAt:            i.DetectedAt,
		ContainedAt:           i.ContainedAt,
		ResolvedAt:            i.ResolvedAt,
		ResponseTimeMinutes:   i.ResponseTimeMinutes,
		ResolutionTimeMinutes: i.ResolutionTimeMinutes,
		AffectedAssets:        i.AffectedAssets,
		RootCause:             i.RootCause,
		LessonsLearned:        i.LessonsLearned,
		CreatedAt:             i.CreatedAt,
	}
}

func MapIncidentCreateApiToDomain(c api.IncidentCreate) (domain.Incident, error) {
	if c.Title == "" {
		return domain.Incident{}, fmt.Errorf("%w: title is required", domain.ErrInvalidValue)
	}
	typ, err := domain.ParseIncidentType(c.IncidentType)
	if err != nil {
		return domain.Incident{}, err
	}
	sev, err := domain.ParseSeverity(c.Severity)
	if err != nil {
		return domain.Incident{}, err
	}
	return domain.Incident{
		Title:          c.Title,
		Description:    c.Description,
		Type:           typ,
		Severity:       sev,
		AffectedAssets: c.AffectedAssets,
	}, nil
}

func MapIncidentUpdateApiToDomain(u api.IncidentUpdate) (domain.IncidentUpdate, error) {
	res := domain.IncidentUpdate{
		ContainedAt:    u.ContainedAt,
		ResolvedAt:     u.ResolvedAt,
		RootCause:      u.RootCause,
		LessonsLearned: u.LessonsLearned,
	}
	if u.Status != nil {
		st, err := domain.ParseIncidentStatus(*u.Status)
		if err != nil {
			return domain.IncidentUpdate{}, err
		}
		res.Status = &st
	}
	return res, nil
}
