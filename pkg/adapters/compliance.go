package adapters

import (
	"fmt"

	"github.com/de-tools/posture-atlas/pkg/models/api"
	"github.com/de-tools/posture-atlas/pkg/models/domain"
	"github.com/de-tools/posture-atlas/pkg/models/store"
)

func MapStoreFrameworkToDomain(f store.ComplianceFramework) (domain.ComplianceFramework, error) {
	typ, err := domain.ParseFrameworkType(f.FrameworkType)
	if err != nil {
		return domain.ComplianceFramework{}, fmt.Errorf("framework %d: %w", f.ID, err)
	}
	return domain.ComplianceFramework{
		ID:             f.ID,
		Name:           f.Name,
		Type:           typ,
		Version:        f.Version.String,
		Description:    f.Description.String,
		OverallScore:   f.OverallScore,
		LastAssessedAt: timePtr(f.LastAssessedAt),
		CreatedAt:      f.CreatedAt.UTC(),
		UpdatedAt:      f.UpdatedAt.UTC(),
	}, nil
}

func MapDomainFrameworkToStore(f domain.ComplianceFramework) store.ComplianceFramework {
	return store.ComplianceFramework{
		ID:             f.ID,
		Name:           f.Name,
		FrameworkType:  string(f.Type),
		Version:        nullString(f.Version),
		Description:    nullString(f.Description),
		OverallScore:   f.OverallScore,
		LastAssessedAt: nullTime(f.LastAssessedAt),
		CreatedAt:      f.CreatedAt.UTC(),
		UpdatedAt:      f.UpdatedAt.UTC(),
	}
}

func MapStoreControlToDomain(c store.ComplianceControl) (domain.ComplianceControl, error) {
	status, err := domain.ParseControlStatus(c.Status)
	if err != nil {
		return domain.ComplianceControl{}, fmt.Errorf("control %d: %w", c.ID, err)
	}
	return domain.ComplianceControl{
		ID:               c.ID,
		FrameworkID:      c.FrameworkID,
		ControlID:        c.ControlID,
		Title:            c.Title,
		Description:      c.Description.String,
		Status:           status,
		Evidence:         c.Evidence.String,
		RemediationNotes: c.RemediationNotes.String,
		CreatedAt:        c.CreatedAt.UTC(),
		UpdatedAt:        c.UpdatedAt.UTC(),
	}, nil
}

func MapDomainControlToStore(c domain.ComplianceControl) store.ComplianceControl {
	return store.ComplianceControl{
		ID:               c.ID,
		FrameworkID:      c.FrameworkID,
		ControlID:        c.ControlID,
		Title:            c.Title,
		Description:      nullString(c.Description),
		Status:           string(c.Status),
		Evidence:         nullString(c.Evidence),
		RemediationNotes: nullString(c.RemediationNotes),
		CreatedAt:        c.CreatedAt.UTC(),
		UpdatedAt:        c.UpdatedAt.UTC(),
	}
}

func MapStoreAssessmentToDomain(a store.ComplianceAssessment) domain.ComplianceAssessment {
	return domain.ComplianceAssessment{
		ID:                   a.ID,
		FrameworkID:          a.FrameworkID,
		AssessedAt:           a.AssessedAt.UTC(),
		OverallScore:         a.OverallScore,
		CompliantControls:    int(a.CompliantControls),
		NonCompliantControls: int(a.NonCompliantControls),
		TotalControls:        int(a.TotalControls),
		AssessorName:         a.AssessorName.String,
		Notes:                a.Notes.String,
		CreatedAt:            a.CreatedAt.UTC(),
	}
}

func MapDomainAssessmentToStore(a domain.ComplianceAssessment) store.ComplianceAssessment {
	return store.ComplianceAssessment{
		ID:                   a.ID,
		FrameworkID:          a.FrameworkID,
		AssessedAt:           a.AssessedAt.UTC(),
		OverallScore:         a.OverallScore,
		CompliantControls:    int64(a.CompliantControls),
		NonCompliantControls: int64(a.NonCompliantControls),
		TotalControls:        int64(a.TotalControls),
		AssessorName:         nullString(a.AssessorName),
		Notes:                nullString(a.Notes),
		CreatedAt:            a.CreatedAt.UTC(),
	}
}

func MapControlDomainToApi(c domain.ComplianceControl) api.ComplianceControl {
	return api.ComplianceControl{
		ID:               c.ID,
		FrameworkID:      c.FrameworkID,
		ControlID:        c.ControlID,
		Title:            c.Title,
		Description:      c.Description,
		Status:           string(c.Status),
		Evidence:         c.Evidence,
		RemediationNotes: c.RemediationNotes,
	}
}

func MapControlsDomainToApi(cs []domain.ComplianceControl) []api.ComplianceControl {
	res := make([]api.ComplianceControl, 0, len(cs))
	for _, c := range cs {
		res = append(res, MapControlDomainToApi(c))
	}
	return res
}

func MapFrameworkDomainToApi(f domain.ComplianceFramework) api.ComplianceFramework {
	return api.ComplianceFramework{
		ID:             f.ID,
		Name:           f.Name,
		FrameworkType:  string(f.Type),
		Version:        f.Version,
		Description:    f.Description,
		OverallScore:   f.OverallScore,
		LastAssessedAt: f.LastAssessedAt,
		Controls:       MapControlsDomainToApi(f.Controls),
	}
}

func MapAssessmentDomainToApi(a domain.ComplianceAssessment) api.ComplianceAssessment {
	return api.ComplianceAssessment{
		ID:                   a.ID,
		FrameworkID:          a.FrameworkID,
		AssessedAt:           a.AssessedAt,
		OverallScore:         a.OverallScore,
		CompliantControls:    a.CompliantControls,
		NonCompliantControls: a.NonCompliantControls,
		TotalControls:        a.TotalControls,
		AssessorName:         a.AssessorName,
		Notes:                a.Notes,
	}
}

func MapFrameworkCreateApiToDomain(c api.ComplianceFrameworkCreate) (domain.ComplianceFramework, error) {
	if c.Name == "" {
		return domain.ComplianceFramework{}, fmt.Errorf("%w: name is required", domain.ErrInvalidValue)
	}
	typ, err := domain.ParseFrameworkType(c.FrameworkType)
	if err != nil {
		return domain.ComplianceFramework{}, err
	}
	return domain.ComplianceFramework{
		Name:        c.Name,
		Type:        typ,
		Version:     c.Version,
		Description: c.Description,
	}, nil
}

func MapControlCreateApiToDomain(frameworkID int64, c api.ComplianceControlCreate) (domain.ComplianceControl, error) {
	if c.ControlID == "" || c.Title == "" {
		return domain.ComplianceControl{}, fmt.Errorf("%w: control_id and title are required", domain.ErrInvalidValue)
	}
	status := domain.ControlStatusNotAssessed
	if c.Status != "" {
		st, err := domain.ParseControlStatus(c.Status)
		if err != nil {
			return domain.ComplianceControl{}, err
		}
		status = st
	}
	return domain.ComplianceControl{
		FrameworkID: frameworkID,
		ControlID:   c.ControlID,
		Title:       c.Title,
		Description: c.Description,
		Status:      status,
	}, nil
}

func MapControlUpdateApiToDomain(u api.ComplianceControlUpdate) (domain.ControlUpdate, error) {
	res := domain.ControlUpdate{
		Evidence:         u.Evidence,
		RemediationNotes: u.RemediationNotes,
	}
	if u.Status != nil {
		st, err := domain.ParseControlStatus(*u.Status)
		if err != nil {
			return domain.ControlUpdate{}, err
		}
		res.Status = &st
	}
	return res, nil
}

func MapAssessmentCreateApiToDomain(c api.ComplianceAssessmentCreate) (domain.ComplianceAssessment, error) {
	if c.OverallScore < 0 || c.OverallScore > 100 {
		return domain.ComplianceAssessment{}, fmt.Errorf("%w: overall_score must be within [0, 100]", domain.ErrInvalidValue)
	}
	return domain.ComplianceAssessment{
		FrameworkID:          c.FrameworkID,
		OverallScore:         c.OverallScore,
		CompliantControls:    c.CompliantControls,
		NonCompliantControls: c.NonCompliantControls,
		TotalControls:        c.TotalControls,
		AssessorName:         c.AssessorName,
		Notes:                c.Notes,
	}, nil
}
