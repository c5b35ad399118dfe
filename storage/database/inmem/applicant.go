package inmemdb

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kymani/udahili/core"
	"github.com/kymani/udahili/core/admission"
)

type applicantRepository struct {
	mu         sync.RWMutex
	applicants map[string]admission.Applicant
}

var _ admission.Repository = (*applicantRepository)(nil) // interface compliance check

func NewApplicantRepository() *applicantRepository {
	return &applicantRepository{applicants: make(map[string]admission.Applicant)}
}

func (repo *applicantRepository) CheckEmailUniqueness(_ context.Context, email string) error {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	for _, app := range repo.applicants {
		if strings.EqualFold(app.Email, email) {
			return admission.ErrEmailExists
		}
	}
	return nil
}

func (repo *applicantRepository) CreateApplicant(ctx context.Context, app admission.Applicant) (admission.Applicant, error) {
	if err := repo.CheckEmailUniqueness(ctx, app.Email); err != nil {
		return admission.Applicant{}, err
	}
	repo.mu.Lock()
	defer repo.mu.Unlock()
	app.ID = uuid.New().String()
	repo.applicants[app.ID] = app
	return app, nil
}

func (repo *applicantRepository) GetApplicant(_ context.Context, filter admission.GetFilter) (admission.Applicant, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if filter.ID != "" {
		if app, ok := repo.applicants[filter.ID]; ok {
			return app, nil
		}
		return admission.Applicant{}, admission.ErrNotFound
	}
	for _, app := range repo.applicants {
		if filter.PortalID != "" && app.PortalID == filter.PortalID {
			return app, nil
		}
		if filter.Email != "" && strings.EqualFold(app.Email, filter.Email) {
			return app, nil
		}
	}
	return admission.Applicant{}, admission.ErrNotFound
}

func (repo *applicantRepository) FilterApplicants(
	_ context.Context,
	filter *admission.QueryFilter,
	ordering []core.DBOrdering,
) ([]admission.Applicant, error) {
	repo.mu.RLock()
	apps := make([]admission.Applicant, 0, len(repo.applicants))
	for _, app := range repo.applicants {
		if matches(app, filter) {
			apps = append(apps, app)
		}
	}
	repo.mu.RUnlock()

	sortApplicants(apps, ordering)
	return apps, nil
}

func (repo *applicantRepository) UpdateApplicant(_ context.Context, app admission.Applicant) (admission.Applicant, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if _, ok := repo.applicants[app.ID]; !ok {
		return admission.Applicant{}, admission.ErrNotFound
	}
	repo.applicants[app.ID] = app
	return app, nil
}

func matches(app admission.Applicant, filter *admission.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.Status != "" && app.Status != filter.Status {
		return false
	}
	if filter.IsVerified != nil && app.IsVerified != *filter.IsVerified {
		return false
	}
	if filter.Search != "" {
		s := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(app.FullName), s) &&
			!strings.Contains(strings.ToLower(app.PortalID), s) &&
			!strings.Contains(strings.ToLower(app.Email), s) {
			return false
		}
	}
	if !filter.CreatedFrom.IsZero() && app.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && app.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func sortApplicants(apps []admission.Applicant, ordering []core.DBOrdering) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}} // newest first
	}
	sort.SliceStable(apps, func(i, j int) bool {
		for _, ord := range ordering {
			var less, eq bool
			switch ord.Field {
			case "full_name":
				less, eq = apps[i].FullName < apps[j].FullName, apps[i].FullName == apps[j].FullName
			case "status":
				less, eq = apps[i].Status < apps[j].Status, apps[i].Status == apps[j].Status
			case "updated_at":
				less, eq = apps[i].UpdatedAt.Before(apps[j].UpdatedAt), apps[i].UpdatedAt.Equal(apps[j].UpdatedAt)
			default: // created_at
				less, eq = apps[i].CreatedAt.Before(apps[j].CreatedAt), apps[i].CreatedAt.Equal(apps[j].CreatedAt)
			}
			if eq {
				continue
			}
			if ord.Ascending {
				return less
			}
			return !less
		}
		return false
	})
}
