package admission

import (
	"context"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kymani/udahili/core"
)

var (
	// errors
	ErrNotFound    = goerrors.New("applicant not found")
	ErrEmailExists = goerrors.New("an applicant with this email already exists; please use another email")
	ErrNotEligible = goerrors.New("no class assigned; applicant is not eligible for verification")

	errValidationFailed = goerrors.New("application validation failed")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateApplicant(ctx context.Context, app Applicant) (Applicant, error)
		GetApplicant(ctx context.Context, filter GetFilter) (Applicant, error)
		// FilterApplicants applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of
		// Applicant.FullName, Applicant.PortalID or Applicant.Email.
		FilterApplicants(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Applicant, error)
		UpdateApplicant(ctx context.Context, app Applicant) (Applicant, error)
	}

	// ClassRegistry reports whether an admission class exists. It backs the
	// verification-eligibility precondition.
	ClassRegistry interface {
		ClassExists(ctx context.Context, name string) (bool, error)
	}

	ServiceInterface interface {
		Submit(ctx context.Context, na NewApplication) (Applicant, error)
		Get(ctx context.Context, id string) (Applicant, error)
		Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Applicant, error)
		ToggleVerification(ctx context.Context, id string) (Applicant, error)
		ToggleRejection(ctx context.Context, id string) (Applicant, error)
		CheckEmailUniqueness(ctx context.Context, email string) error
	}

	service struct {
		repo       Repository
		classes    ClassRegistry
		uploader   core.Uploader
		dispatcher core.NotificationDispatcher
		conf       *core.Config
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(
	repo Repository,
	classes ClassRegistry,
	uploader core.Uploader,
	dispatcher core.NotificationDispatcher,
	conf *core.Config,
) ServiceInterface {
	return &service{
		repo:       repo,
		classes:    classes,
		uploader:   uploader,
		dispatcher: dispatcher,
		conf:       conf,
	}
}

// CheckEmailUniqueness maps a duplicate email to a ValidationError attributed
// to the email field so callers can re-focus it specifically.
func (svc *service) CheckEmailUniqueness(ctx context.Context, email string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
		}
		return err
	}
	return nil
}

// Submit persists a validated application. Validation and the duplicate-email
// check complete fully before any write: no partial record is ever persisted.
func (svc *service) Submit(ctx context.Context, na NewApplication) (Applicant, error) {
	if err := svc.CheckEmailUniqueness(ctx, na.Email); err != nil {
		return Applicant{}, err
	}

	dob, err := time.Parse(dateLayout, na.DateOfBirth)
	if err != nil {
		return Applicant{}, core.NewValidationError(err, core.FieldError{Field: "date_of_birth", Error: "must be a valid date in YYYY-MM-DD format"})
	}

	now := time.Now().UTC()
	app := Applicant{
		PortalID:         newPortalID(),
		FullName:         na.FullName,
		FatherName:       na.FatherName,
		Gender:           na.Gender,
		DateOfBirth:      dob,
		Email:            na.Email,
		PhoneNumber:      null.NewString(na.PhoneNumber, na.PhoneNumber != ""),
		CurrentAddress:   na.CurrentAddress,
		PermanentAddress: na.PermanentAddress,
		City:             na.City,
		ZipCode:          na.ZipCode,
		AdmissionClass:   null.NewString(na.AdmissionClass, na.AdmissionClass != "" && na.AdmissionClass != NoClassSentinel),
		PreviousSchool:   null.NewString(na.PreviousSchool, na.PreviousSchool != ""),
		Status:           StatusPending,
		IsVerified:       false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := svc.storeDocuments(ctx, &app, na); err != nil {
		return Applicant{}, err
	}
	return svc.repo.CreateApplicant(ctx, app)
}

// storeDocuments uploads the three documents and captures the returned
// locators. Runs after validation so only complete applications reach storage.
func (svc *service) storeDocuments(ctx context.Context, app *Applicant, na NewApplication) error {
	targets := []struct {
		field string
		doc   Document
		dst   *string
	}{
		{"student_photo", na.StudentPhoto, &app.StudentPhoto},
		{"id_proof", na.IDProof, &app.IDProof},
		{"birth_certificate", na.BirthCertificate, &app.BirthCertificate},
	}
	for _, t := range targets {
		locator, err := svc.uploader.UploadBytes(
			ctx, svc.conf.Upload.Folder, fmt.Sprintf("%s-%s", app.PortalID, t.field), t.doc.Content)
		if err != nil {
			return errors.Wrap(err, "storing "+t.field)
		}
		*t.dst = locator
	}
	return nil
}

func (svc *service) Get(ctx context.Context, id string) (Applicant, error) {
	return svc.repo.GetApplicant(ctx, GetFilter{ID: id})
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Applicant, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.FilterApplicants(ctx, filter, ordering)
}

// ToggleVerification flips the applicant's verification flag. Verification is
// only meaningful once a real admission class has been assigned; the check is
// enforced here regardless of any client-side gating.
func (svc *service) ToggleVerification(ctx context.Context, id string) (Applicant, error) {
	app, err := svc.repo.GetApplicant(ctx, GetFilter{ID: id})
	if err != nil {
		return Applicant{}, err
	}

	if !app.HasClass() {
		return Applicant{}, ErrNotEligible
	}
	exists, err := svc.classes.ClassExists(ctx, app.AdmissionClass.String)
	if err != nil {
		return Applicant{}, errors.Wrap(err, "checking admission class")
	}
	if !exists {
		return Applicant{}, ErrNotEligible
	}

	app.IsVerified = !app.IsVerified
	app.UpdatedAt = time.Now().UTC()
	app, err = svc.repo.UpdateApplicant(ctx, app)
	if err != nil {
		return Applicant{}, err
	}

	event := core.EventUnverified
	if app.IsVerified {
		event = core.EventVerified
	}
	svc.notify(app, event)
	return app, nil
}

// ToggleRejection is a pure two-way toggle keyed off current status:
// pending|approved -> rejected, rejected -> pending. It never touches the
// verification flag.
func (svc *service) ToggleRejection(ctx context.Context, id string) (Applicant, error) {
	app, err := svc.repo.GetApplicant(ctx, GetFilter{ID: id})
	if err != nil {
		return Applicant{}, err
	}

	event := core.EventRejected
	if app.Status == StatusRejected {
		app.Status = StatusPending
		event = core.EventUnrejected
	} else {
		app.Status = StatusRejected
	}
	app.UpdatedAt = time.Now().UTC()
	app, err = svc.repo.UpdateApplicant(ctx, app)
	if err != nil {
		return Applicant{}, err
	}

	svc.notify(app, event)
	return app, nil
}

// notify is fire-and-forget: delivery failure never rolls back the state change.
func (svc *service) notify(app Applicant, event core.NotificationEvent) {
	svc.dispatcher.Dispatch(core.Notification{
		ApplicantID:   app.ID,
		PortalID:      app.PortalID,
		ApplicantName: app.FullName,
		Email:         app.Email,
		Event:         event,
		OccurredAt:    time.Now().UTC(),
	})
}
