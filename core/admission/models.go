package admission

import (
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/kymani/udahili/core"
)

// Status is the applicant's admission-decision state. It is orthogonal to the
// verification flag: rejecting an applicant never clears a prior verification.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved" // recognized but never written by review actions
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Genders
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// NoClassSentinel marks an applicant that has not been assigned an admission
// class yet. Verification is blocked until a real class is assigned.
const NoClassSentinel = "No class yet"

const dateLayout = "2006-01-02"

type Applicant struct {
	ID               string      `json:"id"`
	PortalID         string      `json:"portal_id"`
	FullName         string      `json:"full_name"`
	FatherName       string      `json:"father_name"`
	Gender           string      `json:"gender"`
	DateOfBirth      time.Time   `json:"date_of_birth"`
	Email            string      `json:"email"`
	PhoneNumber      null.String `json:"phone_number"`
	CurrentAddress   string      `json:"current_address"`
	PermanentAddress string      `json:"permanent_address"`
	City             string      `json:"city"`
	ZipCode          string      `json:"zip_code"`
	AdmissionClass   null.String `json:"admission_class"`
	PreviousSchool   null.String `json:"previous_school"`
	StudentPhoto     string      `json:"student_photo"`
	IDProof          string      `json:"id_proof"`
	BirthCertificate string      `json:"birth_certificate"`
	Status           Status      `json:"status"`
	IsVerified       bool        `json:"is_verified"`
	CreatedAt        time.Time   `json:"created_at"` // UTC
	UpdatedAt        time.Time   `json:"updated_at"` // UTC
}

// HasClass reports whether a real admission class has been assigned.
func (a *Applicant) HasClass() bool {
	return a.AdmissionClass.Valid &&
		a.AdmissionClass.String != "" &&
		a.AdmissionClass.String != NoClassSentinel
}

// Class returns the assigned admission class or the sentinel.
func (a *Applicant) Class() string {
	if !a.AdmissionClass.Valid || a.AdmissionClass.String == "" {
		return NoClassSentinel
	}
	return a.AdmissionClass.String
}

// Document is an already-decoded upload received from the transport layer.
type Document struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}

// NewApplication contains information needed to submit a new admission application.
type NewApplication struct {
	FullName         string `json:"full_name" validate:"required"`
	FatherName       string `json:"father_name" validate:"required"`
	Gender           string `json:"gender" validate:"required,oneof=male female other"`
	DateOfBirth      string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Email            string `json:"email" validate:"required,email"`
	PhoneNumber      string `json:"phone_number" validate:"omitempty,min=7"`
	CurrentAddress   string `json:"current_address" validate:"required"`
	PermanentAddress string `json:"permanent_address" validate:"required"`
	City             string `json:"city" validate:"required"`
	ZipCode          string `json:"zip_code" validate:"required"`
	AdmissionClass   string `json:"admission_class"`
	PreviousSchool   string `json:"previous_school"`

	StudentPhoto     Document `json:"-"`
	IDProof          Document `json:"-"`
	BirthCertificate Document `json:"-"`
}

// Validate runs a single pass over the whole submission and reports every
// violated field at once. The duplicate-email check is left to the service so
// it stays distinguishable from ordinary validation failures.
func (na *NewApplication) Validate(validate *validator.Validate, translator ut.Translator, conf *core.Config) error {
	na.FullName = core.CleanString(na.FullName)
	na.FatherName = core.CleanString(na.FatherName)
	na.Gender = core.CleanString(na.Gender, true /* lower */)
	na.DateOfBirth = core.CleanString(na.DateOfBirth)
	na.Email = core.CleanString(na.Email, true /* lower */)
	na.PhoneNumber = core.CleanString(na.PhoneNumber)
	na.CurrentAddress = core.CleanString(na.CurrentAddress)
	na.PermanentAddress = core.CleanString(na.PermanentAddress)
	na.City = core.CleanString(na.City)
	na.ZipCode = core.CleanString(na.ZipCode)
	na.AdmissionClass = core.CleanString(na.AdmissionClass)
	na.PreviousSchool = core.CleanString(na.PreviousSchool)

	var flds []core.FieldError
	if err := validate.Struct(na); err != nil {
		vErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		flds = core.TranslateErrors(vErrs, translator)
	}
	flds = append(flds, na.validateDocuments(conf.Upload)...)

	if len(flds) > 0 {
		return core.NewValidationError(errValidationFailed, flds...)
	}
	return nil
}

// QueryFilter partitions the applicant listing; fields combine with AND.
type QueryFilter struct {
	Status      Status    `query:"status"`
	IsVerified  *bool     `query:"is_verified"`
	Search      string    `query:"search"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Status == "" && qf.IsVerified == nil && qf.Search == "" &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = Status(core.CleanString(string(qf.Status), true /* lower */))
}

type GetFilter struct {
	ID       string
	PortalID string
	Email    string
}

// newPortalID generates the human-facing applicant identifier.
func newPortalID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "UDH-" + strings.ToUpper(raw[:8])
}
