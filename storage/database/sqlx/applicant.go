package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/kymani/udahili/core"
	"github.com/kymani/udahili/core/admission"
)

// applicantRow mirrors the applicant table.
type applicantRow struct {
	ID               string      `db:"id"`
	PortalID         string      `db:"portal_id"`
	FullName         string      `db:"full_name"`
	FatherName       string      `db:"father_name"`
	Gender           string      `db:"gender"`
	DateOfBirth      time.Time   `db:"date_of_birth"`
	Email            string      `db:"email"`
	PhoneNumber      null.String `db:"phone_number"`
	CurrentAddress   string      `db:"current_address"`
	PermanentAddress string      `db:"permanent_address"`
	City             string      `db:"city"`
	ZipCode          string      `db:"zip_code"`
	AdmissionClass   null.String `db:"admission_class"`
	PreviousSchool   null.String `db:"previous_school"`
	StudentPhoto     string      `db:"student_photo"`
	IDProof          string      `db:"id_proof"`
	BirthCertificate string      `db:"birth_certificate"`
	Status           string      `db:"status"`
	IsVerified       bool        `db:"is_verified"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

// orderableApplicantColumns guards against ordering on arbitrary SQL.
var orderableApplicantColumns = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"full_name":   true,
	"status":      true,
	"is_verified": true,
}

type applicantRepository struct {
	db *sqlx.DB
}

var _ admission.Repository = (*applicantRepository)(nil) // interface compliance check

func NewApplicantRepository(db *sql.DB) *applicantRepository {
	return &applicantRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo applicantRepository) pack(app admission.Applicant) applicantRow {
	return applicantRow{
		ID:               app.ID,
		PortalID:         app.PortalID,
		FullName:         app.FullName,
		FatherName:       app.FatherName,
		Gender:           app.Gender,
		DateOfBirth:      app.DateOfBirth,
		Email:            app.Email,
		PhoneNumber:      app.PhoneNumber,
		CurrentAddress:   app.CurrentAddress,
		PermanentAddress: app.PermanentAddress,
		City:             app.City,
		ZipCode:          app.ZipCode,
		AdmissionClass:   app.AdmissionClass,
		PreviousSchool:   app.PreviousSchool,
		StudentPhoto:     app.StudentPhoto,
		IDProof:          app.IDProof,
		BirthCertificate: app.BirthCertificate,
		Status:           string(app.Status),
		IsVerified:       app.IsVerified,
		CreatedAt:        app.CreatedAt.UTC(),
		UpdatedAt:        app.UpdatedAt.UTC(),
	}
}

func (repo applicantRepository) unpack(row applicantRow) admission.Applicant {
	return admission.Applicant{
		ID:               row.ID,
		PortalID:         row.PortalID,
		FullName:         row.FullName,
		FatherName:       row.FatherName,
		Gender:           row.Gender,
		DateOfBirth:      row.DateOfBirth,
		Email:            row.Email,
		PhoneNumber:      row.PhoneNumber,
		CurrentAddress:   row.CurrentAddress,
		PermanentAddress: row.PermanentAddress,
		City:             row.City,
		ZipCode:          row.ZipCode,
		AdmissionClass:   row.AdmissionClass,
		PreviousSchool:   row.PreviousSchool,
		StudentPhoto:     row.StudentPhoto,
		IDProof:          row.IDProof,
		BirthCertificate: row.BirthCertificate,
		Status:           admission.Status(row.Status),
		IsVerified:       row.IsVerified,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func (repo applicantRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM applicant WHERE lower(email) = lower($1))", email)
	if err != nil {
		return errors.Wrap(err, "checking applicant email uniqueness")
	}
	if exists {
		return admission.ErrEmailExists
	}
	return nil
}

func (repo applicantRepository) CreateApplicant(ctx context.Context, app admission.Applicant) (admission.Applicant, error) {
	app.ID = uuid.New().String()
	row := repo.pack(app)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO applicant (
			id, portal_id, full_name, father_name, gender, date_of_birth, email, phone_number,
			current_address, permanent_address, city, zip_code, admission_class, previous_school,
			student_photo, id_proof, birth_certificate, status, is_verified, created_at, updated_at
		) VALUES (
			:id, :portal_id, :full_name, :father_name, :gender, :date_of_birth, :email, :phone_number,
			:current_address, :permanent_address, :city, :zip_code, :admission_class, :previous_school,
			:student_photo, :id_proof, :birth_certificate, :status, :is_verified, :created_at, :updated_at
		)`, row)
	if err != nil {
		// the unique email index is the last line of defense against a racing duplicate
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && pqErr.Constraint == "applicant_email_key" {
			return admission.Applicant{}, admission.ErrEmailExists
		}
		return admission.Applicant{}, errors.Wrap(err, "inserting applicant")
	}
	return repo.unpack(row), nil
}

func (repo applicantRepository) GetApplicant(ctx context.Context, filter admission.GetFilter) (admission.Applicant, error) {
	var query string
	var arg string

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return admission.Applicant{}, admission.ErrNotFound
		}
		query, arg = "SELECT * FROM applicant WHERE id = $1", filter.ID
	case filter.PortalID != "":
		query, arg = "SELECT * FROM applicant WHERE portal_id = $1", filter.PortalID
	case filter.Email != "":
		query, arg = "SELECT * FROM applicant WHERE lower(email) = lower($1)", filter.Email
	default:
		return admission.Applicant{}, admission.ErrNotFound
	}

	var row applicantRow
	if err := repo.db.GetContext(ctx, &row, query, arg); err != nil {
		if err == sql.ErrNoRows {
			return admission.Applicant{}, admission.ErrNotFound
		}
		return admission.Applicant{}, errors.Wrap(err, "finding applicant")
	}
	return repo.unpack(row), nil
}

func (repo applicantRepository) FilterApplicants(
	ctx context.Context,
	filter *admission.QueryFilter,
	ordering []core.DBOrdering,
) ([]admission.Applicant, error) {
	query := "SELECT * FROM applicant"
	var conds []string
	var args []interface{}

	if filter != nil {
		if filter.Status != "" {
			args = append(args, string(filter.Status))
			conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
		}
		if filter.IsVerified != nil {
			args = append(args, *filter.IsVerified)
			conds = append(conds, fmt.Sprintf("is_verified = $%d", len(args)))
		}
		// applicants with FullName, PortalID or Email matching the search keyword
		if filter.Search != "" {
			args = append(args, "%"+filter.Search+"%")
			n := len(args)
			conds = append(conds, fmt.Sprintf(
				"(full_name ILIKE $%d OR portal_id ILIKE $%d OR email ILIKE $%d)", n, n, n))
		}
		if !filter.CreatedFrom.IsZero() {
			args = append(args, filter.CreatedFrom.UTC())
			conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
		}
		if !filter.CreatedTo.IsZero() {
			args = append(args, filter.CreatedTo.UTC())
			conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if orderableApplicantColumns[ord.Field] {
			orderList = append(orderList, ord.String())
		}
	}
	if len(orderList) == 0 {
		orderList = append(orderList, core.DBOrdering{Field: "created_at"}.String())
	}
	query += " ORDER BY " + strings.Join(orderList, ", ")

	var rows []applicantRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying applicants")
	}

	apps := make([]admission.Applicant, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, repo.unpack(row))
	}
	return apps, nil
}

func (repo applicantRepository) UpdateApplicant(ctx context.Context, app admission.Applicant) (admission.Applicant, error) {
	row := repo.pack(app)
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE applicant SET
			admission_class = :admission_class,
			status = :status,
			is_verified = :is_verified,
			updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return admission.Applicant{}, errors.Wrap(err, "updating applicant")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return admission.Applicant{}, admission.ErrNotFound
	}
	return repo.unpack(row), nil
}
