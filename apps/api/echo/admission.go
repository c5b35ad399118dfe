package echoapi

import (
	"io"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kymani/udahili/core"
	"github.com/kymani/udahili/core/admission"
)

type admissionApi struct {
	svc        admission.ServiceInterface
	validate   *validator.Validate
	translator ut.Translator
	conf       *core.Config
}

// SubmitResponse carries the identifiers the applicant needs to track their application.
type SubmitResponse struct {
	ID       string `json:"id"`
	PortalID string `json:"portal_id"`
}

func registerAdmissionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := admissionApi{
		svc:        deps.AdmissionSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
		conf:       deps.Conf,
	}

	ag := g.Group("/admissions")

	// applicant-facing endpoint
	ag.POST("", api.submit)

	// review endpoints
	rg := ag.Group("", jwt, adminMiddleware())
	rg.GET("", api.query)
	rg.GET("/:id", api.retrieve)
	rg.POST("/:id/verify", api.toggleVerification)
	rg.POST("/:id/reject", api.toggleRejection)
}

// Handlers

func (api *admissionApi) submit(ctx echo.Context) error {
	data := admission.NewApplication{
		FullName:         ctx.FormValue("full_name"),
		FatherName:       ctx.FormValue("father_name"),
		Gender:           ctx.FormValue("gender"),
		DateOfBirth:      ctx.FormValue("date_of_birth"),
		Email:            ctx.FormValue("email"),
		PhoneNumber:      ctx.FormValue("phone_number"),
		CurrentAddress:   ctx.FormValue("current_address"),
		PermanentAddress: ctx.FormValue("permanent_address"),
		City:             ctx.FormValue("city"),
		ZipCode:          ctx.FormValue("zip_code"),
		AdmissionClass:   ctx.FormValue("admission_class"),
		PreviousSchool:   ctx.FormValue("previous_school"),
	}

	var err error
	if data.StudentPhoto, err = api.formDocument(ctx, "student_photo"); err != nil {
		return err
	}
	if data.IDProof, err = api.formDocument(ctx, "id_proof"); err != nil {
		return err
	}
	if data.BirthCertificate, err = api.formDocument(ctx, "birth_certificate"); err != nil {
		return err
	}

	if err = data.Validate(api.validate, api.translator, api.conf); err != nil {
		return err
	}

	app, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, SubmitResponse{ID: app.ID, PortalID: app.PortalID})
}

// formDocument reads an uploaded file into an admission.Document. A missing
// file yields a zero Document; validation reports it with the rest of the
// violations so the caller sees all of them at once.
func (api *admissionApi) formDocument(ctx echo.Context, field string) (admission.Document, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return admission.Document{}, nil
	}
	f, err := fh.Open()
	if err != nil {
		return admission.Document{}, errors.Wrap(err, "opening upload "+field)
	}
	defer func() { _ = f.Close() }()

	// read one byte past the limit so oversized uploads are caught without buffering them fully
	content, err := io.ReadAll(io.LimitReader(f, api.conf.Upload.MaxSize+1))
	if err != nil {
		return admission.Document{}, errors.Wrap(err, "reading upload "+field)
	}
	return admission.Document{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Content:     content,
	}, nil
}

func (api *admissionApi) query(ctx echo.Context) error {
	filter := bindApplicantFilter(ctx)
	ord := new(Ordering)
	ord.Bind(ctx)

	apps, err := api.svc.Filter(ctx.Request().Context(), filter, ord.Orderings)
	if err != nil {
		return errors.Wrap(err, "filtering applicants")
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *admissionApi) retrieve(ctx echo.Context) error {
	app, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *admissionApi) toggleVerification(ctx echo.Context) error {
	app, err := api.svc.ToggleVerification(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *admissionApi) toggleRejection(ctx echo.Context) error {
	app, err := api.svc.ToggleRejection(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}
