package admission_test

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/kymani/udahili/core"
	"github.com/kymani/udahili/core/admission"
	"github.com/kymani/udahili/core/class"
	notifsvc "github.com/kymani/udahili/services/notification"
	storagesvc "github.com/kymani/udahili/services/storage"
	inmemdb "github.com/kymani/udahili/storage/database/inmem"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func TestMain(m *testing.M) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	validate = validator.New()
	core.InitValidators(validate, translator)

	m.Run()
}

type testDeps struct {
	svc        admission.ServiceInterface
	repo       admission.Repository
	clsSvc     class.ServiceInterface
	dispatcher *notifsvc.DispatcherMock
	conf       *core.Config
}

func setup(t *testing.T) testDeps {
	t.Helper()

	conf := core.NewConfig()
	conf.Upload.MaxSize = 1 << 20 // keep oversize fixtures small

	dispatcher := notifsvc.NewDispatcherMock()
	repo := inmemdb.NewApplicantRepository()
	clsSvc := class.NewService(inmemdb.NewClassRepository())
	svc := admission.NewService(
		repo,
		clsSvc,
		storagesvc.NewLocalUploader(t.TempDir()),
		dispatcher,
		conf,
	)
	return testDeps{svc: svc, repo: repo, clsSvc: clsSvc, dispatcher: dispatcher, conf: conf}
}

func photo() admission.Document {
	return admission.Document{Name: "photo.png", ContentType: "image/png", Size: 4, Content: []byte("\x89PNG")}
}

func validApplication() admission.NewApplication {
	return admission.NewApplication{
		FullName:         "Jane Doe",
		FatherName:       "John Doe",
		Gender:           "female",
		DateOfBirth:      "2015-04-12",
		Email:            "jane.doe@test.cd",
		PhoneNumber:      "+243123456",
		CurrentAddress:   "12 Acacia Ave",
		PermanentAddress: "12 Acacia Ave",
		City:             "Kinshasa",
		ZipCode:          "00243",
		PreviousSchool:   "Sunrise Primary",
		StudentPhoto:     photo(),
		IDProof:          photo(),
		BirthCertificate: photo(),
	}
}

func fieldSet(t *testing.T, err error) []string {
	t.Helper()
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("expected *core.ValidationError, got %T: %v", err, err)
	}
	flds := make([]string, 0, len(vErr.Fields))
	for _, fld := range vErr.Fields {
		flds = append(flds, fld.Field)
	}
	sort.Strings(flds)
	return flds
}

func Test_NewApplication_Validate(t *testing.T) {
	deps := setup(t)

	oversized := photo()
	oversized.Content = bytes.Repeat([]byte("a"), int(deps.conf.Upload.MaxSize)+1)

	pdf := photo()
	pdf.ContentType = "application/pdf"

	tests := []struct {
		name       string
		mutate     func(na *admission.NewApplication)
		wantFields []string
	}{
		{name: "valid", mutate: func(na *admission.NewApplication) {}},
		{
			name: "missing city and zip",
			mutate: func(na *admission.NewApplication) {
				na.City = " "
				na.ZipCode = ""
			},
			wantFields: []string{"city", "zip_code"},
		},
		{
			name:       "unknown gender",
			mutate:     func(na *admission.NewApplication) { na.Gender = "robot" },
			wantFields: []string{"gender"},
		},
		{
			name:       "malformed date",
			mutate:     func(na *admission.NewApplication) { na.DateOfBirth = "12/04/2015" },
			wantFields: []string{"date_of_birth"},
		},
		{
			name:       "invalid email",
			mutate:     func(na *admission.NewApplication) { na.Email = "not-an-email" },
			wantFields: []string{"email"},
		},
		{
			name:       "short phone number",
			mutate:     func(na *admission.NewApplication) { na.PhoneNumber = "123" },
			wantFields: []string{"phone_number"},
		},
		{
			name:   "phone number is optional",
			mutate: func(na *admission.NewApplication) { na.PhoneNumber = "" },
		},
		{
			name:       "missing documents",
			mutate:     func(na *admission.NewApplication) { na.IDProof = admission.Document{}; na.BirthCertificate = admission.Document{} },
			wantFields: []string{"birth_certificate", "id_proof"},
		},
		{
			name:       "non-image document",
			mutate:     func(na *admission.NewApplication) { na.IDProof = pdf },
			wantFields: []string{"id_proof"},
		},
		{
			name:       "oversized document",
			mutate:     func(na *admission.NewApplication) { na.StudentPhoto = oversized },
			wantFields: []string{"student_photo"},
		},
		{
			name: "all fields missing reported at once",
			mutate: func(na *admission.NewApplication) {
				*na = admission.NewApplication{}
			},
			wantFields: []string{
				"birth_certificate", "city", "current_address", "date_of_birth", "email",
				"father_name", "full_name", "gender", "id_proof", "permanent_address",
				"student_photo", "zip_code",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validApplication()
			tt.mutate(&data)

			err := data.Validate(validate, translator, deps.conf)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			got := fieldSet(t, err)
			if !equalStrings(got, tt.wantFields) {
				t.Errorf("Validate() fields = %v; want %v", got, tt.wantFields)
			}
		})
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func Test_service_Submit(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()

	data := validApplication()
	if err := data.Validate(validate, translator, deps.conf); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	app, err := deps.svc.Submit(ctx, data)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	if app.Status != admission.StatusPending {
		t.Errorf("Status = %v; want %v", app.Status, admission.StatusPending)
	}
	if app.IsVerified {
		t.Error("IsVerified = true on a fresh submission")
	}
	if !strings.HasPrefix(app.PortalID, "UDH-") {
		t.Errorf("PortalID = %q; want UDH- prefix", app.PortalID)
	}
	if app.StudentPhoto == "" || app.IDProof == "" || app.BirthCertificate == "" {
		t.Error("document locators not captured")
	}
	if app.HasClass() {
		t.Errorf("HasClass() = true; class = %q", app.AdmissionClass.String)
	}
	if app.Class() != admission.NoClassSentinel {
		t.Errorf("Class() = %q; want %q", app.Class(), admission.NoClassSentinel)
	}

	// a duplicate email must not create a second record
	dup := validApplication()
	dup.Email = strings.ToUpper(data.Email) // uniqueness is case-insensitive
	if _, err = deps.svc.Submit(ctx, dup); err == nil {
		t.Fatal("Submit() with duplicate email succeeded")
	} else if got := fieldSet(t, err); !equalStrings(got, []string{"email"}) {
		t.Errorf("Submit() duplicate email fields = %v; want [email]", got)
	}

	apps, err := deps.svc.Filter(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Filter() failed: %v", err)
	}
	if len(apps) != 1 {
		t.Errorf("applicant count = %d; want 1", len(apps))
	}
}

func Test_service_Submit_sentinelClassIgnored(t *testing.T) {
	deps := setup(t)

	data := validApplication()
	data.AdmissionClass = admission.NoClassSentinel

	ctx := context.Background()
	app, err := deps.svc.Submit(ctx, data)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if app.HasClass() {
		t.Error("sentinel class treated as a real assignment")
	}
	if _, err = deps.svc.ToggleVerification(ctx, app.ID); err != admission.ErrNotEligible {
		t.Errorf("ToggleVerification() error = %v; want %v", err, admission.ErrNotEligible)
	}
}

func Test_service_ToggleVerification(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()

	app, err := deps.svc.Submit(ctx, validApplication())
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	// no class assigned
	if _, err = deps.svc.ToggleVerification(ctx, app.ID); err != admission.ErrNotEligible {
		t.Errorf("ToggleVerification() error = %v; want %v", err, admission.ErrNotEligible)
	}
	if got, _ := deps.svc.Get(ctx, app.ID); got.IsVerified {
		t.Error("IsVerified flipped despite ineligibility")
	}

	// class assigned but not registered
	app.AdmissionClass = null.StringFrom("Grade 5")
	if _, err = deps.repo.UpdateApplicant(ctx, app); err != nil {
		t.Fatalf("UpdateApplicant() failed: %v", err)
	}
	if _, err = deps.svc.ToggleVerification(ctx, app.ID); err != admission.ErrNotEligible {
		t.Errorf("ToggleVerification() error = %v; want %v", err, admission.ErrNotEligible)
	}

	// registered class
	if _, err = deps.clsSvc.Create(ctx, class.NewClass{Name: "Grade 5"}); err != nil {
		t.Fatalf("Create() class failed: %v", err)
	}

	app, err = deps.svc.ToggleVerification(ctx, app.ID)
	if err != nil {
		t.Fatalf("ToggleVerification() failed: %v", err)
	}
	if !app.IsVerified {
		t.Error("IsVerified = false after toggle")
	}

	app, err = deps.svc.ToggleVerification(ctx, app.ID)
	if err != nil {
		t.Fatalf("ToggleVerification() failed: %v", err)
	}
	if app.IsVerified {
		t.Error("IsVerified = true after second toggle")
	}

	events := sentEvents(deps.dispatcher)
	want := []core.NotificationEvent{core.EventVerified, core.EventUnverified}
	if len(events) != len(want) {
		t.Fatalf("notifications = %v; want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("notification[%d] = %v; want %v", i, events[i], want[i])
		}
	}
}

func Test_service_ToggleRejection(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()

	app, err := deps.svc.Submit(ctx, validApplication())
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	app, err = deps.svc.ToggleRejection(ctx, app.ID)
	if err != nil {
		t.Fatalf("ToggleRejection() failed: %v", err)
	}
	if app.Status != admission.StatusRejected {
		t.Errorf("Status = %v; want %v", app.Status, admission.StatusRejected)
	}

	app, err = deps.svc.ToggleRejection(ctx, app.ID)
	if err != nil {
		t.Fatalf("ToggleRejection() failed: %v", err)
	}
	if app.Status != admission.StatusPending {
		t.Errorf("Status = %v; want %v", app.Status, admission.StatusPending)
	}

	events := sentEvents(deps.dispatcher)
	want := []core.NotificationEvent{core.EventRejected, core.EventUnrejected}
	if len(events) != len(want) {
		t.Fatalf("notifications = %v; want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("notification[%d] = %v; want %v", i, events[i], want[i])
		}
	}
}

// rejection and verification are independent axes
func Test_service_rejectionPreservesVerification(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()

	data := validApplication()
	data.AdmissionClass = "Grade 5"
	if _, err := deps.clsSvc.Create(ctx, class.NewClass{Name: "Grade 5"}); err != nil {
		t.Fatalf("Create() class failed: %v", err)
	}

	app, err := deps.svc.Submit(ctx, data)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if app, err = deps.svc.ToggleVerification(ctx, app.ID); err != nil {
		t.Fatalf("ToggleVerification() failed: %v", err)
	}

	app, err = deps.svc.ToggleRejection(ctx, app.ID)
	if err != nil {
		t.Fatalf("ToggleRejection() failed: %v", err)
	}
	if !app.IsVerified {
		t.Error("rejection cleared the verification flag")
	}
	if app.Status != admission.StatusRejected {
		t.Errorf("Status = %v; want %v", app.Status, admission.StatusRejected)
	}

	app, err = deps.svc.ToggleRejection(ctx, app.ID)
	if err != nil {
		t.Fatalf("ToggleRejection() failed: %v", err)
	}
	if !app.IsVerified {
		t.Error("un-rejection cleared the verification flag")
	}
	if app.Status != admission.StatusPending {
		t.Errorf("Status = %v; want %v", app.Status, admission.StatusPending)
	}
}

func Test_service_toggles_unknownApplicant(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()

	if _, err := deps.svc.ToggleVerification(ctx, "9e3a4184-0000-0000-0000-000000000000"); err != admission.ErrNotFound {
		t.Errorf("ToggleVerification() error = %v; want %v", err, admission.ErrNotFound)
	}
	if _, err := deps.svc.ToggleRejection(ctx, "9e3a4184-0000-0000-0000-000000000000"); err != admission.ErrNotFound {
		t.Errorf("ToggleRejection() error = %v; want %v", err, admission.ErrNotFound)
	}
}

func Test_service_Filter(t *testing.T) {
	deps := setup(t)
	ctx := context.Background()

	jane := validApplication()
	john := validApplication()
	john.FullName = "John Smith"
	john.Email = "john.smith@test.cd"

	japp, err := deps.svc.Submit(ctx, jane)
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if _, err = deps.svc.Submit(ctx, john); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if _, err = deps.svc.ToggleRejection(ctx, japp.ID); err != nil {
		t.Fatalf("ToggleRejection() failed: %v", err)
	}

	tests := []struct {
		name   string
		filter *admission.QueryFilter
		want   int
	}{
		{name: "no filter", filter: nil, want: 2},
		{name: "pending", filter: &admission.QueryFilter{Status: admission.StatusPending}, want: 1},
		{name: "rejected", filter: &admission.QueryFilter{Status: admission.StatusRejected}, want: 1},
		{name: "search by name", filter: &admission.QueryFilter{Search: "smith"}, want: 1},
		{name: "search by portal id", filter: &admission.QueryFilter{Search: japp.PortalID}, want: 1},
		{name: "search no match", filter: &admission.QueryFilter{Search: "nobody"}, want: 0},
		{name: "unverified", filter: &admission.QueryFilter{IsVerified: boolPtr(false)}, want: 2},
		{name: "verified", filter: &admission.QueryFilter{IsVerified: boolPtr(true)}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps, err := deps.svc.Filter(ctx, tt.filter, nil)
			if err != nil {
				t.Fatalf("Filter() failed: %v", err)
			}
			if len(apps) != tt.want {
				t.Errorf("Filter() count = %d; want %d", len(apps), tt.want)
			}
		})
	}
}

func boolPtr(b bool) *bool { return &b }

func sentEvents(dispatcher *notifsvc.DispatcherMock) []core.NotificationEvent {
	sent := dispatcher.Sent()
	events := make([]core.NotificationEvent, 0, len(sent))
	for _, n := range sent {
		events = append(events, n.Event)
	}
	return events
}
