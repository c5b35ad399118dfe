package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/kymani/udahili/apps/api/echo"
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newSubmissionRequest builds the multipart form an applicant's browser would send.
// files maps a form field to its upload; a nil content skips the file entirely.
func newSubmissionRequest(t *testing.T, fields map[string]string, files map[string][]byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for field, val := range fields {
		if err := w.WriteField(field, val); err != nil {
			t.Fatalf("WriteField(%s): %v", field, err)
		}
	}
	for field, content := range files {
		if content == nil {
			continue
		}
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+field+`.png"`)
		hdr.Set("Content-Type", "image/png")
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("CreatePart(%s): %v", field, err)
		}
		if _, err = part.Write(content); err != nil {
			t.Fatalf("part.Write(%s): %v", field, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart.Close(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/admissions", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	return req, rec
}

func submissionFields(email string) map[string]string {
	return map[string]string{
		"full_name":         "Jane Doe",
		"father_name":       "John Doe",
		"gender":            "female",
		"date_of_birth":     "2015-04-12",
		"email":             email,
		"phone_number":      "+243123456",
		"current_address":   "12 Acacia Ave",
		"permanent_address": "12 Acacia Ave",
		"city":              "Kinshasa",
		"zip_code":          "00243",
		"previous_school":   "Sunrise Primary",
	}
}

func submissionFiles() map[string][]byte {
	png := []byte("\x89PNG\r\n\x1a\n")
	return map[string][]byte{
		"student_photo":     png,
		"id_proof":          png,
		"birth_certificate": png,
	}
}

func getAdminToken(t *testing.T) string {
	t.Helper()
	claims := GetStaffClaims(conf, "Head Teacher")
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getAdminToken() failed: %v", err)
	}
	return token
}

func getStaffToken(t *testing.T) string { // non-admin
	t.Helper()
	claims := GetStaffClaims(conf, "Clerk")
	claims.IsAdmin = false
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getStaffToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(dst); err != nil {
		t.Fatalf("decodeBody() failed: %v; body = %s", err, rec.Body.String())
	}
}
