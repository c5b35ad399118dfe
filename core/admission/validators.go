package admission

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kymani/udahili/core"
)

var (
	docRequiredText = "this document is required"
	docTypeText     = "only image uploads are allowed"
	docTooLargeFmt  = "document may not exceed %dMB"
)

// documentFields binds each required upload to the field name reported to callers.
func (na *NewApplication) documents() []struct {
	field string
	doc   Document
} {
	return []struct {
		field string
		doc   Document
	}{
		{"student_photo", na.StudentPhoto},
		{"id_proof", na.IDProof},
		{"birth_certificate", na.BirthCertificate},
	}
}

// validateDocuments checks that all three documents are present, of an allowed
// image type and within the configured size limit. All violations are reported.
func (na *NewApplication) validateDocuments(conf core.UploadConfig) []core.FieldError {
	flds := make([]core.FieldError, 0, 3)
	for _, d := range na.documents() {
		if msg := checkDocument(d.doc, conf); msg != "" {
			flds = append(flds, core.FieldError{Field: d.field, Error: msg})
		}
	}
	return flds
}

func checkDocument(doc Document, conf core.UploadConfig) string {
	if len(doc.Content) == 0 {
		return docRequiredText
	}

	ct := doc.ContentType
	if ct == "" {
		ct = http.DetectContentType(doc.Content)
	}
	var allowed bool
	for _, t := range conf.AllowedTypes {
		if strings.EqualFold(ct, t) {
			allowed = true
			break
		}
	}
	if !allowed {
		return docTypeText
	}

	size := doc.Size
	if n := int64(len(doc.Content)); n > size {
		size = n
	}
	if size > conf.MaxSize {
		return fmt.Sprintf(docTooLargeFmt, conf.MaxSize>>20)
	}
	return ""
}
