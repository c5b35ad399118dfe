package class

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/kymani/udahili/core"
)

type Class struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Level     null.String `json:"level"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}

// NewClass contains information needed to register a new admission class.
type NewClass struct {
	Name  string `json:"name" validate:"required"`
	Level string `json:"level"`
}

func (nc *NewClass) Validate(validate *validator.Validate, translator ut.Translator) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Level = core.CleanString(nc.Level)

	if err := validate.Struct(nc); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			return core.NewValidationError(err, core.TranslateErrors(vErrs, translator)...)
		}
		return err
	}
	return nil
}
