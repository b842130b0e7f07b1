package serverutils

import (
	"fmt"

	"tourism-chat-be/internal/pkg/apperr"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks struct tags and folds the first violation into
// an InvalidInput error so no store mutation is ever attempted on a
// malformed request.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			first := verrs[0]
			return apperr.InvalidInput(fmt.Sprintf("Field '%s' failed validation (%s)", first.Field(), first.Tag()))
		}
		return apperr.InvalidInput("Invalid request payload")
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = verrs
	}
	return ok
}
