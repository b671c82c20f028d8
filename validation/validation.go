// Package validation implements the submit-time answer checks for the
// form viewer. Validation is pure and is re-run in full on every
// submit attempt.
package validation

import "github.com/formlet/formlet/model"

const (
	msgRequired  = "This field is required"
	msgBadAnswer = "Invalid answer for this field"
)

// Errors maps failing field ids (or reserved identity keys) to
// user-facing messages. An empty map means the submission is valid.
type Errors map[string]string

// Validate checks answers against the form's fields. A field fails iff
// it is required and its answer is absent, an empty list, or a string
// that is blank after trimming. An answer whose shape contradicts the
// field type (a list for a text field, or vice versa) also fails.
//
// When requireIdentity is set, the reserved user_name and user_email
// pseudo-fields are validated by the same required rule; this is the
// anonymous submission path with no known identity.
func Validate(fields []model.Field, answers model.Answers, requireIdentity bool) Errors {
	errs := Errors{}

	for _, f := range fields {
		answer, ok := answers[f.ID]
		if !ok || answer.Empty() {
			if f.Required {
				errs[f.ID] = msgRequired
			}
			continue
		}

		wantList := f.Type.Input().Answer == model.AnswerList
		if answer.IsList() != wantList {
			errs[f.ID] = msgBadAnswer
		}
	}

	if requireIdentity {
		for _, key := range []string{model.UserNameKey, model.UserEmailKey} {
			if answer, ok := answers[key]; !ok || answer.Empty() {
				errs[key] = msgRequired
			}
		}
	}

	return errs
}
