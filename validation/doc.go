// Package validation provides input validation for extractd.
//
// Struct tag validation (backed by go-playground/validator) is used for
// configuration sections and request payloads; the programmatic Validator
// collects field errors for checks that depend on runtime values.
//
//	type StartRequest struct {
//	    Rows int `json:"rows" validate:"gte=0"`
//	}
//	err := validation.Validate(req)
//
//	v := validation.New()
//	v.Range("rows", n, 0, maxRows)
//	err := v.Validate()
package validation
