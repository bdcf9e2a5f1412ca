package service

import "regexp"

// Form validation rules.
//
// Signup runs every check independently and accumulates one named error per
// failing field — the form re-renders with all of them at once rather than
// short-circuiting on the first failure. FieldErrors is that accumulator:
// empty map means the submission is valid.
//
// Every route that validates fields calls these shared functions; no handler
// carries its own copy of the rules.

type FieldErrors map[string]string

var (
	namePattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
	passwordPattern = regexp.MustCompile(`^.{3,20}$`)
	emailPattern    = regexp.MustCompile(`^[\S]+@[\S]+\.[\S]+$`)
)

// ValidateSignUp checks the four signup fields and returns one error per
// failing field. The email is optional — only validated when non-empty.
func ValidateSignUp(name, password, verify, email string) FieldErrors {
	errs := FieldErrors{}

	if !namePattern.MatchString(name) {
		errs["name"] = "That's not a valid user name"
	}
	if !passwordPattern.MatchString(password) {
		errs["password"] = "That wasn't a valid password"
	}
	if verify != password {
		errs["verify"] = "Your passwords didn't match"
	}
	if email != "" && !emailPattern.MatchString(email) {
		errs["email"] = "That's not a valid email"
	}

	return errs
}
