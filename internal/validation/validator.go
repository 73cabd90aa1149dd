// Package validation checks the upload form before any extraction runs.
package validation

import (
	"errors"
	"strings"
	"time"

	"github.com/Polyte/OMS-OCR/internal/models"
)

// Messages reported to the client, in check order.
const (
	MsgFirstNameRequired = "First name is required"
	MsgSurNameRequired   = "Surname is required"
	MsgDOBRequired       = "Date of birth is required"
	MsgDOBInvalid        = "Date of birth is invalid"
	MsgDOBInFuture       = "Date of birth cannot be in the future"
	MsgFileRequired      = "Document or file is required"
)

const dateLayout = "2006-01-02"

var errBadDate = errors.New("unrecognized date format")

// Form holds the raw text fields of the upload form.
type Form struct {
	FirstName   string
	SurName     string
	DateOfBirth string
}

// Result is the outcome of Validate. Data is set only when IsValid.
type Result struct {
	IsValid bool
	Errors  []string
	Data    *models.UploadRequest
}

// Validate runs every check and collects all failures in order.
// now decides what counts as a future date of birth.
func Validate(form Form, file *models.StoredFile, now time.Time) Result {
	var errs []string

	firstName := strings.TrimSpace(form.FirstName)
	surName := strings.TrimSpace(form.SurName)

	if firstName == "" {
		errs = append(errs, MsgFirstNameRequired)
	}
	if surName == "" {
		errs = append(errs, MsgSurNameRequired)
	}

	if strings.TrimSpace(form.DateOfBirth) == "" {
		errs = append(errs, MsgDOBRequired)
	} else if birth, err := ParseDate(form.DateOfBirth, now.Location()); err != nil {
		errs = append(errs, MsgDOBInvalid)
	} else if isAfterDay(birth, now) {
		errs = append(errs, MsgDOBInFuture)
	}

	if file == nil || file.Size <= 0 {
		errs = append(errs, MsgFileRequired)
	}

	if len(errs) > 0 {
		return Result{IsValid: false, Errors: errs}
	}

	return Result{
		IsValid: true,
		Errors:  []string{},
		Data: &models.UploadRequest{
			FirstName:   firstName,
			SurName:     surName,
			DateOfBirth: form.DateOfBirth,
			File:        file,
		},
	}
}

// ParseDate accepts an ISO calendar date (2006-01-02) or an RFC 3339
// timestamp. Plain dates are placed at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, errBadDate
}

// isAfterDay reports whether t falls on a later calendar day than now.
func isAfterDay(t, now time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.After(today)
}
