package recon

// errors.go maps internal errors to user-facing messages with stable
// codes the operator can quote to support. Patterns are matched against
// the error text; the first hit wins.

import (
	"errors"
	"fmt"
	"strings"
)

// errLocationRequired rejects update-mode requests without a location.
var errLocationRequired = errors.New("location id is required for update imports")

func errUnknownMode(m ImportMode) error {
	return fmt.Errorf("unknown import mode %q", m)
}

// UserMessage is the user-facing shape of an error.
type UserMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// errorPattern pairs error-text substrings with a UserMessage.
type errorPattern struct {
	substrings []string
	msg        UserMessage
}

var errorPatterns = []errorPattern{
	// File errors (FILE0xx)
	{[]string{"file too large"}, UserMessage{
		Code:    "FILE001",
		Message: "The file exceeds the maximum upload size",
		Action:  "Split the spreadsheet into smaller files and import each one",
	}},
	{[]string{"unsupported file type"}, UserMessage{
		Code:    "FILE002",
		Message: "Only .csv and .xlsx files can be imported",
		Action:  "Re-export the sheet as CSV or Excel and try again",
	}},
	{[]string{"malformed csv", "open workbook", "read worksheet"}, UserMessage{
		Code:    "FILE003",
		Message: "The file could not be parsed",
		Action:  "Check the reported row and re-export the file",
	}},
	{[]string{"no data rows"}, UserMessage{
		Code:    "FILE004",
		Message: "The file has no data rows",
		Action:  "Make sure the sheet has a header row followed by at least one item",
	}},

	// Validation errors (VAL0xx)
	{[]string{"could not locate required column"}, UserMessage{
		Code:    "VAL001",
		Message: "A required column could not be found",
		Action:  "Rename the SKU and quantity columns to recognizable headers",
	}},
	{[]string{"unknown import mode"}, UserMessage{
		Code:    "VAL002",
		Message: "Import mode must be baseline or update",
	}},
	{[]string{"location id is required"}, UserMessage{
		Code:    "VAL003",
		Message: "A target location is required for this operation",
		Action:  "Select a warehouse location and retry",
	}},

	// Database errors (DB0xx)
	{[]string{"duplicate key", "unique constraint"}, UserMessage{
		Code:    "DB001",
		Message: "A conflicting record already exists",
		Action:  "Refresh the preview and retry the import",
	}},
	{[]string{"connection refused", "connection reset"}, UserMessage{
		Code:    "DB002",
		Message: "The database is temporarily unavailable",
		Action:  "Try again in a few moments",
	}},
	{[]string{"timeout", "deadline exceeded", "context canceled"}, UserMessage{
		Code:    "DB003",
		Message: "The operation timed out",
		Action:  "Try a smaller file or retry later",
	}},

	// Import errors (IMP0xx)
	{[]string{"import record not found"}, UserMessage{
		Code:    "IMP001",
		Message: "No import with that ID exists",
	}},
}

// MapError translates err into a UserMessage. Unrecognized errors get a
// generic message with code GEN001; the technical detail stays in the
// server logs.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	text := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		for _, sub := range p.substrings {
			if strings.Contains(text, sub) {
				return p.msg
			}
		}
	}
	return UserMessage{
		Code:    "GEN001",
		Message: "Something went wrong processing the import",
		Action:  "Retry, and contact support with code GEN001 if it persists",
	}
}

// errMissingColumns builds the precondition failure for unmapped
// required fields. Kept as a helper so parse and tests agree on the
// wording MapError keys off.
func errMissingColumns(missing []CanonicalField) error {
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
	}
	return errors.New("could not locate required column(s): " + strings.Join(names, ", "))
}
