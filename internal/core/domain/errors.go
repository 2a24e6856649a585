package domain

import "errors"

// Code is a stable machine-readable error code.
type Code string

const (
	CodeUnknown           Code = "UNKNOWN"
	CodeInvalidParameters Code = "INVALID_PARAMETERS"
	CodeDuplicateCampaign Code = "DUPLICATE_CAMPAIGN"
	CodeCampaignNotFound  Code = "CAMPAIGN_NOT_FOUND"
	CodeCampaignNotActive Code = "CAMPAIGN_NOT_ACTIVE"
	CodeExceedsSupply     Code = "EXCEEDS_SUPPLY"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeTransferFailed    Code = "TRANSFER_FAILED"
	CodeStaleSnapshot     Code = "STALE_SNAPSHOT"
)

// Error is a ledger error tagged with a Code. Sentinels below are compared
// with errors.Is; wrap them with fmt.Errorf to add detail.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrInvalidParameters = &Error{Code: CodeInvalidParameters, Message: "invalid parameters"}
	ErrDuplicateCampaign = &Error{Code: CodeDuplicateCampaign, Message: "campaign already exists"}
	ErrCampaignNotFound  = &Error{Code: CodeCampaignNotFound, Message: "campaign not found"}
	ErrCampaignNotActive = &Error{Code: CodeCampaignNotActive, Message: "campaign is not active"}
	ErrExceedsSupply     = &Error{Code: CodeExceedsSupply, Message: "distribution exceeds remaining supply"}
	ErrInvalidTransition = &Error{Code: CodeInvalidTransition, Message: "campaign status transition is not allowed"}
	ErrUnauthorized      = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrTransferFailed    = &Error{Code: CodeTransferFailed, Message: "token transfer failed"}
	// ErrStaleSnapshot means the record changed between read and commit.
	// The caller may retry the whole operation.
	ErrStaleSnapshot = &Error{Code: CodeStaleSnapshot, Message: "campaign changed concurrently"}
)

// CodeOf returns the Code of the first ledger error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
