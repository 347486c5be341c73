package projects

import "errors"

var (
	// ErrProjectNotFound means the project id does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrEvidenceNotFound means the evidence id does not exist on the
	// given project.
	ErrEvidenceNotFound = errors.New("evidence not found")
	// ErrRequestNotFound means the expert request id does not exist.
	ErrRequestNotFound = errors.New("request not found")
	// ErrQuoteNotFound means the quote id does not exist.
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrForbidden means the principal is neither an admin nor the owner
	// required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNoNewRequests means every supplied expert id already held a
	// request on the project.
	ErrNoNewRequests = errors.New("no new requests created")
	// ErrUnknownExpert means a supplied id is not a verified expert.
	ErrUnknownExpert = errors.New("unknown or unverified expert")
	// ErrRequestClosed means the request is no longer open for quotes.
	ErrRequestClosed = errors.New("request no longer accepts quotes")
	// ErrProjectDecided means the project already has an accepted request;
	// acceptance happens at most once per project.
	ErrProjectDecided = errors.New("project already has an accepted request")
)
