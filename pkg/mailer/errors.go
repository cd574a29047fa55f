package mailer

import "errors"

var (
	// ErrNoSender indicates the From address is missing.
	ErrNoSender = errors.New("email must have a sender")

	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have at least one recipient")

	// ErrNoSubject indicates no subject was provided.
	ErrNoSubject = errors.New("email must have a subject")

	// ErrNoContent indicates neither HTML nor text content was provided.
	ErrNoContent = errors.New("email must have HTML or text content")

	// ErrInvalidAddress indicates an address could not be parsed.
	ErrInvalidAddress = errors.New("invalid email address")

	// ErrTemplateNotFound indicates the named template was not loaded.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrRenderFailed indicates template rendering failed.
	ErrRenderFailed = errors.New("failed to render template")

	// ErrSendFailed indicates the relay rejected the message or could not be reached.
	ErrSendFailed = errors.New("failed to send email")
)
