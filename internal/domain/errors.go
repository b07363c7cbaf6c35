package domain

import "errors"

var (
	ErrFlowOpen          = errors.New("question flow already open")
	ErrIllegalTransition = errors.New("illegal flow transition")
	ErrFolderNotFound    = errors.New("work-tracking folder not found")
	ErrUnparsedAnswer    = errors.New("answer not recognized")
	ErrInvalidMode       = errors.New("invalid dispatch mode")
)
