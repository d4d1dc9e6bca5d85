package simulator

import "errors"

var (
	errExecutionNotFound = errors.New("execution not found")
	errExecutionConsumed = errors.New("execution already busted or corrected")
	errTerminalOrder     = errors.New("order in terminal status")
	errInvalidTransition = errors.New("invalid order status for event")
	errNothingOpen       = errors.New("no open quantity to fill")
	errNotAFill          = errors.New("referenced execution is not a fill")
	errMissingRefID      = errors.New("ioi cancel/replace requires a reference id")
)
