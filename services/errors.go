// services/errors.go
package services

import (
	"errors"
)

// Every failure here is local to one user action; nothing is retried
// automatically. Handlers map these to distinct user-facing messages.
var (
	// ErrMalformedResponse: the classifier's output contained no parseable
	// JSON object. The user retakes/resends the whole classification step.
	ErrMalformedResponse = errors.New("no parseable JSON object in classifier response")

	// ErrNotVerifiable: prerequisite data is missing (no usable bin color
	// recorded, no image). The verification attempt is blocked before any
	// external call is made.
	ErrNotVerifiable = errors.New("report cannot be verified: missing prerequisite data")

	// Geolocation capture failures, distinguished for user messaging.
	ErrGeolocationDenied      = errors.New("location permission denied")
	ErrGeolocationUnavailable = errors.New("location unavailable")
	ErrGeolocationTimeout     = errors.New("location request timed out")

	// ErrInsufficientBalance: a debit would push the ledger balance below
	// zero. Rejected at write time; no mutation happens.
	ErrInsufficientBalance = errors.New("insufficient point balance")

	// ErrInvalidAddress: recipient wallet address failed format validation.
	ErrInvalidAddress = errors.New("invalid wallet address format")

	// ErrPaymentRail: the external payment rail failed (network, treasury
	// funds). The rail is called before the ledger is touched, so no
	// mutation has happened.
	ErrPaymentRail = errors.New("payment rail failure")

	ErrReportNotFound    = errors.New("report not found")
	ErrAlreadyClaimed    = errors.New("report already in progress by another collector")
	ErrNotCollector      = errors.New("report is claimed by a different collector")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrAlreadyJoined     = errors.New("already joined this challenge")
	ErrRewardNotFound    = errors.New("reward not found")
)
