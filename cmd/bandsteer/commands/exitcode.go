package commands

import (
	"errors"

	"github.com/steeraudit/bandsteer/internal/core/domain"
)

// Exit codes: 0 success; 2 invalid input; 3 dissector failure; 4 I/O failure.
const (
	exitSuccess        = 0
	exitGenericFailure = 1
	exitInvalidInput   = 2
	exitDissectorError = 3
	exitIOFailure      = 4
)

// exitCodeFor classifies an analysis/registry error into the CLI's exit
// code, keyed off the domain's sentinel errors and wrapper types.
func exitCodeFor(err error) int {
	if err == nil {
		return exitSuccess
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidCapture),
		errors.Is(err, domain.ErrAnalysisNotFound):
		return exitInvalidInput
	case errors.Is(err, domain.ErrDissectorUnavailable),
		errors.Is(err, domain.ErrDissectorTimeout):
		return exitDissectorError
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return exitInvalidInput
	}

	var dissectErr *domain.DissectorError
	if errors.As(err, &dissectErr) {
		return exitDissectorError
	}

	var persistErr *domain.PersistenceError
	if errors.As(err, &persistErr) {
		return exitIOFailure
	}

	return exitGenericFailure
}
