package eureka

import (
	"net/http"

	"github.com/kbukum/eurekaclient/errors"
)

// Sentinel errors. Errors returned by the Client carry the same code and
// match these with errors.Is.
var (
	ErrRegisterFailure   = errors.New(errors.ErrCodeRegisterFailed, "could not register with eureka", http.StatusBadGateway)
	ErrDeRegisterFailure = errors.New(errors.ErrCodeDeregisterFailed, "could not de-register from eureka", http.StatusBadGateway)
	ErrInstanceFailure   = errors.New(errors.ErrCodeInstanceNotFound, "could not get instances from eureka", http.StatusNotFound)
	ErrNoInstances       = errors.New(errors.ErrCodeNoInstances, "no instances to select from", http.StatusServiceUnavailable)
)
