package extension

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-extparams/pkg/validation"
)

// ErrNotFound is returned when an extension id is not registered.
var ErrNotFound = errors.New("extension: not found")

// ValidationError is returned when instance parameter values fail
// validation. Result holds the verdict in host form.
type ValidationError struct {
	Extension string
	Version   string
	Result    validation.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("extension: invalid parameters for %s@%s: %s", e.Extension, e.Version, e.Result.Message)
}
