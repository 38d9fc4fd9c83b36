package extension

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SupportedAPIVersion is the extension API version this host implements.
const SupportedAPIVersion = "0.2.0"

// APIVersionError reports an extension built against an incompatible API.
type APIVersionError struct {
	Extension string
	Version   string
	Supported string
	Err       error
}

func (e *APIVersionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extension: %s declares invalid API version %q: %v", e.Extension, e.Version, e.Err)
	}
	return fmt.Sprintf("extension: %s uses API version %s, host supports %s", e.Extension, e.Version, e.Supported)
}

func (e *APIVersionError) Unwrap() error {
	return e.Err
}

// CheckAPIVersion accepts version when it is a valid semantic version with
// the same major version as SupportedAPIVersion.
func CheckAPIVersion(extensionID, version string) error {
	supported := semver.MustParse(SupportedAPIVersion)
	declared, err := semver.StrictNewVersion(version)
	if err != nil {
		return &APIVersionError{Extension: extensionID, Version: version, Supported: SupportedAPIVersion, Err: err}
	}
	if declared.Major() != supported.Major() {
		return &APIVersionError{Extension: extensionID, Version: version, Supported: SupportedAPIVersion}
	}
	return nil
}
