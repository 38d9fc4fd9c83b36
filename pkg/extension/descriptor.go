package extension

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Descriptor is the static metadata an extension publishes.
type Descriptor struct {
	ID                  string               `json:"id" validate:"required"`
	Name                string               `json:"name" validate:"required"`
	Category            string               `json:"category,omitempty"`
	Description         string               `json:"description" validate:"required"`
	APIVersion          string               `json:"apiVersion" validate:"required,semver"`
	InstallableVersions []InstallableVersion `json:"installableVersions" validate:"required,min=1,dive"`
	BucketFSUploads     []BucketFSUpload     `json:"bucketFsUploads,omitempty" validate:"dive"`
}

// InstallableVersion is one version the host may install.
type InstallableVersion struct {
	Name       string `json:"name" validate:"required,semver"`
	Latest     bool   `json:"latest"`
	Deprecated bool   `json:"deprecated"`
}

// BucketFSUpload describes a file the extension needs in BucketFS before it
// can be installed.
type BucketFSUpload struct {
	Name                     string `json:"name" validate:"required"`
	DownloadURL              string `json:"downloadUrl" validate:"required,url"`
	LicenseURL               string `json:"licenseUrl" validate:"required,url"`
	LicenseAgreementRequired bool   `json:"licenseAgreementRequired"`
	BucketFSFilename         string `json:"bucketFsFilename" validate:"required"`
	FileSize                 int64  `json:"fileSize" validate:"gte=0"`
}

var (
	structValidatorOnce sync.Once
	structValidator     *validator.Validate
)

func descriptorValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New()
	})
	return structValidator
}

// Validate checks the descriptor's required fields, URLs and version
// strings.
func (d Descriptor) Validate() error {
	err := descriptorValidator().Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("extension: descriptor %q: %w", d.ID, err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("extension: descriptor %q is invalid: %s", d.ID, strings.Join(problems, ", "))
}

// Installable reports whether version is listed as installable.
func (d Descriptor) Installable(version string) bool {
	for _, v := range d.InstallableVersions {
		if v.Name == version {
			return true
		}
	}
	return false
}

// LatestVersion returns the version flagged as latest, or "" when none is.
func (d Descriptor) LatestVersion() string {
	for _, v := range d.InstallableVersions {
		if v.Latest {
			return v.Name
		}
	}
	return ""
}
