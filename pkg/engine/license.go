package engine

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/forge/pkg/source"
)

// Edition is the product edition unlocked by a license.
type Edition string

const (
	// EditionHome is the unlicensed edition.
	EditionHome Edition = "HE"
	// EditionProfessional is unlocked by a professional license.
	EditionProfessional Edition = "PE"
	// EditionEnterprise is unlocked by an enterprise license.
	EditionEnterprise Edition = "EE"
)

// License is an activated license.
type License struct {
	Licensee string    `yaml:"licensee"`
	Edition  Edition   `yaml:"edition"`
	Expires  time.Time `yaml:"expires"`
}

// now is replaced in tests.
var now = time.Now

// parseLicense decodes and validates a license source.
func parseLicense(src *source.StreamSource) (*License, error) {
	dec := yaml.NewDecoder(src.Reader())
	dec.KnownFields(true)

	var lic License
	if err := dec.Decode(&lic); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty license", ErrInvalidLicense)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidLicense, err)
	}

	if lic.Licensee == "" {
		return nil, fmt.Errorf("%w: licensee is required", ErrInvalidLicense)
	}
	switch lic.Edition {
	case EditionProfessional, EditionEnterprise:
		// Valid
	case EditionHome:
		return nil, fmt.Errorf("%w: edition %s does not require a license", ErrInvalidLicense, lic.Edition)
	default:
		return nil, fmt.Errorf("%w: unknown edition %q", ErrInvalidLicense, lic.Edition)
	}
	if lic.Expires.IsZero() {
		return nil, fmt.Errorf("%w: expiry is required", ErrInvalidLicense)
	}
	if !now().Before(lic.Expires) {
		return nil, fmt.Errorf("%w: license for %s expired at %s",
			ErrInvalidLicense, lic.Licensee, lic.Expires.Format(time.RFC3339))
	}

	return &lic, nil
}
