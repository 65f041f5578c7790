// Package versions checks mxn-svg releases against version constraints.
package versions

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Satisfies reports whether version meets constraint, e.g. ">= 0.3, < 2".
// Versions that are not semver, such as development builds, satisfy every
// valid constraint. An invalid constraint is an error.
func Satisfies(version, constraint string) (bool, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return true, nil
	}

	return c.Check(v), nil
}
