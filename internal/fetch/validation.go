package fetch

import (
	"fmt"
	"strings"
)

// ValidationLevel controls what happens when a download does not match the
// checksum its manifest declares.
type ValidationLevel int

const (
	ValidationStrict   ValidationLevel = iota // Reject mismatches and unparseable checksums
	ValidationStandard                        // Reject mismatches, ignore unparseable checksums
	ValidationRelaxed                         // Warn on mismatches and keep the file
	ValidationMinimal                         // Keep the file, log mismatches at debug
	ValidationNone                            // Do not hash downloads
)

func (v ValidationLevel) String() string {
	switch v {
	case ValidationStrict:
		return "strict"
	case ValidationStandard:
		return "standard"
	case ValidationRelaxed:
		return "relaxed"
	case ValidationMinimal:
		return "minimal"
	case ValidationNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseValidationLevel maps a configuration value to a level. An empty value
// selects ValidationStandard.
func ParseValidationLevel(val string) (ValidationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "strict":
		return ValidationStrict, nil
	case "", "standard":
		return ValidationStandard, nil
	case "relaxed":
		return ValidationRelaxed, nil
	case "minimal":
		return ValidationMinimal, nil
	case "none":
		return ValidationNone, nil
	default:
		return ValidationStandard, fmt.Errorf("unknown validation level: %q", val)
	}
}

// rejectsMismatch reports whether a mismatching download is discarded.
func (v ValidationLevel) rejectsMismatch() bool {
	return v <= ValidationStandard
}
