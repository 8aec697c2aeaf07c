package hallucination

import (
	"fmt"

	"github.com/lexiqlabs/lexshield/pkg/legal_refs"
)

// StatuteValidator checks statute and article references against the known
// section tables. It is pure data lookup and safe for concurrent use.
type StatuteValidator struct{}

// Validate reports whether the reference's section exists in its act.
// References this validator cannot judge (wrong kind, no section, unknown
// act) are treated as valid so unknown acts never trip the detector.
func (StatuteValidator) Validate(ref legal_refs.Reference) (bool, string) {
	if ref.Kind != legal_refs.KindStatute && ref.Kind != legal_refs.KindArticle {
		return true, "Not a statute reference"
	}
	if ref.Section == "" {
		return true, "No section to validate"
	}

	statute, ok := legal_refs.Lookup(ref.Act)
	if !ok {
		return true, fmt.Sprintf("Unknown act: %s", ref.Act)
	}

	if statute.IsSpecial(ref.Section) {
		return true, fmt.Sprintf("Valid special section %s", ref.Section)
	}

	num, ok := legal_refs.SectionNumber(ref.Section)
	if !ok {
		return false, fmt.Sprintf("Invalid section format: %s", ref.Section)
	}
	if statute.HasSection(ref.Section) {
		return true, fmt.Sprintf("Valid section %d", num)
	}
	return false, fmt.Sprintf("Section %d does not exist in %s", num, statute.FullName)
}
