package diagram

// WarningCode classifies a non-fatal condition.
type WarningCode string

const (
	// WarnChecksumMismatch is recorded when a diagram is loaded with a
	// checksum that differs from the one recomputed from its content.
	WarnChecksumMismatch WarningCode = "CHECKSUM_MISMATCH"

	// WarnAmbiguousCherryPick is recorded when a merge commit is
	// cherry-picked without naming the parent lineage to follow.
	WarnAmbiguousCherryPick WarningCode = "AMBIGUOUS_CHERRY_PICK"
)

// Warning is a non-fatal condition recorded on a diagram.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return string(w.Code) + ": " + w.Message
}

// HasWarning reports whether d recorded a warning with the given code.
func HasWarning(d Diagram, code WarningCode) bool {
	for _, w := range d.Warnings() {
		if w.Code == code {
			return true
		}
	}
	return false
}
