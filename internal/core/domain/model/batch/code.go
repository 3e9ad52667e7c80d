package batch

import (
	"fmt"
	"regexp"
	"time"

	"consolidation/internal/core/domain/model/kernel"
	"consolidation/internal/pkg/errs"
)

// CodePrefix starts every batch code.
const CodePrefix = "KIEN"

var codePattern = regexp.MustCompile(`^KIEN-\d{8}-[0-9A-F]{8}$`)

// Code is the human-readable batch identifier, e.g. KIEN-20261018-3F9A1C2B:
// the UTC creation date followed by the first eight hex digits of the batch id.
// It is decoupled from the primary key and unique across the store.
type Code string

// NewCode renders the code for a batch id created at the given instant.
func NewCode(id kernel.UUID, createdAt time.Time) Code {
	return Code(fmt.Sprintf("%s-%s-%s", CodePrefix, createdAt.UTC().Format("20060102"), id.Short()))
}

// ParseCode validates the textual form.
func ParseCode(s string) (Code, error) {
	if !codePattern.MatchString(s) {
		return "", errs.NewValueIsInvalidErrorWithCause("batchCode", fmt.Errorf("%q does not match %s-YYYYMMDD-XXXXXXXX", s, CodePrefix))
	}
	return Code(s), nil
}

func (c Code) String() string {
	return string(c)
}
