package inventory

import (
	"strings"

	"github.com/google/uuid"
)

// NewReference returns a short upper-case reference number such as "TX-1A2B3C4D5E6F".
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TX-" + strings.ToUpper(id[:12])
}
