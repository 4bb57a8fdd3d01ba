package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderID builds a human-readable order id: a second-resolution timestamp,
// the user id, and a short random suffix. The suffix keeps ids from colliding
// when one user checks out twice within the same second.
func NewOrderID(now time.Time, userID int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%s%d%s", now.UTC().Format("20060102150405"), userID, suffix)
}
