package idgen

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StudentIDPrefix returns the id prefix for a given year, e.g. "STU2024-".
func StudentIDPrefix(year int) string {
	return fmt.Sprintf("STU%d-", year)
}

// NextStudentID derives the next external student id for the year from the
// highest id currently assigned. last is the lexicographically maximal id
// matching the year's prefix, or empty when none exist yet. The suffix is
// fixed-width zero-padded so lexicographic and numeric order agree.
func NextStudentID(year int, last string) (string, error) {
	if last == "" {
		return fmt.Sprintf("%s0001", StudentIDPrefix(year)), nil
	}
	idx := strings.LastIndex(last, "-")
	if idx < 0 || idx == len(last)-1 {
		return "", fmt.Errorf("malformed student id %q", last)
	}
	seq, err := strconv.Atoi(last[idx+1:])
	if err != nil {
		return "", fmt.Errorf("malformed student id %q: %w", last, err)
	}
	return fmt.Sprintf("%s%04d", StudentIDPrefix(year), seq+1), nil
}

// ReceiptNumber synthesises a receipt number of the form RCP-YYYYMMDD-XXXX
// where XXXX is four uppercase hex characters. Only 65536 combinations exist
// per day, so the store's uniqueness constraint is the real collision guard;
// callers retry generation when an insert hits it.
func ReceiptNumber(now time.Time) string {
	u := uuid.New()
	return fmt.Sprintf("RCP-%s-%s", now.Format("20060102"), strings.ToUpper(hex.EncodeToString(u[:2])))
}
