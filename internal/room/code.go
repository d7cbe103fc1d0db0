package room

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

var roomCodePattern = regexp.MustCompile(`^PING-\d{4}$`)

// GenerateCode returns a code of the form PING-XXXX.
func GenerateCode(rng *rand.Rand) string {
	return fmt.Sprintf("PING-%d", 1000+rng.Intn(9000))
}

// NormalizeCode upper-cases and trims a user supplied code and validates it.
func NormalizeCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !roomCodePattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRoomCode, code)
	}
	return normalized, nil
}
