package room

import "fmt"

// Rules holds the tunable constants of a room.
type Rules struct {
	WinningScore   int     `json:"winningScore"`
	WinningLead    int     `json:"winningLead"`
	DeuceScore     int     `json:"deuceScore"`
	MinPlayers     int     `json:"minPlayers"`
	HandicapPerWin int     `json:"handicapPerWin"`
	VoteThreshold  float64 `json:"voteThreshold"`
}

// DefaultRules are the standard table tennis doubles settings.
func DefaultRules() Rules {
	return Rules{
		WinningScore:   11,
		WinningLead:    2,
		DeuceScore:     10,
		MinPlayers:     4,
		HandicapPerWin: 2,
		VoteThreshold:  0.3,
	}
}

// Update overrides the rules present in newRules. Unknown keys are ignored.
func (rules *Rules) Update(newRules map[string]interface{}) error {
	assignInt := func(field *int, key string, minVal int) error {
		val, exists := newRules[key]
		if !exists || val == nil {
			return nil
		}
		var n int
		switch v := val.(type) {
		case float64:
			n = int(v)
		case int:
			n = v
		default:
			return fmt.Errorf("invalid type for %s", key)
		}
		if n < minVal {
			return fmt.Errorf("%s must be at least %d", key, minVal)
		}
		*field = n
		return nil
	}

	if err := assignInt(&rules.WinningScore, "winningScore", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.WinningLead, "winningLead", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.DeuceScore, "deuceScore", 1); err != nil {
		return err
	}
	if err := assignInt(&rules.MinPlayers, "minPlayers", 4); err != nil {
		return err
	}
	if err := assignInt(&rules.HandicapPerWin, "handicapPerWin", 0); err != nil {
		return err
	}
	if val, exists := newRules["voteThreshold"]; exists && val != nil {
		f, ok := val.(float64)
		if !ok || f <= 0 || f > 1 {
			return fmt.Errorf("voteThreshold must be in (0, 1]")
		}
		rules.VoteThreshold = f
	}
	return nil
}
