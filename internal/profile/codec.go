package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRecord marks stored data that does not match the profile schema.
var ErrInvalidRecord = errors.New("invalid profile record")

type rawVisit struct {
	Time *string `json:"time"`
}

type rawProfile struct {
	Name    *string             `json:"name"`
	City    *string             `json:"city"`
	History map[string]rawVisit `json:"history"`
}

// Decode parses the whole-file JSON form and validates every record:
// keys are numeric user ids, name is required, history entries need a time.
func Decode(data []byte) (Profiles, error) {
	var raw map[string]rawProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	out := make(Profiles, len(raw))
	for key, rp := range raw {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: key %q is not a user id", ErrInvalidRecord, key)
		}
		if rp.Name == nil {
			return nil, fmt.Errorf("%w: %d: name is required", ErrInvalidRecord, id)
		}
		p := newProfile(*rp.Name)
		if rp.City != nil {
			p.City = *rp.City
		}
		for city, v := range rp.History {
			if v.Time == nil || strings.TrimSpace(*v.Time) == "" {
				return nil, fmt.Errorf("%w: %d: history %q has no time", ErrInvalidRecord, id, city)
			}
			p.History[city] = Visit{Time: *v.Time}
		}
		out[id] = p
	}
	return out, nil
}

// Encode renders profiles with 2-space indentation.
func Encode(ps Profiles) ([]byte, error) {
	if ps == nil {
		ps = Profiles{}
	}
	return json.MarshalIndent(ps, "", "  ")
}
