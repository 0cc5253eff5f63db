// Package profile stores per-user profiles: display name, chosen city and
// the first-seen history of queried cities.
package profile

import (
	"maps"
	"strings"
)

// DefaultName is used when Telegram supplies no first name.
const DefaultName = "Користувач"

// Visit records when a city was first seen for a user.
type Visit struct {
	Time string `json:"time"`
}

// Profile is the persisted state of one user.
type Profile struct {
	Name    string           `json:"name"`
	City    string           `json:"city"`
	History map[string]Visit `json:"history"`
}

// Profiles maps Telegram user ids to profiles.
type Profiles map[int64]*Profile

// DisplayName picks the default profile name for a Telegram first name.
func DisplayName(firstName string) string {
	if name := strings.TrimSpace(firstName); name != "" {
		return name
	}
	return DefaultName
}

func newProfile(name string) *Profile {
	return &Profile{Name: name, History: make(map[string]Visit)}
}

// GetOrCreate returns the profile for id, inserting a fresh one when absent.
// The bool reports whether a profile was created.
func (ps Profiles) GetOrCreate(id int64, defaultName string) (*Profile, bool) {
	if p, ok := ps[id]; ok && p != nil {
		if p.History == nil {
			p.History = make(map[string]Visit)
		}
		return p, false
	}
	p := newProfile(defaultName)
	ps[id] = p
	return p, true
}

// RecordVisit inserts city into the history unless it is already there.
// Existing timestamps are never touched.
func (p *Profile) RecordVisit(city, stamp string) bool {
	if city == "" {
		return false
	}
	if p.History == nil {
		p.History = make(map[string]Visit)
	}
	if _, ok := p.History[city]; ok {
		return false
	}
	p.History[city] = Visit{Time: stamp}
	return true
}

// SetCity selects city and records its first visit.
func (p *Profile) SetCity(city, stamp string) {
	p.City = city
	p.RecordVisit(city, stamp)
}

// Clone returns a deep copy safe to use outside the service lock.
func (p *Profile) Clone() Profile {
	if p == nil {
		return Profile{History: map[string]Visit{}}
	}
	out := *p
	out.History = maps.Clone(p.History)
	if out.History == nil {
		out.History = map[string]Visit{}
	}
	return out
}
