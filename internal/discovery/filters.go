package discovery

import (
	"slices"
	"unicode/utf8"

	"github.com/oggyb/muzz-discovery/internal/db"
)

const (
	TravelHome   = "home"
	TravelAbroad = "travel"
)

// Filters is the fully resolved filter set a feed is cut with.
type Filters struct {
	VerifiedOnly     bool     `json:"verifiedOnly"`
	TravelMode       string   `json:"travelMode"`
	GuardianApproved bool     `json:"guardianApproved"`
	FaithPractice    string   `json:"faithPractice,omitempty"`
	LifeGoals        []string `json:"lifeGoals"`
	OnlineNow        bool     `json:"onlineNow"`
}

// DefaultFilters is the bottom layer of every resolution.
func DefaultFilters() Filters {
	return Filters{
		VerifiedOnly:     true,
		TravelMode:       TravelHome,
		GuardianApproved: false,
		LifeGoals:        []string{},
	}
}

// Layer returns f with every field set in o overriding it. Nil fields in o
// are skipped; a non-nil empty LifeGoals clears the list.
func (f Filters) Layer(o *db.RecipeFilters) Filters {
	if o == nil {
		return f
	}
	if o.VerifiedOnly != nil {
		f.VerifiedOnly = *o.VerifiedOnly
	}
	if o.TravelMode != nil {
		f.TravelMode = *o.TravelMode
	}
	if o.GuardianApproved != nil {
		f.GuardianApproved = *o.GuardianApproved
	}
	if o.FaithPractice != nil {
		f.FaithPractice = *o.FaithPractice
	}
	if o.LifeGoals != nil {
		f.LifeGoals = slices.Clone(o.LifeGoals)
	}
	if o.OnlineNow != nil {
		f.OnlineNow = *o.OnlineNow
	}
	return f
}

// Resolve layers defaults < recipe < request.
func Resolve(recipe, request *db.RecipeFilters) Filters {
	return DefaultFilters().Layer(recipe).Layer(request)
}

// Allows runs the predicates in order. A nil profile is judged as an empty one.
func (f Filters) Allows(candidateID string, p *db.Profile) bool {
	if p == nil {
		p = &db.Profile{}
	}
	if f.VerifiedOnly && p.Verification.BadgeIssuedAt == nil {
		return false
	}
	if f.GuardianApproved && !p.Verification.Background {
		return false
	}
	if f.FaithPractice != "" && p.FaithPractice != f.FaithPractice {
		return false
	}
	if len(f.LifeGoals) > 0 && !slices.Contains(f.LifeGoals, p.MarriageTimeline) {
		return false
	}
	if f.TravelMode == TravelHome && p.Incognito {
		return false
	}
	if f.OnlineNow && !OnlineNow(candidateID) {
		return false
	}
	return true
}

// OnlineNow is a stand-in presence check: a candidate counts as online when
// the code point of the first rune of its id is even. It is stable per id and
// says nothing about real presence.
// TODO: replace with the presence service signal once it exposes a batch read.
func OnlineNow(candidateID string) bool {
	r, _ := utf8.DecodeRuneInString(candidateID)
	if r == utf8.RuneError {
		return false
	}
	return r%2 == 0
}
