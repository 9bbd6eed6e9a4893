package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/oggyb/muzz-discovery/internal/db"
)

// UnknownName stands in for candidates whose profile disappeared after the
// snapshot was built.
const UnknownName = "Unknown"

// strongCulture is the culture score above which openers lead with shared values.
const strongCulture = 0.8

// Trust badge codes.
const (
	BadgeSelfie     = "selfie_verified"
	BadgeID         = "id_verified"
	BadgeSocial     = "social_verified"
	BadgeBackground = "background_checked"
	BadgeTrusted    = "trusted_member"
)

// RankedCandidate is a snapshot entry joined with live profile data.
type RankedCandidate struct {
	CandidateID     string            `json:"candidateId"`
	MatchScore      float64           `json:"matchScore"`
	ScoreBreakdown  db.ScoreBreakdown `json:"scoreBreakdown"`
	ConciergePrompt string            `json:"conciergePrompt"`
	AIOpener        string            `json:"aiOpener"`
	BoostContext    *BoostContext     `json:"boostContext,omitempty"`
	Profile         CandidateProfile  `json:"profile"`

	// Live is the profile the projection came from; nil when missing.
	Live *db.Profile `json:"-"`
}

type BoostContext struct {
	Weight float64 `json:"weight"`
	Label  string  `json:"label"`
}

// CandidateProfile is the display projection of a profile.
type CandidateProfile struct {
	Name               string             `json:"name"`
	Tribe              string             `json:"tribe,omitempty"`
	Age                *int               `json:"age,omitempty"`
	TrustBadges        []string           `json:"trustBadges,omitempty"`
	Location           string             `json:"location,omitempty"`
	Languages          []db.Language      `json:"languages,omitempty"`
	CulturalValues     *db.CulturalValues `json:"culturalValues,omitempty"`
	VerificationStatus *db.Verification   `json:"verificationStatus,omitempty"`
	FaithPractice      string             `json:"faithPractice,omitempty"`
	MarriageTimeline   string             `json:"marriageTimeline,omitempty"`
	ChildrenPreference string             `json:"childrenPreference,omitempty"`
}

// ProfileLookup fetches many profiles at once.
type ProfileLookup interface {
	GetMany(ctx context.Context, ids []string) (map[string]db.Profile, error)
}

// Decorator joins snapshot entries back to live profiles.
type Decorator struct {
	profiles ProfileLookup
	now      func() time.Time
}

func NewDecorator(profiles ProfileLookup, now func() time.Time) *Decorator {
	return &Decorator{profiles: profiles, now: now}
}

// Decorate keeps snapshot order. A missing profile yields an "Unknown" entry,
// never an error.
func (d *Decorator) Decorate(ctx context.Context, scores []db.CandidateScore) ([]RankedCandidate, error) {
	ids := make([]string, len(scores))
	for i, s := range scores {
		ids[i] = s.CandidateID
	}
	live, err := d.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := d.now()
	out := make([]RankedCandidate, 0, len(scores))
	for _, s := range scores {
		var p *db.Profile
		if found, ok := live[s.CandidateID]; ok {
			p = &found
		}
		out = append(out, decorateOne(s, p, now))
	}
	return out, nil
}

func decorateOne(s db.CandidateScore, p *db.Profile, now time.Time) RankedCandidate {
	rc := RankedCandidate{
		CandidateID:    s.CandidateID,
		MatchScore:     round3(clamp01(s.Score)),
		ScoreBreakdown: s.ScoreBreakdown,
		Live:           p,
	}
	if s.ScoreBreakdown.Boost != nil {
		rc.BoostContext = &BoostContext{Weight: *s.ScoreBreakdown.Boost, Label: "Boosted profile"}
	}

	if p == nil {
		rc.Profile = CandidateProfile{Name: UnknownName}
		rc.ConciergePrompt = conciergePrompt(UnknownName, "")
		rc.AIOpener = opener(UnknownName, s.ScoreBreakdown.Culture)
		return rc
	}

	langs := p.Languages.Data()
	cv := p.CulturalValues
	vs := p.Verification
	rc.Profile = CandidateProfile{
		Name:               p.Name,
		Tribe:              p.Tribe,
		Age:                Age(p.DateOfBirth, now),
		TrustBadges:        TrustBadges(p.Verification),
		Location:           p.Location,
		Languages:          langs,
		CulturalValues:     &cv,
		VerificationStatus: &vs,
		FaithPractice:      p.FaithPractice,
		MarriageTimeline:   p.MarriageTimeline,
		ChildrenPreference: p.ChildrenPreference,
	}

	var first string
	if len(langs) > 0 {
		first = langs[0].Name
		if first == "" {
			first = langs[0].Code
		}
	}
	rc.ConciergePrompt = conciergePrompt(p.Name, first)
	rc.AIOpener = opener(p.Name, s.ScoreBreakdown.Culture)
	return rc
}

// Age is the UTC calendar-year difference; nil without a birth date.
func Age(dob *time.Time, now time.Time) *int {
	if dob == nil {
		return nil
	}
	age := now.UTC().Year() - dob.UTC().Year()
	return &age
}

// TrustBadges lists the verification badges a profile has earned.
func TrustBadges(v db.Verification) []string {
	var badges []string
	if v.Selfie {
		badges = append(badges, BadgeSelfie)
	}
	if v.IDDocument {
		badges = append(badges, BadgeID)
	}
	if v.Social {
		badges = append(badges, BadgeSocial)
	}
	if v.Background {
		badges = append(badges, BadgeBackground)
	}
	if v.BadgeIssuedAt != nil {
		badges = append(badges, BadgeTrusted)
	}
	return badges
}

func conciergePrompt(name, language string) string {
	if language == "" {
		return fmt.Sprintf("Ask %s about the language they grew up speaking.", name)
	}
	return fmt.Sprintf("Greet %s in %s and ask who taught them.", name, language)
}

func opener(name string, culture float64) string {
	if culture > strongCulture {
		return fmt.Sprintf("You and %s share strong cultural values. Ask which family tradition they would never give up.", name)
	}
	return fmt.Sprintf("You and %s see some things differently. Ask what a perfect weekend looks like for them.", name)
}
