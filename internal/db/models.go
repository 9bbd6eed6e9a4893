package db

import (
	"time"

	"gorm.io/datatypes"
)

// Event kinds recorded in the interaction log.
const (
	EventLike           = "like"
	EventSuperLike      = "super_like"
	EventRewind         = "rewind"
	EventMatchConfirmed = "match_confirmed"
	EventView           = "view"
	EventFilterSaved    = "filter_saved"
)

// Match states.
const (
	MatchPending  = "pending"
	MatchOpen     = "open"
	MatchSnoozed  = "snoozed"
	MatchArchived = "archived"
)

// Boost session statuses.
const (
	BoostScheduled = "scheduled"
	BoostActive    = "active"
	BoostEnded     = "ended"
)

// User is the identity record a Profile hangs off.
type User struct {
	ID           string `gorm:"primaryKey;size:36"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Active       bool   `gorm:"default:true"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// CulturalValues are four bounded dimensions, each 0..5.
type CulturalValues struct {
	Spirituality int `gorm:"not null;default:0" json:"spirituality"`
	Family       int `gorm:"not null;default:0" json:"family"`
	Tradition    int `gorm:"not null;default:0" json:"tradition"`
	Modernity    int `gorm:"not null;default:0" json:"modernity"`
}

type Language struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Proficiency string `json:"proficiency,omitempty"`
}

type Verification struct {
	Selfie        bool       `gorm:"not null;default:false;index" json:"selfie"`
	IDDocument    bool       `gorm:"not null;default:false" json:"id"`
	Social        bool       `gorm:"not null;default:false" json:"social"`
	Background    bool       `gorm:"not null;default:false" json:"background"`
	BadgeIssuedAt *time.Time `json:"badgeIssuedAt,omitempty"`
}

// Profile is owned by the profile service; this module only reads it.
type Profile struct {
	UserID             string `gorm:"primaryKey;size:36"`
	Name               string `gorm:"size:128;not null"`
	Tribe              string `gorm:"size:64"`
	DateOfBirth        *time.Time
	Location           string                         `gorm:"size:128"`
	Languages          datatypes.JSONType[[]Language] `gorm:"type:json"`
	CulturalValues     CulturalValues                 `gorm:"embedded;embeddedPrefix:cv_"`
	Verification       Verification                   `gorm:"embedded;embeddedPrefix:verified_"`
	Incognito          bool                           `gorm:"not null;default:false"`
	FaithPractice      string                         `gorm:"size:64"`
	MarriageTimeline   string                         `gorm:"size:64"`
	ChildrenPreference string                         `gorm:"size:64"`
	CreatedAt          time.Time                      `gorm:"autoCreateTime"`
	UpdatedAt          time.Time                      `gorm:"autoUpdateTime"`
}

type QuizAnswer struct {
	PromptID string `json:"promptId"`
	Value    int    `json:"value"`
}

// QuizResponse is one submitted compatibility quiz. Only the most recent
// submission per user feeds the embedding.
type QuizResponse struct {
	ID          string                           `gorm:"primaryKey;size:36"`
	UserID      string                           `gorm:"size:36;not null;index:idx_quiz_user_submitted,priority:1"`
	Answers     datatypes.JSONType[[]QuizAnswer] `gorm:"type:json"`
	SubmittedAt time.Time                        `gorm:"not null;index:idx_quiz_user_submitted,priority:2,sort:desc"`
}

type ScoreBreakdown struct {
	Compatibility float64  `json:"compatibility"`
	Culture       float64  `json:"culture"`
	Intent        float64  `json:"intent"`
	Boost         *float64 `json:"boost,omitempty"`
}

type CandidateScore struct {
	CandidateID    string         `json:"candidateId"`
	Score          float64        `json:"score"`
	Rank           int            `json:"rank"`
	ScoreBreakdown ScoreBreakdown `json:"scoreBreakdown"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// MatchingSnapshot is an immutable ranked candidate list. Regeneration inserts
// a new row; readers pick the latest by GeneratedAt.
type MatchingSnapshot struct {
	ID               string                               `gorm:"primaryKey;size:36"`
	UserID           string                               `gorm:"size:36;not null;index:idx_snapshot_user_generated,priority:1"`
	AlgorithmVersion string                               `gorm:"size:32;not null"`
	GeneratedAt      time.Time                            `gorm:"not null;index:idx_snapshot_user_generated,priority:2,sort:desc"`
	ExpiresAt        time.Time                            `gorm:"not null;index"`
	Candidates       datatypes.JSONType[[]CandidateScore] `gorm:"type:json"`
}

// RecipeFilters is the persisted, partially specified filter set. Nil fields
// leave the lower-precedence value untouched when layered.
type RecipeFilters struct {
	VerifiedOnly     *bool    `json:"verifiedOnly,omitempty"`
	TravelMode       *string  `json:"travelMode,omitempty" validate:"omitempty,oneof=home travel"`
	GuardianApproved *bool    `json:"guardianApproved,omitempty"`
	FaithPractice    *string  `json:"faithPractice,omitempty" validate:"omitempty,max=64"`
	LifeGoals        []string `json:"lifeGoals,omitempty" validate:"omitempty,max=10,dive,max=64"`
	OnlineNow        *bool    `json:"onlineNow,omitempty"`
}

// DiscoveryRecipe is a named filter preset. (UserID, Name) is unique.
type DiscoveryRecipe struct {
	ID         string                            `gorm:"primaryKey;size:36"`
	UserID     string                            `gorm:"size:36;not null;uniqueIndex:idx_recipe_user_name,priority:1;index:idx_recipe_user_updated,priority:1"`
	Name       string                            `gorm:"size:80;not null;uniqueIndex:idx_recipe_user_name,priority:2"`
	Filters    datatypes.JSONType[RecipeFilters] `gorm:"type:json"`
	IsDefault  bool                              `gorm:"not null;default:false"`
	LastUsedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time `gorm:"index:idx_recipe_user_updated,priority:2,sort:desc"`
}

// InteractionEvent is the append-only audit log; quotas are counted from it.
type InteractionEvent struct {
	ID        string  `gorm:"primaryKey;size:36"`
	ActorID   string  `gorm:"size:36;not null;index:idx_event_actor_kind_created,priority:1"`
	TargetID  *string `gorm:"size:36"`
	Event     string  `gorm:"size:32;not null;index:idx_event_actor_kind_created,priority:2"`
	Source    string  `gorm:"size:32"`
	Metadata  datatypes.JSONMap
	CreatedAt time.Time `gorm:"not null;index:idx_event_actor_kind_created,priority:3;index"`
}

// Like is the current-state edge actor -> target.
type Like struct {
	ActorID   string `gorm:"primaryKey;size:36"`
	TargetID  string `gorm:"primaryKey;size:36;index"`
	Source    string `gorm:"size:32"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SuperLike struct {
	ActorID    string  `gorm:"primaryKey;size:36"`
	TargetID   string  `gorm:"primaryKey;size:36;index"`
	BoostScore float64 `gorm:"not null;default:1"`
	Source     string  `gorm:"size:32"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Rewind is an undo token; it expires 24h after creation.
type Rewind struct {
	UserID    string `gorm:"primaryKey;size:36"`
	TargetID  string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null;index"`
}

// Match is the canonical record for a mutual like. MemberA < MemberB.
type Match struct {
	ID                string                             `gorm:"primaryKey;size:36"`
	PairHash          string                             `gorm:"size:80;not null;uniqueIndex"`
	MemberA           string                             `gorm:"size:36;not null;index"`
	MemberB           string                             `gorm:"size:36;not null;index"`
	State             string                             `gorm:"size:16;not null;default:pending"`
	Score             float64                            `gorm:"not null"`
	ScoreBreakdown    datatypes.JSONType[ScoreBreakdown] `gorm:"type:json"`
	AIOpener          string                             `gorm:"column:ai_opener;size:512"`
	LastInteractionAt time.Time                          `gorm:"not null;index"`
	ConfirmedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Members returns the pair in stored order.
func (m Match) Members() []string { return []string{m.MemberA, m.MemberB} }

// BoostSession is a paid visibility window, written by the billing side.
type BoostSession struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:36;not null;index"`
	Placement string    `gorm:"size:32;not null"`
	StartedAt time.Time `gorm:"not null;index"`
	EndsAt    time.Time `gorm:"not null;index"`
	Status    string    `gorm:"size:16;not null"`
	CreatedAt time.Time
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{
		&User{},
		&Profile{},
		&QuizResponse{},
		&MatchingSnapshot{},
		&DiscoveryRecipe{},
		&InteractionEvent{},
		&Like{},
		&SuperLike{},
		&Rewind{},
		&Match{},
		&BoostSession{},
	}
}
