package db

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedUsers is how many demo users SeedTestData creates.
const SeedUsers = 20

var (
	seedTribes     = []string{"Yoruba", "Igbo", "Hausa", "Edo", "Ijaw"}
	seedLocations  = []string{"Lagos", "Abuja", "Port Harcourt", "Kano", "London"}
	seedFaith      = []string{"practicing", "moderate", "spiritual"}
	seedTimelines  = []string{"within_1_year", "1_to_2_years", "open"}
	seedLanguages  = []Language{{Code: "en", Name: "English"}, {Code: "yo", Name: "Yoruba"}, {Code: "ig", Name: "Igbo"}, {Code: "ha", Name: "Hausa"}}
	seedTables     = []any{&Match{}, &Rewind{}, &SuperLike{}, &Like{}, &InteractionEvent{}, &DiscoveryRecipe{}, &MatchingSnapshot{}, &BoostSession{}, &QuizResponse{}, &Profile{}, &User{}}
	seedPromptIDs  = []string{"weekend", "family_size", "faith_role", "relocation", "career", "finances"}
	seedPlacements = []string{"discovery", "story"}
)

// SeedTestData resets the database and populates it with demo users,
// profiles, quiz responses and boost sessions.
//
// Behavior:
//  1. Clears every table this service owns or reads.
//  2. Creates SeedUsers users (password "password") with a profile each.
//     Even-numbered users carry the trust badge; every fifth is incognito.
//  3. Gives most users a quiz response and a third of them a boost that is
//     either running or scheduled.
//
// The same seed value always produces the same dataset.
func SeedTestData(db *gorm.DB, now time.Time, seed int64) error {
	r := rand.New(rand.NewSource(seed))

	// --- Fresh start ---
	for _, model := range seedTables {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to clear %T: %w", model, err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for i := 1; i <= SeedUsers; i++ {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("seed-user-%d", i))).String()

		user := User{
			ID:           id,
			Username:     fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Active:       true,
			LastLoginAt:  now.Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		if err := db.Create(seedProfile(r, id, i, now)).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}

		if r.Intn(100) < 80 {
			if err := db.Create(seedQuiz(r, id, now)).Error; err != nil {
				return fmt.Errorf("failed to seed quiz: %w", err)
			}
		}

		if i%3 == 0 {
			if err := db.Create(seedBoost(r, id, i, now)).Error; err != nil {
				return fmt.Errorf("failed to seed boost: %w", err)
			}
		}
	}
	return nil
}

func seedProfile(r *rand.Rand, id string, i int, now time.Time) *Profile {
	dob := now.AddDate(-(22 + r.Intn(15)), -r.Intn(12), 0)
	langs := []Language{seedLanguages[0]}
	if extra := seedLanguages[1+r.Intn(len(seedLanguages)-1)]; r.Intn(2) == 0 {
		langs = append(langs, extra)
	}

	p := &Profile{
		UserID:      id,
		Name:        fmt.Sprintf("User %d", i),
		Tribe:       seedTribes[r.Intn(len(seedTribes))],
		DateOfBirth: &dob,
		Location:    seedLocations[r.Intn(len(seedLocations))],
		Languages:   datatypes.NewJSONType(langs),
		CulturalValues: CulturalValues{
			Spirituality: r.Intn(6),
			Family:       r.Intn(6),
			Tradition:    r.Intn(6),
			Modernity:    r.Intn(6),
		},
		Verification: Verification{
			Selfie:     i%7 != 0,
			IDDocument: r.Intn(2) == 0,
			Social:     r.Intn(2) == 0,
			Background: r.Intn(3) == 0,
		},
		Incognito:          i%5 == 0,
		FaithPractice:      seedFaith[r.Intn(len(seedFaith))],
		MarriageTimeline:   seedTimelines[r.Intn(len(seedTimelines))],
		ChildrenPreference: "open",
	}
	if i%2 == 0 {
		issued := now.Add(-time.Duration(1+r.Intn(90)) * 24 * time.Hour)
		p.Verification.BadgeIssuedAt = &issued
	}
	return p
}

func seedQuiz(r *rand.Rand, userID string, now time.Time) *QuizResponse {
	answers := make([]QuizAnswer, 0, len(seedPromptIDs))
	for _, prompt := range seedPromptIDs {
		answers = append(answers, QuizAnswer{PromptID: prompt, Value: r.Intn(6)})
	}
	return &QuizResponse{
		ID:          uuid.NewString(),
		UserID:      userID,
		Answers:     datatypes.NewJSONType(answers),
		SubmittedAt: now.Add(-time.Duration(r.Intn(72)) * time.Hour),
	}
}

func seedBoost(r *rand.Rand, userID string, i int, now time.Time) *BoostSession {
	b := &BoostSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Placement: seedPlacements[r.Intn(len(seedPlacements))],
		CreatedAt: now,
	}
	if i%2 == 0 {
		b.Status = BoostActive
		b.StartedAt = now.Add(-15 * time.Minute)
		b.EndsAt = now.Add(45 * time.Minute)
	} else {
		b.Status = BoostScheduled
		b.StartedAt = now.Add(time.Duration(1+r.Intn(24)) * time.Hour)
		b.EndsAt = b.StartedAt.Add(time.Hour)
	}
	return b
}
