// Package dbtest spins up isolated in-memory SQLite databases and fixtures
// for package tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/muzz-discovery/internal/db"
)

// Open returns a migrated in-memory database private to t.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

// ProfileOption tweaks a fixture profile.
type ProfileOption func(*db.Profile)

// Profile builds a selfie-verified profile with neutral cultural values.
func Profile(id string, opts ...ProfileOption) db.Profile {
	p := db.Profile{
		UserID:         id,
		Name:           "user " + id,
		Location:       "Lagos",
		Languages:      datatypes.NewJSONType([]db.Language{{Code: "en", Name: "English", Proficiency: "native"}}),
		CulturalValues: db.CulturalValues{Spirituality: 3, Family: 3, Tradition: 3, Modernity: 3},
		Verification:   db.Verification{Selfie: true},
	}
	for _, o := range opts {
		o(&p)
	}
	return p
}

func WithCulture(spirituality, family, tradition, modernity int) ProfileOption {
	return func(p *db.Profile) {
		p.CulturalValues = db.CulturalValues{
			Spirituality: spirituality,
			Family:       family,
			Tradition:    tradition,
			Modernity:    modernity,
		}
	}
}

func WithLanguages(langs ...db.Language) ProfileOption {
	return func(p *db.Profile) { p.Languages = datatypes.NewJSONType(langs) }
}

func WithBadge(at time.Time) ProfileOption {
	return func(p *db.Profile) { p.Verification.BadgeIssuedAt = &at }
}

func WithBackgroundCheck() ProfileOption {
	return func(p *db.Profile) { p.Verification.Background = true }
}

func WithoutSelfie() ProfileOption {
	return func(p *db.Profile) { p.Verification.Selfie = false }
}

func Incognito() ProfileOption {
	return func(p *db.Profile) { p.Incognito = true }
}

func WithFaith(practice string) ProfileOption {
	return func(p *db.Profile) { p.FaithPractice = practice }
}

func WithTimeline(timeline string) ProfileOption {
	return func(p *db.Profile) { p.MarriageTimeline = timeline }
}

func WithName(name string) ProfileOption {
	return func(p *db.Profile) { p.Name = name }
}

func WithBirthday(dob time.Time) ProfileOption {
	return func(p *db.Profile) { p.DateOfBirth = &dob }
}

// Insert writes profiles and fails the test on error.
func Insert(t *testing.T, gdb *gorm.DB, profiles ...db.Profile) {
	t.Helper()
	for i := range profiles {
		require.NoError(t, gdb.Create(&profiles[i]).Error)
	}
}
