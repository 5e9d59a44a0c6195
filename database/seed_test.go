package database

import (
	"testing"

	"signage-panel/config"
	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openMemory(t)
	opts := SeedOptions{
		Groups:        []string{"Operacao", "Marketing"},
		MasterUser:    "master",
		MasterPass:    "admin123",
		GroupUserPass: "123456",
	}

	require.NoError(t, Seed(db, opts))
	require.NoError(t, Seed(db, opts))

	var gs []groups.Group
	require.NoError(t, db.Order("display_order").Find(&gs).Error)
	require.Len(t, gs, 2)
	assert.Equal(t, "Operacao", gs[0].Name)
	assert.Equal(t, 1, gs[0].DisplayOrder)
	assert.Equal(t, groups.DefaultBackground, gs[1].Background)

	var us []users.User
	require.NoError(t, db.Order("id").Find(&us).Error)
	require.Len(t, us, 3)
	assert.Equal(t, "master", us[0].Username)
	assert.Equal(t, users.RoleMaster, us[0].Role)
	assert.Nil(t, us[0].GroupID)
	assert.Equal(t, "operacao", us[1].Username)
	require.NotNil(t, us[1].GroupID)
	assert.Equal(t, gs[0].ID, *us[1].GroupID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(us[1].PasswordHash), []byte("123456")))
}

func TestSeedKeepsExistingAccounts(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Seed(db, SeedOptions{MasterUser: "master", MasterPass: "first"}))
	require.NoError(t, Seed(db, SeedOptions{MasterUser: "master", MasterPass: "second"}))

	var u users.User
	require.NoError(t, db.Where("username = ?", "master").First(&u).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("first")))
}

func TestSeedNumbersUnorderedGroups(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.Create(&groups.Group{Name: "Legacy"}).Error)
	require.NoError(t, db.Create(&groups.Group{Name: "Other"}).Error)

	require.NoError(t, Seed(db, SeedOptions{}))

	var gs []groups.Group
	require.NoError(t, db.Order("id").Find(&gs).Error)
	assert.Equal(t, 1, gs[0].DisplayOrder)
	assert.Equal(t, 2, gs[1].DisplayOrder)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "x")
	require.Error(t, err)
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "a.db?_pragma=foreign_keys(1)", withForeignKeys("a.db"))
	assert.Equal(t, "a.db?cache=shared&_pragma=foreign_keys(1)", withForeignKeys("a.db?cache=shared"))
	assert.Equal(t, "data/p.sqlite", sqlitePath("file:data/p.sqlite?mode=rwc"))
}
