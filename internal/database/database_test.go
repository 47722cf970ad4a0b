package database_test

import (
	"fmt"
	"testing"
	"time"

	"dailydiet/internal/database"
	"dailydiet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryDSN(t *testing.T) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open("oracle", "whatever")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestMigrate_CreatesTables(t *testing.T) {
	db, err := database.Open("sqlite", memoryDSN(t))
	require.NoError(t, err)

	require.NoError(t, database.Migrate(db))

	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("diet"))
	assert.True(t, db.Migrator().HasIndex(&models.User{}, "Email"))
	assert.True(t, db.Migrator().HasIndex(&models.User{}, "SessionID"))

	// Running twice is a no-op.
	require.NoError(t, database.Migrate(db))
}

func TestMigrate_WidensDateOnlyColumn(t *testing.T) {
	db, err := database.Open("sqlite", memoryDSN(t))
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE users (id varchar(36) PRIMARY KEY, session_id varchar(36), name text NOT NULL, email text NOT NULL, password varchar(255) NOT NULL)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE diet (
		id varchar(36) PRIMARY KEY,
		user_id varchar(36) REFERENCES users(id) ON DELETE CASCADE ON UPDATE CASCADE,
		name text NOT NULL,
		description text NOT NULL,
		is_on_diet boolean NOT NULL DEFAULT false,
		date date NOT NULL)`).Error)

	require.NoError(t, database.Migrate(db))

	columns, err := db.Migrator().ColumnTypes(&models.Diet{})
	require.NoError(t, err)
	for _, col := range columns {
		if col.Name() == "date" {
			assert.NotEqual(t, "date", col.DatabaseTypeName())
		}
	}

	meal := time.Date(2024, 10, 19, 18, 2, 9, 0, time.UTC)
	require.NoError(t, db.Create(&models.User{ID: "u1", Name: "John", Email: "john@example.com", Password: "x"}).Error)
	require.NoError(t, db.Create(&models.Diet{ID: "d1", UserID: "u1", Name: "Dinner", Description: "Soup", Date: meal}).Error)

	var stored models.Diet
	require.NoError(t, db.First(&stored, "id = ?", "d1").Error)
	assert.True(t, meal.Equal(stored.Date), "expected %v, got %v", meal, stored.Date)
}

func TestMigrate_CascadesDietDeletion(t *testing.T) {
	db, err := database.Open("sqlite", memoryDSN(t))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	require.NoError(t, db.Create(&models.User{ID: "u1", Name: "John", Email: "john@example.com", Password: "x"}).Error)
	require.NoError(t, db.Create(&models.Diet{ID: "d1", UserID: "u1", Name: "Lunch", Description: "Rice", Date: time.Now()}).Error)

	require.NoError(t, db.Delete(&models.User{}, "id = ?", "u1").Error)

	var count int64
	require.NoError(t, db.Model(&models.Diet{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}
