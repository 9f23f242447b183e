//go:build integration

package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/anicoll/home-bridge/internal/pkg/database/migration"
	"github.com/anicoll/home-bridge/internal/pkg/model"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("home"),
		postgres.WithUsername("home"),
		postgres.WithPassword("home"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrations, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(dsn, migrations))
	// a second run finds nothing to do
	require.NoError(t, migration.Migrate(dsn, migrations))

	db, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDatabase_History(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t)

	require.NoError(t, db.RegisterSensor(ctx, model.TemperatureSensor{ID: 1, Name: "Outside", DeviceID: "28-0316a2799aff"}))
	require.NoError(t, db.RegisterSensor(ctx, model.TemperatureSensor{ID: 1, Name: "Garden", DeviceID: "28-0316a2799aff"}))

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	readings := model.TemperatureReadings{
		{SensorID: 1, TimeStamp: base.Add(20 * time.Minute), Value: 4.5},
		{SensorID: 1, TimeStamp: base, Value: 3.25},
		{SensorID: 1, TimeStamp: base.Add(10 * time.Minute), Value: 4},
		{SensorID: 2, TimeStamp: base, Value: 21},
	}
	require.NoError(t, db.Write(ctx, readings))
	// duplicates are ignored
	require.NoError(t, db.Write(ctx, readings[:1]))

	history, err := db.ReadTemperatureHistory(ctx, 1, base, base.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, model.TemperatureReadings{
		{SensorID: 1, TimeStamp: base, Value: 3.25},
		{SensorID: 1, TimeStamp: base.Add(10 * time.Minute), Value: 4},
	}, history)

	latest, err := db.LatestReadings(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 4.5, latest[0].Value)
	assert.Equal(t, 21.0, latest[1].Value)

	deleted, err := db.Cleanup(ctx, time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 4, deleted)

	history, err = db.ReadTemperatureHistory(ctx, 1, base, time.Now())
	require.NoError(t, err)
	assert.Empty(t, history)
}
