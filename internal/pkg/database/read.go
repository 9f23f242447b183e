package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

// ReadTemperatureHistory returns the readings of a sensor between from and until inclusive, oldest first.
func (db *Database) ReadTemperatureHistory(ctx context.Context, sensorID int, from, until time.Time) (model.TemperatureReadings, error) {
	const query = `
	SELECT sensor_id, time_stamp, value
	FROM temperature_reading
	WHERE sensor_id = $1 AND time_stamp BETWEEN $2 AND $3
	ORDER BY time_stamp ASC;
	`
	rows, err := db.pool.Query(ctx, query, sensorID, from, until)
	if err != nil {
		return nil, err
	}
	return scanReadings(rows)
}

// LatestReadings returns the newest reading of every sensor.
func (db *Database) LatestReadings(ctx context.Context) (model.TemperatureReadings, error) {
	const query = `
	SELECT DISTINCT ON (sensor_id) sensor_id, time_stamp, value
	FROM temperature_reading
	ORDER BY sensor_id, time_stamp DESC;
	`
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanReadings(rows)
}

func scanReadings(rows pgx.Rows) (model.TemperatureReadings, error) {
	readings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.TemperatureReading, error) {
		var reading model.TemperatureReading
		err := row.Scan(&reading.SensorID, &reading.TimeStamp, &reading.Value)
		reading.TimeStamp = reading.TimeStamp.UTC()
		return reading, err
	})
	if err != nil {
		return nil, err
	}
	return model.TemperatureReadings(readings), nil
}
