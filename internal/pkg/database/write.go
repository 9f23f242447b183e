package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

// Write stores readings in one transaction. A reading already stored for the same sensor and time is kept.
func (db *Database) Write(ctx context.Context, readings model.TemperatureReadings) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	batch := &pgx.Batch{}
	for _, reading := range readings {
		batch.Queue(`
			INSERT INTO temperature_reading (sensor_id, time_stamp, value)
			VALUES ($1, $2, $3)
			ON CONFLICT (sensor_id, time_stamp) DO NOTHING`,
			reading.SensorID, reading.TimeStamp, reading.Value)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RegisterSensor upserts the sensor so history rows can be joined to a name.
func (db *Database) RegisterSensor(ctx context.Context, sensor model.TemperatureSensor) error {
	_, err := db.exec(ctx, `
		INSERT INTO temperature_sensor (id, name, device_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, device_id = EXCLUDED.device_id`,
		sensor.ID, sensor.Name, sensor.DeviceID)
	return err
}
