package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cropify/cropify/store"
)

const farmColumns = "id, name, location, soil_type, ph, moisture, nitrogen, phosphorus, potassium, created_ts, updated_ts"

func scanFarm(scan func(...any) error) (*store.Farm, error) {
	var farm store.Farm
	if err := scan(
		&farm.ID,
		&farm.Name,
		&farm.Location,
		&farm.SoilType,
		&farm.PH,
		&farm.Moisture,
		&farm.Nitrogen,
		&farm.Phosphorus,
		&farm.Potassium,
		&farm.CreatedTs,
		&farm.UpdatedTs,
	); err != nil {
		return nil, err
	}
	return &farm, nil
}

func (db *DB) CreateFarm(ctx context.Context, create *store.Farm) (*store.Farm, error) {
	now := time.Now().Unix()
	query := `
		INSERT INTO farm (name, location, soil_type, ph, moisture, nitrogen, phosphorus, potassium, created_ts, updated_ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + farmColumns
	row := db.db.QueryRowContext(ctx, query,
		create.Name,
		create.Location,
		create.SoilType,
		create.PH,
		create.Moisture,
		create.Nitrogen,
		create.Phosphorus,
		create.Potassium,
		now,
		now,
	)
	farm, err := scanFarm(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to create farm: %w", err)
	}
	return farm, nil
}

func (db *DB) ListFarms(ctx context.Context, find *store.FindFarm) ([]*store.Farm, error) {
	query := "SELECT " + farmColumns + " FROM farm WHERE 1=1"
	var args []interface{}
	if find.ID != nil {
		query += " AND id = $1"
		args = append(args, *find.ID)
	}
	query += " ORDER BY created_ts ASC, id ASC"

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list farms: %w", err)
	}
	defer rows.Close()

	list := []*store.Farm{}
	for rows.Next() {
		farm, err := scanFarm(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan farm: %w", err)
		}
		list = append(list, farm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (db *DB) UpdateFarm(ctx context.Context, update *store.UpdateFarm) (*store.Farm, error) {
	set := "updated_ts = $1"
	updatedTs := time.Now().Unix()
	if update.UpdatedTs != nil {
		updatedTs = *update.UpdatedTs
	}
	args := []interface{}{updatedTs}
	argIndex := 2

	appendSet := func(column string, value interface{}) {
		set += fmt.Sprintf(", %s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}
	if update.Name != nil {
		appendSet("name", *update.Name)
	}
	if update.Location != nil {
		appendSet("location", *update.Location)
	}
	if update.SoilType != nil {
		appendSet("soil_type", *update.SoilType)
	}
	if update.PH != nil {
		appendSet("ph", *update.PH)
	}
	if update.Moisture != nil {
		appendSet("moisture", *update.Moisture)
	}
	if update.Nitrogen != nil {
		appendSet("nitrogen", *update.Nitrogen)
	}
	if update.Phosphorus != nil {
		appendSet("phosphorus", *update.Phosphorus)
	}
	if update.Potassium != nil {
		appendSet("potassium", *update.Potassium)
	}
	args = append(args, update.ID)

	query := fmt.Sprintf("UPDATE farm SET %s WHERE id = $%d RETURNING %s", set, argIndex, farmColumns)
	farm, err := scanFarm(db.db.QueryRowContext(ctx, query, args...).Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to update farm: %w", err)
	}
	return farm, nil
}

func (db *DB) DeleteFarm(ctx context.Context, delete *store.DeleteFarm) error {
	if _, err := db.db.ExecContext(ctx, "DELETE FROM farm WHERE id = $1", delete.ID); err != nil {
		return fmt.Errorf("failed to delete farm: %w", err)
	}
	return nil
}
