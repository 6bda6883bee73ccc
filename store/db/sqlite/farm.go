package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cropify/cropify/store"
)

func (d *DB) CreateFarm(ctx context.Context, create *store.Farm) (*store.Farm, error) {
	now := time.Now().Unix()
	stmt := `
		INSERT INTO farm (name, location, soil_type, ph, moisture, nitrogen, phosphorus, potassium, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, name, location, soil_type, ph, moisture, nitrogen, phosphorus, potassium, created_ts, updated_ts
	`
	farm := store.Farm{}
	if err := d.db.QueryRowContext(ctx, stmt,
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
	).Scan(
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
		return nil, errors.Wrap(err, "failed to create farm")
	}
	return &farm, nil
}

func (d *DB) ListFarms(ctx context.Context, find *store.FindFarm) ([]*store.Farm, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}

	query := `
		SELECT id, name, location, soil_type, ph, moisture, nitrogen, phosphorus, potassium, created_ts, updated_ts
		FROM farm
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, id ASC
	`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list farms")
	}
	defer rows.Close()

	list := []*store.Farm{}
	for rows.Next() {
		var farm store.Farm
		if err := rows.Scan(
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
			return nil, errors.Wrap(err, "failed to scan farm")
		}
		list = append(list, &farm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) UpdateFarm(ctx context.Context, update *store.UpdateFarm) (*store.Farm, error) {
	set, args := []string{}, []any{}
	if update.Name != nil {
		set, args = append(set, "name = ?"), append(args, *update.Name)
	}
	if update.Location != nil {
		set, args = append(set, "location = ?"), append(args, *update.Location)
	}
	if update.SoilType != nil {
		set, args = append(set, "soil_type = ?"), append(args, *update.SoilType)
	}
	if update.PH != nil {
		set, args = append(set, "ph = ?"), append(args, *update.PH)
	}
	if update.Moisture != nil {
		set, args = append(set, "moisture = ?"), append(args, *update.Moisture)
	}
	if update.Nitrogen != nil {
		set, args = append(set, "nitrogen = ?"), append(args, *update.Nitrogen)
	}
	if update.Phosphorus != nil {
		set, args = append(set, "phosphorus = ?"), append(args, *update.Phosphorus)
	}
	if update.Potassium != nil {
		set, args = append(set, "potassium = ?"), append(args, *update.Potassium)
	}
	updatedTs := time.Now().Unix()
	if update.UpdatedTs != nil {
		updatedTs = *update.UpdatedTs
	}
	set, args = append(set, "updated_ts = ?"), append(args, updatedTs)
	args = append(args, update.ID)

	stmt := `
		UPDATE farm SET ` + strings.Join(set, ", ") + `
		WHERE id = ?
		RETURNING id, name, location, soil_type, ph, moisture, nitrogen, phosphorus, potassium, created_ts, updated_ts
	`
	farm := store.Farm{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
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
		return nil, errors.Wrap(err, "failed to update farm")
	}
	return &farm, nil
}

func (d *DB) DeleteFarm(ctx context.Context, delete *store.DeleteFarm) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM farm WHERE id = ?", delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete farm")
	}
	return nil
}
