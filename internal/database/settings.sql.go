package database

import "context"

const listSettings = `-- name: ListSettings :many
SELECT setting_key, setting_value, updated_at FROM settings WHERE setting_key = ANY($1::text[])`

func (q *Queries) ListSettings(ctx context.Context, keys []string) ([]Setting, error) {
	rows, err := q.db.Query(ctx, listSettings, keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Setting{}
	for rows.Next() {
		var i Setting
		if err := rows.Scan(&i.SettingKey, &i.SettingValue, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertSetting = `-- name: UpsertSetting :exec
INSERT INTO settings (setting_key, setting_value) VALUES ($1, $2)
ON CONFLICT (setting_key) DO UPDATE SET setting_value = EXCLUDED.setting_value, updated_at = now()`

type UpsertSettingParams struct {
	SettingKey   string `json:"setting_key"`
	SettingValue string `json:"setting_value"`
}

func (q *Queries) UpsertSetting(ctx context.Context, arg UpsertSettingParams) error {
	_, err := q.db.Exec(ctx, upsertSetting, arg.SettingKey, arg.SettingValue)
	return err
}
