package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/andikasp/desa-wisata-api/internal/model"
)

// ItemRepo is the generic record store behind the /api/data surface.  One
// repo serves all content tables; every method takes the already-resolved
// model.ResourceType, so table names reaching the query text always come
// from the closed registry and never from the request.
type ItemRepo struct{ DB *sql.DB }

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{DB: db} }

// itemColumns lists the whitelisted columns written on create and update.
// Tables carry further per-type columns (phone, location, ...) which the
// store passes through on reads but never writes.
func itemColumns(rt model.ResourceType, withImages bool) []string {
	cols := []string{"name", "category", "description"}
	if rt.HasPrice {
		cols = append(cols, "price")
	}
	if withImages {
		cols = append(cols, "images")
	}
	return cols
}

// itemValues returns the bind values matching itemColumns for f.
func itemValues(rt model.ResourceType, f model.ItemFields, withImages bool) ([]any, error) {
	vals := []any{f.Name, f.Category, f.Description}
	if rt.HasPrice {
		vals = append(vals, f.Price)
	}
	if withImages {
		imgs := f.Images
		if imgs == nil {
			imgs = []model.ImageRef{}
		}
		b, err := json.Marshal(imgs)
		if err != nil {
			return nil, fmt.Errorf("marshal images: %w", err)
		}
		vals = append(vals, string(b))
	}
	return vals, nil
}

// GetAll returns every row of the type's table.  Row order is whatever the
// store yields; clients sort on their side.
func (r *ItemRepo) GetAll(ctx context.Context, rt model.ResourceType) ([]map[string]any, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT * FROM "+rt.Table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []map[string]any{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByID returns a single row or ErrNotFound.
func (r *ItemRepo) GetByID(ctx context.Context, rt model.ResourceType, id uint64) (map[string]any, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT * FROM "+rt.Table+" WHERE id=? LIMIT 1", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanItem(rows)
}

// Create inserts a row built from the whitelisted fields and returns the
// generated id.  The images column is always written, as an empty array when
// the request attached no files.
func (r *ItemRepo) Create(ctx context.Context, rt model.ResourceType, f model.ItemFields) (uint64, error) {
	cols := itemColumns(rt, true)
	vals, err := itemValues(rt, f, true)
	if err != nil {
		return 0, err
	}
	query := "INSERT INTO " + rt.Table + " (" + strings.Join(cols, ", ") + ") VALUES (" + placeholders(len(cols)) + ")"
	res, err := r.DB.ExecContext(ctx, query, vals...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update replaces the whitelisted fields of a row.  The images column is
// only touched when f.Images is non-nil, so an update without new uploads
// leaves existing image references in place.  Zero affected rows reports
// ErrNotFound.
func (r *ItemRepo) Update(ctx context.Context, rt model.ResourceType, id uint64, f model.ItemFields) error {
	withImages := f.Images != nil
	cols := itemColumns(rt, withImages)
	vals, err := itemValues(rt, f, withImages)
	if err != nil {
		return err
	}
	set := make([]string, len(cols))
	for i, c := range cols {
		set[i] = c + "=?"
	}
	vals = append(vals, id)
	res, err := r.DB.ExecContext(ctx, "UPDATE "+rt.Table+" SET "+strings.Join(set, ", ")+" WHERE id=?", vals...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a row by id.  Zero affected rows reports ErrNotFound, which
// also covers a concurrent delete winning the race.
func (r *ItemRepo) Delete(ctx context.Context, rt model.ResourceType, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM "+rt.Table+" WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// scanItem reads the current row into a generic map.  Column names differ
// per table, so the scan works off rows.Columns: byte slices become strings
// and the images column is decoded into []model.ImageRef.
func scanItem(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	for i := range vals {
		vals[i] = new(any)
	}
	if err := rows.Scan(vals...); err != nil {
		return nil, err
	}
	item := make(map[string]any, len(cols))
	for i, col := range cols {
		v := *(vals[i].(*any))
		if b, ok := v.([]byte); ok {
			if col == "images" {
				var refs []model.ImageRef
				if err := json.Unmarshal(b, &refs); err != nil || refs == nil {
					refs = []model.ImageRef{}
				}
				item[col] = refs
				continue
			}
			item[col] = string(b)
			continue
		}
		item[col] = v
	}
	if _, ok := item["images"]; !ok {
		item["images"] = []model.ImageRef{}
	}
	return item, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
