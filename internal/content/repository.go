package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Row is an untyped content record as exchanged with the admin gateway.
type Row = map[string]any

// ErrUnknownTable indicates a table name outside the fixed allow-list.
var ErrUnknownTable = eris.New("unknown table")

// ErrUnknownColumn indicates a payload key that is not writable for the table.
var ErrUnknownColumn = eris.New("unknown column")

// Repository defines generic persistence operations over the allow-listed
// content tables. Payloads are validated against the table registry at this
// boundary; identifiers and creation timestamps are always server-generated.
type Repository interface {
	Create(ctx context.Context, table string, data Row) (Row, error)
	Update(ctx context.Context, table, id string, data Row) (Row, error)
	Delete(ctx context.Context, table, id string) error
	List(ctx context.Context, table string) ([]Row, error)
}

// GormRepository persists content rows using a Gorm database connection.
type GormRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(conn *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if conn == nil {
		return nil, eris.New("gorm DB is required")
	}

	return &GormRepository{db: conn, logger: logger}, nil
}

var _ Repository = (*GormRepository)(nil)

// Create inserts the payload into the table and returns the stored row,
// including the generated identifier and creation timestamp.
func (r *GormRepository) Create(ctx context.Context, table string, data Row) (Row, error) {
	spec, ok := SpecFor(table)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownTable, "%s", table)
	}

	row, err := normalizePayload(spec, data)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	row["id"] = id
	row["created_at"] = time.Now().UTC()

	if err := r.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
		r.logError(logrus.Fields{"table": table}, err, "inserting row")
		return nil, eris.Wrapf(err, "inserting into %s", table)
	}

	return r.fetch(ctx, spec, id)
}

// Update applies the payload fields to the row matching id and returns the
// updated row. A missing row surfaces as an upstream store error.
func (r *GormRepository) Update(ctx context.Context, table, id string, data Row) (Row, error) {
	spec, ok := SpecFor(table)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownTable, "%s", table)
	}

	row, err := normalizePayload(spec, data)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).Table(table).Where("id = ?", id).Updates(row)
	if result.Error != nil {
		r.logError(logrus.Fields{"table": table, "id": id}, result.Error, "updating row")
		return nil, eris.Wrapf(result.Error, "updating %s row %s", table, id)
	}

	if result.RowsAffected == 0 {
		return nil, eris.Wrapf(gorm.ErrRecordNotFound, "updating %s row %s", table, id)
	}

	return r.fetch(ctx, spec, id)
}

// Delete removes the row matching id. A missing row surfaces as an upstream
// store error.
func (r *GormRepository) Delete(ctx context.Context, table, id string) error {
	if _, ok := SpecFor(table); !ok {
		return eris.Wrapf(ErrUnknownTable, "%s", table)
	}

	// Table names come from the fixed registry, never from the request.
	result := r.db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table), id)
	if result.Error != nil {
		r.logError(logrus.Fields{"table": table, "id": id}, result.Error, "deleting row")
		return eris.Wrapf(result.Error, "deleting %s row %s", table, id)
	}

	if result.RowsAffected == 0 {
		return eris.Wrapf(gorm.ErrRecordNotFound, "deleting %s row %s", table, id)
	}

	return nil
}

// List returns every row of the table ordered by creation time, newest first.
func (r *GormRepository) List(ctx context.Context, table string) ([]Row, error) {
	spec, ok := SpecFor(table)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownTable, "%s", table)
	}

	var rows []Row
	if err := r.db.WithContext(ctx).Table(table).Order("created_at DESC").Find(&rows).Error; err != nil {
		r.logError(logrus.Fields{"table": table}, err, "listing rows")
		return nil, eris.Wrapf(err, "listing %s", table)
	}

	for i := range rows {
		decodeRow(spec, rows[i])
	}

	return rows, nil
}

func (r *GormRepository) fetch(ctx context.Context, spec TableSpec, id string) (Row, error) {
	row := Row{}
	if err := r.db.WithContext(ctx).Table(spec.Name).Where("id = ?", id).Take(&row).Error; err != nil {
		r.logError(logrus.Fields{"table": spec.Name, "id": id}, err, "fetching row")
		return nil, eris.Wrapf(err, "fetching %s row %s", spec.Name, id)
	}

	decodeRow(spec, row)
	return row, nil
}

// normalizePayload validates keys against the table registry and JSON-encodes
// values destined for JSON columns.
func normalizePayload(spec TableSpec, data Row) (Row, error) {
	if len(data) == 0 {
		return nil, eris.New("payload is empty")
	}

	row := make(Row, len(data))
	for key, value := range data {
		if _, ok := spec.Columns[key]; !ok {
			return nil, eris.Wrapf(ErrUnknownColumn, "%s.%s", spec.Name, key)
		}

		if _, ok := spec.JSONColumns[key]; ok {
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, eris.Wrapf(err, "encoding %s.%s", spec.Name, key)
			}
			row[key] = string(encoded)
			continue
		}

		row[key] = value
	}

	return row, nil
}

// decodeRow restores JSON column values to their structured form.
func decodeRow(spec TableSpec, row Row) {
	for key := range spec.JSONColumns {
		raw, ok := row[key]
		if !ok {
			continue
		}

		var text []byte
		switch v := raw.(type) {
		case string:
			text = []byte(v)
		case []byte:
			text = v
		default:
			continue
		}

		var decoded any
		if err := json.Unmarshal(text, &decoded); err == nil {
			row[key] = decoded
		}
	}
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
