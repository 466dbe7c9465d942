package main

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Row is a decoded sheet row. Key is the storage key used to delete it.
type Row struct {
	Key   uint
	Cells []string
}

// Cell returns the i-th cell or an empty string when the row is shorter.
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// SheetStore keeps spreadsheet-style tables in the database. Each sheet is an
// append-only list of rows whose first row is the header.
type SheetStore struct {
	db *gorm.DB
}

func NewSheetStore(db *gorm.DB) *SheetStore {
	return &SheetStore{db: db}
}

func (s *SheetStore) rowCount(ctx context.Context, sheet string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&SheetRow{}).Where("sheet = ?", sheet).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting rows of %s: %w", sheet, err)
	}
	return count, nil
}

// EnsureHeader writes the header row if the sheet has no rows yet. Calling it
// on a sheet that already has rows does nothing.
func (s *SheetStore) EnsureHeader(ctx context.Context, sheet string, header []string) error {
	count, err := s.rowCount(ctx, sheet)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	_, err = s.AppendRow(ctx, sheet, header)
	return err
}

// AppendRow adds a row after the last row of the sheet.
func (s *SheetStore) AppendRow(ctx context.Context, sheet string, cells []string) (uint, error) {
	encoded, err := json.Marshal(cells)
	if err != nil {
		return 0, fmt.Errorf("encoding row: %w", err)
	}

	row := SheetRow{Sheet: sheet, Cells: datatypes.JSON(encoded)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("appending row to %s: %w", sheet, err)
	}
	return row.ID, nil
}

// AppendWithHeader writes the header when the sheet is empty and appends cells
// after it, in one transaction so concurrent first writes share one header.
func (s *SheetStore) AppendWithHeader(ctx context.Context, sheet string, header, cells []string) (uint, error) {
	var key uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txStore := &SheetStore{db: tx}
		if err := txStore.EnsureHeader(ctx, sheet, header); err != nil {
			return err
		}
		var err error
		key, err = txStore.AppendRow(ctx, sheet, cells)
		return err
	})
	if err != nil {
		return 0, err
	}
	return key, nil
}

// CountDataRows returns the number of rows below the header.
func (s *SheetStore) CountDataRows(ctx context.Context, sheet string) (int, error) {
	count, err := s.rowCount(ctx, sheet)
	if err != nil {
		return 0, err
	}
	if count <= 1 {
		return 0, nil
	}
	return int(count - 1), nil
}

// DataRows returns every row below the header, oldest first.
func (s *SheetStore) DataRows(ctx context.Context, sheet string) ([]Row, error) {
	var records []SheetRow
	err := s.db.WithContext(ctx).
		Where("sheet = ?", sheet).
		Order("id asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("reading rows of %s: %w", sheet, err)
	}
	if len(records) <= 1 {
		return []Row{}, nil
	}
	return decodeRows(records[1:])
}

// LastDataRows returns up to n of the most recently appended data rows,
// newest first.
func (s *SheetStore) LastDataRows(ctx context.Context, sheet string, n int) ([]Row, error) {
	total, err := s.CountDataRows(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if total == 0 || n <= 0 {
		return []Row{}, nil
	}
	if n > total {
		n = total
	}

	var records []SheetRow
	err = s.db.WithContext(ctx).
		Where("sheet = ?", sheet).
		Order("id desc").
		Limit(n).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("reading rows of %s: %w", sheet, err)
	}
	return decodeRows(records)
}

// DeleteRow removes a row by its key. Later rows keep their order.
func (s *SheetStore) DeleteRow(ctx context.Context, sheet string, key uint) error {
	result := s.db.WithContext(ctx).
		Where("sheet = ? AND id = ?", sheet, key).
		Delete(&SheetRow{})
	if result.Error != nil {
		return fmt.Errorf("deleting row %d of %s: %w", key, sheet, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeRows(records []SheetRow) ([]Row, error) {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		var cells []string
		if len(rec.Cells) > 0 {
			if err := json.Unmarshal(rec.Cells, &cells); err != nil {
				return nil, fmt.Errorf("decoding row %d: %w", rec.ID, err)
			}
		}
		rows = append(rows, Row{Key: rec.ID, Cells: cells})
	}
	return rows, nil
}
