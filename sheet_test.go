package main

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestEnsureHeaderIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewSheetStore(newTestDB(t))
	header := []string{"a", "b"}

	for i := 0; i < 3; i++ {
		if err := store.EnsureHeader(ctx, "sheet", header); err != nil {
			t.Fatalf("EnsureHeader: %v", err)
		}
	}

	count, err := store.rowCount(ctx, "sheet")
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one header row, got %d rows", count)
	}

	n, err := store.CountDataRows(ctx, "sheet")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("header must not count as data, got %d", n)
	}
}

func TestDataRowsSkipHeaderAndKeepAppendOrder(t *testing.T) {
	ctx := context.Background()
	store := NewSheetStore(newTestDB(t))

	if err := store.EnsureHeader(ctx, "sheet", []string{"name"}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.AppendRow(ctx, "sheet", []string{name}); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := store.DataRows(ctx, "sheet")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.Cell(0))
	}
	if want := []string{"first", "second", "third"}; !slices.Equal(got, want) {
		t.Errorf("DataRows = %v, want %v", got, want)
	}

	last, err := store.LastDataRows(ctx, "sheet", 2)
	if err != nil {
		t.Fatal(err)
	}
	got = got[:0]
	for _, r := range last {
		got = append(got, r.Cell(0))
	}
	if want := []string{"third", "second"}; !slices.Equal(got, want) {
		t.Errorf("LastDataRows(2) = %v, want %v", got, want)
	}

	// asking for more rows than exist never returns the header
	last, err = store.LastDataRows(ctx, "sheet", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 3 {
		t.Errorf("LastDataRows(50) returned %d rows, want 3", len(last))
	}
}

func TestEmptySheetReadsAreEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewSheetStore(newTestDB(t))

	rows, err := store.DataRows(ctx, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", rows)
	}

	last, err := store.LastDataRows(ctx, "missing", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(last) != 0 {
		t.Errorf("expected no rows, got %d", len(last))
	}
}

func TestDeleteRow(t *testing.T) {
	ctx := context.Background()
	store := NewSheetStore(newTestDB(t))

	if err := store.EnsureHeader(ctx, "sheet", []string{"v"}); err != nil {
		t.Fatal(err)
	}
	var keys []uint
	for _, v := range []string{"x", "y", "z"} {
		key, err := store.AppendRow(ctx, "sheet", []string{v})
		if err != nil {
			t.Fatal(err)
		}
		keys = append(keys, key)
	}

	if err := store.DeleteRow(ctx, "sheet", keys[1]); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	if err := store.DeleteRow(ctx, "sheet", keys[1]); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
	// a key from another sheet does not match
	if err := store.DeleteRow(ctx, "other", keys[0]); !errors.Is(err, ErrNotFound) {
		t.Errorf("cross-sheet delete = %v, want ErrNotFound", err)
	}

	rows, err := store.DataRows(ctx, "sheet")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0].Cell(0) != "x" || rows[1].Cell(0) != "z" {
		t.Errorf("unexpected rows after delete: %+v", rows)
	}
}

func TestSheetsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewSheetStore(newTestDB(t))

	for _, sheet := range []string{"one", "two"} {
		if err := store.EnsureHeader(ctx, sheet, []string{"h"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.AppendRow(ctx, "one", []string{"row"}); err != nil {
		t.Fatal(err)
	}

	n, err := store.CountDataRows(ctx, "two")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("sheet two has %d data rows, want 0", n)
	}
}

func TestRowCellOutOfRange(t *testing.T) {
	r := Row{Cells: []string{"only"}}
	if r.Cell(4) != "" || r.Cell(-1) != "" {
		t.Error("out of range cells must be empty")
	}
}

func TestAppendWithHeaderWritesHeaderOnce(t *testing.T) {
	ctx := context.Background()
	store := NewSheetStore(newTestDB(t))
	header := []string{"ID", "name"}

	for _, v := range []string{"x", "y"} {
		if _, err := store.AppendWithHeader(ctx, "sheet", header, []string{v}); err != nil {
			t.Fatalf("AppendWithHeader(%s): %v", v, err)
		}
	}

	count, err := store.rowCount(ctx, "sheet")
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("expected header plus two rows, got %d rows", count)
	}
	rows, err := store.DataRows(ctx, "sheet")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rows {
		if r.Cell(0) == "ID" {
			t.Errorf("header read back as data: %+v", rows)
		}
	}
}

func TestAppendWithHeaderLeavesNothingOnFailure(t *testing.T) {
	store := NewSheetStore(newTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.AppendWithHeader(ctx, "sheet", []string{"h"}, []string{"v"}); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	count, err := store.rowCount(context.Background(), "sheet")
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("failed append left %d rows", count)
	}
}
