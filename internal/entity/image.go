package entity

import (
	"encoding/json"
	"fmt"
)

// Encode serialises a row to its JSON image for the undo log.
func Encode(row Row) ([]byte, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode %s image: %w", row.TableName(), err)
	}
	return data, nil
}

// Decode recovers a typed row from a table tag and a JSON image.
// The tag set is closed; unknown tags are an error, never a panic.
func Decode(table string, data []byte) (Row, error) {
	row, err := New(table)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, row); err != nil {
		return nil, fmt.Errorf("decode %s image: %w", table, err)
	}
	return row, nil
}

// New returns an empty row for a table tag.
func New(table string) (Row, error) {
	switch table {
	case TableTenant:
		return &Tenant{}, nil
	case TableUser:
		return &User{}, nil
	case TableParameter:
		return &Parameter{}, nil
	case TableDiary:
		return &DiaryEntry{}, nil
	case TablePlace:
		return &Place{}, nil
	case TablePerson:
		return &Person{}, nil
	default:
		return nil, fmt.Errorf("unknown table %q", table)
	}
}

// Tables lists every table tag the core knows about.
func Tables() []string {
	return []string{
		TableTenant, TableUser, TableParameter,
		TableDiary, TablePlace, TablePerson,
	}
}
