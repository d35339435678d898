package entity

import "testing"

func TestValuesMatchColumns(t *testing.T) {
	if got := len(HttpLogRecord{}.Values()); got != len(Columns) {
		t.Errorf("Values has %d entries for %d columns", got, len(Columns))
	}
}
