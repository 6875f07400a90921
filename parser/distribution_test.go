package parser

import (
	"reflect"
	"testing"
)

func TestParseDistribution(t *testing.T) {
	body := `[
		{"county": "Nairobi", "pharmacists": 1200, "ratio": 0.35, "active": true},
		{"county": "Mombasa", "pharmacists": 430, "notes": null}
	]`

	header, rows, err := ParseDistribution([]byte(body))
	if err != nil {
		t.Fatalf("ParseDistribution() error = %v", err)
	}

	wantHeader := []string{"active", "county", "notes", "pharmacists", "ratio"}
	if !reflect.DeepEqual([]string(header), wantHeader) {
		t.Errorf("header = %v, want %v", header, wantHeader)
	}

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if got := []string(rows[0]); !reflect.DeepEqual(got, []string{"true", "Nairobi", "", "1200", "0.35"}) {
		t.Errorf("row 0 = %v", got)
	}
	if got := []string(rows[1]); !reflect.DeepEqual(got, []string{"", "Mombasa", "", "430", ""}) {
		t.Errorf("row 1 = %v", got)
	}
}

func TestParseDistribution_Invalid(t *testing.T) {
	if _, _, err := ParseDistribution([]byte(`<html>not json</html>`)); err == nil {
		t.Fatal("ParseDistribution() expected error for non-JSON body")
	}
}

func TestParseDistribution_Empty(t *testing.T) {
	header, rows, err := ParseDistribution([]byte(`[]`))
	if err != nil {
		t.Fatalf("ParseDistribution() error = %v", err)
	}
	if len(header) != 0 || len(rows) != 0 {
		t.Errorf("got header=%v rows=%v, want empty", header, rows)
	}
}
