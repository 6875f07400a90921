package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"registry-harvester/models"
)

// ParseDistribution decodes a machine-readable endpoint response (an
// array of flat JSON objects) into a header and rows. Column order is
// the sorted union of the object keys, since JSON objects carry no
// order. Missing keys and nulls become absent cells.
func ParseDistribution(body []byte) (models.Header, []models.Row, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var records []map[string]interface{}
	if err := dec.Decode(&records); err != nil {
		return nil, nil, fmt.Errorf("failed to decode JSON response: %w", err)
	}

	seen := make(map[string]bool)
	var header models.Header
	for _, rec := range records {
		for key := range rec {
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
	}
	sort.Strings(header)

	rows := make([]models.Row, 0, len(records))
	for _, rec := range records {
		row := make(models.Row, len(header))
		for i, key := range header {
			row[i] = stringifyJSON(rec[key])
		}
		rows = append(rows, row)
	}

	return header, rows, nil
}

func stringifyJSON(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}
