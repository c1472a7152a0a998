package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DatasetFromWire builds a Dataset from the JSON wire form, a map of column
// name to value array. A column whose values are all JSON numbers becomes
// numeric; everything else becomes categorical with values rendered as
// strings. All columns must have the same length.
func DatasetFromWire(data map[string]json.RawMessage) (*Dataset, error) {
	columns := make([]Column, 0, len(data))
	rows := -1

	for name, raw := range data {
		var floats []float64
		if err := json.Unmarshal(raw, &floats); err == nil {
			columns = append(columns, NewNumericColumn(name, floats))
		} else {
			var values []any
			if err := json.Unmarshal(raw, &values); err != nil {
				return nil, fmt.Errorf("column %s: expected an array of values", name)
			}
			strs := make([]string, len(values))
			for i, v := range values {
				strs[i] = fmt.Sprint(v)
			}
			columns = append(columns, NewCategoricalColumn(name, strs))
		}

		n := columns[len(columns)-1].Len()
		if rows == -1 {
			rows = n
		} else if n != rows {
			return nil, fmt.Errorf("column %s has %d values, expected %d", name, n, rows)
		}
	}

	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset has no columns")
	}

	// Map iteration order is random; keep column order stable for reports.
	sort.Slice(columns, func(i, j int) bool { return columns[i].Name < columns[j].Name })
	return NewDataset(columns...), nil
}

// WireData renders a dataset back into the JSON wire form
func WireData(ds *Dataset) map[string]any {
	out := make(map[string]any, len(ds.Columns))
	for _, col := range ds.Columns {
		if col.IsNumeric() {
			out[col.Name] = col.Floats
		} else {
			out[col.Name] = col.Strings
		}
	}
	return out
}
