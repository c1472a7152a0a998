package models

import (
	"strconv"
)

// ColumnKind identifies how a column's values are stored
type ColumnKind string

const (
	ColumnNumeric     ColumnKind = "numeric"
	ColumnCategorical ColumnKind = "categorical"
)

// Column is a single named column of an in-memory tabular dataset.
// Numeric columns carry Floats, categorical columns carry Strings.
type Column struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Floats  []float64  `json:"floats,omitempty"`
	Strings []string   `json:"strings,omitempty"`
}

// NewNumericColumn creates a numeric column
func NewNumericColumn(name string, values []float64) Column {
	return Column{Name: name, Kind: ColumnNumeric, Floats: values}
}

// NewCategoricalColumn creates a categorical column
func NewCategoricalColumn(name string, values []string) Column {
	return Column{Name: name, Kind: ColumnCategorical, Strings: values}
}

// Len returns the number of values in the column
func (c *Column) Len() int {
	if c.Kind == ColumnNumeric {
		return len(c.Floats)
	}
	return len(c.Strings)
}

// IsNumeric reports whether the column holds float values
func (c *Column) IsNumeric() bool {
	return c.Kind == ColumnNumeric
}

// ValueString returns the value at index i rendered as a string,
// usable as a grouping key regardless of column kind.
func (c *Column) ValueString(i int) string {
	if c.Kind == ColumnNumeric {
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	}
	return c.Strings[i]
}

// Dataset is an in-memory tabular dataset. Column order is preserved;
// all columns are expected to have the same length.
type Dataset struct {
	Columns []Column `json:"columns"`
}

// NewDataset creates a dataset from columns
func NewDataset(columns ...Column) *Dataset {
	return &Dataset{Columns: columns}
}

// Rows returns the number of records in the dataset
func (d *Dataset) Rows() int {
	if len(d.Columns) == 0 {
		return 0
	}
	return d.Columns[0].Len()
}

// Column returns the column with the given name
func (d *Dataset) Column(name string) (*Column, bool) {
	for i := range d.Columns {
		if d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}

// ColumnNames returns all column names in order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumnNames returns the names of all numeric columns in order
func (d *Dataset) NumericColumnNames() []string {
	names := make([]string, 0, len(d.Columns))
	for _, c := range d.Columns {
		if c.IsNumeric() {
			names = append(names, c.Name)
		}
	}
	return names
}

// Clone returns a deep copy of the dataset
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{Columns: make([]Column, len(d.Columns))}
	for i, c := range d.Columns {
		cc := Column{Name: c.Name, Kind: c.Kind}
		if c.Floats != nil {
			cc.Floats = make([]float64, len(c.Floats))
			copy(cc.Floats, c.Floats)
		}
		if c.Strings != nil {
			cc.Strings = make([]string, len(c.Strings))
			copy(cc.Strings, c.Strings)
		}
		out.Columns[i] = cc
	}
	return out
}
