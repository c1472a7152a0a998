package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetAccessors(t *testing.T) {
	ds := NewDataset(
		NewNumericColumn("age", []float64{25, 30, 35}),
		NewCategoricalColumn("dept", []string{"eng", "hr", "ops"}),
		NewNumericColumn("salary", []float64{100, 200, 300}),
	)

	assert.Equal(t, 3, ds.Rows())
	assert.Equal(t, []string{"age", "dept", "salary"}, ds.ColumnNames())
	assert.Equal(t, []string{"age", "salary"}, ds.NumericColumnNames())

	col, ok := ds.Column("dept")
	require.True(t, ok)
	assert.False(t, col.IsNumeric())
	assert.Equal(t, 3, col.Len())

	_, ok = ds.Column("missing")
	assert.False(t, ok)
}

func TestColumnValueString(t *testing.T) {
	num := NewNumericColumn("x", []float64{1, 2.5, 1e21})
	assert.Equal(t, "1", num.ValueString(0))
	assert.Equal(t, "2.5", num.ValueString(1))
	assert.Equal(t, "1e+21", num.ValueString(2))

	cat := NewCategoricalColumn("y", []string{"a"})
	assert.Equal(t, "a", cat.ValueString(0))
}

func TestCloneIsDeep(t *testing.T) {
	ds := NewDataset(
		NewNumericColumn("age", []float64{25, 30}),
		NewCategoricalColumn("dept", []string{"eng", "hr"}),
	)

	clone := ds.Clone()
	clone.Columns[0].Floats[0] = 99
	clone.Columns[1].Strings[0] = "sales"

	assert.Equal(t, 25.0, ds.Columns[0].Floats[0])
	assert.Equal(t, "eng", ds.Columns[1].Strings[0])
}

func TestDatasetFromWire(t *testing.T) {
	ds, err := DatasetFromWire(map[string]json.RawMessage{
		"age":  json.RawMessage(`[25, 30, 35]`),
		"dept": json.RawMessage(`["eng", "hr", "ops"]`),
	})
	require.NoError(t, err)

	// Columns come back sorted by name.
	assert.Equal(t, []string{"age", "dept"}, ds.ColumnNames())

	age, ok := ds.Column("age")
	require.True(t, ok)
	assert.True(t, age.IsNumeric())
	assert.Equal(t, []float64{25, 30, 35}, age.Floats)

	dept, ok := ds.Column("dept")
	require.True(t, ok)
	assert.False(t, dept.IsNumeric())
	assert.Equal(t, []string{"eng", "hr", "ops"}, dept.Strings)
}

func TestDatasetFromWireErrors(t *testing.T) {
	_, err := DatasetFromWire(map[string]json.RawMessage{
		"age":  json.RawMessage(`[25, 30]`),
		"dept": json.RawMessage(`["eng"]`),
	})
	require.Error(t, err)

	_, err = DatasetFromWire(map[string]json.RawMessage{
		"age": json.RawMessage(`"not an array"`),
	})
	require.Error(t, err)

	_, err = DatasetFromWire(nil)
	require.Error(t, err)
}

func TestWireDataRoundTrip(t *testing.T) {
	ds := NewDataset(
		NewNumericColumn("age", []float64{25, 30}),
		NewCategoricalColumn("dept", []string{"eng", "hr"}),
	)

	wire := WireData(ds)
	assert.Equal(t, []float64{25, 30}, wire["age"])
	assert.Equal(t, []string{"eng", "hr"}, wire["dept"])
}
