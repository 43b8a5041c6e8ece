package chart

import (
	"encoding/json"
	"math"
	"testing"

	"bubbleviz/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAxisConfigReadiness(t *testing.T) {
	var cfg AxisConfig
	assert.False(t, cfg.Ready())
	assert.Equal(t, Roles, cfg.Missing())

	cfg.Set(RoleXAxis, &table.Column{Name: "x", Index: 0})
	cfg.Set(RoleYAxis, &table.Column{Name: "y", Index: 1})
	cfg.Set(RoleZAxis, &table.Column{Name: "z", Index: 2})
	assert.False(t, cfg.Ready())
	assert.Equal(t, []Role{RoleCategory}, cfg.Missing())

	cfg.Set(RoleCategory, &table.Column{Name: "cat", Index: 3})
	assert.True(t, cfg.Ready())

	cfg.Set(RoleYAxis, nil)
	assert.False(t, cfg.Ready())

	var nilCfg *AxisConfig
	assert.False(t, nilCfg.Ready())
}

func TestAxisConfigClone(t *testing.T) {
	cfg := AxisConfig{XAxis: &table.Column{Name: "x", Index: 0}}
	cp := cfg.Clone()
	cp.XAxis.Name = "changed"

	assert.Equal(t, "x", cfg.XAxis.Name)
	assert.Nil(t, cp.YAxis)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("zAxis")
	assert.True(t, ok)
	assert.Equal(t, RoleZAxis, r)

	_, ok = ParseRole("color")
	assert.False(t, ok)
}

func TestValuesJSONWritesNaNAsNull(t *testing.T) {
	data, err := json.Marshal(Values{1, math.NaN(), 2.5})
	require.NoError(t, err)
	assert.Equal(t, `[1,null,2.5]`, string(data))

	var back Values
	require.NoError(t, json.Unmarshal(data, &back))
	require.Len(t, back, 3)
	assert.True(t, math.IsNaN(back[1]))
	assert.Equal(t, 2.5, back[2])
}

func TestDefaultLayoutJSON(t *testing.T) {
	data, err := json.Marshal(DefaultLayout())
	require.NoError(t, err)
	assert.JSONEq(t, `{"hovermode":"closest","margin":{"t":0}}`, string(data))

	data, err = json.Marshal(DefaultDisplayOptions())
	require.NoError(t, err)
	assert.JSONEq(t, `{"showLink":false,"displayModeBar":false}`, string(data))
}

func TestValuesJSONWritesInfAsNull(t *testing.T) {
	data, err := json.Marshal(Values{math.Inf(1), 3, math.Inf(-1)})
	require.NoError(t, err)
	assert.Equal(t, `[null,3,null]`, string(data))
}
