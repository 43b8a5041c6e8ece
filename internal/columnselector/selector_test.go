package columnselector

import (
	"encoding/json"
	"testing"

	"bubbleviz/domain/chart"
	"bubbleviz/domain/table"
	"bubbleviz/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecListsRolesInOrder(t *testing.T) {
	tr := New(nil)
	spec := tr.Spec()

	require.Len(t, spec.Props, 4)
	for i, r := range chart.Roles {
		assert.Equal(t, r, spec.Props[i].Name)
		assert.NotEmpty(t, spec.Props[i].Description)
		assert.Nil(t, spec.Selection[r])
	}

	data, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"xAxis"`)
}

func TestSelectByName(t *testing.T) {
	tbl := table.New([]string{"id", "x", "y"}, nil)
	tr := New(nil)

	require.NoError(t, tr.SelectByName(tbl, chart.RoleXAxis, "x"))
	cfg := tr.Config()
	require.NotNil(t, cfg.XAxis)
	assert.Equal(t, 1, cfg.XAxis.Index)

	err := tr.SelectByName(tbl, chart.RoleYAxis, "nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	err = tr.SelectByName(nil, chart.RoleYAxis, "y")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSelectRejectsUnknownRole(t *testing.T) {
	tr := New(nil)
	err := tr.Select(chart.Role("color"), table.Column{Name: "c"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	err = tr.Clear(chart.Role("color"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestConfigIsASnapshot(t *testing.T) {
	start := &chart.AxisConfig{XAxis: &table.Column{Name: "x", Index: 0}}
	tr := New(start)

	start.XAxis.Name = "mutated"
	snap := tr.Config()
	assert.Equal(t, "x", snap.XAxis.Name)

	snap.XAxis.Name = "also mutated"
	assert.Equal(t, "x", tr.Config().XAxis.Name)

	require.NoError(t, tr.Clear(chart.RoleXAxis))
	assert.Nil(t, tr.Config().XAxis)
}

func TestSelectAllIsAllOrNothing(t *testing.T) {
	tr := New(&chart.AxisConfig{XAxis: &table.Column{Name: "x", Index: 0}})
	tbl := table.New([]string{"id", "x", "y"}, nil)

	err := tr.SelectAll(tbl, map[chart.Role]string{chart.RoleXAxis: "x", chart.RoleYAxis: "nope"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	cfg := tr.Config()
	assert.Equal(t, 0, cfg.XAxis.Index)
	assert.Nil(t, cfg.YAxis)

	err = tr.SelectAll(tbl, map[chart.Role]string{chart.RoleXAxis: "x", chart.Role("color"): "y"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	cfg = tr.Config()
	assert.Equal(t, 0, cfg.XAxis.Index)

	require.NoError(t, tr.SelectAll(tbl, map[chart.Role]string{chart.RoleXAxis: "x", chart.RoleYAxis: "y"}))
	cfg = tr.Config()
	assert.Equal(t, 1, cfg.XAxis.Index)
	assert.Equal(t, 2, cfg.YAxis.Index)
}
