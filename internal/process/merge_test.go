package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dm/appdx/internal/model"
)

func TestMergeOnKeyOuterJoin(t *testing.T) {
	apps := model.NewTable("apps")
	apps.AddColumns("app_id", "app_name")
	apps.AddRow(model.Row{"app_id": model.String("1"), "app_name": model.String("shop")})
	apps.AddRow(model.Row{"app_id": model.String("2"), "app_name": model.String("billing")})

	counts := model.NewTable("tiers")
	counts.AddColumns("app_id", "tier_count")
	counts.AddRow(model.Row{"app_id": model.String("1"), "tier_count": model.Int(3)})

	merged, err := MergeOnKey("overview", "app_id", apps, counts)
	require.NoError(t, err)
	require.Equal(t, 2, merged.Len())

	assert.Equal(t, "shop", merged.Cell(0, "app_name").Display())
	assert.Equal(t, "3", merged.Cell(0, "tier_count").Display())

	// App 2 has no tier row: the join must surface the no-data marker, not a
	// zero count.
	assert.Equal(t, "billing", merged.Cell(1, "app_name").Display())
	assert.False(t, merged.Cell(1, "tier_count").HasData())
	assert.Equal(t, model.NoDataMarker, merged.Cell(1, "tier_count").Display())
}

func TestMergeOnKeyColumnCollision(t *testing.T) {
	a := model.NewTable("left")
	a.AddColumns("id", "name")
	a.AddRow(model.Row{"id": model.String("1"), "name": model.String("from-left")})

	b := model.NewTable("right")
	b.AddColumns("id", "name")
	b.AddRow(model.Row{"id": model.String("1"), "name": model.String("from-right")})

	merged, err := MergeOnKey("out", "id", a, b)
	require.NoError(t, err)

	assert.Equal(t, "from-left", merged.Cell(0, "name").Display())
	assert.Equal(t, "from-right", merged.Cell(0, "name (right)").Display())
}

func TestMergeOnKeyFirstRowPerKeyWins(t *testing.T) {
	a := model.NewTable("dups")
	a.AddColumns("id", "v")
	a.AddRow(model.Row{"id": model.String("1"), "v": model.String("first")})
	a.AddRow(model.Row{"id": model.String("1"), "v": model.String("second")})

	merged, err := MergeOnKey("out", "id", a)
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "first", merged.Cell(0, "v").Display())
}

func TestMergeOnKeyMissingKeyRejected(t *testing.T) {
	a := model.NewTable("nokey")
	a.AddColumns("name")
	a.AddRow(model.Row{"name": model.String("x")})

	_, err := MergeOnKey("out", "id", a)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "nokey", perr.Table)
}

func TestMergeOnKeySkipsEmptyInputs(t *testing.T) {
	a := model.NewTable("data")
	a.AddColumns("id", "v")
	a.AddRow(model.Row{"id": model.String("1"), "v": model.String("x")})

	merged, err := MergeOnKey("out", "id", nil, model.NewTable("empty"), a)
	require.NoError(t, err)
	assert.Equal(t, 1, merged.Len())
}
