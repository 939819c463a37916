package view

import (
	"testing"

	"github.com/stretchr/testify/require"

	"livedb/pkg/dberror"
	"livedb/pkg/join"
	"livedb/pkg/schema"
	"livedb/pkg/table"
	"livedb/pkg/types"
)

func usersAndOrders(t *testing.T) (*table.Table, *table.Table) {
	t.Helper()
	users, err := table.New("users", schema.MustNew(
		schema.Column{Name: "id", Type: types.Int32Type},
		schema.Column{Name: "name", Type: types.StringType},
	))
	require.NoError(t, err)
	orders, err := table.New("orders", schema.MustNew(
		schema.Column{Name: "order_id", Type: types.Int32Type},
		schema.Column{Name: "user_id", Type: types.Int32Type, Nullable: true},
		schema.Column{Name: "amount", Type: types.Float64Type},
	))
	require.NoError(t, err)

	require.NoError(t, users.AppendRow(types.Row{types.Int32(1), types.String("ann")}))
	require.NoError(t, users.AppendRow(types.Row{types.Int32(2), types.String("bob")}))
	require.NoError(t, orders.AppendRow(types.Row{types.Int32(100), types.Int32(1), types.Float64(9.5)}))
	return users, orders
}

func TestJoinUsersOrders(t *testing.T) {
	users, orders := usersAndOrders(t)

	left, err := NewJoin(users, orders, "all_users", []string{"id"}, []string{"user_id"}, join.Left)
	require.NoError(t, err)
	inner, err := NewJoin(users, orders, "buyers", []string{"id"}, []string{"user_id"}, join.Inner)
	require.NoError(t, err)

	require.Equal(t,
		[]string{"id", "name", "right_order_id", "right_user_id", "right_amount"},
		left.Schema().Names())

	requireRows(t, []types.Row{
		{types.Int32(1), types.String("ann"), types.Int32(100), types.Int32(1), types.Float64(9.5)},
		{types.Int32(2), types.String("bob"), types.Null(), types.Null(), types.Null()},
	}, viewRows(t, left))

	requireRows(t, []types.Row{
		{types.Int32(1), types.String("ann"), types.Int32(100), types.Int32(1), types.Float64(9.5)},
	}, viewRows(t, inner))
}

func TestJoinManualRefresh(t *testing.T) {
	users, orders := usersAndOrders(t)
	j, err := NewJoin(users, orders, "buyers", []string{"id"}, []string{"user_id"}, join.Inner)
	require.NoError(t, err)
	require.Equal(t, Synced, j.State())

	require.NoError(t, orders.AppendRow(types.Row{types.Int32(101), types.Int32(2), types.Float64(3)}))
	require.NoError(t, orders.AppendRow(types.Row{types.Int32(102), types.Int32(1), types.Float64(4)}))
	require.Equal(t, Stale, j.State())

	n, err := j.Len()
	require.NoError(t, err)
	require.Equal(t, 1, n, "join reads serve the last build")

	require.NoError(t, j.Refresh())
	require.Equal(t, Synced, j.State())
	amounts, err := NewProjection(j, "amounts", []string{"right_amount"})
	require.NoError(t, err)
	requireRows(t, []types.Row{
		{types.Float64(9.5)},
		{types.Float64(4)},
		{types.Float64(3)},
	}, viewRows(t, amounts))
}

func TestJoinNullKeysNeverMatch(t *testing.T) {
	users, orders := usersAndOrders(t)
	require.NoError(t, orders.AppendRow(types.Row{types.Int32(103), types.Null(), types.Float64(1)}))

	j, err := NewJoin(orders, users, "owners", []string{"user_id"}, []string{"id"}, join.Left)
	require.NoError(t, err)
	rows := viewRows(t, j)
	require.Len(t, rows, 2)
	require.True(t, rows[1][3].IsNull(), "Null key pads instead of matching")
}

func TestJoinPrefixAvoidsClash(t *testing.T) {
	left, err := table.New("l", schema.MustNew(
		schema.Column{Name: "x", Type: types.Int32Type},
		schema.Column{Name: "right_x", Type: types.Int32Type},
	))
	require.NoError(t, err)
	right, err := table.New("r", schema.MustNew(
		schema.Column{Name: "x", Type: types.Int32Type},
	))
	require.NoError(t, err)
	require.NoError(t, left.AppendRow(types.Row{types.Int32(1), types.Int32(7)}))
	require.NoError(t, right.AppendRow(types.Row{types.Int32(1)}))

	j, err := NewJoin(left, right, "j", []string{"x"}, []string{"x"}, join.Inner)
	require.NoError(t, err)
	require.Equal(t, []string{"x", "right_x", "right_right_x"}, j.Schema().Names())
	requireRows(t, []types.Row{{types.Int32(1), types.Int32(7), types.Int32(1)}}, viewRows(t, j))
}

func TestJoinErrors(t *testing.T) {
	users, orders := usersAndOrders(t)

	tests := []struct {
		name        string
		left, right []string
		want        error
	}{
		{"empty keys", nil, nil, dberror.ErrSchemaViolation},
		{"count mismatch", []string{"id", "name"}, []string{"user_id"}, dberror.ErrKeyCountMismatch},
		{"missing left", []string{"nope"}, []string{"user_id"}, dberror.ErrColumnNotFound},
		{"missing right", []string{"id"}, []string{"nope"}, dberror.ErrColumnNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJoin(users, orders, "j", tt.left, tt.right, join.Inner)
			require.ErrorIs(t, err, tt.want)
		})
	}
}
