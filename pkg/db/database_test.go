package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLiteMemory(t *testing.T) {
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, db.Exec("CREATE TABLE widgets (id INTEGER)").Error)
	require.NoError(t, db.Exec("INSERT INTO widgets (id) VALUES (1)").Error)

	var n int64
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM widgets").Scan(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), DriverSQLite, "")
	require.Error(t, err)

	_, err = Open(context.Background(), "oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown DB_DRIVER")
}
