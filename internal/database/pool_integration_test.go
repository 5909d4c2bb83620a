package database_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rickgao/tablesync/internal/database"
	"github.com/rickgao/tablesync/internal/database/dbtest"
)

func connectSmallPool(t *testing.T, timeout time.Duration) *database.Pool {
	t.Helper()
	url := os.Getenv(dbtest.EnvURL)
	if url == "" {
		t.Skipf("%s not set", dbtest.EnvURL)
	}
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	pool, err := database.ConnectURL(context.Background(), url+sep+"pool_max_conns=2&pool_min_conns=1", timeout, nil)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPool_AcquireTimeout(t *testing.T) {
	pool := connectSmallPool(t, 100*time.Millisecond)
	ctx := context.Background()

	c1, err := pool.Acquire(ctx)
	require.NoError(t, err)
	c2, err := pool.Acquire(ctx)
	require.NoError(t, err)

	_, err = pool.Acquire(ctx)
	require.ErrorIs(t, err, database.ErrAcquireTimeout)

	pool.Release(c1)
	c3, err := pool.Acquire(ctx)
	require.NoError(t, err)

	c2.Release()
	c3.Release()
}

func TestPool_QueryHonorsAcquireTimeout(t *testing.T) {
	pool := connectSmallPool(t, 100*time.Millisecond)
	ctx := context.Background()

	c1, err := pool.Acquire(ctx)
	require.NoError(t, err)
	c2, err := pool.Acquire(ctx)
	require.NoError(t, err)

	_, err = pool.Query(ctx, "SELECT 1")
	require.ErrorIs(t, err, database.ErrAcquireTimeout)

	var one int
	err = pool.QueryRow(ctx, "SELECT 1").Scan(&one)
	require.ErrorIs(t, err, database.ErrAcquireTimeout)

	c1.Release()
	c2.Release()
}

func TestPool_QueryReleasesConnection(t *testing.T) {
	pool := connectSmallPool(t, time.Second)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rows, err := pool.Query(ctx, "SELECT generate_series(1, 3)")
		require.NoError(t, err)
		n := 0
		for rows.Next() {
			n++
		}
		require.NoError(t, rows.Err())
		require.Equal(t, 3, n)
		rows.Close()

		var one int
		require.NoError(t, pool.QueryRow(ctx, "SELECT 1").Scan(&one))
		require.Equal(t, 1, one)
	}

	// Closing early also releases.
	rows, err := pool.Query(ctx, "SELECT generate_series(1, 3)")
	require.NoError(t, err)
	rows.Close()

	require.EqualValues(t, 0, pool.Stat().AcquiredConns())
}

func TestPool_ReleaseTwice(t *testing.T) {
	pool := connectSmallPool(t, time.Second)

	c, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	c.Release()
	c.Release()

	require.EqualValues(t, 0, pool.Stat().AcquiredConns())
}

func TestPool_WithConnReleasesOnError(t *testing.T) {
	pool := connectSmallPool(t, time.Second)
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		err := pool.WithConn(context.Background(), func(c *database.Conn) error {
			var one int
			if err := c.QueryRow(context.Background(), "SELECT 1").Scan(&one); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
	}
	require.EqualValues(t, 0, pool.Stat().AcquiredConns())
}

func TestPool_BeginReleasesOnCommit(t *testing.T) {
	pool := connectSmallPool(t, time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		tx, err := pool.Begin(ctx)
		require.NoError(t, err)
		_, err = tx.Exec(ctx, "SELECT 1")
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))
		_ = tx.Rollback(ctx)
	}
	require.EqualValues(t, 0, pool.Stat().AcquiredConns())
}

func TestPool_Closed(t *testing.T) {
	pool := connectSmallPool(t, time.Second)
	pool.Close()

	_, err := pool.Acquire(context.Background())
	require.ErrorIs(t, err, database.ErrPoolClosed)
	require.ErrorIs(t, pool.Ping(context.Background()), database.ErrPoolClosed)
	_, err = pool.Query(context.Background(), "SELECT 1")
	require.ErrorIs(t, err, database.ErrPoolClosed)
	var one int
	require.ErrorIs(t, pool.QueryRow(context.Background(), "SELECT 1").Scan(&one), database.ErrPoolClosed)
}

func TestEnv_Schema(t *testing.T) {
	env := dbtest.New(t)
	env.MustExec(t, "CREATE TABLE "+env.Table("t").Sanitize()+" (id int)")

	var n int
	err := env.Pool.QueryRow(context.Background(),
		"SELECT count(*) FROM information_schema.tables WHERE table_schema = $1", env.Schema).Scan(&n)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
