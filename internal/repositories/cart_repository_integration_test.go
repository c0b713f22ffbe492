//go:build integration

package repository_test

import (
	"database/sql"
	"os"
	"sync/atomic"
	"testing"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Run with: TEST_DATABASE_DSN=postgres://... go test -tags integration ./internal/repositories/
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.InitSchema(t.Context(), db))

	return db
}

func TestGetOrCreateCart_ConcurrentCallersShareOneCart(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	user := &models.User{
		ID:       uuid.New(),
		Username: "cart-race-" + uuid.NewString()[:8],
		Password: "hash",
		IsActive: true,
		Role:     models.RoleClient,
	}
	require.NoError(t, repository.NewUserRepo(db).CreateUser(ctx, user))
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM users WHERE id = $1`, user.ID)
	})

	carts := repository.NewCartRepo(db)

	const callers = 16
	ids := make([]uuid.UUID, callers)
	var created atomic.Int32

	var g errgroup.Group
	for i := range callers {
		g.Go(func() error {
			cart, isNew, err := carts.GetOrCreateCart(ctx, user.ID)
			if err != nil {
				return err
			}
			if isNew {
				created.Add(1)
			}
			ids[i] = cart.ID

			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), created.Load())
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	var rows int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM carts WHERE user_id = $1`, user.ID).Scan(&rows))
	assert.Equal(t, 1, rows)
}
