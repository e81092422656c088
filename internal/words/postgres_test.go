package words_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/scythe504/leaguedraw/internal"
	"github.com/scythe504/leaguedraw/internal/words"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresBank(t *testing.T) *words.PostgresBank {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	ctr, err := postgres.Run(ctx,
		"postgres:16-alpine3.22",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testusername"),
		postgres.WithPassword("testpassword"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	connString, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, words.Migrate(ctx, connString))
	// a second run finds nothing to apply
	require.NoError(t, words.Migrate(ctx, connString))
	seed(t, ctx, connString)

	bank, err := words.NewPostgresBank(ctx, connString)
	require.NoError(t, err)
	t.Cleanup(bank.Close)

	return bank
}

func seed(t *testing.T, ctx context.Context, connString string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "seed.sql"))
	require.NoError(t, err)

	conn, err := pgx.Connect(ctx, connString)
	require.NoError(t, err)
	defer conn.Close(ctx)

	_, err = conn.Exec(ctx, string(data))
	require.NoError(t, err)
}

func TestPostgresBank(t *testing.T) {
	bank := setupPostgresBank(t)
	ctx := context.Background()

	t.Run("Health", func(t *testing.T) {
		assert.NoError(t, bank.Health(ctx))
	})

	t.Run("Lookup champion", func(t *testing.T) {
		row, err := bank.Lookup(ctx, internal.WordChoice{Id: "2", Category: words.CategoryChampions})
		require.NoError(t, err)
		assert.Equal(t, "Dr. Mundo", row.Word)
		assert.Equal(t, "mundo.png", row.Image)
		assert.Empty(t, row.Parent)
	})

	t.Run("Lookup spell keeps champion and key", func(t *testing.T) {
		row, err := bank.Lookup(ctx, internal.WordChoice{Id: "10", Category: words.CategorySpells})
		require.NoError(t, err)
		assert.Equal(t, "Ahri Q", words.FormatSubtext(row, words.CategorySpells).Subtext)
	})

	t.Run("Lookup skin", func(t *testing.T) {
		row, err := bank.Lookup(ctx, internal.WordChoice{Id: "1001", Category: words.CategorySkins})
		require.NoError(t, err)
		assert.Equal(t, "Ahri skin", words.FormatSubtext(row, words.CategorySkins).Subtext)
	})

	t.Run("Lookup missing", func(t *testing.T) {
		_, err := bank.Lookup(ctx, internal.WordChoice{Id: "404", Category: words.CategoryChampions})
		assert.ErrorIs(t, err, words.ErrWordNotFound)
	})

	t.Run("Lookup unknown category", func(t *testing.T) {
		_, err := bank.Lookup(ctx, internal.WordChoice{Id: "1", Category: "runes"})
		assert.ErrorIs(t, err, words.ErrUnknownCategory)
	})

	t.Run("Pool filters items to Summoner's Rift", func(t *testing.T) {
		pool, err := bank.Pool(ctx, []string{words.CategoryItems})
		require.NoError(t, err)
		assert.Equal(t, []internal.WordChoice{{Id: "3031", Category: words.CategoryItems}}, pool)
	})

	t.Run("Pool across categories", func(t *testing.T) {
		pool, err := bank.Pool(ctx, []string{words.CategoryChampions, words.CategorySkins})
		require.NoError(t, err)
		assert.Equal(t, []internal.WordChoice{
			{Id: "1", Category: words.CategoryChampions},
			{Id: "2", Category: words.CategoryChampions},
			{Id: "1001", Category: words.CategorySkins},
		}, pool)
	})
}
