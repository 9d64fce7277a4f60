package repository

import (
	"context"
	"sync"
	"testing"

	"lotto/models"
	"lotto/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("create assigns id and timestamps", func(t *testing.T) {
		account := testutil.CreateTestAccount("agent1", models.RoleAgent)
		err := repo.Create(ctx, account)
		require.NoError(t, err)

		assert.NotZero(t, account.ID)
		assert.False(t, account.CreatedAt.IsZero())
	})

	t.Run("get by id", func(t *testing.T) {
		account := testutil.CreateTestAgent("agent2", 500)
		require.NoError(t, repo.Create(ctx, account))

		found, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "agent2", found.Username)
		assert.Equal(t, models.RoleAgent, found.Role)
		assert.True(t, found.CurrentBalance.Equal(decimal.NewFromInt(500)))
	})

	t.Run("get by username", func(t *testing.T) {
		account := testutil.CreateTestAccount("coordinator1", models.RoleCoordinator)
		require.NoError(t, repo.Create(ctx, account))

		found, err := repo.GetByUsername(ctx, "coordinator1")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, account.ID, found.ID)
	})

	t.Run("missing account returns nil", func(t *testing.T) {
		found, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestAccountRepository_DeductBalance_Guard(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAgent("agent1", 100)
	require.NoError(t, repo.Create(ctx, account))

	t.Run("deducts when covered", func(t *testing.T) {
		before, after, applied, err := repo.DeductBalance(ctx, account.ID, decimal.NewFromInt(60))
		require.NoError(t, err)
		assert.True(t, applied)
		assert.True(t, before.Equal(decimal.NewFromInt(100)))
		assert.True(t, after.Equal(decimal.NewFromInt(40)))
	})

	t.Run("refuses when short", func(t *testing.T) {
		_, _, applied, err := repo.DeductBalance(ctx, account.ID, decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.False(t, applied)

		found, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, found.CurrentBalance.Equal(decimal.NewFromInt(40)))
	})

	t.Run("overdraft variant goes negative", func(t *testing.T) {
		before, after, err := repo.DeductBalanceOverdraft(ctx, account.ID, decimal.NewFromInt(50))
		require.NoError(t, err)
		assert.True(t, before.Equal(decimal.NewFromInt(40)))
		assert.True(t, after.Equal(decimal.NewFromInt(-10)))
	})
}

func TestAccountRepository_DeductBalance_Concurrent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAgent("agent1", 100)
	require.NoError(t, repo.Create(ctx, account))

	// 10 workers each try to take 30 from a balance of 100; the guard
	// must admit exactly 3.
	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	appliedCount := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, applied, err := repo.DeductBalance(ctx, account.ID, decimal.NewFromInt(30))
			assert.NoError(t, err)
			if applied {
				mu.Lock()
				appliedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, appliedCount)

	found, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, found.CurrentBalance.Equal(decimal.NewFromInt(10)),
		"expected 10 remaining, got %s", found.CurrentBalance)
}

func TestAccountRepository_CreditBalance(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAgent("agent1", 100)
	require.NoError(t, repo.Create(ctx, account))

	before, after, err := repo.CreditBalance(ctx, account.ID, decimal.RequireFromString("25.50"))
	require.NoError(t, err)
	assert.True(t, before.Equal(decimal.NewFromInt(100)))
	assert.True(t, after.Equal(decimal.RequireFromString("125.50")))
}

func TestAccountRepository_SetActive(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	account := testutil.CreateTestAccount("agent1", models.RoleAgent)
	require.NoError(t, repo.Create(ctx, account))

	require.NoError(t, repo.SetActive(ctx, account.ID, false))

	found, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.False(t, found.Active)
}
