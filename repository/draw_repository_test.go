package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"lotto/models"
	"lotto/repository/testutil"
	"lotto/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	t.Run("create assigns id", func(t *testing.T) {
		draw := testutil.CreateTestDraw(date, models.TimeSlotTwoPM)
		err := repo.Create(ctx, draw)
		require.NoError(t, err)
		assert.NotZero(t, draw.ID)
	})

	t.Run("same date and slot refused", func(t *testing.T) {
		dup := testutil.CreateTestDraw(date, models.TimeSlotTwoPM)
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, service.ErrAlreadyExists)
	})

	t.Run("other slots on the date are fine", func(t *testing.T) {
		for _, slot := range []models.TimeSlot{models.TimeSlotFivePM, models.TimeSlotNinePM} {
			draw := testutil.CreateTestDraw(date, slot)
			require.NoError(t, repo.Create(ctx, draw))
		}

		draws, err := repo.ListByDate(ctx, date)
		require.NoError(t, err)
		assert.Len(t, draws, 3)
	})
}

func TestDrawRepository_GetByIDForShare(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	draw := testutil.CreateTestDraw(time.Now().UTC(), models.TimeSlotTwoPM)
	require.NoError(t, repo.Create(ctx, draw))

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.GetByIDForShare(ctx, draw.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, draw.ID, got.ID)
		assert.Equal(t, models.DrawStatusScheduled, got.Status)
	})

	t.Run("missing draw is nil", func(t *testing.T) {
		got, err := repo.GetByIDForShare(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("share lock blocks a status transition until commit", func(t *testing.T) {
		tx, err := testDB.DB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		txRepo := newDrawRepositoryWithTx(tx)
		locked, err := txRepo.GetByIDForShare(ctx, draw.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)

		// A concurrent close must wait for the lock holder
		transitioned := make(chan bool, 1)
		go func() {
			moved, err := repo.TransitionStatus(ctx, draw.ID, models.DrawStatusScheduled, models.DrawStatusOpen)
			if err != nil {
				transitioned <- false
				return
			}
			transitioned <- moved
		}()

		select {
		case <-transitioned:
			t.Fatal("transition completed while the share lock was held")
		case <-time.After(200 * time.Millisecond):
		}

		require.NoError(t, tx.Rollback(ctx))
		assert.True(t, <-transitioned)
	})
}

func TestDrawRepository_TransitionStatus(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	draw := testutil.CreateTestDraw(time.Now().UTC(), models.TimeSlotTwoPM)
	require.NoError(t, repo.Create(ctx, draw))

	t.Run("legal transition applies", func(t *testing.T) {
		moved, err := repo.TransitionStatus(ctx, draw.ID, models.DrawStatusScheduled, models.DrawStatusOpen)
		require.NoError(t, err)
		assert.True(t, moved)

		found, err := repo.GetByID(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DrawStatusOpen, found.Status)
	})

	t.Run("stale transition refused", func(t *testing.T) {
		moved, err := repo.TransitionStatus(ctx, draw.ID, models.DrawStatusScheduled, models.DrawStatusOpen)
		require.NoError(t, err)
		assert.False(t, moved)
	})
}

func TestDrawRepository_SettleResult(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	draw := testutil.CreateTestDraw(time.Now().UTC(), models.TimeSlotTwoPM)
	draw.Status = models.DrawStatusClosed
	require.NoError(t, repo.Create(ctx, draw))

	t.Run("settles a closed draw once", func(t *testing.T) {
		settled, err := repo.SettleResult(ctx, draw.ID, "123")
		require.NoError(t, err)
		assert.True(t, settled)

		found, err := repo.GetByID(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, models.DrawStatusSettled, found.Status)
		require.NotNil(t, found.Result)
		assert.Equal(t, "123", *found.Result)
		assert.NotNil(t, found.SettledAt)
	})

	t.Run("second settle refused", func(t *testing.T) {
		settled, err := repo.SettleResult(ctx, draw.ID, "456")
		require.NoError(t, err)
		assert.False(t, settled)

		found, err := repo.GetByID(ctx, draw.ID)
		require.NoError(t, err)
		assert.Equal(t, "123", *found.Result)
	})
}

func TestDrawRepository_SettleResult_Concurrent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	draw := testutil.CreateTestDraw(time.Now().UTC(), models.TimeSlotTwoPM)
	draw.Status = models.DrawStatusClosed
	require.NoError(t, repo.Create(ctx, draw))

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	settledCount := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			settled, err := repo.SettleResult(ctx, draw.ID, "777")
			assert.NoError(t, err)
			if settled {
				mu.Lock()
				settledCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, settledCount, "exactly one settle must win")
}

func TestDrawRepository_OpenAndCloseDue(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	now := time.Now().UTC()

	// One draw due to open, one already open and due to close, one in
	// the future that must be left alone.
	due := testutil.CreateTestDraw(now, models.TimeSlotTwoPM)
	due.OpensAt = now.Add(-time.Hour)
	due.ClosesAt = now.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, due))

	closing := testutil.CreateTestDraw(now, models.TimeSlotFivePM)
	closing.Status = models.DrawStatusOpen
	closing.OpensAt = now.Add(-2 * time.Hour)
	closing.ClosesAt = now.Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, closing))

	future := testutil.CreateTestDraw(now, models.TimeSlotNinePM)
	future.OpensAt = now.Add(time.Hour)
	future.ClosesAt = now.Add(2 * time.Hour)
	require.NoError(t, repo.Create(ctx, future))

	opened, err := repo.OpenDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []int64{due.ID}, opened)

	closed, err := repo.CloseDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, []int64{closing.ID}, closed)

	untouched, err := repo.GetByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DrawStatusScheduled, untouched.Status)
}

func TestDrawRepository_GetOpenDraw(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewDrawRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no open draw", func(t *testing.T) {
		found, err := repo.GetOpenDraw(ctx)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("open draw found", func(t *testing.T) {
		draw := testutil.CreateTestDraw(time.Now().UTC(), models.TimeSlotTwoPM)
		draw.Status = models.DrawStatusOpen
		require.NoError(t, repo.Create(ctx, draw))

		found, err := repo.GetOpenDraw(ctx)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, draw.ID, found.ID)
	})
}
