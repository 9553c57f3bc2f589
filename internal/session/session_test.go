package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/and161185/fittrack/internal/errs"
	"github.com/and161185/fittrack/internal/model"
)

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)

func sample() *model.Session {
	kcal := 52.0
	return &model.Session{
		UserID: 7,
		Profile: &model.ProfileForm{
			Step:  model.StepAwaitingAge,
			Draft: model.ProfileDraft{Weight: 70, Height: 175},
		},
		Food: &model.FoodForm{Step: model.StepAwaitingAmount, Product: "apple", CaloriesPer100g: &kcal},
	}
}

// exercise runs the same contract checks against any Store.
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, 7)
	require.ErrorIs(t, err, errs.ErrNotFound)

	in := sample()
	require.NoError(t, s.Save(ctx, in))

	got, err := s.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, model.StepAwaitingAge, got.Profile.Step)
	require.Equal(t, 175, got.Profile.Draft.Height)
	require.Equal(t, "apple", got.Food.Product)
	require.Equal(t, 52.0, *got.Food.CaloriesPer100g)

	// callers never share state with the store
	*got.Food.CaloriesPer100g = 1
	got.Profile.Step = model.StepAwaitingCity
	again, err := s.Get(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, 52.0, *again.Food.CaloriesPer100g)
	require.Equal(t, model.StepAwaitingAge, again.Profile.Step)

	require.NoError(t, s.Delete(ctx, 7))
	_, err = s.Get(ctx, 7)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, s.Delete(ctx, 7))
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exercise(t, NewRedisStore(client, "", 0))
}

func TestRedisStore_KeyAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client, "test:", time.Hour)
	require.NoError(t, s.Save(context.Background(), sample()))
	require.True(t, mr.Exists("test:7"))
	require.Equal(t, time.Hour, mr.TTL("test:7"))

	mr.FastForward(2 * time.Hour)
	_, err := s.Get(context.Background(), 7)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	require.NoError(t, mr.Set(defaultKeyPrefix+"9", "{not json"))
	_, err := NewRedisStore(client, "", 0).Get(context.Background(), 9)
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisClient(context.Background(), mr.Addr(), "", 0, 4)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	mr.Close()
	_, err = NewRedisClient(context.Background(), mr.Addr(), "", 0, 4)
	require.Error(t, err)
}
