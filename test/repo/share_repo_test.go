package repo_test

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wildtrail/safaridesk/internal/model"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
	"github.com/wildtrail/safaridesk/internal/pkg/timeutil"
	"github.com/wildtrail/safaridesk/internal/repo"
	"github.com/wildtrail/safaridesk/test/testutil"
)

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func newShare(bookingID string, expiresAt int64) *model.ShareToken {
	now := timeutil.NowUnix()
	return &model.ShareToken{
		ID:         newTestID(),
		BookingID:  bookingID,
		Token:      newTestID(),
		Categories: []string{"voucher", "invoice"},
		State:      repo.ShareStateActive,
		IssuedAt:   now,
		ExpiresAt:  expiresAt,
		Mtime:      now,
	}
}

func TestShareRepoSingleLiveTokenPerBooking(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	shares := repo.NewShareRepo(db)
	bookingID := newTestID()
	expiry := timeutil.NowUnix() + 3600

	first := newShare(bookingID, expiry)
	require.NoError(t, shares.Create(context.Background(), first))

	fetched, err := shares.GetActiveByBooking(context.Background(), bookingID)
	require.NoError(t, err)
	require.Equal(t, first.Token, fetched.Token)
	require.Equal(t, []string{"voucher", "invoice"}, fetched.Categories)

	require.NoError(t, shares.RevokeByBooking(context.Background(), bookingID, timeutil.NowUnix()))
	second := newShare(bookingID, expiry)
	require.NoError(t, shares.Create(context.Background(), second))

	fetched, err = shares.GetActiveByBooking(context.Background(), bookingID)
	require.NoError(t, err)
	require.Equal(t, second.Token, fetched.Token)

	old, err := shares.GetByToken(context.Background(), first.Token)
	require.NoError(t, err)
	require.Equal(t, repo.ShareStateRevoked, old.State)
}

func TestShareRepoTokenUnique(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	shares := repo.NewShareRepo(db)
	expiry := timeutil.NowUnix() + 3600

	first := newShare(newTestID(), expiry)
	require.NoError(t, shares.Create(context.Background(), first))

	dup := newShare(newTestID(), expiry)
	dup.Token = first.Token
	err := shares.Create(context.Background(), dup)
	require.ErrorIs(t, err, appErr.ErrConflict)
}

func TestShareRepoRevokeExpired(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	shares := repo.NewShareRepo(db)
	now := timeutil.NowUnix()

	stale := newShare(newTestID(), now-int64(time.Hour.Seconds()))
	live := newShare(newTestID(), now+3600)
	require.NoError(t, shares.Create(context.Background(), stale))
	require.NoError(t, shares.Create(context.Background(), live))

	affected, err := shares.RevokeExpired(context.Background(), now)
	require.NoError(t, err)
	require.GreaterOrEqual(t, affected, int64(1))

	swept, err := shares.GetByToken(context.Background(), stale.Token)
	require.NoError(t, err)
	require.Equal(t, repo.ShareStateRevoked, swept.State)

	kept, err := shares.GetByToken(context.Background(), live.Token)
	require.NoError(t, err)
	require.Equal(t, repo.ShareStateActive, kept.State)
}

func TestShareRepoMissingToken(t *testing.T) {
	db, cleanup := testutil.OpenTestDB(t)
	defer cleanup()

	shares := repo.NewShareRepo(db)
	_, err := shares.GetByToken(context.Background(), "no-such-token")
	require.ErrorIs(t, err, appErr.ErrNotFound)
}
