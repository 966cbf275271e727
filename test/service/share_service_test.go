package service_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wildtrail/safaridesk/internal/config"
	"github.com/wildtrail/safaridesk/internal/filestore"
	"github.com/wildtrail/safaridesk/internal/model"
	appErr "github.com/wildtrail/safaridesk/internal/pkg/errors"
	"github.com/wildtrail/safaridesk/internal/pkg/timeutil"
	"github.com/wildtrail/safaridesk/internal/repo"
	"github.com/wildtrail/safaridesk/internal/service"
	"github.com/wildtrail/safaridesk/test/testutil"
)

func newTestID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

type shareFixture struct {
	db       *sql.DB
	shares   *repo.ShareRepo
	service  *service.ShareService
	booking  *model.Booking
	document *model.BookingDocument
}

func setupShareService(t *testing.T) (*shareFixture, func()) {
	t.Helper()
	db, cleanup := testutil.OpenTestDB(t)

	bookingRepo := repo.NewBookingRepo(db)
	documentRepo := repo.NewDocumentRepo(db)
	shareRepo := repo.NewShareRepo(db)

	tmpDir, err := os.MkdirTemp("", "safaridesk-share-*")
	require.NoError(t, err)
	store, err := filestore.New(config.FileStoreConfig{
		Type: "local",
		Data: map[string]interface{}{"dir": tmpDir},
	})
	require.NoError(t, err)

	now := timeutil.NowUnix()
	booking := &model.Booking{
		ID:         newTestID(),
		Reference:  "SAF-" + newTestID()[:8],
		ClientName: "Jane Traveller",
		Status:     model.BookingStatusConfirmed,
		Ctime:      now,
		Mtime:      now,
	}
	require.NoError(t, bookingRepo.Create(context.Background(), booking))

	document := &model.BookingDocument{
		ID:          newTestID(),
		BookingID:   booking.ID,
		FileKey:     newTestID() + ".pdf",
		Filename:    "voucher.pdf",
		Category:    model.CategoryVoucher,
		ContentType: "application/pdf",
		Size:        8,
		Ctime:       now,
	}
	require.NoError(t, documentRepo.Create(context.Background(), document))

	svc := service.NewShareService(shareRepo, bookingRepo, documentRepo, store, "http://test.local", 3600)
	fixture := &shareFixture{
		db:       db,
		shares:   shareRepo,
		service:  svc,
		booking:  booking,
		document: document,
	}
	return fixture, func() {
		cleanup()
		_ = os.RemoveAll(tmpDir)
	}
}

func (f *shareFixture) setExpiry(t *testing.T, token string, expiresAt int64) {
	t.Helper()
	_, err := f.db.Exec("UPDATE share_tokens SET expires_at = $1 WHERE token = $2", expiresAt, token)
	require.NoError(t, err)
}

// A token is valid strictly before its expiry instant and dead from then on;
// once it has expired it never resolves again, even if the stored expiry moves.
func TestShareExpiryIsOneWay(t *testing.T) {
	fixture, cleanup := setupShareService(t)
	defer cleanup()

	share, err := fixture.service.CreateShare(context.Background(), fixture.booking.ID, nil, 3600)
	require.NoError(t, err)

	resolved, err := fixture.service.ResolveShare(context.Background(), share.Token)
	require.NoError(t, err)
	require.Equal(t, fixture.booking.ID, resolved.Booking.ID)
	require.Len(t, resolved.Documents, 1)

	fixture.setExpiry(t, share.Token, timeutil.NowUnix()-1)
	_, err = fixture.service.ResolveShare(context.Background(), share.Token)
	require.ErrorIs(t, err, appErr.ErrForbidden)

	fixture.setExpiry(t, share.Token, timeutil.NowUnix()+3600)
	_, err = fixture.service.ResolveShare(context.Background(), share.Token)
	require.ErrorIs(t, err, appErr.ErrForbidden)
}

func TestExpiredShareAnswersForbiddenEverywhere(t *testing.T) {
	fixture, cleanup := setupShareService(t)
	defer cleanup()

	share, err := fixture.service.CreateShare(context.Background(), fixture.booking.ID, nil, 3600)
	require.NoError(t, err)
	fixture.setExpiry(t, share.Token, timeutil.NowUnix()-1)

	_, err = fixture.service.ResolveShare(context.Background(), share.Token)
	require.ErrorIs(t, err, appErr.ErrForbidden)

	_, err = fixture.service.OpenSharedDocument(context.Background(), share.Token, fixture.document.ID)
	require.ErrorIs(t, err, appErr.ErrForbidden)

	_, _, err = fixture.service.BuildArchive(context.Background(), share.Token)
	require.ErrorIs(t, err, appErr.ErrForbidden)
}

func TestGetActiveShareIgnoresExpiredRow(t *testing.T) {
	fixture, cleanup := setupShareService(t)
	defer cleanup()

	share, err := fixture.service.CreateShare(context.Background(), fixture.booking.ID, nil, 3600)
	require.NoError(t, err)
	fixture.setExpiry(t, share.Token, timeutil.NowUnix()-1)

	// The row is still active in storage until the sweeper runs, but staff
	// must see "no live token".
	got, err := fixture.service.GetActiveShare(context.Background(), fixture.booking.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSweepExpiredRetiresExpiredTokens(t *testing.T) {
	fixture, cleanup := setupShareService(t)
	defer cleanup()

	share, err := fixture.service.CreateShare(context.Background(), fixture.booking.ID, nil, 3600)
	require.NoError(t, err)
	fixture.setExpiry(t, share.Token, timeutil.NowUnix()-1)

	swept, err := fixture.service.SweepExpired(context.Background())
	require.NoError(t, err)
	require.GreaterOrEqual(t, swept, int64(1))

	row, err := fixture.shares.GetByToken(context.Background(), share.Token)
	require.NoError(t, err)
	require.Equal(t, repo.ShareStateRevoked, row.State)
}
