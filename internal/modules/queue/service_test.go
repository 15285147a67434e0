package queue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karaoke/internal/config"
	"karaoke/internal/database"
	"karaoke/internal/domain"
	"karaoke/internal/pkg/clock"
	"karaoke/internal/repository"
)

type serviceFixture struct {
	svc      *Service
	songs    *repository.SongRepository
	guests   *repository.GuestRepository
	tables   *repository.TableRepository
	notifier *recordingNotifier
	clock    *clock.Fixed
	settings *config.Settings
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Connect(dsn)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &serviceFixture{
		songs:    repository.NewSongRepository(db),
		guests:   repository.NewGuestRepository(db),
		tables:   repository.NewTableRepository(db),
		notifier: &recordingNotifier{},
		clock:    &clock.Fixed{Current: time.Date(2026, 8, 28, 20, 0, 0, 0, time.UTC)},
		settings: config.NewSettings(),
	}
	require.NoError(t, f.settings.SetClosingTime("23:59"))
	require.NoError(t, f.settings.SetApprovalMode(config.ApprovalImmediate))
	f.settings.SetAutoplay(false)

	f.svc = NewService(f.songs, f.guests, staticTiers{}, f.notifier, nil, nil, f.clock, f.settings)
	return f
}

func (f *serviceFixture) addGuest(t *testing.T, nick string, tableID int64) *domain.Guest {
	t.Helper()
	table := &domain.Table{Name: fmt.Sprintf("table-%d", tableID), JoinCode: nick + "-code", Active: true}
	_ = f.tables.Create(context.Background(), table)
	g := &domain.Guest{Nick: nick, Tier: domain.TierBronze, TableID: &table.ID, LastActive: f.clock.Current}
	require.NoError(t, f.guests.Create(context.Background(), g))
	return g
}

func (f *serviceFixture) admit(t *testing.T, g *domain.Guest, track string) *domain.Song {
	t.Helper()
	song, err := f.svc.AdmitRequest(context.Background(), g.ID, AdmitSongRequest{
		TrackID:         track,
		Title:           track,
		DurationSeconds: 180,
	})
	require.NoError(t, err)
	return song
}

func TestAdmitImmediateModeApproves(t *testing.T) {
	f := newServiceFixture(t)
	g := f.addGuest(t, "ana", 1)

	song := f.admit(t, g, "yt:one")

	assert.Equal(t, domain.SongApproved, song.Status)
	assert.NotNil(t, song.ApprovedAt)
	assert.Equal(t, g.TableID, song.TableID)
	assert.Positive(t, f.notifier.queueChanged)
}

func TestAdmitManualModeHoldsPending(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.settings.SetApprovalMode(config.ApprovalManual))
	g := f.addGuest(t, "ana", 1)

	song := f.admit(t, g, "yt:one")

	assert.Equal(t, domain.SongPending, song.Status)

	view, err := f.svc.OrderedQueue(context.Background())
	require.NoError(t, err)
	assert.Nil(t, view.NowPlaying)
	assert.Empty(t, view.Upcoming)
}

func TestAdmitDuplicateTrackSameTable(t *testing.T) {
	f := newServiceFixture(t)
	g1 := f.addGuest(t, "ana", 1)
	g2 := &domain.Guest{Nick: "beto", Tier: domain.TierBronze, TableID: g1.TableID, LastActive: f.clock.Current}
	require.NoError(t, f.guests.Create(context.Background(), g2))

	f.admit(t, g1, "yt:one")

	_, err := f.svc.AdmitRequest(context.Background(), g2.ID, AdmitSongRequest{
		TrackID: "yt:one", Title: "yt:one", DurationSeconds: 180,
	})
	assert.ErrorIs(t, err, ErrDuplicateInTable)
}

func TestAdvanceLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	g := f.addGuest(t, "ana", 1)
	first := f.admit(t, g, "yt:one")
	f.admit(t, g, "yt:two")

	started, err := f.svc.Advance(context.Background())
	require.NoError(t, err)
	require.NotNil(t, started)
	assert.Equal(t, first.ID, started.ID)
	assert.Equal(t, []string{"yt:one"}, f.notifier.played)

	// the first song finishes with the base reward, the second goes on
	f.clock.Current = f.clock.Current.Add(3 * time.Minute)
	next, err := f.svc.Advance(context.Background())
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "yt:two", next.TrackID)

	sung, err := f.songs.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SongSung, sung.Status)
	require.NotNil(t, sung.Score)
	assert.Equal(t, 0, *sung.Score)

	rewarded, err := f.guests.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, rewarded.Points)
	assert.Equal(t, []string{"yt:one"}, f.notifier.finished)
}

func TestAdvanceIdleIsIdempotent(t *testing.T) {
	f := newServiceFixture(t)

	for i := 0; i < 3; i++ {
		started, err := f.svc.Advance(context.Background())
		assert.NoError(t, err)
		assert.Nil(t, started)
	}
}

func TestAtMostOneSongPlaying(t *testing.T) {
	f := newServiceFixture(t)
	g := f.addGuest(t, "ana", 1)
	f.admit(t, g, "yt:one")
	second := f.admit(t, g, "yt:two")

	_, err := f.svc.Advance(context.Background())
	require.NoError(t, err)

	// promoting another song while one is on stage must fail the guard
	ok, err := f.songs.MarkPlaying(context.Background(), second.ID, f.clock.Current)
	require.NoError(t, err)
	assert.False(t, ok)

	playing, err := f.songs.ListByStatus(context.Background(), domain.SongPlaying)
	require.NoError(t, err)
	assert.Len(t, playing, 1)
}

func TestEstimateWaitMonotonic(t *testing.T) {
	f := newServiceFixture(t)
	a := f.addGuest(t, "ana", 1)
	b := f.addGuest(t, "beto", 2)
	s1 := f.admit(t, a, "yt:one")
	f.admit(t, b, "yt:two")
	f.admit(t, a, "yt:three")

	view, err := f.svc.OrderedQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Upcoming, 3)

	var prev int
	for i, song := range view.Upcoming {
		wait, err := f.svc.EstimateWait(context.Background(), song.ID)
		require.NoError(t, err)
		if i > 0 {
			assert.GreaterOrEqual(t, wait, prev)
		}
		prev = wait
	}

	// head of the queue waits nothing, the rest wait whole songs
	head, err := f.svc.EstimateWait(context.Background(), s1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, head)
}

func TestEstimateWaitCountsPlayingRemainder(t *testing.T) {
	f := newServiceFixture(t)
	g := f.addGuest(t, "ana", 1)
	f.admit(t, g, "yt:one")
	second := f.admit(t, g, "yt:two")

	_, err := f.svc.Advance(context.Background())
	require.NoError(t, err)

	// one minute into a three minute song: two minutes remain
	f.clock.Current = f.clock.Current.Add(time.Minute)
	wait, err := f.svc.EstimateWait(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, wait)
}

func TestEstimateWaitUnknownSong(t *testing.T) {
	f := newServiceFixture(t)

	wait, err := f.svc.EstimateWait(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotQueued)
	assert.Equal(t, -1, wait)
}

func TestMoveToFront(t *testing.T) {
	f := newServiceFixture(t)
	a := f.addGuest(t, "ana", 1)
	b := f.addGuest(t, "beto", 2)
	f.admit(t, a, "yt:one")
	f.admit(t, a, "yt:two")
	last := f.admit(t, b, "yt:three")

	require.NoError(t, f.svc.MoveToFront(context.Background(), last.ID))

	view, err := f.svc.OrderedQueue(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, view.Upcoming)
	assert.Equal(t, last.ID, view.Upcoming[0].ID)
}

func TestMoveToFrontRequiresApproved(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.settings.SetApprovalMode(config.ApprovalManual))
	g := f.addGuest(t, "ana", 1)
	pending := f.admit(t, g, "yt:one")

	assert.ErrorIs(t, f.svc.MoveToFront(context.Background(), pending.ID), ErrNotFound)
	assert.ErrorIs(t, f.svc.MoveToFront(context.Background(), 999), ErrNotFound)
}

func TestSetManualOrderReranks(t *testing.T) {
	f := newServiceFixture(t)
	g := f.addGuest(t, "ana", 1)
	s1 := f.admit(t, g, "yt:one")
	s2 := f.admit(t, g, "yt:two")
	s3 := f.admit(t, g, "yt:three")

	require.NoError(t, f.svc.SetManualOrder(context.Background(), []int64{s3.ID, s1.ID, s2.ID}))

	view, err := f.svc.OrderedQueue(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Upcoming, 3)
	assert.Equal(t, []int64{s3.ID, s1.ID, s2.ID}, []int64{
		view.Upcoming[0].ID, view.Upcoming[1].ID, view.Upcoming[2].ID,
	})
}

func TestApproveAndRejectTransitions(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.settings.SetApprovalMode(config.ApprovalManual))
	g := f.addGuest(t, "ana", 1)
	s1 := f.admit(t, g, "yt:one")
	s2 := f.admit(t, g, "yt:two")

	approved, err := f.svc.Approve(context.Background(), s1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SongApproved, approved.Status)

	rejected, err := f.svc.Reject(context.Background(), s2.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SongRejected, rejected.Status)

	// terminal songs may not transition again
	_, err = f.svc.Approve(context.Background(), s2.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = f.svc.Reject(context.Background(), s2.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteOwnSong(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.settings.SetApprovalMode(config.ApprovalManual))
	a := f.addGuest(t, "ana", 1)
	b := f.addGuest(t, "beto", 2)
	song := f.admit(t, a, "yt:one")

	assert.ErrorIs(t, f.svc.DeleteOwn(context.Background(), b.ID, song.ID), ErrForbidden)
	require.NoError(t, f.svc.DeleteOwn(context.Background(), a.ID, song.ID))

	_, err := f.songs.GetByID(context.Background(), song.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteOwnRejectsApprovedSong(t *testing.T) {
	f := newServiceFixture(t)
	g := f.addGuest(t, "ana", 1)
	song := f.admit(t, g, "yt:one")

	assert.ErrorIs(t, f.svc.DeleteOwn(context.Background(), g.ID, song.ID), ErrInvalidState)
}

func TestLazyApprovalPromotesFairnessHead(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.settings.SetApprovalMode(config.ApprovalLazy))
	g := f.addGuest(t, "ana", 1)
	first := f.admit(t, g, "yt:one")
	f.admit(t, g, "yt:two")

	require.NoError(t, f.svc.CheckAndApproveNextLazy(context.Background()))

	promoted, err := f.songs.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SongApproved, promoted.Status)

	// an approved song waiting blocks further promotion
	require.NoError(t, f.svc.CheckAndApproveNextLazy(context.Background()))
	lazy, err := f.songs.ListByStatus(context.Background(), domain.SongPendingLazy)
	require.NoError(t, err)
	assert.Len(t, lazy, 1)
}

func TestLazyApprovalWaitsForHalfOfPlayingSong(t *testing.T) {
	f := newServiceFixture(t)
	g := f.addGuest(t, "ana", 1)
	f.admit(t, g, "yt:one")
	_, err := f.svc.Advance(context.Background())
	require.NoError(t, err)

	require.NoError(t, f.settings.SetApprovalMode(config.ApprovalLazy))
	waiting := f.admit(t, g, "yt:two")

	// 60 of 180 seconds played: too early
	f.clock.Current = f.clock.Current.Add(time.Minute)
	require.NoError(t, f.svc.CheckAndApproveNextLazy(context.Background()))
	song, err := f.songs.GetByID(context.Background(), waiting.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SongPendingLazy, song.Status)

	// 120 of 180 seconds: past the halfway mark
	f.clock.Current = f.clock.Current.Add(time.Minute)
	require.NoError(t, f.svc.CheckAndApproveNextLazy(context.Background()))
	song, err = f.songs.GetByID(context.Background(), waiting.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SongApproved, song.Status)
}

func TestStaleRequestsAutoApproved(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.settings.SetApprovalMode(config.ApprovalManual))
	g := f.addGuest(t, "ana", 1)
	song := f.admit(t, g, "yt:one")

	// too fresh to be swept
	require.NoError(t, f.svc.ApproveStaleRequests(context.Background()))
	got, err := f.songs.GetByID(context.Background(), song.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SongPending, got.Status)

	f.clock.Current = f.clock.Current.Add(11 * time.Minute)
	require.NoError(t, f.svc.ApproveStaleRequests(context.Background()))
	got, err = f.songs.GetByID(context.Background(), song.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SongApproved, got.Status)
}

func TestAutoplayStartsPlaybackOnAdmit(t *testing.T) {
	f := newServiceFixture(t)
	f.settings.SetAutoplay(true)
	g := f.addGuest(t, "ana", 1)

	f.admit(t, g, "yt:one")

	playing, err := f.songs.GetPlaying(context.Background())
	require.NoError(t, err)
	require.NotNil(t, playing)
	assert.Equal(t, "yt:one", playing.TrackID)
}

func TestAdminAddSongUsesDJ(t *testing.T) {
	f := newServiceFixture(t)

	song, err := f.svc.AdminAddSong(context.Background(), AdmitSongRequest{
		TrackID: "yt:dj", Title: "DJ pick", DurationSeconds: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SongApproved, song.Status)
	assert.Nil(t, song.TableID)

	dj, err := f.guests.GetOrCreateDJ(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dj.ID, song.GuestID)
}
