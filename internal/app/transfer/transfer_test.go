package transfer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"warmtransfer/internal/app/handoff"
	"warmtransfer/internal/app/summarizer"
	"warmtransfer/internal/app/summary"
	"warmtransfer/internal/pkg/auth/jwt"
	"warmtransfer/internal/pkg/errs"
	"warmtransfer/internal/pkg/logx"
)

type fakeSummarizer struct {
	mu    sync.Mutex
	calls []summarizer.Request
	text  string
	err   error
}

func (f *fakeSummarizer) Summarize(_ context.Context, req summarizer.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.text, f.err
}

type published struct {
	room    string
	typ     handoff.MessageType
	payload any
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []published
}

func (f *fakeNotifier) Publish(room string, typ handoff.MessageType, payload any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{room: room, typ: typ, payload: payload})
	return true
}

type fakeArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (f *fakeArchive) Put(_ context.Context, key, contentType string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.objects == nil {
		f.objects = make(map[string][]byte)
	}
	f.objects[key] = body
	return nil
}

type failingStore struct{ summary.Store }

func (failingStore) Put(context.Context, summary.Entry) error { return errors.New("store down") }
func (failingStore) Kind() string                             { return "failing" }

type fixture struct {
	coord   *Coordinator
	issuer  *jwt.Issuer
	store   *summary.MemoryStore
	sum     *fakeSummarizer
	notify  *fakeNotifier
	archive *fakeArchive
}

func newFixture(t *testing.T, withSummarizer bool) *fixture {
	t.Helper()

	f := &fixture{
		issuer:  jwt.NewIssuer("devkey", "devsecret"),
		store:   summary.NewMemoryStore(summary.MemoryOptions{}),
		sum:     &fakeSummarizer{text: "Caller wants a refund."},
		notify:  &fakeNotifier{},
		archive: &fakeArchive{},
	}
	t.Cleanup(func() { _ = f.store.Close() })

	opts := Options{
		Issuer:       f.issuer,
		Store:        f.store,
		Notifier:     f.notify,
		Archive:      f.archive,
		AudioBaseURL: "https://cdn.test/audio/",
	}
	if withSummarizer {
		opts.Summarizer = f.sum
	}

	f.coord = NewCoordinator(opts)
	return f
}

func TestTransfer_LiteralSummary(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	res, err := f.coord.Transfer(ctx, Request{
		Room:         "r1",
		FromIdentity: "alice",
		ToIdentity:   "bob",
		Summary:      "call resolved",
	})
	require.NoError(t, err)

	require.Equal(t, "r1", res.Room)
	require.Equal(t, "bob", res.ToIdentity)
	require.Equal(t, "call resolved", res.Summary)
	require.Equal(t, SummaryStatus{OK: true, Kind: StatusProvided}, res.SummaryStatus)
	require.Empty(t, f.sum.calls, "literal summaries must not reach the provider")

	claims, err := f.issuer.Parse(res.Token)
	require.NoError(t, err)
	require.Equal(t, "bob", claims.Identity())
	require.Equal(t, "r1", claims.Room())

	entry, err := f.store.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "call resolved", entry.Summary)
	require.Equal(t, "alice", entry.FromIdentity)
	require.Equal(t, "bob", entry.ToIdentity)
}

func TestTransfer_AudioURL(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.coord.Transfer(context.Background(), Request{Room: "room 1", FromIdentity: "a", ToIdentity: "b", Summary: "x"})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(res.AudioURL, "https://cdn.test/audio/room_1/"), res.AudioURL)
	require.True(t, strings.HasSuffix(res.AudioURL, ".mp3"))
}

func TestTransfer_AutoWithoutProvider(t *testing.T) {
	for _, literal := range []string{"", "  ", "auto"} {
		t.Run("summary="+literal, func(t *testing.T) {
			f := newFixture(t, false)

			res, err := f.coord.Transfer(context.Background(), Request{
				Room: "r1", FromIdentity: "alice", ToIdentity: "bob", Summary: literal,
			})
			require.NoError(t, err)
			require.NotEmpty(t, res.Token)
			require.Equal(t, NoSummary, res.Summary)
			require.Equal(t, SummaryStatus{OK: true, Kind: StatusDisabled}, res.SummaryStatus)

			entry, err := f.store.Get(context.Background(), "r1")
			require.NoError(t, err)
			require.Equal(t, NoSummary, entry.Summary)
		})
	}
}

func TestTransfer_AutoIsMatchedExactly(t *testing.T) {
	for _, literal := range []string{"AUTO", " auto ", "Auto"} {
		t.Run(literal, func(t *testing.T) {
			f := newFixture(t, true)

			res, err := f.coord.Transfer(context.Background(), Request{
				Room: "r1", FromIdentity: "alice", ToIdentity: "bob", Summary: literal,
			})
			require.NoError(t, err)
			require.Equal(t, literal, res.Summary)
			require.Equal(t, SummaryStatus{OK: true, Kind: StatusProvided}, res.SummaryStatus)
			require.Empty(t, f.sum.calls)
		})
	}
}

func TestTransfer_FailureLogReportsTransience(t *testing.T) {
	var buf bytes.Buffer
	logx.SetOutput(&buf, zerolog.DebugLevel)
	t.Cleanup(func() { logx.SetOutput(io.Discard, zerolog.Disabled) })

	store := summary.NewMemoryStore(summary.MemoryOptions{})
	defer store.Close()

	sum := &fakeSummarizer{err: &summarizer.Failure{Kind: summarizer.KindServerError, StatusCode: 503, Message: "provider error"}}
	coord := NewCoordinator(Options{Issuer: jwt.NewIssuer("k", "s"), Summarizer: sum, Store: store})

	res, err := coord.Transfer(context.Background(), Request{Room: "r1", FromIdentity: "a", ToIdentity: "b"})
	require.NoError(t, err)
	require.False(t, res.SummaryStatus.OK)
	require.Equal(t, "server_error", res.SummaryStatus.Kind)

	require.Contains(t, buf.String(), `"kind":"server_error"`)
	require.Contains(t, buf.String(), `"transient":true`)
}

func TestTransfer_Generated(t *testing.T) {
	f := newFixture(t, true)

	res, err := f.coord.Transfer(context.Background(), Request{
		Room:         "r1",
		FromIdentity: "alice",
		ToIdentity:   "bob",
		Summary:      "auto",
		Transcript:   "caller: I want a refund",
	})
	require.NoError(t, err)
	require.Equal(t, "Caller wants a refund.", res.Summary)
	require.Equal(t, SummaryStatus{OK: true, Kind: StatusGenerated}, res.SummaryStatus)

	require.Len(t, f.sum.calls, 1)
	require.Equal(t, summarizer.Request{
		Room:         "r1",
		FromIdentity: "alice",
		ToIdentity:   "bob",
		Transcript:   "caller: I want a refund",
	}, f.sum.calls[0])
}

func TestTransfer_ProviderFailureKeepsPreviousSummary(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	_, err := f.coord.Transfer(ctx, Request{Room: "r1", FromIdentity: "alice", ToIdentity: "bob", Summary: "first"})
	require.NoError(t, err)

	f.sum.err = &summarizer.Failure{Kind: summarizer.KindTimeout, Message: "provider did not answer in time"}

	res, err := f.coord.Transfer(ctx, Request{Room: "r1", FromIdentity: "bob", ToIdentity: "carol"})
	require.NoError(t, err, "provider failures must not fail the transfer")
	require.NotEmpty(t, res.Token)
	require.Empty(t, res.Summary)
	require.Equal(t, SummaryStatus{OK: false, Kind: "timeout", Message: "provider did not answer in time"}, res.SummaryStatus)
	require.Len(t, f.sum.calls, 1)

	entry, err := f.store.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "first", entry.Summary)
}

func TestTransfer_LastWriteWins(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	for _, s := range []string{"first", "second"} {
		_, err := f.coord.Transfer(ctx, Request{Room: "r1", FromIdentity: "a", ToIdentity: "b", Summary: s})
		require.NoError(t, err)
	}

	entry, err := f.store.Get(ctx, "r1")
	require.NoError(t, err)
	require.Equal(t, "second", entry.Summary)
}

func TestTransfer_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		code int
	}{
		{"missing room", Request{FromIdentity: "a", ToIdentity: "b"}, errs.ErrRoomRequired},
		{"blank room", Request{Room: "  ", FromIdentity: "a", ToIdentity: "b"}, errs.ErrRoomRequired},
		{"missing from", Request{Room: "r1", ToIdentity: "b"}, errs.ErrIdentityRequired},
		{"missing to", Request{Room: "r1", FromIdentity: "a"}, errs.ErrIdentityRequired},
		{"long name", Request{Room: "r1", FromIdentity: "a", ToIdentity: "b", ToName: strings.Repeat("n", 300)}, errs.ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true)

			res, err := f.coord.Transfer(context.Background(), tt.req)
			require.Nil(t, res)

			var cerr *errs.CustomError
			require.ErrorAs(t, err, &cerr)
			require.Equal(t, tt.code, cerr.Code)
			require.Empty(t, f.sum.calls)
			require.Zero(t, f.store.Len())
		})
	}
}

func TestTransfer_MissingSigningKey(t *testing.T) {
	store := summary.NewMemoryStore(summary.MemoryOptions{})
	defer store.Close()

	coord := NewCoordinator(Options{Issuer: jwt.NewIssuer("", ""), Store: store})

	_, err := coord.Transfer(context.Background(), Request{Room: "r1", FromIdentity: "a", ToIdentity: "b", Summary: "x"})
	require.ErrorIs(t, err, jwt.ErrSigningKeyMissing)
	require.Zero(t, store.Len())
}

func TestTransfer_StoreFailureDoesNotFailTransfer(t *testing.T) {
	coord := NewCoordinator(Options{Issuer: jwt.NewIssuer("k", "s"), Store: failingStore{}})

	res, err := coord.Transfer(context.Background(), Request{Room: "r1", FromIdentity: "a", ToIdentity: "b", Summary: "x"})
	require.NoError(t, err)
	require.Equal(t, "x", res.Summary)
}

func TestTransfer_NotifiesAndArchives(t *testing.T) {
	f := newFixture(t, false)

	res, err := f.coord.Transfer(context.Background(), Request{
		Room: "r1", FromIdentity: "alice", ToIdentity: "bob", Summary: "call resolved",
	})
	require.NoError(t, err)
	f.coord.Wait()

	require.Len(t, f.notify.events, 1)
	ev := f.notify.events[0]
	require.Equal(t, "r1", ev.room)
	require.Equal(t, handoff.TypeTransfer, ev.typ)

	event, ok := ev.payload.(Event)
	require.True(t, ok)
	require.Equal(t, "alice", event.FromIdentity)
	require.Equal(t, "bob", event.ToIdentity)
	require.Equal(t, res.AudioURL, event.AudioURL)

	require.Len(t, f.archive.objects, 1)
	for key, body := range f.archive.objects {
		require.True(t, strings.HasPrefix(key, "transfers/r1/"), key)
		require.True(t, strings.HasSuffix(key, ".json"), key)

		var stored Event
		require.NoError(t, json.Unmarshal(body, &stored))
		require.Equal(t, "call resolved", stored.Summary)
	}
}

func TestTransfer_ArchiveFailureIsIgnored(t *testing.T) {
	f := newFixture(t, false)
	f.archive.err = errors.New("bucket gone")

	_, err := f.coord.Transfer(context.Background(), Request{Room: "r1", FromIdentity: "a", ToIdentity: "b", Summary: "x"})
	require.NoError(t, err)
	f.coord.Wait()
}
