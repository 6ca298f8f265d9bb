/*
Package transfer hands a live call from one agent to another: it issues the
receiving agent's room token, resolves the handoff summary, records it for the
room, and tells anyone listening on the room.
*/
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"warmtransfer/internal/app/handoff"
	"warmtransfer/internal/app/participant"
	"warmtransfer/internal/app/storage"
	"warmtransfer/internal/app/summarizer"
	"warmtransfer/internal/app/summary"
	"warmtransfer/internal/pkg/auth/jwt"
	"warmtransfer/internal/pkg/logx"
	"warmtransfer/internal/pkg/randx"
)

const (
	// AutoSummary asks for a generated summary instead of a literal one. Matched exactly.
	AutoSummary = "auto"

	// NoSummary is stored and returned when generation is requested but no provider is configured.
	NoSummary = "No summary provided."

	// DefaultAudioBaseURL prefixes the placeholder audio_url.
	DefaultAudioBaseURL = "https://example.com/audio"

	archiveTimeout = 10 * time.Second
)

// Summary status kinds in addition to the summarizer failure kinds.
const (
	StatusProvided  = "provided"
	StatusGenerated = "generated"
	StatusDisabled  = "disabled"
)

// Request is the body of POST /transfer.
type Request struct {
	Room         string     `json:"room"`
	FromIdentity string     `json:"from_identity"`
	ToIdentity   string     `json:"to_identity"`
	ToName       string     `json:"to_name,omitempty"`
	ToMetadata   string     `json:"to_metadata,omitempty"`
	Summary      string     `json:"summary,omitempty"`
	Transcript   Transcript `json:"transcript,omitempty"`
}

// SummaryStatus reports how the summary was obtained. OK is false only when
// generation was attempted and failed; Kind then names the failure.
type SummaryStatus struct {
	OK      bool   `json:"ok"`
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

// Result is the body of a successful POST /transfer.
type Result struct {
	Token         string        `json:"token"`
	Room          string        `json:"room"`
	ToIdentity    string        `json:"to_identity"`
	Summary       string        `json:"summary"`
	AudioURL      string        `json:"audio_url"`
	SummaryStatus SummaryStatus `json:"summary_status"`
}

// Event is the payload of the handoff TRANSFER message and of the archived record.
type Event struct {
	Room          string        `json:"room"`
	FromIdentity  string        `json:"from_identity"`
	ToIdentity    string        `json:"to_identity"`
	Summary       string        `json:"summary"`
	SummaryStatus SummaryStatus `json:"summary_status"`
	AudioURL      string        `json:"audio_url"`
	Transcript    string        `json:"transcript,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// TokenIssuer signs room access tokens.
type TokenIssuer interface {
	Issue(room string, p participant.Participant) (string, *jwt.AccessClaims, error)
}

// Notifier delivers handoff messages to room subscribers.
type Notifier interface {
	Publish(room string, typ handoff.MessageType, payload any) bool
}

// Options wires a Coordinator. Summarizer, Notifier, and Archive are optional.
type Options struct {
	Issuer     TokenIssuer
	Summarizer summarizer.Summarizer
	Store      summary.Store
	Notifier   Notifier
	Archive    storage.ObjectStore

	AudioBaseURL string
}

// Coordinator performs transfers. It is safe for concurrent use.
type Coordinator struct {
	issuer       TokenIssuer
	summarizer   summarizer.Summarizer
	store        summary.Store
	notifier     Notifier
	archive      storage.ObjectStore
	audioBaseURL string

	// archives tracks in-flight archive uploads.
	archives sync.WaitGroup

	logger zerolog.Logger
}

// NewCoordinator returns a Coordinator.
func NewCoordinator(opts Options) *Coordinator {
	base := strings.TrimRight(opts.AudioBaseURL, "/")
	if base == "" {
		base = DefaultAudioBaseURL
	}

	return &Coordinator{
		issuer:       opts.Issuer,
		summarizer:   opts.Summarizer,
		store:        opts.Store,
		notifier:     opts.Notifier,
		archive:      opts.Archive,
		audioBaseURL: base,
		logger:       logx.Component("transfer"),
	}
}

// Transfer runs one handoff. Validation problems come back as *errs.CustomError;
// missing signing credentials as jwt.ErrSigningKeyMissing. Summary generation
// and persistence problems never fail the transfer.
func (c *Coordinator) Transfer(ctx context.Context, req Request) (*Result, error) {
	room := participant.NormalizeRoom(req.Room)
	if cerr := participant.ValidateRoom(room); cerr != nil {
		return nil, cerr
	}

	from := participant.Participant{Identity: req.FromIdentity}.Normalize()
	if cerr := from.Validate("from_identity"); cerr != nil {
		return nil, cerr
	}

	to := participant.Participant{
		Identity: req.ToIdentity,
		Name:     req.ToName,
		Metadata: req.ToMetadata,
	}.Normalize()
	if cerr := to.Validate("to_identity"); cerr != nil {
		return nil, cerr
	}

	token, _, err := c.issuer.Issue(room, to)
	if err != nil {
		return nil, err
	}

	text, status := c.resolveSummary(ctx, summarizer.Request{
		Room:         room,
		FromIdentity: from.Identity,
		ToIdentity:   to.Identity,
		Transcript:   string(req.Transcript),
	}, req.Summary)

	now := time.Now().UTC()

	if status.OK && c.store != nil {
		err := c.store.Put(ctx, summary.Entry{
			Room:         room,
			Summary:      text,
			FromIdentity: from.Identity,
			ToIdentity:   to.Identity,
			UpdatedAt:    now,
		})
		if err != nil {
			c.logger.Error().Err(err).Str("room", room).Str("store", c.store.Kind()).Msg("Failed to persist summary")
		}
	}

	result := &Result{
		Token:         token,
		Room:          room,
		ToIdentity:    to.Identity,
		Summary:       text,
		AudioURL:      c.audioURL(room),
		SummaryStatus: status,
	}

	event := Event{
		Room:          room,
		FromIdentity:  from.Identity,
		ToIdentity:    to.Identity,
		Summary:       text,
		SummaryStatus: status,
		AudioURL:      result.AudioURL,
		Transcript:    string(req.Transcript),
		CreatedAt:     now,
	}

	if c.notifier != nil {
		delivered := c.notifier.Publish(room, handoff.TypeTransfer, event)
		c.logger.Debug().Str("room", room).Bool("delivered", delivered).Msg("Handoff event published")
	}

	c.archiveEvent(event)

	c.logger.Info().
		Str("room", room).
		Str("from_identity", from.Identity).
		Str("to_identity", to.Identity).
		Str("summary_kind", status.Kind).
		Bool("summary_ok", status.OK).
		Msg("Transfer completed")

	return result, nil
}

// resolveSummary applies the literal / disabled / generated rules.
func (c *Coordinator) resolveSummary(ctx context.Context, sreq summarizer.Request, literal string) (string, SummaryStatus) {
	if strings.TrimSpace(literal) != "" && literal != AutoSummary {
		return literal, SummaryStatus{OK: true, Kind: StatusProvided}
	}

	if c.summarizer == nil {
		return NoSummary, SummaryStatus{OK: true, Kind: StatusDisabled}
	}

	text, err := c.summarizer.Summarize(ctx, sreq)
	if err != nil {
		f := summarizer.AsFailure(err)
		c.logger.Warn().
			Str("room", sreq.Room).
			Str("kind", string(f.Kind)).
			Int("status_code", f.StatusCode).
			Bool("transient", f.Transient()).
			Err(f.Err).
			Msg("Summary generation failed")

		return "", SummaryStatus{OK: false, Kind: string(f.Kind), Message: f.Message}
	}

	return text, SummaryStatus{OK: true, Kind: StatusGenerated}
}

func (c *Coordinator) audioURL(room string) string {
	return fmt.Sprintf("%s/%s/%s.mp3", c.audioBaseURL, randx.PathSegment(room), randx.ClipID())
}

// ArchiveKey returns the object key for an archived transfer of room.
func ArchiveKey(room, id string) string {
	return "transfers/" + randx.PathSegment(room) + "/" + id + ".json"
}

// archiveEvent uploads the record in the background when an archive is configured.
func (c *Coordinator) archiveEvent(event Event) {
	if c.archive == nil {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		c.logger.Error().Err(err).Str("room", event.Room).Msg("Failed to encode transfer record")
		return
	}

	key := ArchiveKey(event.Room, randx.ArchiveID())

	c.archives.Add(1)
	go func() {
		defer c.archives.Done()

		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		if err := c.archive.Put(ctx, key, "application/json", body); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Failed to archive transfer record")
			return
		}
		c.logger.Debug().Str("key", key).Msg("Transfer record archived")
	}()
}

// Wait blocks until in-flight archive uploads finish.
func (c *Coordinator) Wait() {
	c.archives.Wait()
}
