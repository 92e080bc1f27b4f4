// Package download runs the search-select-download-deliver pipeline:
// gate check, best-effort title lookup, audio extraction, delivery to
// the requesting user, and guaranteed artifact cleanup.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/technicalserena/tunegram/internal/gate"
)

// Terminal states of one pipeline run.
const (
	StateDelivered             = "delivered"
	StateRejectedCooldown      = "rejected_cooldown"
	StateFailedDownload        = "failed_download"
	StateFailedMissingArtifact = "failed_missing_artifact"
	StateFailedDelivery        = "failed_delivery"
	StateFailedGate            = "failed_gate"
)

// Result describes how a run terminated. Err carries diagnostic detail
// for the log; it is never shown to the user verbatim.
type Result struct {
	State string
	Title string
	Wait  time.Duration // remaining cooldown on StateRejectedCooldown
	Err   error
}

// Failed reports whether the run ended in a failure state (cooldown
// rejection is a normal outcome, not a failure).
func (r Result) Failed() bool {
	switch r.State {
	case StateDelivered, StateRejectedCooldown:
		return false
	}
	return true
}

// TitleResolver fetches an authoritative display title for a video ID.
type TitleResolver interface {
	VideoTitle(ctx context.Context, videoID string) (string, error)
}

// Deliverer transmits a finished artifact to a user's private chat.
type Deliverer interface {
	SendAudio(ctx context.Context, userID int64, path, title string) error
}

// Pipeline executes download requests. Each request is strictly
// sequential with no retries between steps; concurrent requests for
// the same video run independently (no dedup).
type Pipeline struct {
	gate      *gate.Gate
	titles    TitleResolver
	extractor Extractor
	deliverer Deliverer
	tracer    trace.Tracer
}

func NewPipeline(g *gate.Gate, titles TitleResolver, extractor Extractor, deliverer Deliverer) *Pipeline {
	return &Pipeline{
		gate:      g,
		titles:    titles,
		extractor: extractor,
		deliverer: deliverer,
		tracer:    otel.Tracer("tunegram/download"),
	}
}

// Run drives one request from selection to a terminal state. The
// caller is expected to invoke it on its own goroutine; the extraction
// step blocks until yt-dlp finishes.
func (p *Pipeline) Run(ctx context.Context, userID int64, videoID string) Result {
	ctx, span := p.tracer.Start(ctx, "download",
		trace.WithAttributes(
			attribute.String("video_id", videoID),
			attribute.Int64("user_id", userID),
		))
	defer span.End()

	res := p.run(ctx, userID, videoID)
	span.SetAttributes(attribute.String("outcome", res.State))
	if res.Err != nil {
		span.RecordError(res.Err)
	}
	return res
}

func (p *Pipeline) run(ctx context.Context, userID int64, videoID string) Result {
	ok, err := p.gate.CanSend(ctx, userID)
	if err != nil {
		return Result{State: StateFailedGate, Err: fmt.Errorf("gate check: %w", err)}
	}
	if !ok {
		wait, waitErr := p.gate.RemainingWait(ctx, userID)
		if waitErr != nil {
			wait = p.gate.Cooldown()
		}
		return Result{State: StateRejectedCooldown, Wait: wait}
	}

	// Best-effort title enrichment; any failure falls back to the raw
	// video ID and is never surfaced.
	title := videoID
	if resolved, titleErr := p.titles.VideoTitle(ctx, videoID); titleErr == nil && resolved != "" {
		title = resolved
	} else if titleErr != nil {
		slog.Debug("title lookup failed, using video id", "video_id", videoID, "error", titleErr)
	}

	path, err := p.extractor.Extract(ctx, videoID, title)
	if err != nil {
		if errors.Is(err, ErrMissingArtifact) {
			return Result{State: StateFailedMissingArtifact, Title: title, Err: err}
		}
		return Result{State: StateFailedDownload, Title: title, Err: err}
	}
	// The artifact exists from here on; delete it in every terminal
	// state, success or failure.
	defer p.cleanup(path)

	if err := p.deliverer.SendAudio(ctx, userID, path, title); err != nil {
		return Result{State: StateFailedDelivery, Title: title, Err: fmt.Errorf("send audio: %w", err)}
	}

	if err := p.gate.MarkSent(ctx, userID); err != nil {
		// Delivery already happened; a failed bookkeeping write must not
		// turn the run into a user-visible failure.
		slog.Warn("mark sent failed after delivery", "user_id", userID, "error", err)
	}
	return Result{State: StateDelivered, Title: title}
}

func (p *Pipeline) cleanup(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("artifact cleanup failed", "path", path, "error", err)
	}
}
