package buffer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"

	"github.com/Vovarama1992/mission_tower/internal/ports"
)

var ErrPassExhausted = errors.New("maintenance pass hit its attempt cap")

// DefaultDraftTTL outlasts a full synthesis retry cycle.
const DefaultDraftTTL = 30 * time.Minute

type Options struct {
	Target int
	// MaxPassAttempts caps missions attempted per pass; 0 means keep going until full.
	MaxPassAttempts int
	// DraftTTL is how old an unpublished mission must be before a pass purges it.
	DraftTTL time.Duration
}

type PassReport struct {
	PassID      string
	Attempts    int
	Created     int
	Failed      int
	Purged      int
	Unrequested int
	Took        time.Duration
}

type Maintainer struct {
	repo     ports.MissionRepo
	gen      Generator
	synth    Synthesizer
	notifier Notifier
	archive  ports.AudioArchive
	opts     Options
	log      *logger.ZapLogger
}

func NewMaintainer(
	repo ports.MissionRepo,
	gen Generator,
	synth Synthesizer,
	notifier Notifier,
	opts Options,
	log *logger.ZapLogger,
) *Maintainer {
	return &Maintainer{
		repo:     repo,
		gen:      gen,
		synth:    synth,
		notifier: notifier,
		opts:     opts,
		log:      log,
	}
}

// WithArchive mirrors every finished WAV to object storage.
func (m *Maintainer) WithArchive(a ports.AudioArchive) *Maintainer {
	m.archive = a
	return m
}

// Run fills the buffer until Target ready, unrequested missions exist.
// Generation, insert and synthesis failures only cost an attempt; a store
// error while counting or reading the latest mission aborts the pass.
func (m *Maintainer) Run(ctx context.Context) (PassReport, error) {
	start := time.Now()
	rep := PassReport{PassID: uuid.NewString()}
	rep.Purged = m.purgeDrafts(ctx, rep.PassID)

	for {
		if err := ctx.Err(); err != nil {
			return m.finish(rep, start), err
		}

		n, err := m.repo.CountUnrequested(ctx)
		if err != nil {
			m.logError(rep.PassID, "failed to count missions", err)
			return m.finish(rep, start), fmt.Errorf("count missions: %w", err)
		}
		rep.Unrequested = n

		if n >= m.opts.Target {
			break
		}

		if m.opts.MaxPassAttempts > 0 && rep.Attempts >= m.opts.MaxPassAttempts {
			err := fmt.Errorf("%w: %d attempts, %d/%d missions", ErrPassExhausted, rep.Attempts, n, m.opts.Target)
			m.logError(rep.PassID, "giving up on this pass", err)
			m.alert(ctx, err, "pass "+rep.PassID)
			return m.finish(rep, start), err
		}

		rep.Attempts++
		ok, err := m.produce(ctx, rep.PassID)
		if err != nil {
			return m.finish(rep, start), err
		}
		if ok {
			rep.Created++
		} else {
			rep.Failed++
		}
	}

	rep = m.finish(rep, start)
	m.logInfo(rep.PassID, fmt.Sprintf(
		"pass done in %.1fs: %d/%d missions, %d created, %d failed",
		rep.Took.Seconds(), rep.Unrequested, m.opts.Target, rep.Created, rep.Failed,
	))
	return rep, nil
}

// produce makes one mission ready. It reports false for failures the loop
// absorbs and an error only when the pass has to stop.
func (m *Maintainer) produce(ctx context.Context, passID string) (bool, error) {
	prev, err := m.repo.Latest(ctx)
	switch {
	case errors.Is(err, ports.ErrMissionNotFound):
		prev = nil
	case err != nil:
		m.logError(passID, "failed to read latest mission", err)
		return false, fmt.Errorf("latest mission: %w", err)
	}

	// 1) генерация
	draft, err := m.gen.Generate(ctx, prev)
	if err != nil {
		m.logError(passID, "mission generation failed", err)
		return false, nil
	}

	// 2) запись
	created, err := m.repo.Insert(ctx, draft)
	if err != nil {
		m.logError(passID, "failed to store generated mission", err)
		return false, nil
	}

	// 3) озвучка
	base := ports.AudioBaseName(created.ID)
	if err := m.synth.Synthesize(ctx, base, created.Translation); err != nil {
		m.discard(ctx, passID, created.ID)
		m.alert(ctx, err, fmt.Sprintf("mission %d %q deleted, no audio", created.ID, created.Title))
		return false, nil
	}

	// 4) публикация
	if err := m.repo.MarkAudioReady(ctx, created.ID); err != nil {
		m.logError(passID, fmt.Sprintf("failed to publish mission %d", created.ID), err)
		m.discard(ctx, passID, created.ID)
		return false, nil
	}

	m.logInfo(passID, fmt.Sprintf("mission %d %q is ready", created.ID, created.Title))
	m.mirror(ctx, passID, created.ID)
	return true, nil
}

// discard removes the record and any audio left for it. It runs even when
// ctx is already cancelled.
func (m *Maintainer) discard(ctx context.Context, passID string, id int64) {
	ctx = context.WithoutCancel(ctx)

	if err := m.repo.Delete(ctx, id); err != nil {
		m.logError(passID, fmt.Sprintf("failed to delete mission %d", id), err)
	} else {
		m.logWarn(passID, fmt.Sprintf("mission %d deleted", id))
	}
	os.Remove(m.synth.WAVPath(ports.AudioBaseName(id)))
}

func (m *Maintainer) purgeDrafts(ctx context.Context, passID string) int {
	ttl := m.opts.DraftTTL
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}

	ids, err := m.repo.DeleteDrafts(ctx, time.Now().Add(-ttl))
	if err != nil {
		m.logError(passID, "failed to purge drafts", err)
		return 0
	}
	for _, id := range ids {
		os.Remove(m.synth.WAVPath(ports.AudioBaseName(id)))
	}
	if len(ids) > 0 {
		m.logWarn(passID, fmt.Sprintf("purged %d stale unfinished missions %v", len(ids), ids))
	}
	return len(ids)
}

func (m *Maintainer) mirror(ctx context.Context, passID string, id int64) {
	if m.archive == nil {
		return
	}
	url, err := m.archive.SaveAudio(ctx, id, m.synth.WAVPath(ports.AudioBaseName(id)))
	if err != nil {
		m.logError(passID, fmt.Sprintf("failed to archive audio of mission %d", id), err)
		return
	}
	m.logInfo(passID, fmt.Sprintf("audio of mission %d archived at %s", id, url))
}

func (m *Maintainer) alert(ctx context.Context, err error, details string) {
	if m.notifier == nil {
		return
	}
	_ = m.notifier.Notify(context.WithoutCancel(ctx), err, details)
}

func (m *Maintainer) finish(rep PassReport, start time.Time) PassReport {
	rep.Took = time.Since(start)
	return rep
}

func (m *Maintainer) logInfo(passID, msg string) {
	m.log.Log(logger.LogEntry{Level: "info", Message: "[" + passID + "] " + msg, Service: "buffer"})
}

func (m *Maintainer) logWarn(passID, msg string) {
	m.log.Log(logger.LogEntry{Level: "warn", Message: "[" + passID + "] " + msg, Service: "buffer"})
}

func (m *Maintainer) logError(passID, msg string, err error) {
	m.log.Log(logger.LogEntry{Level: "error", Message: "[" + passID + "] " + msg, Service: "buffer", Error: err})
}
