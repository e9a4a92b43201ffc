package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/dustin/go-humanize"

	"github.com/Vovarama1992/mission_tower/internal/retry"
)

// DefaultSynthesisPolicy: 3 attempts, waiting 20s, 40s, 80s after TTS failures.
var DefaultSynthesisPolicy = retry.Policy{MaxAttempts: 3, InitialDelay: 20 * time.Second}

var ErrSynthesisFailed = errors.New("audio synthesis failed")

// === Сервис синтеза ===

type Service struct {
	tts      TTSClient
	trans    Transcoder
	prober   DurationProber
	audioDir string
	policy   retry.Policy
	sleep    retry.SleepFunc
	log      *logger.ZapLogger
}

func NewService(tts TTSClient, trans Transcoder, audioDir string, log *logger.ZapLogger) *Service {
	return &Service{
		tts:      tts,
		trans:    trans,
		audioDir: audioDir,
		policy:   DefaultSynthesisPolicy,
		sleep:    retry.Sleep,
		log:      log,
	}
}

func (s *Service) WithRetry(policy retry.Policy, sleep retry.SleepFunc) *Service {
	s.policy = policy
	if sleep != nil {
		s.sleep = sleep
	}
	return s
}

// WithProber enables duration logging. Probe errors are ignored.
func (s *Service) WithProber(p DurationProber) *Service {
	s.prober = p
	return s
}

func (s *Service) MP3Path(baseName string) string {
	return filepath.Join(s.audioDir, baseName+".mp3")
}

func (s *Service) WAVPath(baseName string) string {
	return filepath.Join(s.audioDir, baseName+".wav")
}

// Synthesize voices text into <audioDir>/<baseName>.wav. TTS failures are
// retried with backoff; a failed conversion uses up an attempt without waiting.
func (s *Service) Synthesize(ctx context.Context, baseName, text string) error {
	mp3Path := s.MP3Path(baseName)
	var lastErr error

	for i, delay := range s.policy.Delays() {
		attempt := i + 1
		if err := os.MkdirAll(s.audioDir, 0755); err != nil {
			return fmt.Errorf("%w: audio dir: %v", ErrSynthesisFailed, err)
		}

		start := time.Now()
		if err := s.tts.Synthesize(ctx, text, mp3Path); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				s.cleanup(baseName)
				return ctx.Err()
			}
			s.logWarn(fmt.Sprintf("tts attempt %d/%d for %s failed, retrying after %s", attempt, s.policy.MaxAttempts, baseName, delay), err)
			if err := s.sleep(ctx, delay); err != nil {
				s.cleanup(baseName)
				return err
			}
			continue
		}

		wavPath, err := s.trans.ToWAV(ctx, mp3Path)
		if err != nil {
			lastErr = err
			if errors.Is(err, ErrNotMP3) {
				s.logError("refusing to convert", err)
				break
			}
			if ctx.Err() != nil {
				s.cleanup(baseName)
				return ctx.Err()
			}
			s.logWarn(fmt.Sprintf("conversion attempt %d/%d for %s failed", attempt, s.policy.MaxAttempts, baseName), err)
			continue
		}

		os.Remove(mp3Path)
		s.logDone(ctx, wavPath, time.Since(start))
		return nil
	}

	s.cleanup(baseName)
	s.logError("failed to generate audio for "+baseName, lastErr)
	return fmt.Errorf("%w: %s: %v", ErrSynthesisFailed, baseName, lastErr)
}

func (s *Service) cleanup(baseName string) {
	os.Remove(s.MP3Path(baseName))
	os.Remove(s.WAVPath(baseName))
}

func (s *Service) logDone(ctx context.Context, wavPath string, took time.Duration) {
	msg := fmt.Sprintf("[speech][%.1fs] audio saved to %s", took.Seconds(), filepath.Base(wavPath))

	if fi, err := os.Stat(wavPath); err == nil {
		msg += ", " + humanize.Bytes(uint64(fi.Size()))
	}
	if s.prober != nil {
		if d, err := s.prober.Duration(ctx, wavPath); err == nil {
			msg += fmt.Sprintf(", %.1fs of audio", d)
		}
	}

	s.log.Log(logger.LogEntry{Level: "info", Message: msg, Service: "speech"})
}

func (s *Service) logWarn(msg string, err error) {
	s.log.Log(logger.LogEntry{Level: "warn", Message: msg, Service: "speech", Error: err})
}

func (s *Service) logError(msg string, err error) {
	s.log.Log(logger.LogEntry{Level: "error", Message: msg, Service: "speech", Error: err})
}
