package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/mission_tower/internal/ports"
	"github.com/Vovarama1992/mission_tower/internal/retry"
)

// DefaultGenerationPolicy: 3 attempts, waiting 5s, 10s, 20s after transient failures.
var DefaultGenerationPolicy = retry.Policy{MaxAttempts: 3, InitialDelay: 5 * time.Second}

type missionReply struct {
	Title    string   `json:"mission_title"`
	Pups     []string `json:"involved_pups"`
	Location string   `json:"main_location"`
	Script   string   `json:"mission_script"`
}

type translationReply struct {
	Translation string `json:"translation"`
}

var _ Generator = (*MissionGenerator)(nil)

type MissionGenerator struct {
	client   ChatClient
	language string
	policy   retry.Policy
	sleep    retry.SleepFunc
	log      *logger.ZapLogger
}

func NewMissionGenerator(client ChatClient, language string, log *logger.ZapLogger) *MissionGenerator {
	return &MissionGenerator{
		client:   client,
		language: language,
		policy:   DefaultGenerationPolicy,
		sleep:    retry.Sleep,
		log:      log,
	}
}

// WithRetry overrides the backoff policy and the sleep function.
func (g *MissionGenerator) WithRetry(policy retry.Policy, sleep retry.SleepFunc) *MissionGenerator {
	g.policy = policy
	if sleep != nil {
		g.sleep = sleep
	}
	return g
}

// Generate runs the whole script → translate → refine chain. Any upstream
// failure restarts the chain after a growing delay; only a malformed reply
// gives up at once.
func (g *MissionGenerator) Generate(ctx context.Context, prev *ports.Mission) (*ports.Mission, error) {
	var lastErr error

	for i, delay := range g.policy.Delays() {
		attempt := i + 1
		start := time.Now()
		m, err := g.attempt(ctx, prev)
		if err == nil {
			g.logInfo(fmt.Sprintf("[ai][%.1fs] mission %q generated on attempt %d", time.Since(start).Seconds(), m.Title, attempt))
			return m, nil
		}
		lastErr = err

		if errors.Is(err, ErrMalformedReply) {
			g.logError("failed to parse model reply", err)
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		msg := fmt.Sprintf("attempt %d/%d failed, retrying after %s", attempt, g.policy.MaxAttempts, delay)
		if IsTransient(err) {
			g.logWarn(msg, err)
		} else {
			g.logError("upstream rejected the request; "+msg, err)
		}
		if err := g.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	g.logError("max retry attempts reached, no mission generated", lastErr)
	return nil, fmt.Errorf("%w: %v", ErrAttemptsExhausted, lastErr)
}

func (g *MissionGenerator) attempt(ctx context.Context, prev *ports.Mission) (*ports.Mission, error) {
	// 1) сценарий миссии
	mission := NewSession(missionSystemPrompt).Ask(missionUserPrompt(prev), ReplyJSON)

	raw, err := g.client.Complete(ctx, mission)
	if err != nil {
		return nil, fmt.Errorf("mission script: %w", err)
	}

	var mr missionReply
	if err := json.Unmarshal([]byte(raw), &mr); err != nil {
		return nil, fmt.Errorf("%w: mission reply: %v", ErrMalformedReply, err)
	}
	if err := mr.validate(); err != nil {
		return nil, err
	}

	// 2) черновой перевод
	translation := NewSession(translationSystemPrompt(g.language)).Ask(mr.Script, ReplyText)

	draft, err := g.client.Complete(ctx, translation)
	if err != nil {
		return nil, fmt.Errorf("translation: %w", err)
	}

	// 3) шлифовка перевода в той же сессии
	refine := translation.Answered(draft).Ask(refineInstruction, ReplyJSON)

	raw, err = g.client.Complete(ctx, refine)
	if err != nil {
		return nil, fmt.Errorf("refine translation: %w", err)
	}

	var tr translationReply
	if err := json.Unmarshal([]byte(raw), &tr); err != nil {
		return nil, fmt.Errorf("%w: translation reply: %v", ErrMalformedReply, err)
	}
	if strings.TrimSpace(tr.Translation) == "" {
		return nil, fmt.Errorf("%w: translation reply has no translation", ErrMalformedReply)
	}

	return &ports.Mission{
		Title:       strings.TrimSpace(mr.Title),
		Pups:        mr.Pups,
		Location:    strings.TrimSpace(mr.Location),
		Script:      mr.Script,
		Translation: tr.Translation,
	}, nil
}

func (r missionReply) validate() error {
	var missing []string
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "mission_title")
	}
	if len(r.Pups) == 0 {
		missing = append(missing, "involved_pups")
	}
	if strings.TrimSpace(r.Location) == "" {
		missing = append(missing, "main_location")
	}
	if strings.TrimSpace(r.Script) == "" {
		missing = append(missing, "mission_script")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedReply, strings.Join(missing, ", "))
	}
	return nil
}

func (g *MissionGenerator) logInfo(msg string) {
	g.log.Log(logger.LogEntry{Level: "info", Message: msg, Service: "generator"})
}

func (g *MissionGenerator) logWarn(msg string, err error) {
	g.log.Log(logger.LogEntry{Level: "warn", Message: msg, Service: "generator", Error: err})
}

func (g *MissionGenerator) logError(msg string, err error) {
	g.log.Log(logger.LogEntry{Level: "error", Message: msg, Service: "generator", Error: err})
}
