package domain

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/mission_tower/internal/ports"
)

type missionService struct {
	repo       ports.MissionRepo
	audioDir   string
	bufferSize int
	log        *logger.ZapLogger
}

func NewMissionService(repo ports.MissionRepo, audioDir string, bufferSize int, log *logger.ZapLogger) ports.MissionService {
	return &missionService{
		repo:       repo,
		audioDir:   audioDir,
		bufferSize: bufferSize,
		log:        log,
	}
}

// NextMission hands out the oldest ready mission and marks it requested.
// A nil mission with a nil error means the buffer is empty.
func (s *missionService) NextMission(ctx context.Context) (*ports.Mission, error) {
	return s.absentAsNil(s.repo.RequestOldest(ctx))
}

func (s *missionService) MissionByID(ctx context.Context, id int64) (*ports.Mission, error) {
	return s.absentAsNil(s.repo.RequestByID(ctx, id))
}

func (s *missionService) MissionByTitle(ctx context.Context, title string) (*ports.Mission, error) {
	return s.absentAsNil(s.repo.RequestByTitle(ctx, title))
}

func (s *missionService) AudioPath(id int64) string {
	return filepath.Join(s.audioDir, ports.AudioBaseName(id)+".wav")
}

func (s *missionService) BufferStatus(ctx context.Context) (ports.BufferStatus, error) {
	n, err := s.repo.CountUnrequested(ctx)
	if err != nil {
		s.log.Log(logger.LogEntry{Level: "error", Message: "buffer status query failed", Service: "missions", Error: err})
		return ports.BufferStatus{}, err
	}
	return ports.BufferStatus{Unrequested: n, Target: s.bufferSize}, nil
}

func (s *missionService) absentAsNil(m *ports.Mission, err error) (*ports.Mission, error) {
	if errors.Is(err, ports.ErrMissionNotFound) {
		return nil, nil
	}
	if err != nil {
		s.log.Log(logger.LogEntry{Level: "error", Message: "mission store unavailable", Service: "missions", Error: err})
		return nil, fmt.Errorf("request mission: %w", err)
	}
	return m, nil
}
