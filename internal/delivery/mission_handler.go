package delivery

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"

	"github.com/Vovarama1992/mission_tower/internal/ports"
)

type MissionHandler struct {
	missions ports.MissionService
	log      *logger.ZapLogger
}

func NewMissionHandler(missions ports.MissionService, log *logger.ZapLogger) *MissionHandler {
	return &MissionHandler{
		missions: missions,
		log:      log,
	}
}

type missionResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"mission_title"`
	Pups        string `json:"involved_pups"`
	Location    string `json:"main_location"`
	Script      string `json:"mission_script"`
	Translation string `json:"translation"`
	IsRequested bool   `json:"is_requested"`
}

func toResponse(m *ports.Mission) *missionResponse {
	if m == nil {
		return nil
	}
	return &missionResponse{
		ID:          m.ID,
		Title:       m.Title,
		Pups:        m.PupsString(),
		Location:    m.Location,
		Script:      m.Script,
		Translation: m.Translation,
		IsRequested: m.IsRequested,
	}
}

// GET /mission: отдаёт самую старую невыданную миссию, null если буфер пуст
func (h *MissionHandler) Next(w http.ResponseWriter, r *http.Request) {
	m, err := h.missions.NextMission(r.Context())
	if err != nil {
		http.Error(w, "failed to fetch mission", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(m))
}

// GET /mission/{id}
func (h *MissionHandler) ByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	m, err := h.missions.MissionByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to fetch mission", http.StatusInternalServerError)
		return
	}
	h.writeMission(w, m)
}

// GET /mission/title/{title}
func (h *MissionHandler) ByTitle(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	if title == "" {
		http.Error(w, "missing title", http.StatusBadRequest)
		return
	}

	m, err := h.missions.MissionByTitle(r.Context(), title)
	if err != nil {
		http.Error(w, "failed to fetch mission", http.StatusInternalServerError)
		return
	}
	h.writeMission(w, m)
}

// GET /mission-audio/{id}: файл ищется только на диске, без похода в базу
func (h *MissionHandler) Audio(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Audio file not found", http.StatusNotFound)
		return
	}

	f, err := os.Open(h.missions.AudioPath(id))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.log.Log(logger.LogEntry{Level: "error", Message: "failed to open audio", Service: "delivery", Error: err})
		}
		http.Error(w, "Audio file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.Error(w, "Audio file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

// GET /buffer
func (h *MissionHandler) Buffer(w http.ResponseWriter, r *http.Request) {
	st, err := h.missions.BufferStatus(r.Context())
	if err != nil {
		http.Error(w, "failed to read buffer status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *MissionHandler) writeMission(w http.ResponseWriter, m *ports.Mission) {
	if m == nil {
		writeJSON(w, http.StatusNotFound, nil)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(m))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
