package api

import (
	"net/http"
	"strconv"

	"github.com/okian/hackwreck/internal/domain/model"
)

// handleTrends handles POST /api/trends.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	var req model.TrendRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Trends(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleWreckMe handles POST /api/wreck-me. The body is ignored.
func (s *Server) handleWreckMe(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.WreckMe(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAnalyze handles POST /api/analyze-project.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req model.AnalyzeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.deps.Analyze(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSpeak handles POST /api/text-to-speech and streams back a WAV file.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req model.SpeechRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	audio, err := s.deps.Speak(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Content-Disposition", `inline; filename="speech.wav"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}
