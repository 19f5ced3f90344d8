package app

import (
	"context"
	"encoding/json"
	"net/http"

	protocol "gpacalc/api"
	e "gpacalc/internal/errors"
	"gpacalc/internal/gpa"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGrades(w http.ResponseWriter, r *http.Request) {
	catalog := gpa.Catalog()
	grades := make([]protocol.GradeEntry, 0, len(catalog))
	for _, g := range catalog {
		grades = append(grades, protocol.GradeEntry{GradeOption: g, Band: gpa.GradeBand(g.Points)})
	}

	s.writeJSON(w, http.StatusOK, protocol.GradesResponse{
		Grades:        grades,
		CommonCredits: gpa.CommonCredits,
	})
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var req protocol.CoursesRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.writeJSON(w, http.StatusOK, gpa.Compute(req.Courses))
}

// handleAdvice 总是返回 200，服务失败时返回兜底建议
func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	var req protocol.CoursesRequest
	if !s.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.Config.AdviceTimeout)
	defer cancel()

	result := gpa.Compute(req.Courses)
	s.writeJSON(w, http.StatusOK, protocol.AdviceResponse{
		GPA:    result.GPA,
		Advice: s.Advice.Request(ctx, result.GPA, req.Courses),
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.Logger.Warn("Invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusBadRequest, e.ErrInvalidData.Code)
		return false
	}
	return true
}

// writeJSON 先完成序列化再写响应头，序列化失败时返回 500
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.Logger.Error("Error marshalling response", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, e.ErrInternalServer.Code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func (s *Server) writeError(w http.ResponseWriter, status, code int) {
	data, _ := json.Marshal(protocol.ErrorResponse{
		Code:    code,
		Message: e.GetErrorMessage(code),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
