package protocol

import (
	"gpacalc/internal/gpa"
	"gpacalc/pkg/models"
)

// CoursesRequest 是 /api/gpa 与 /api/advice 的请求体
type CoursesRequest struct {
	Courses []models.Course `json:"courses"`
}

// GradeEntry 附带成绩选择器的着色等级
type GradeEntry struct {
	gpa.GradeOption
	Band string `json:"band"`
}

type GradesResponse struct {
	Grades        []GradeEntry `json:"grades"`
	CommonCredits []float64    `json:"commonCredits"`
}

type AdviceResponse struct {
	GPA    float64  `json:"gpa"`
	Advice []string `json:"advice"`
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
