package gpa

import (
	"math"

	"gpacalc/pkg/models"
)

// Result 是一次计算的派生结果，不做存储
type Result struct {
	GPA             float64 `json:"gpa"`
	TotalCredits    float64 `json:"totalCredits"`
	TotalPoints     float64 `json:"totalPoints"`
	Label           string  `json:"label"`
	Emoji           string  `json:"emoji"`
	GifURL          string  `json:"gifUrl"`
	MoodColor       string  `json:"moodColor"`
	MoodDescription string  `json:"moodDescription"`
}

// Compute 计算学分加权平均绩点。学分不为正数的课程既不计入绩点也不计入学分。
func Compute(courses []models.Course) Result {
	var totalPoints, totalCredits float64
	for _, c := range courses {
		if !(c.Credits > 0) || math.IsInf(c.Credits, 1) {
			continue
		}
		totalPoints += c.Credits * c.GradePoints
		totalCredits += c.Credits
	}

	var value float64
	if totalCredits > 0 {
		value = totalPoints / totalCredits
	}

	// 累加溢出时按无有效学分处理，保证结果可以序列化
	if !finite(totalPoints) || !finite(totalCredits) || !finite(value) {
		totalPoints, totalCredits, value = 0, 0, 0
	}

	mood := Classify(value)
	return Result{
		GPA:             value,
		TotalCredits:    totalCredits,
		TotalPoints:     totalPoints,
		Label:           mood.Label,
		Emoji:           mood.Emoji,
		GifURL:          mood.GifURL,
		MoodColor:       mood.Color,
		MoodDescription: mood.Description,
	}
}

// Classify 返回绩点最接近的等级；距离相同时等级表中靠前的一项优先
func Classify(value float64) GradeOption {
	best := gradeScale[0]
	for _, g := range gradeScale[1:] {
		if math.Abs(g.Points-value) < math.Abs(best.Points-value) {
			best = g
		}
	}
	return best
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
