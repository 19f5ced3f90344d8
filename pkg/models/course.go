package models

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultCredits     = 3.0
	DefaultGradePoints = 3.0
)

type Course struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Credits     float64 `json:"credits"`
	GradePoints float64 `json:"gradePoints"`
}

// CoursePatch 描述一次课程字段更新，nil 字段保持不变
type CoursePatch struct {
	Name        *string
	Credits     *float64
	GradePoints *float64
}

// UnmarshalJSON 宽松解析学分：非数字、负数或缺失均视为 0
func (c *Course) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Credits     interface{} `json:"credits"`
		GradePoints interface{} `json:"gradePoints"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	c.ID = raw.ID
	c.Name = raw.Name
	c.Credits = ParseCredits(raw.Credits)
	c.GradePoints = ParseNumber(raw.GradePoints)
	return nil
}

// ParseCredits 将任意输入转换为学分
func ParseCredits(v interface{}) float64 {
	credits := ParseNumber(v)
	if credits < 0 {
		return 0
	}
	return credits
}

// ParseNumber 将 JSON 数字或数字字符串转换为有限浮点数，失败返回 0
func ParseNumber(v interface{}) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
