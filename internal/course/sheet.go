package course

import (
	"sync"

	"gpacalc/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sheet 是一个会话的课程列表，保持插入顺序，且至少保留一门课程
type Sheet struct {
	courses []models.Course
	version uint64
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewSheet 创建带有默认三门课程的列表
func NewSheet(logger *zap.Logger) *Sheet {
	return &Sheet{
		courses: []models.Course{
			{ID: uuid.New().String(), Credits: 3.0, GradePoints: 4.0},
			{ID: uuid.New().String(), Credits: 3.0, GradePoints: 3.75},
			{ID: uuid.New().String(), Credits: 3.0, GradePoints: 3.5},
		},
		logger: logger,
	}
}

func (s *Sheet) Add() models.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	course := models.Course{
		ID:          uuid.New().String(),
		Credits:     models.DefaultCredits,
		GradePoints: models.DefaultGradePoints,
	}
	s.courses = append(s.courses, course)
	s.version++
	s.logger.Info("Added course", zap.String("courseID", course.ID), zap.Int("count", len(s.courses)))

	return course
}

// Remove 删除课程。仅剩一门课程时不做修改并返回 lastCourse=true；
// 课程不存在时两者均为 false。
func (s *Sheet) Remove(courseID string) (removed bool, lastCourse bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.courses {
		if c.ID != courseID {
			continue
		}
		if len(s.courses) <= 1 {
			return false, true
		}
		s.courses = append(s.courses[:i], s.courses[i+1:]...)
		s.version++
		s.logger.Info("Removed course", zap.String("courseID", courseID), zap.Int("count", len(s.courses)))
		return true, false
	}

	return false, false
}

func (s *Sheet) Update(courseID string, patch models.CoursePatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.courses {
		c := &s.courses[i]
		if c.ID != courseID {
			continue
		}
		if patch.Name != nil {
			c.Name = *patch.Name
		}
		if patch.Credits != nil {
			c.Credits = *patch.Credits
		}
		if patch.GradePoints != nil {
			c.GradePoints = *patch.GradePoints
		}
		s.version++
		s.logger.Debug("Updated course", zap.String("courseID", courseID), zap.Float64("credits", c.Credits), zap.Float64("gradePoints", c.GradePoints))
		return true
	}

	return false
}

// List 按顺序返回课程副本
func (s *Sheet) List() []models.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]models.Course, len(s.courses))
	copy(courses, s.courses)
	return courses
}

// Snapshot 在同一把锁下返回课程副本与对应版本
func (s *Sheet) Snapshot() ([]models.Course, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	courses := make([]models.Course, len(s.courses))
	copy(courses, s.courses)
	return courses, s.version
}

// Version 每次修改后递增
func (s *Sheet) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
