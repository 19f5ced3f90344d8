package course

import (
	"testing"

	"gpacalc/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSheetDefaults(t *testing.T) {
	s := NewSheet(zap.NewNop())

	courses := s.List()
	require.Len(t, courses, 3)
	assert.Equal(t, 4.0, courses[0].GradePoints)
	assert.Equal(t, 3.75, courses[1].GradePoints)
	assert.Equal(t, 3.5, courses[2].GradePoints)
	for _, c := range courses {
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, 3.0, c.Credits)
	}
}

func TestAddAppendsDefaults(t *testing.T) {
	s := NewSheet(zap.NewNop())

	c := s.Add()

	assert.Equal(t, models.DefaultCredits, c.Credits)
	assert.Equal(t, models.DefaultGradePoints, c.GradePoints)
	assert.Equal(t, "", c.Name)
	courses := s.List()
	require.Len(t, courses, 4)
	assert.Equal(t, c.ID, courses[3].ID)
	assert.Equal(t, uint64(1), s.Version())
}

func TestRemoveKeepsLastCourse(t *testing.T) {
	s := NewSheet(zap.NewNop())
	courses := s.List()

	removed, last := s.Remove(courses[0].ID)
	assert.True(t, removed)
	assert.False(t, last)
	removed, _ = s.Remove(courses[2].ID)
	assert.True(t, removed)
	assert.Equal(t, 1, len(s.List()))

	removed, last = s.Remove(courses[1].ID)
	assert.False(t, removed)
	assert.True(t, last)
	assert.Equal(t, 1, len(s.List()))

	// 已删除的课程报告为不存在，而不是最后一门
	removed, last = s.Remove(courses[0].ID)
	assert.False(t, removed)
	assert.False(t, last)
	assert.Equal(t, uint64(2), s.Version())
}

func TestRemoveUnknown(t *testing.T) {
	s := NewSheet(zap.NewNop())

	removed, last := s.Remove("missing")
	assert.False(t, removed)
	assert.False(t, last)
	assert.Equal(t, 3, len(s.List()))
	assert.Equal(t, uint64(0), s.Version())
}

func TestUpdate(t *testing.T) {
	s := NewSheet(zap.NewNop())
	id := s.List()[1].ID
	name := "CSE 101"
	credits := 1.5

	ok := s.Update(id, models.CoursePatch{Name: &name, Credits: &credits})
	require.True(t, ok)

	c := s.List()[1]
	require.Equal(t, id, c.ID)
	assert.Equal(t, "CSE 101", c.Name)
	assert.Equal(t, 1.5, c.Credits)
	assert.Equal(t, 3.75, c.GradePoints)

	assert.False(t, s.Update("missing", models.CoursePatch{Name: &name}))
}

func TestSnapshotMatchesVersion(t *testing.T) {
	s := NewSheet(zap.NewNop())
	s.Add()

	courses, version := s.Snapshot()

	assert.Len(t, courses, 4)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, s.Version(), version)
}

func TestListReturnsCopy(t *testing.T) {
	s := NewSheet(zap.NewNop())

	courses := s.List()
	courses[0].Name = "mutated"

	assert.Equal(t, "", s.List()[0].Name)
}
