package session

import (
	"sync"
	"time"

	"gpacalc/internal/course"
	"gpacalc/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Session struct {
	ID        string
	User      *models.User
	Sheet     *course.Sheet
	StartTime time.Time
	EndTime   time.Time

	conns          int
	adviceInFlight bool
	mu             sync.Mutex
}

// BeginAdvice 占用会话唯一的建议请求槽位，已有请求进行中时返回 false
func (s *Session) BeginAdvice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.adviceInFlight {
		return false
	}
	s.adviceInFlight = true
	return true
}

func (s *Session) EndAdvice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adviceInFlight = false
}

func (s *Session) AdviceInFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adviceInFlight
}

// Manager 按设备码管理会话，同一设备码的连接共享一个会话
type Manager struct {
	sessions map[string]*Session
	byUser   map[string]string
	mu       sync.RWMutex
	logger   *zap.Logger
}

func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		byUser:   make(map[string]string),
		logger:   logger,
	}
}

// Attach 为用户的一个新连接返回会话，必要时创建
func (m *Manager) Attach(user *models.User) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byUser[user.ID]; ok {
		session := m.sessions[id]
		session.mu.Lock()
		session.conns++
		session.mu.Unlock()
		return session
	}

	session := &Session{
		ID:        uuid.New().String(),
		User:      user,
		Sheet:     course.NewSheet(m.logger),
		StartTime: time.Now(),
		conns:     1,
	}

	m.sessions[session.ID] = session
	m.byUser[user.ID] = session.ID
	m.logger.Info("Created new session", zap.String("sessionID", session.ID), zap.String("userID", user.ID))

	return session
}

// Detach 释放一个连接，最后一个连接断开时结束会话并返回 true
func (m *Manager) Detach(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return false
	}

	session.mu.Lock()
	session.conns--
	remaining := session.conns
	session.mu.Unlock()

	if remaining > 0 {
		return false
	}

	session.EndTime = time.Now()
	delete(m.sessions, sessionID)
	delete(m.byUser, session.User.ID)
	m.logger.Info("Ended session", zap.String("sessionID", sessionID), zap.String("userID", session.User.ID), zap.Duration("duration", session.EndTime.Sub(session.StartTime)))
	return true
}

func (m *Manager) GetSession(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	return session, ok
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
