package store

import (
	"context"
	"sort"
	"sync"

	"github.com/campusware/rollcall/internal/domain"
)

// Memory is the fallback store used when no DATABASE_URL is configured.
// Everything lives in process memory and is lost on restart, which is
// acceptable for demos and tests but not for real deployments.
type Memory struct {
	mu         sync.RWMutex
	sessions   map[string]domain.Session
	attendance map[string]map[string]domain.AttendanceRecord
	students   map[string]domain.Student
}

func NewMemory() *Memory {
	return &Memory{
		sessions:   make(map[string]domain.Session),
		attendance: make(map[string]map[string]domain.AttendanceRecord),
		students:   make(map[string]domain.Student),
	}
}

func (m *Memory) CreateSession(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[s.ID]; ok {
		return sessionExistsError(s.ID)
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *Memory) ListSessions(_ context.Context, f domain.SessionFilter) ([]domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) SetSessionActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Active = active
	m.sessions[id] = s
	return nil
}

func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	delete(m.attendance, id)
	return nil
}

func (m *Memory) UpsertAttendance(_ context.Context, rec *domain.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	bySession, ok := m.attendance[rec.SessionID]
	if !ok {
		bySession = make(map[string]domain.AttendanceRecord)
		m.attendance[rec.SessionID] = bySession
	}
	bySession[rec.RollNo] = *rec
	return nil
}

func (m *Memory) GetAttendance(_ context.Context, sessionID, rollNo string) (*domain.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.attendance[sessionID][rollNo]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &rec, nil
}

func (m *Memory) ListAttendance(_ context.Context, sessionID string) ([]domain.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bySession := m.attendance[sessionID]
	out := make([]domain.AttendanceRecord, 0, len(bySession))
	for _, rec := range bySession {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].RollNo < out[j].RollNo
	})
	return out, nil
}

func (m *Memory) DeleteAttendance(_ context.Context, sessionID, rollNo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.attendance[sessionID][rollNo]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(m.attendance[sessionID], rollNo)
	return nil
}

func (m *Memory) UpsertStudent(_ context.Context, st *domain.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.students[st.RollNo] = *st
	return nil
}

func (m *Memory) ListStudents(_ context.Context) ([]domain.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Student, 0, len(m.students))
	for _, st := range m.students {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RollNo < out[j].RollNo })
	return out, nil
}

func (m *Memory) DeleteStudent(_ context.Context, rollNo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.students[rollNo]; !ok {
		return domain.ErrNotFound
	}
	delete(m.students, rollNo)
	return nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }
