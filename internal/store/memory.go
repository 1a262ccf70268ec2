package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/spigell/hire-engine/internal/model"
)

// Memory keeps every document in process. Values are copied on the way in and
// out so callers never share state with the store.
type Memory struct {
	mu       sync.RWMutex
	profiles map[model.CandidateID][]byte
	jobs     map[model.JobID][]byte
	sessions map[model.SessionID][]byte
	reports  map[model.SessionID][]byte
}

func NewMemory() *Memory {
	return &Memory{
		profiles: map[model.CandidateID][]byte{},
		jobs:     map[model.JobID][]byte{},
		sessions: map[model.SessionID][]byte{},
		reports:  map[model.SessionID][]byte{},
	}
}

// Stores exposes the memory store through every contract.
func (m *Memory) Stores() Stores {
	return Stores{Profiles: m, Jobs: m, Sessions: m, Reports: m}
}

func (m *Memory) GetProfile(_ context.Context, id model.CandidateID) (*model.CandidateProfile, error) {
	m.mu.RLock()
	raw, ok := m.profiles[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	return decode[model.CandidateProfile](raw)
}

func (m *Memory) PutProfile(_ context.Context, profile *model.CandidateProfile) error {
	if profile == nil || profile.ID.IsEmpty() {
		return fmt.Errorf("profile id is required")
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	m.mu.Lock()
	m.profiles[profile.ID] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) ListProfiles(_ context.Context) ([]*model.CandidateProfile, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	raws := make([][]byte, 0, len(ids))
	for _, id := range ids {
		raws = append(raws, m.profiles[model.CandidateID(id)])
	}
	m.mu.RUnlock()

	out := make([]*model.CandidateProfile, 0, len(raws))
	for _, raw := range raws {
		p, err := decode[model.CandidateProfile](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) GetRequirement(_ context.Context, id model.JobID) (*model.JobRequirement, error) {
	m.mu.RLock()
	raw, ok := m.jobs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return decode[model.JobRequirement](raw)
}

func (m *Memory) PutRequirement(_ context.Context, req *model.JobRequirement) error {
	if req == nil || req.ID.IsEmpty() {
		return fmt.Errorf("job id is required")
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	m.mu.Lock()
	m.jobs[req.ID] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) ListRequirements(_ context.Context) ([]*model.JobRequirement, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.jobs))
	for id := range m.jobs {
		ids = append(ids, string(id))
	}
	sort.Strings(ids)
	raws := make([][]byte, 0, len(ids))
	for _, id := range ids {
		raws = append(raws, m.jobs[model.JobID(id)])
	}
	m.mu.RUnlock()

	out := make([]*model.JobRequirement, 0, len(raws))
	for _, raw := range raws {
		req, err := decode[model.JobRequirement](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, nil
}

func (m *Memory) GetSession(_ context.Context, id model.SessionID) (*model.InterviewSession, error) {
	m.mu.RLock()
	raw, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return decode[model.InterviewSession](raw)
}

func (m *Memory) SaveSession(_ context.Context, session *model.InterviewSession) error {
	if session == nil || session.ID.IsEmpty() {
		return fmt.Errorf("session id is required")
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	m.mu.Lock()
	m.sessions[session.ID] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetReport(_ context.Context, sessionID model.SessionID) (*model.AssessmentReport, error) {
	m.mu.RLock()
	raw, ok := m.reports[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("report for session %s: %w", sessionID, ErrNotFound)
	}
	return decode[model.AssessmentReport](raw)
}

func (m *Memory) PutReport(_ context.Context, report *model.AssessmentReport) error {
	if report == nil || report.SessionID.IsEmpty() {
		return fmt.Errorf("report session id is required")
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[report.SessionID]; ok {
		return fmt.Errorf("session %s: %w", report.SessionID, ErrReportExists)
	}
	m.reports[report.SessionID] = raw
	return nil
}

func (m *Memory) ListReportsByJob(_ context.Context, jobID model.JobID) ([]*model.AssessmentReport, error) {
	m.mu.RLock()
	raws := make([][]byte, 0, len(m.reports))
	for _, raw := range m.reports {
		raws = append(raws, raw)
	}
	m.mu.RUnlock()

	out := make([]*model.AssessmentReport, 0)
	for _, raw := range raws {
		r, err := decode[model.AssessmentReport](raw)
		if err != nil {
			return nil, err
		}
		if r.JobID == jobID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out, nil
}

func decode[T any](raw []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return &v, nil
}
