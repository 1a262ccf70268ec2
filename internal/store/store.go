// Package store declares the persistence contracts the engine reads and writes.
// The engine treats a store as the only source of truth and never caches
// beyond a single call.
package store

import (
	"context"
	"errors"

	"github.com/spigell/hire-engine/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrReportExists is returned when a second report is written for a session.
	ErrReportExists = errors.New("assessment report already exists")
)

type ProfileStore interface {
	GetProfile(ctx context.Context, id model.CandidateID) (*model.CandidateProfile, error)
	PutProfile(ctx context.Context, profile *model.CandidateProfile) error
	ListProfiles(ctx context.Context) ([]*model.CandidateProfile, error)
}

type JobStore interface {
	GetRequirement(ctx context.Context, id model.JobID) (*model.JobRequirement, error)
	PutRequirement(ctx context.Context, req *model.JobRequirement) error
	ListRequirements(ctx context.Context) ([]*model.JobRequirement, error)
}

type SessionStore interface {
	GetSession(ctx context.Context, id model.SessionID) (*model.InterviewSession, error)
	SaveSession(ctx context.Context, session *model.InterviewSession) error
}

type ReportStore interface {
	GetReport(ctx context.Context, sessionID model.SessionID) (*model.AssessmentReport, error)
	// PutReport stores a report once; a second write fails with ErrReportExists.
	PutReport(ctx context.Context, report *model.AssessmentReport) error
	ListReportsByJob(ctx context.Context, jobID model.JobID) ([]*model.AssessmentReport, error)
}

// Stores bundles the contracts a running engine needs.
type Stores struct {
	Profiles ProfileStore
	Jobs     JobStore
	Sessions SessionStore
	Reports  ReportStore
}
