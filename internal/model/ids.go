package model

import "github.com/google/uuid"

type CandidateID string

func NewCandidateID() CandidateID { return CandidateID(uuid.NewString()) }

func (id CandidateID) String() string { return string(id) }

func (id CandidateID) IsEmpty() bool { return id == "" }

type JobID string

func NewJobID() JobID { return JobID(uuid.NewString()) }

func (id JobID) String() string { return string(id) }

func (id JobID) IsEmpty() bool { return id == "" }

type SessionID string

func NewSessionID() SessionID { return SessionID(uuid.NewString()) }

func (id SessionID) String() string { return string(id) }

func (id SessionID) IsEmpty() bool { return id == "" }
