// Package models defines the domain entities of the job board,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role is the role a profile holds inside a company.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
)

// JobStatus represents the lifecycle state of a job posting.
type JobStatus string

const (
	JobActive  JobStatus = "active"
	JobDraft   JobStatus = "draft"
	JobExpired JobStatus = "expired"
	JobClosed  JobStatus = "closed"
)

// ApplicationStatus represents the review state of an application.
type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
)

// ValidApplicationStatus reports whether s is one of the known review states.
func ValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case ApplicationPending, ApplicationReviewing, ApplicationAccepted, ApplicationRejected:
		return true
	}
	return false
}

// Profile is the job-board identity of an authenticated principal.
// UserID references the external identity provider; the board never
// stores credentials.
type Profile struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"size:64;uniqueIndex"`
	FullName  string    `gorm:"size:120"`
	Email     string    `gorm:"size:255;index"`
	Phone     string    `gorm:"size:40"`
	Location  string    `gorm:"size:120"`
	Headline  string    `gorm:"size:255"`
	AvatarURL string    `gorm:"size:512"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Company is a tenant on the board. TotalJob is a cached counter kept
// up to date asynchronously from job events; the subscription counters
// are the transactional source of truth for quota.
type Company struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:150;uniqueIndex"`
	Description string    `gorm:"size:3000"`
	Website     string    `gorm:"size:255"`
	Industry    string    `gorm:"size:120"`
	LogoURL     string    `gorm:"size:512"`
	TotalJob    int       `gorm:"check:total_job >= 0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// CompanyUpdate represents the fields that can be updated for a Company.
// Pointer types are used to allow partial updates.
type CompanyUpdate struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Website     *string
	Industry    *string
	LogoURL     *string
}

// CompanyMember links a profile to a company with a role. A profile is
// expected to hold at most one active membership at a time.
type CompanyMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_company_profile"`
	ProfileID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_company_profile;index"`
	Role      Role      `gorm:"size:20"`
	IsActive  bool      `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Job is a posting owned by a company.
type Job struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID           uuid.UUID `gorm:"type:uuid;index"`
	Title               string    `gorm:"size:200"`
	Description         string    `gorm:"type:text"`
	Location            string    `gorm:"size:120"`
	JobType             string    `gorm:"size:40"`
	ExperienceLevel     string    `gorm:"size:40"`
	SalaryMin           int
	SalaryMax           int
	SalaryCurrency      string    `gorm:"size:8"`
	Requirements        []string  `gorm:"serializer:json"`
	Benefits            []string  `gorm:"serializer:json"`
	Tags                []string  `gorm:"serializer:json"`
	Status              JobStatus `gorm:"size:20;index"`
	ApplicationDeadline *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

// JobUpdate represents the mutable fields of a Job. The CompanyID is the
// tenant performing the update, never a field being written.
type JobUpdate struct {
	ID                  uuid.UUID
	CompanyID           uuid.UUID
	Title               *string
	Description         *string
	Location            *string
	JobType             *string
	ExperienceLevel     *string
	SalaryMin           *int
	SalaryMax           *int
	SalaryCurrency      *string
	Requirements        []string
	Benefits            []string
	Tags                []string
	Status              *JobStatus
	ApplicationDeadline *time.Time
}

// Subscription gates job posting for a company.
type Subscription struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID     uuid.UUID `gorm:"type:uuid;index"`
	PlanType      string    `gorm:"size:40"`
	JobPostsLimit int
	JobPostsUsed  int
	StartDate     time.Time
	EndDate       time.Time
	IsActive      bool `gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Application is a job seeker's submission for a job. The unique index
// over (job_id, job_seeker_id) is the authoritative duplicate guard.
type Application struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey"`
	JobID       uuid.UUID         `gorm:"type:uuid;uniqueIndex:idx_job_seeker"`
	JobSeekerID uuid.UUID         `gorm:"type:uuid;uniqueIndex:idx_job_seeker;index"`
	CoverLetter string            `gorm:"type:text"`
	ResumeURL   string            `gorm:"size:512"`
	Status      ApplicationStatus `gorm:"size:20;index"`
	AppliedAt   time.Time
	UpdatedAt   time.Time
}

// Notification is addressed to a company's viewers.
type Notification struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID            uuid.UUID `gorm:"type:uuid;index"`
	Type                 string    `gorm:"size:40"`
	Title                string    `gorm:"size:200"`
	Message              string    `gorm:"size:1000"`
	IsRead               bool      `gorm:"default:false"`
	Data                 datatypes.JSON
	RelatedJobID         *uuid.UUID `gorm:"type:uuid"`
	RelatedApplicationID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt            time.Time
}
