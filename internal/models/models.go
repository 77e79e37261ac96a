package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of account roles. The "ROLE_" authority prefix used by
// external authorization layers is produced only by Authority.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleUser           Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleProjectManager, RoleUser:
		return true
	}
	return false
}

func (r Role) Authority() string { return "ROLE_" + string(r) }

type AttemptStatus string

const (
	AttemptSuccess            AttemptStatus = "SUCCESS"
	AttemptFailed             AttemptStatus = "FAILED"
	AttemptLocked             AttemptStatus = "LOCKED"
	AttemptInvalidCredentials AttemptStatus = "INVALID_CREDENTIALS"
)

type AlertType string

const (
	AlertMultipleFailedLogins AlertType = "MULTIPLE_FAILED_LOGINS"
	AlertUnauthorizedAccess   AlertType = "UNAUTHORIZED_ACCESS"
	AlertSuspiciousActivity   AlertType = "SUSPICIOUS_ACTIVITY"
)

type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "LOW"
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityCritical AlertSeverity = "CRITICAL"
)

type ComplianceStatus string

const (
	NonCompliant ComplianceStatus = "NON_COMPLIANT"
	Compliant    ComplianceStatus = "COMPLIANT"
)

type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

func (d DayOfWeek) Valid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	}
	return false
}

type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"size:32;not null;default:USER" json:"role"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate assigns the id application-side so identity generation does
// not depend on a store-specific uuid function.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// LoginAttempt is the append-only audit record of one authentication try.
// UserID stays nil when the submitted identifier did not resolve to an account.
type LoginAttempt struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      *string       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Username    string        `json:"username"`
	Email       string        `gorm:"index;not null" json:"email"`
	Status      AttemptStatus `gorm:"size:32;not null" json:"status"`
	IPAddress   string        `json:"ip_address"`
	UserAgent   string        `json:"user_agent"`
	Reason      *string       `json:"reason,omitempty"`
	AttemptedAt time.Time     `gorm:"index;not null" json:"attempted_at"`
}

type UserSession struct {
	Token        string     `gorm:"primaryKey;size:64" json:"token"`
	UserID       string     `gorm:"type:uuid;index;not null" json:"user_id"`
	IPAddress    string     `json:"ip_address"`
	UserAgent    string     `json:"user_agent"`
	DeviceType   string     `gorm:"size:16" json:"device_type"`
	LoginTime    time.Time  `gorm:"not null" json:"login_time"`
	LastActivity time.Time  `gorm:"not null" json:"last_activity"`
	LogoutTime   *time.Time `json:"logout_time,omitempty"`
	IsActive     bool       `gorm:"index;not null;default:true" json:"is_active"`
}

// SecurityAlert is raised by the alert engine and resolved manually by an admin.
// Identifier is the login email the alert keys on; unresolved alerts are
// deduplicated per (type, identifier).
type SecurityAlert struct {
	ID          int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Type        AlertType     `gorm:"size:40;index;not null" json:"type"`
	Severity    AlertSeverity `gorm:"size:16;not null" json:"severity"`
	Description string        `gorm:"not null" json:"description"`
	Identifier  string        `gorm:"index;not null" json:"identifier"`
	IPAddress   string        `json:"ip_address"`
	UserID      *string       `gorm:"type:uuid" json:"user_id,omitempty"`
	IsResolved  bool          `gorm:"index;not null;default:false" json:"is_resolved"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// WeeklyPlanning holds a user's declared task load for one ISO week. The composite
// unique index closes the read-then-insert race on (user, week, year) at the store.
type WeeklyPlanning struct {
	ID                int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID            string           `gorm:"type:uuid;not null;uniqueIndex:idx_user_week,priority:1" json:"user_id"`
	WeekNumber        int              `gorm:"not null;uniqueIndex:idx_user_week,priority:2" json:"week_number"`
	Year              int              `gorm:"not null;uniqueIndex:idx_user_week,priority:3" json:"year"`
	WeekStartDate     time.Time        `gorm:"not null" json:"week_start_date"`
	WeekEndDate       time.Time        `gorm:"not null" json:"week_end_date"`
	TotalTasksPlanned int              `gorm:"not null;default:0" json:"total_tasks_planned"`
	ComplianceStatus  ComplianceStatus `gorm:"size:16;index;not null;default:NON_COMPLIANT" json:"compliance_status"`
	IsApproved        bool             `gorm:"not null;default:false" json:"is_approved"`
	SubmittedAt       *time.Time       `json:"submitted_at,omitempty"`
	ApprovedAt        *time.Time       `json:"approved_at,omitempty"`
	RejectedAt        *time.Time       `json:"rejected_at,omitempty"`
	ApproverID        *string          `gorm:"type:uuid" json:"approver_id,omitempty"`
	RejectionReason   *string          `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// DailyTaskSchedule is one day's entry under a weekly planning. No back-pointer is
// kept; user/date lookups join through weekly_plannings.
type DailyTaskSchedule struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanningID  int64     `gorm:"index;not null" json:"planning_id"`
	DayOfWeek   DayOfWeek `gorm:"size:16;not null" json:"day_of_week"`
	TaskID      *int64    `json:"task_id,omitempty"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Task struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	Title     string    `gorm:"not null" json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
