// Package db implements the relational repository for the job board on
// top of GORM. Postgres backs production; tests run the same repository
// against in-memory SQLite.
package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	e "github.com/openhire/hireboard/internal/board/errors"
	"github.com/openhire/hireboard/internal/board/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db)
}

// New wraps an open GORM handle and runs migrations. Tests use it with a
// SQLite dialector.
func New(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Company{},
		&models.CompanyMember{},
		&models.Job{},
		&models.Subscription{},
		&models.Application{},
		&models.Notification{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Repository{db: db}, nil
}

// Profiles

func (r *Repository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	result := r.db.WithContext(ctx).First(&profile, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

func (r *Repository) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	result := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	result := r.db.WithContext(ctx).First(&profile, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &profile, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	result := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"full_name":  profile.FullName,
			"email":      profile.Email,
			"phone":      profile.Phone,
			"location":   profile.Location,
			"headline":   profile.Headline,
			"avatar_url": profile.AvatarURL,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// Companies

func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	result := r.db.WithContext(ctx).Create(company)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrDuplicateName
		}
		return result.Error
	}
	return nil
}

func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	result := r.db.WithContext(ctx).First(&company, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &company, nil
}

func (r *Repository) UpdateCompany(ctx context.Context, update *models.CompanyUpdate) error {
	result := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("id = ?", update.ID).
		Updates(update)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) CompanyExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("name = ?", name).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

// AddTotalJob shifts the cached job counter by delta, clamped at zero.
// The counter is advisory; the read-modify-write race is accepted.
func (r *Repository) AddTotalJob(ctx context.Context, companyID uuid.UUID, delta int) error {
	company, err := r.GetCompany(ctx, companyID)
	if err != nil {
		return err
	}
	total := company.TotalJob + delta
	if total < 0 {
		total = 0
	}
	return r.db.WithContext(ctx).Model(&models.Company{}).
		Where("id = ?", companyID).
		Update("total_job", total).Error
}

// Members

func (r *Repository) CreateMember(ctx context.Context, member *models.CompanyMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// GetActiveMembership returns the active membership for a profile, or
// ErrNotFound when the profile belongs to no company.
func (r *Repository) GetActiveMembership(ctx context.Context, profileID uuid.UUID) (*models.CompanyMember, error) {
	var member models.CompanyMember
	result := r.db.WithContext(ctx).
		Where("profile_id = ? AND is_active = ?", profileID, true).
		First(&member)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &member, nil
}

// Jobs

func (r *Repository) CreateJob(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repository) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	result := r.db.WithContext(ctx).First(&job, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &job, nil
}

// JobFilter narrows ListJobs. Zero values mean "no constraint".
type JobFilter struct {
	CompanyID uuid.UUID
	Status    models.JobStatus
	Location  string
	JobType   string
	Limit     int
	Offset    int
}

func (r *Repository) ListJobs(ctx context.Context, filter JobFilter) ([]models.Job, error) {
	q := r.db.WithContext(ctx).Model(&models.Job{}).Order("created_at DESC")
	if filter.CompanyID != uuid.Nil {
		q = q.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Location != "" {
		q = q.Where("location = ?", filter.Location)
	}
	if filter.JobType != "" {
		q = q.Where("job_type = ?", filter.JobType)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	var jobs []models.Job
	if err := q.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// UpdateJob applies a full replace of mutable fields, filtered on the
// owning company as well as the job id so a cross-tenant update affects
// zero rows.
func (r *Repository) UpdateJob(ctx context.Context, update *models.JobUpdate) error {
	values := map[string]interface{}{}
	if update.Title != nil {
		values["title"] = *update.Title
	}
	if update.Description != nil {
		values["description"] = *update.Description
	}
	if update.Location != nil {
		values["location"] = *update.Location
	}
	if update.JobType != nil {
		values["job_type"] = *update.JobType
	}
	if update.ExperienceLevel != nil {
		values["experience_level"] = *update.ExperienceLevel
	}
	if update.SalaryMin != nil {
		values["salary_min"] = *update.SalaryMin
	}
	if update.SalaryMax != nil {
		values["salary_max"] = *update.SalaryMax
	}
	if update.SalaryCurrency != nil {
		values["salary_currency"] = *update.SalaryCurrency
	}
	if update.Status != nil {
		values["status"] = *update.Status
	}
	if update.ApplicationDeadline != nil {
		values["application_deadline"] = *update.ApplicationDeadline
	}
	if update.Requirements != nil {
		values["requirements"] = jsonSlice(update.Requirements)
	}
	if update.Benefits != nil {
		values["benefits"] = jsonSlice(update.Benefits)
	}
	if update.Tags != nil {
		values["tags"] = jsonSlice(update.Tags)
	}
	if len(values) == 0 {
		return fmt.Errorf("%w: empty update", e.ErrInvalidInput)
	}

	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("id = ? AND company_id = ?", update.ID, update.CompanyID).
		Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// jsonSlice encodes a string slice the same way the model serializer
// does, so map-based updates stay readable by First/Find.
func jsonSlice(v []string) string {
	data, _ := json.Marshal(v)
	return string(data)
}

func (r *Repository) DeleteJob(ctx context.Context, id, companyID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", id, companyID).
		Delete(&models.Job{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) CountJobs(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Job{}).
		Where("company_id = ?", companyID).
		Count(&count)
	return count, result.Error
}

// Subscriptions

func (r *Repository) CreateSubscription(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// GetActiveSubscription returns the company's latest active subscription
// by end date, or ErrNotFound.
func (r *Repository) GetActiveSubscription(ctx context.Context, companyID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	result := r.db.WithContext(ctx).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Order("end_date DESC").
		First(&sub)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &sub, nil
}

func (r *Repository) IncrementJobPostsUsed(ctx context.Context, subscriptionID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", subscriptionID).
		Update("job_posts_used", gorm.Expr("job_posts_used + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// Applications

func (r *Repository) CreateApplication(ctx context.Context, app *models.Application) error {
	result := r.db.WithContext(ctx).Create(app)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return e.ErrAlreadyApplied
		}
		return result.Error
	}
	return nil
}

func (r *Repository) GetApplication(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	result := r.db.WithContext(ctx).First(&app, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &app, nil
}

func (r *Repository) HasApplied(ctx context.Context, jobID, seekerID uuid.UUID) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("job_id = ? AND job_seeker_id = ?", jobID, seekerID).
		Limit(1).
		Count(&count)
	return count > 0, result.Error
}

func (r *Repository) ListApplicationsByJob(ctx context.Context, jobID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	result := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("applied_at DESC").
		Find(&apps)
	return apps, result.Error
}

func (r *Repository) ListApplicationsBySeeker(ctx context.Context, seekerID uuid.UUID) ([]models.Application, error) {
	var apps []models.Application
	result := r.db.WithContext(ctx).
		Where("job_seeker_id = ?", seekerID).
		Order("applied_at DESC").
		Find(&apps)
	return apps, result.Error
}

func (r *Repository) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status models.ApplicationStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

func (r *Repository) CountApplicationsByStatus(ctx context.Context, companyID uuid.UUID, status models.ApplicationStatus) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Joins("JOIN jobs ON jobs.id = applications.job_id").
		Where("jobs.company_id = ? AND applications.status = ?", companyID, status).
		Count(&count)
	return count, result.Error
}

// Notifications

func (r *Repository) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *Repository) ListNotifications(ctx context.Context, companyID uuid.UUID) ([]models.Notification, error) {
	var notifications []models.Notification
	result := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&notifications)
	return notifications, result.Error
}

// MarkNotificationRead is idempotent: marking an already-read row again
// still reports success.
func (r *Repository) MarkNotificationRead(ctx context.Context, companyID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish "no such row" from "already read".
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Notification{}).
			Where("id = ? AND company_id = ?", id, companyID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return e.ErrNotFound
		}
	}
	return nil
}

func (r *Repository) MarkAllNotificationsRead(ctx context.Context, companyID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("company_id = ? AND is_read = ?", companyID, false).
		Update("is_read", true).Error
}

func (r *Repository) CountUnreadNotifications(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("company_id = ? AND is_read = ?", companyID, false).
		Count(&count)
	return count, result.Error
}

func (r *Repository) WithTransaction(ctx context.Context, fn func(repo *Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Exec(ctx context.Context, query string, params ...interface{}) error {
	result := r.db.WithContext(ctx).Exec(query, params...)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

func (r *Repository) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
