package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/go-ldapgate/ldapgate/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(driver, dsn string) (*Store, error) {
	dialector, err := GetDialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	// TranslateError maps driver-specific duplicate key errors onto
	// gorm.ErrDuplicatedKey, which FindOrCreateAccount relies on.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// Auto migrate
	if err := db.AutoMigrate(
		&models.Account{},
		&models.AuditLog{},
	); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// GetAccountByID fetches an account by its primary key.
func (s *Store) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByExternalID fetches an account by its stable external
// identifier.
func (s *Store) GetAccountByExternalID(
	ctx context.Context,
	externalID string,
) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindOrCreateAccount returns the account keyed by externalID, creating it
// when absent. The returned bool reports whether a new account was created.
//
// Two requests may race on the first login of the same user. The unique
// index on external_id decides the winner; the loser re-fetches the row
// the winner inserted and proceeds as "already existed".
func (s *Store) FindOrCreateAccount(
	ctx context.Context,
	externalID, username, profile string,
) (*models.Account, bool, error) {
	db := s.db.WithContext(ctx)

	var account models.Account
	err := db.First(&account, "external_id = ?", externalID).Error
	if err == nil {
		return &account, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to query account: %w", err)
	}

	account = models.Account{
		ID:         uuid.New().String(),
		ExternalID: externalID,
		Username:   username,
		Profile:    profile,
	}

	err = db.Create(&account).Error
	if err == nil {
		return &account, true, nil
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race against a concurrent first-login. The winner's
		// row must exist now.
		var existing models.Account
		if fetchErr := db.First(&existing, "external_id = ?", externalID).Error; fetchErr != nil {
			return nil, false, fmt.Errorf("failed to re-fetch account after create race: %w", fetchErr)
		}
		return &existing, false, nil
	}

	return nil, false, fmt.Errorf("failed to create account: %w", err)
}

// UpdateAccount persists changed account fields.
func (s *Store) UpdateAccount(ctx context.Context, account *models.Account) error {
	return s.db.WithContext(ctx).Save(account).Error
}

// CountAccounts returns the total number of local accounts.
func (s *Store) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Account{}).Count(&count).Error
	return count, err
}

// CreateAuditLog writes a single audit log entry.
func (s *Store) CreateAuditLog(entry *models.AuditLog) error {
	return s.db.Create(entry).Error
}

// CreateAuditLogBatch writes audit log entries in one insert.
func (s *Store) CreateAuditLogBatch(entries []*models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.Create(&entries).Error
}

// GetAuditLogsPaginated retrieves audit logs with pagination and filtering,
// newest first.
func (s *Store) GetAuditLogsPaginated(
	params PaginationParams,
	filters AuditLogFilters,
) ([]models.AuditLog, PaginationResult, error) {
	// Session makes the filtered query reusable for both Count and Find.
	query := s.applyAuditFilters(s.db.Model(&models.AuditLog{}), filters).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, PaginationResult{}, err
	}

	pagination := CalculatePagination(total, params.Page, params.PageSize)

	var logs []models.AuditLog
	err := query.
		Order("event_time DESC").
		Offset((pagination.CurrentPage - 1) * pagination.PageSize).
		Limit(pagination.PageSize).
		Find(&logs).Error
	if err != nil {
		return nil, PaginationResult{}, err
	}

	return logs, pagination, nil
}

// DeleteOldAuditLogs removes audit logs older than the cutoff time and
// returns how many rows were deleted.
func (s *Store) DeleteOldAuditLogs(cutoff time.Time) (int64, error) {
	result := s.db.Where("event_time < ?", cutoff).Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

// GetAuditLogStats returns aggregate statistics over a time window.
func (s *Store) GetAuditLogStats(startTime, endTime time.Time) (AuditLogStats, error) {
	stats := AuditLogStats{
		EventsByType:     make(map[models.EventType]int64),
		EventsBySeverity: make(map[models.EventSeverity]int64),
	}

	base := s.db.Model(&models.AuditLog{}).
		Where("event_time >= ? AND event_time <= ?", startTime, endTime)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalEvents).Error; err != nil {
		return stats, err
	}

	type typeCount struct {
		EventType models.EventType
		Count     int64
	}
	var byType []typeCount
	if err := base.Session(&gorm.Session{}).
		Select("event_type, count(*) as count").
		Group("event_type").
		Scan(&byType).Error; err != nil {
		return stats, err
	}
	for _, tc := range byType {
		stats.EventsByType[tc.EventType] = tc.Count
	}

	type severityCount struct {
		Severity models.EventSeverity
		Count    int64
	}
	var bySeverity []severityCount
	if err := base.Session(&gorm.Session{}).
		Select("severity, count(*) as count").
		Group("severity").
		Scan(&bySeverity).Error; err != nil {
		return stats, err
	}
	for _, sc := range bySeverity {
		stats.EventsBySeverity[sc.Severity] = sc.Count
	}

	if err := base.Session(&gorm.Session{}).
		Where("success = ?", true).
		Count(&stats.SuccessCount).Error; err != nil {
		return stats, err
	}
	stats.FailureCount = stats.TotalEvents - stats.SuccessCount

	return stats, nil
}

// applyAuditFilters translates filters into query conditions.
func (s *Store) applyAuditFilters(query *gorm.DB, filters AuditLogFilters) *gorm.DB {
	if filters.EventType != "" {
		query = query.Where("event_type = ?", filters.EventType)
	}
	if filters.ActorAccountID != "" {
		query = query.Where("actor_account_id = ?", filters.ActorAccountID)
	}
	if filters.ResourceType != "" {
		query = query.Where("resource_type = ?", filters.ResourceType)
	}
	if filters.ResourceID != "" {
		query = query.Where("resource_id = ?", filters.ResourceID)
	}
	if filters.Severity != "" {
		query = query.Where("severity = ?", filters.Severity)
	}
	if filters.Success != nil {
		query = query.Where("success = ?", *filters.Success)
	}
	if !filters.StartTime.IsZero() {
		query = query.Where("event_time >= ?", filters.StartTime)
	}
	if !filters.EndTime.IsZero() {
		query = query.Where("event_time <= ?", filters.EndTime)
	}
	if filters.ActorIP != "" {
		query = query.Where("actor_ip = ?", filters.ActorIP)
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where(
			"action LIKE ? OR resource_name LIKE ? OR actor_username LIKE ?",
			pattern, pattern, pattern,
		)
	}
	return query
}

// Health verifies database connectivity.
func (s *Store) Health() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// DB exposes the underlying gorm handle for tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}
