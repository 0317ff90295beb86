// Package repository defines the submission store interface and errors.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mvidal/destino/internal/domain/model"
	"github.com/mvidal/destino/pkg/metrics"
)

// submissionRow is the persisted shape of a submission. RankedItems is
// stored as a JSON array so the row stays flat.
type submissionRow struct {
	Season      string `gorm:"primaryKey;size:64"`
	UserID      string `gorm:"primaryKey;size:128"`
	Name        string
	OrderNum    int    `gorm:"column:order_num;index:idx_season_order,priority:2"`
	RankedItems string `gorm:"type:jsonb"`
	SubmittedAt int64
	IsSynthetic bool
}

func (submissionRow) TableName() string { return "submissions" }

func toRow(season string, sub model.Submission) (submissionRow, error) {
	ranked, err := json.Marshal(sub.RankedItems)
	if err != nil {
		return submissionRow{}, fmt.Errorf("encode ranked items: %w", err)
	}
	return submissionRow{
		Season:      season,
		UserID:      sub.ID,
		Name:        sub.Name,
		OrderNum:    sub.Order,
		RankedItems: string(ranked),
		SubmittedAt: sub.SubmittedAt,
		IsSynthetic: sub.IsSynthetic,
	}, nil
}

func fromRow(row submissionRow) (model.Submission, error) {
	var ranked []string
	if row.RankedItems != "" {
		if err := json.Unmarshal([]byte(row.RankedItems), &ranked); err != nil {
			return model.Submission{}, fmt.Errorf("decode ranked items: %w", err)
		}
	}
	return model.Submission{
		ID:          row.UserID,
		Season:      row.Season,
		Name:        row.Name,
		Order:       row.OrderNum,
		RankedItems: ranked,
		SubmittedAt: row.SubmittedAt,
		IsSynthetic: row.IsSynthetic,
	}, nil
}

// GormStore is a postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the postgres connection and migrates the schema.
func NewGormStore(ctx context.Context, dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&submissionRow{}); err != nil {
		return nil, fmt.Errorf("migrate submissions: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Upsert inserts or replaces the submission, keeping the first SubmittedAt.
func (s *GormStore) Upsert(ctx context.Context, season string, sub model.Submission) (model.Submission, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	if season == "" {
		return model.Submission{}, ErrEmptySeason
	}
	if sub.ID == "" {
		return model.Submission{}, ErrEmptyUserID
	}

	row, err := toRow(season, sub)
	if err != nil {
		return model.Submission{}, err
	}

	// submitted_at is deliberately left out of the update set so a
	// re-submission keeps the original timestamp.
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "season"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "order_num", "ranked_items", "is_synthetic",
		}),
	}).Create(&row).Error
	if err != nil {
		metrics.RecordErrorByComponent("repository", "upsert")
		return model.Submission{}, fmt.Errorf("upsert submission: %w", err)
	}

	return s.Submission(ctx, season, sub.ID)
}

// Submission returns a single user's submission for a season.
func (s *GormStore) Submission(ctx context.Context, season, userID string) (model.Submission, error) {
	var row submissionRow
	err := s.db.WithContext(ctx).
		Where("season = ? AND user_id = ?", season, userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Submission{}, ErrNotFound
	}
	if err != nil {
		return model.Submission{}, fmt.Errorf("fetch submission: %w", err)
	}
	return fromRow(row)
}

// SeasonSubmissions returns the season's submissions in processing order.
func (s *GormStore) SeasonSubmissions(ctx context.Context, season string) ([]model.Submission, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var rows []submissionRow
	err := s.db.WithContext(ctx).
		Where("season = ?", season).
		Order("order_num ASC, submitted_at ASC, user_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch season submissions: %w", err)
	}
	return fromRows(rows)
}

// SubmissionsAbove returns submissions with a strictly lower order value.
func (s *GormStore) SubmissionsAbove(ctx context.Context, season string, order int) ([]model.Submission, error) {
	var rows []submissionRow
	err := s.db.WithContext(ctx).
		Where("season = ? AND order_num < ?", season, order).
		Order("order_num ASC, submitted_at ASC, user_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch submissions above: %w", err)
	}
	return fromRows(rows)
}

// Orders returns the claimed order numbers for a season, ascending.
func (s *GormStore) Orders(ctx context.Context, season string) ([]model.OrderEntry, error) {
	var rows []submissionRow
	err := s.db.WithContext(ctx).
		Select("user_id", "order_num", "name").
		Where("season = ?", season).
		Order("order_num ASC, user_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	out := make([]model.OrderEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.OrderEntry{ID: row.UserID, Order: row.OrderNum, Name: row.Name})
	}
	return out, nil
}

// Delete removes a user's submission from a season.
func (s *GormStore) Delete(ctx context.Context, season, userID string) error {
	res := s.db.WithContext(ctx).
		Where("season = ? AND user_id = ?", season, userID).
		Delete(&submissionRow{})
	if res.Error != nil {
		return fmt.Errorf("delete submission: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllForUser removes a user's submissions from every season.
func (s *GormStore) DeleteAllForUser(ctx context.Context, userID string) ([]string, error) {
	var seasons []string
	err := s.db.WithContext(ctx).
		Model(&submissionRow{}).
		Where("user_id = ?", userID).
		Order("season ASC").
		Pluck("season", &seasons).Error
	if err != nil {
		return nil, fmt.Errorf("list user seasons: %w", err)
	}
	if len(seasons) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&submissionRow{}).Error; err != nil {
		return nil, fmt.Errorf("delete user submissions: %w", err)
	}
	return seasons, nil
}

// Count returns the number of submissions tracked for a season.
func (s *GormStore) Count(ctx context.Context, season string) int {
	var n int64
	if err := s.db.WithContext(ctx).
		Model(&submissionRow{}).
		Where("season = ?", season).
		Count(&n).Error; err != nil {
		return 0
	}
	return int(n)
}

// Seasons returns the seasons that currently hold submissions.
func (s *GormStore) Seasons(ctx context.Context) []string {
	var seasons []string
	if err := s.db.WithContext(ctx).
		Model(&submissionRow{}).
		Distinct("season").
		Order("season ASC").
		Pluck("season", &seasons).Error; err != nil {
		return nil
	}
	return seasons
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func fromRows(rows []submissionRow) ([]model.Submission, error) {
	out := make([]model.Submission, 0, len(rows))
	for _, row := range rows {
		sub, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, nil
}
