package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dodam-health/glucoquest/internal/database"
	"github.com/dodam-health/glucoquest/internal/domain"
	apperrors "github.com/dodam-health/glucoquest/internal/errors"
	"gorm.io/gorm"
)

// Store is the gorm-backed implementation of domain.DataStore.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Readings(ctx context.Context, subjectID uint, date string) ([]domain.GlucoseReading, error) {
	return s.ReadingsBetween(ctx, subjectID, date, date)
}

func (s *Store) ReadingsBetween(ctx context.Context, subjectID uint, from, to string) ([]domain.GlucoseReading, error) {
	var rows []database.GlucoseReading
	if err := s.db.WithContext(ctx).
		Where("subject_id = ? AND date >= ? AND date <= ?", subjectID, from, to).
		Order("date ASC, time ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get glucose readings: %w", err)
	}
	readings := make([]domain.GlucoseReading, 0, len(rows))
	for _, r := range rows {
		readings = append(readings, domain.GlucoseReading{
			ID: r.ID, SubjectID: r.SubjectID, Date: r.Date, Time: r.Time, Value: r.Value,
		})
	}
	return readings, nil
}

func (s *Store) AllReadingsBetween(ctx context.Context, from, to string) ([]domain.GlucoseReading, error) {
	var rows []database.GlucoseReading
	if err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("subject_id ASC, date ASC, time ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get glucose readings: %w", err)
	}
	readings := make([]domain.GlucoseReading, 0, len(rows))
	for _, r := range rows {
		readings = append(readings, domain.GlucoseReading{
			ID: r.ID, SubjectID: r.SubjectID, Date: r.Date, Time: r.Time, Value: r.Value,
		})
	}
	return readings, nil
}

func (s *Store) FoodEvents(ctx context.Context, subjectID uint, date string) ([]domain.FoodEvent, error) {
	var rows []database.FoodLog
	if err := s.db.WithContext(ctx).
		Where("subject_id = ? AND date = ?", subjectID, date).
		Order("time ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get food logs: %w", err)
	}
	events := make([]domain.FoodEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, domain.FoodEvent{
			ID:        r.ID,
			SubjectID: r.SubjectID,
			Date:      r.Date,
			Time:      r.Time,
			Name:      r.Name,
			MealType:  domain.MealType(r.MealType),
			Carbs:     r.Carbs,
			Fiber:     r.Fiber,
			Calories:  r.Calories,
		})
	}
	return events, nil
}

func (s *Store) ExerciseEvents(ctx context.Context, subjectID uint, date string) ([]domain.ExerciseEvent, error) {
	var rows []database.ExerciseLog
	if err := s.db.WithContext(ctx).
		Where("subject_id = ? AND date = ?", subjectID, date).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get exercise logs: %w", err)
	}
	events := make([]domain.ExerciseEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, domain.ExerciseEvent{
			ID:              r.ID,
			SubjectID:       r.SubjectID,
			Date:            r.Date,
			Time:            r.Time,
			Name:            r.Name,
			DurationMinutes: r.DurationMinutes,
			Intensity:       domain.Intensity(r.Intensity),
		})
	}
	return events, nil
}

func (s *Store) QuestsByDate(ctx context.Context, subjectID uint, date string) ([]domain.Quest, error) {
	var rows []database.Quest
	if err := s.db.WithContext(ctx).
		Where("subject_id = ? AND quest_date = ?", subjectID, date).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get quests: %w", err)
	}
	quests := make([]domain.Quest, 0, len(rows))
	for _, r := range rows {
		quests = append(quests, questToDomain(r))
	}
	return quests, nil
}

// ReplaceQuests persists a day's quest set inside one transaction. If a
// concurrent request already inserted quests for the same (subject, date)
// the transaction becomes a no-op, preserving the generate-once-per-day
// invariant.
func (s *Store) ReplaceQuests(ctx context.Context, subjectID uint, date string, quests []domain.Quest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&database.Quest{}).
			Where("subject_id = ? AND quest_date = ?", subjectID, date).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check existing quests: %w", err)
		}
		if existing > 0 {
			return nil
		}
		for _, q := range quests {
			row := database.Quest{
				SubjectID:      subjectID,
				QuestType:      string(q.Type),
				Title:          q.Title,
				Content:        q.Content,
				QuestDate:      date,
				IsCompleted:    false,
				ApprovalStatus: string(domain.ApprovalNone),
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("failed to save quest: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) CompleteQuest(ctx context.Context, subjectID, questID uint) (*domain.Quest, error) {
	var row database.Quest
	err := s.db.WithContext(ctx).
		Where("id = ? AND subject_id = ?", questID, subjectID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrQuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quest: %w", err)
	}

	row.IsCompleted = true
	row.ApprovalStatus = string(domain.ApprovalPending)
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to complete quest: %w", err)
	}
	q := questToDomain(row)
	return &q, nil
}

func (s *Store) SetApproval(ctx context.Context, questID uint, status domain.ApprovalStatus) (*domain.Quest, error) {
	var row database.Quest
	err := s.db.WithContext(ctx).First(&row, questID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrQuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quest: %w", err)
	}

	row.ApprovalStatus = string(status)
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to update approval: %w", err)
	}
	q := questToDomain(row)
	return &q, nil
}

func questToDomain(r database.Quest) domain.Quest {
	return domain.Quest{
		ID:             r.ID,
		SubjectID:      r.SubjectID,
		Type:           domain.QuestType(r.QuestType),
		Title:          r.Title,
		Content:        r.Content,
		QuestDate:      r.QuestDate,
		IsCompleted:    r.IsCompleted,
		ApprovalStatus: domain.ApprovalStatus(r.ApprovalStatus),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
