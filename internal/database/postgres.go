package database

import (
	"fmt"

	"github.com/dodam-health/glucoquest/internal/config"
	"github.com/dodam-health/glucoquest/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Subject struct {
	gorm.Model
	Name      string
	Age       int `gorm:"default:0"`
	Condition string
}

type GlucoseReading struct {
	gorm.Model
	SubjectID uint   `gorm:"index:idx_reading_subject_date"`
	Date      string `gorm:"size:10;index:idx_reading_subject_date"`
	Time      string `gorm:"size:5"`
	Value     float64
}

type FoodLog struct {
	gorm.Model
	SubjectID uint   `gorm:"index:idx_food_subject_date"`
	Date      string `gorm:"size:10;index:idx_food_subject_date"`
	Time      string `gorm:"size:5"`
	Name      string
	MealType  string `gorm:"size:20"`
	Carbs     float64
	Fiber     float64
	Calories  float64
}

type ExerciseLog struct {
	gorm.Model
	SubjectID       uint   `gorm:"index:idx_exercise_subject_date"`
	Date            string `gorm:"size:10;index:idx_exercise_subject_date"`
	Time            string `gorm:"size:5"` // may be empty in source data
	Name            string
	DurationMinutes int
	Intensity       string `gorm:"size:10"`
}

type Quest struct {
	gorm.Model
	SubjectID      uint   `gorm:"index:idx_quest_subject_date"`
	QuestType      string `gorm:"size:10"`
	Title          string
	Content        string
	QuestDate      string `gorm:"size:10;index:idx_quest_subject_date"`
	IsCompleted    bool   `gorm:"default:false"`
	ApprovalStatus string `gorm:"size:20;default:none"`
}

// KnowledgeDocument is one knowledge-base entry with its embedding stored
// as a JSON-encoded float vector. Similarity ranking happens in process.
type KnowledgeDocument struct {
	gorm.Model
	Title     string
	Category  string
	Content   string
	Keywords  string `gorm:"type:text"` // JSON array
	Embedding []byte `gorm:"type:bytea"`
}

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&Subject{},
		&GlucoseReading{},
		&FoodLog{},
		&ExerciseLog{},
		&Quest{},
		&KnowledgeDocument{},
	); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Info("Database connection established and migrations completed")
	return db, nil
}
