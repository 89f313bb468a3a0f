// Package store provides the SQLite archive for conversation turns and
// skill execution records.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Store struct {
	db *gorm.DB
}

// New opens the archive database at path (":memory:" for tests).
func New(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	sqliteDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&Turn{}, &SkillRun{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveTurn archives a conversation turn.
func (s *Store) SaveTurn(turn *Turn) error {
	return s.db.Create(turn).Error
}

// RecentTurns returns up to limit turns, newest first.
func (s *Store) RecentTurns(limit int) ([]Turn, error) {
	var turns []Turn
	err := s.db.Order("created_at DESC, id DESC").Limit(limit).Find(&turns).Error
	return turns, err
}

// CountTurns returns the number of archived turns.
func (s *Store) CountTurns() (int64, error) {
	var count int64
	err := s.db.Model(&Turn{}).Count(&count).Error
	return count, err
}

// RecordRun archives a skill execution record.
func (s *Store) RecordRun(run *SkillRun) error {
	return s.db.Create(run).Error
}

// RunsForSkill returns up to limit runs for a skill, newest first.
func (s *Store) RunsForSkill(skill string, limit int) ([]SkillRun, error) {
	var runs []SkillRun
	err := s.db.Where("skill = ?", skill).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// SuccessCount returns the number of successful runs for a skill.
func (s *Store) SuccessCount(skill string) (int64, error) {
	var count int64
	err := s.db.Model(&SkillRun{}).
		Where("skill = ? AND success = ?", skill, true).
		Count(&count).Error
	return count, err
}
