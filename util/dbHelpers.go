package util

import (
	"fmt"
)

func ddlStrings() []string {
	sqlStrings := []string{}
	sqlStrings = append(sqlStrings,
		`CREATE TABLE IF NOT EXISTS users (
    id SERIAL PRIMARY KEY,
    name VARCHAR(128) NOT NULL,
    email VARCHAR(128) UNIQUE NOT NULL,
    password VARCHAR(512),
    role VARCHAR(50) NOT NULL CHECK(role='admin' or role='user' or role='owner') DEFAULT 'user',
    subscription_tier VARCHAR(20) NOT NULL CHECK (subscription_tier IN ('basic', 'standard', 'premium')) DEFAULT 'basic',
    daily_quota_used INT NOT NULL DEFAULT 0,
    last_quota_reset TIMESTAMP,
    password_changed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    deleted BOOLEAN DEFAULT false,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		`CREATE TABLE IF NOT EXISTS exams (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(255) NOT NULL,
    subject VARCHAR(255),
    created_by_id INT NOT NULL,
    status VARCHAR(20) NOT NULL CHECK (status IN ('active', 'completed', 'archived')) DEFAULT 'active',
    total_questions INT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (created_by_id) REFERENCES users(id) ON DELETE CASCADE
)`,
		`CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    exam_id UUID NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
    question TEXT NOT NULL,
    options JSONB NOT NULL DEFAULT '[]',
    correct_option_id TEXT NOT NULL,
    explanation TEXT
)`,
		`CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    exam_id TEXT NOT NULL,
    user_id INT REFERENCES users(id) ON DELETE SET NULL,
    answers JSONB NOT NULL DEFAULT '{}',
    status VARCHAR(20) NOT NULL CHECK (status IN ('in_progress', 'completed')) DEFAULT 'completed',
    started_at BIGINT,
    completed_at BIGINT,
    duration_seconds INT,
    total_questions INT NOT NULL DEFAULT 0,
    synced_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		`CREATE TABLE IF NOT EXISTS question_data_versions (
    id TEXT PRIMARY KEY,
    version BIGINT NOT NULL,
    payload JSONB NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		`CREATE TABLE IF NOT EXISTS user_stats (
    user_id INT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    current_streak INT NOT NULL DEFAULT 0,
    longest_streak INT NOT NULL DEFAULT 0,
    last_practice_date DATE,
    total_questions_answered INT NOT NULL DEFAULT 0,
    total_correct_answers INT NOT NULL DEFAULT 0,
    accuracy INT NOT NULL DEFAULT 0,
    achievements JSONB NOT NULL DEFAULT '[]',
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
		`CREATE TABLE IF NOT EXISTS downloads (
    user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    exam_id UUID NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
    downloaded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, exam_id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_user_completed ON attempts (user_id, status, completed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_exams_created_by_status ON exams (created_by_id, status)`)
	return sqlStrings
}

func CreateTableIfNotExists() error {
	sqlStrings := ddlStrings()
	for i, sql := range sqlStrings {
		_, err := DB.Exec(sql)
		if err != nil {
			return fmt.Errorf("error creating table %d: %w", i, err)
		}
	}
	return nil
}

func dropTables() []string {
	return []string{
		"DROP TABLE IF EXISTS downloads",
		"DROP TABLE IF EXISTS user_stats",
		"DROP TABLE IF EXISTS question_data_versions",
		"DROP TABLE IF EXISTS attempts",
		"DROP TABLE IF EXISTS questions",
		"DROP TABLE IF EXISTS exams",
		"DROP TABLE IF EXISTS users",
	}
}
