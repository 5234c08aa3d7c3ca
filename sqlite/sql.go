package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// BestScoreKey 最高分在 Scores 表中的固定键
const BestScoreKey = "best_score"

// Value 用 TEXT 存储，读取时解析失败按 0 处理
const createScoresTableSQL = `
CREATE TABLE IF NOT EXISTS Scores (
    Name TEXT PRIMARY KEY,
    Value TEXT
);
`

// Store persists the best score.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// ":memory:" 每个连接都是独立的库，只保留一个连接
	db.SetMaxOpenConns(1)

	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func executeSQL(db *sql.DB, sqlStatement string) error {
	if _, err := db.Exec(sqlStatement); err != nil {
		return fmt.Errorf("executing SQL statement %q: %w", strings.TrimSpace(sqlStatement), err)
	}
	return nil
}

func InitializeDatabase(db *sql.DB) error {
	return executeSQL(db, createScoresTableSQL)
}

// BestScore reads the persisted best score. A missing or malformed value
// reads as zero.
func (s *Store) BestScore() (int, error) {
	var raw string
	err := s.db.QueryRow("SELECT Value FROM Scores WHERE Name = ?", BestScoreKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	best, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || best < 0 {
		log.Printf("malformed best score %q, treating as 0", raw)
		return 0, nil
	}
	return best, nil
}

// SaveBestScore overwrites the persisted best score.
func (s *Store) SaveBestScore(score int) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO Scores (Name, Value) VALUES (?, ?)", BestScoreKey, strconv.Itoa(score))
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
