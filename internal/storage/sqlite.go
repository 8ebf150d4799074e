package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/spigell/resume-rater/internal/hiring"
)

// SQLiteLog stores evaluation records in the evaluations table of a SQLite database.
type SQLiteLog struct {
	db   *sql.DB
	path string
}

// NewSQLiteLog opens (or creates) the database at dbPath and ensures the
// evaluations table exists.
func NewSQLiteLog(dbPath string) (*SQLiteLog, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, wrap("create evaluation db dir", filepath.Dir(dbPath), err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, wrap("opening sqlite db", dbPath, err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, wrap("pinging sqlite db", dbPath, err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS evaluations (
		seq                  INTEGER PRIMARY KEY AUTOINCREMENT,
		submission_id        TEXT NOT NULL UNIQUE,
		job_id               TEXT NOT NULL,
		job_title            TEXT NOT NULL,
		applicant_name       TEXT NOT NULL,
		total_score          INTEGER NOT NULL,
		scores               TEXT NOT NULL,
		strengths            TEXT NOT NULL,
		weaknesses           TEXT NOT NULL,
		interview_questions  TEXT NOT NULL,
		resume_file_path     TEXT NOT NULL,
		submission_timestamp TEXT NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, wrap("creating evaluations table", dbPath, err)
	}

	return &SQLiteLog{db: db, path: dbPath}, nil
}

func (l *SQLiteLog) Path() string {
	return l.path
}

// Append inserts one record in its own transaction.
func (l *SQLiteLog) Append(record *hiring.EvaluationRecord) error {
	row, err := flatten(record)
	if err != nil {
		return wrap("flatten evaluation", record.SubmissionID, err)
	}

	tx, err := l.db.Begin()
	if err != nil {
		return wrap("begin evaluation insert", l.path, err)
	}
	defer tx.Rollback()

	args := make([]any, len(row))
	for i, v := range row {
		args[i] = v
	}
	// total_score is stored as an integer.
	args[4] = record.TotalScore

	query := fmt.Sprintf("INSERT INTO evaluations (%s) VALUES (?%s)",
		strings.Join(Columns, ", "), strings.Repeat(", ?", len(Columns)-1))
	if _, err := tx.Exec(query, args...); err != nil {
		return wrap("insert evaluation", record.SubmissionID, err)
	}

	return wrap("commit evaluation insert", record.SubmissionID, tx.Commit())
}

func (l *SQLiteLog) List(jobID string) ([]*hiring.EvaluationRecord, error) {
	query := "SELECT " + strings.Join(Columns, ", ") + " FROM evaluations"
	var args []any
	if jobID != "" {
		query += " WHERE job_id = ?"
		args = append(args, jobID)
	}
	query += " ORDER BY seq"

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, wrap("list evaluations", l.path, err)
	}
	defer rows.Close()

	var records []*hiring.EvaluationRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, wrap("scan evaluation", l.path, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list evaluations", l.path, err)
	}
	return records, nil
}

func (l *SQLiteLog) Get(submissionID string) (*hiring.EvaluationRecord, error) {
	row := l.db.QueryRow("SELECT "+strings.Join(Columns, ", ")+" FROM evaluations WHERE submission_id = ?", submissionID)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wrap("get evaluation", submissionID, ErrNotFound)
	}
	if err != nil {
		return nil, wrap("get evaluation", submissionID, err)
	}
	return record, nil
}

func (l *SQLiteLog) Count() (int, error) {
	var count int
	if err := l.db.QueryRow("SELECT COUNT(*) FROM evaluations").Scan(&count); err != nil {
		return 0, wrap("count evaluations", l.path, err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*hiring.EvaluationRecord, error) {
	var total int
	values := make([]string, len(Columns))
	dest := make([]any, len(Columns))
	for i := range values {
		dest[i] = &values[i]
	}
	dest[4] = &total

	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	byName := make(map[string]string, len(Columns))
	for i, name := range Columns {
		byName[name] = values[i]
	}
	byName["total_score"] = fmt.Sprint(total)

	return unflatten(byName)
}
