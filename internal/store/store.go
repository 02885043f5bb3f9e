// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists patient records and the example-report corpus in a
// local SQLite database, and implements the engine's repository interfaces.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/clinscribe/report-engine/internal/engine"
	"github.com/clinscribe/report-engine/pkg/types"
)

const dbFile = "report-engine.db"

// timeLayout is the text form dates are stored in.
const timeLayout = time.RFC3339

// Store owns the SQLite database. Patients() and Corpus() expose the
// repository views the engine consumes.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at dataDir/report-engine.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Patients returns the patient repository view.
func (s *Store) Patients() *PatientStore {
	return &PatientStore{db: s.db}
}

// Corpus returns the example-report repository view.
func (s *Store) Corpus() *CorpusStore {
	return &CorpusStore{db: s.db}
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS patients (
			id TEXT PRIMARY KEY,
			name TEXT,
			age INTEGER,
			gender TEXT,
			assessment_date TEXT,
			clinical_notes TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS test_results (
			patient_id TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			name TEXT NOT NULL,
			code TEXT,
			score REAL,
			has_score INTEGER NOT NULL DEFAULT 0,
			ref_mean REAL,
			ref_sd REAL,
			has_ref INTEGER NOT NULL DEFAULT 0,
			interpretation TEXT,
			PRIMARY KEY (patient_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS attachments (
			patient_id TEXT NOT NULL REFERENCES patients(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			name TEXT,
			text TEXT,
			PRIMARY KEY (patient_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS example_reports (
			id TEXT PRIMARY KEY,
			audience TEXT NOT NULL,
			length TEXT NOT NULL,
			authored TEXT,
			text TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// PatientStore implements engine.PatientRepository over SQLite.
type PatientStore struct {
	db *sql.DB
}

// Get loads one patient with test results and attachments in stored order.
func (p *PatientStore) Get(ctx context.Context, patientID string) (*types.PatientRecord, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, name, age, gender, assessment_date, clinical_notes FROM patients WHERE id = ?`,
		patientID)

	var (
		rec      types.PatientRecord
		dateText string
	)
	err := row.Scan(&rec.ID, &rec.Name, &rec.Age, &rec.Gender, &dateText, &rec.ClinicalNotes)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("patient %s: %w", patientID, engine.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading patient %s: %w", patientID, err)
	}
	if dateText != "" {
		if t, perr := time.Parse(timeLayout, dateText); perr == nil {
			rec.AssessmentDate = t
		}
	}

	if rec.Tests, err = p.testResults(ctx, patientID); err != nil {
		return nil, err
	}
	if rec.Attachments, err = p.attachments(ctx, patientID); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (p *PatientStore) testResults(ctx context.Context, patientID string) ([]types.TestResult, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT name, code, score, has_score, ref_mean, ref_sd, has_ref, interpretation
		 FROM test_results WHERE patient_id = ? ORDER BY seq`, patientID)
	if err != nil {
		return nil, fmt.Errorf("reading test results for %s: %w", patientID, err)
	}
	defer rows.Close()

	var results []types.TestResult
	for rows.Next() {
		var (
			t              types.TestResult
			score          sql.NullFloat64
			hasScore       bool
			refMean, refSD sql.NullFloat64
			hasRef         bool
		)
		if err := rows.Scan(&t.Name, &t.Code, &score, &hasScore, &refMean, &refSD, &hasRef, &t.Interpretation); err != nil {
			return nil, fmt.Errorf("scanning test result: %w", err)
		}
		if hasScore {
			t.Score = score.Float64
			t.HasScore = true
		}
		if hasRef {
			t.Reference = &types.NormativeReference{Mean: refMean.Float64, SD: refSD.Float64}
		}
		results = append(results, t)
	}
	return results, rows.Err()
}

func (p *PatientStore) attachments(ctx context.Context, patientID string) ([]types.Attachment, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT name, text FROM attachments WHERE patient_id = ? ORDER BY seq`, patientID)
	if err != nil {
		return nil, fmt.Errorf("reading attachments for %s: %w", patientID, err)
	}
	defer rows.Close()

	var attachments []types.Attachment
	for rows.Next() {
		var a types.Attachment
		if err := rows.Scan(&a.Name, &a.Text); err != nil {
			return nil, fmt.Errorf("scanning attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

// List returns all patients with their test results, ordered by ID.
func (p *PatientStore) List(ctx context.Context) ([]types.PatientRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning patient id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var patients []types.PatientRecord
	for _, id := range ids {
		rec, err := p.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *rec)
	}
	return patients, nil
}

// Put inserts or replaces a patient record and its child rows.
func (p *PatientStore) Put(ctx context.Context, rec *types.PatientRecord) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	dateText := ""
	if !rec.AssessmentDate.IsZero() {
		dateText = rec.AssessmentDate.Format(timeLayout)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("replacing patient %s: %w", rec.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO patients (id, name, age, gender, assessment_date, clinical_notes) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.Age, rec.Gender, dateText, rec.ClinicalNotes); err != nil {
		return fmt.Errorf("inserting patient %s: %w", rec.ID, err)
	}

	for i, t := range rec.Tests {
		var (
			score, refMean, refSD sql.NullFloat64
			hasRef                bool
		)
		if t.HasScore {
			score = sql.NullFloat64{Float64: t.Score, Valid: true}
		}
		if t.Reference != nil {
			refMean = sql.NullFloat64{Float64: t.Reference.Mean, Valid: true}
			refSD = sql.NullFloat64{Float64: t.Reference.SD, Valid: true}
			hasRef = true
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO test_results (patient_id, seq, name, code, score, has_score, ref_mean, ref_sd, has_ref, interpretation)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, i, t.Name, t.Code, score, t.HasScore, refMean, refSD, hasRef, t.Interpretation); err != nil {
			return fmt.Errorf("inserting test result for %s: %w", rec.ID, err)
		}
	}

	for i, a := range rec.Attachments {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attachments (patient_id, seq, name, text) VALUES (?, ?, ?, ?)`,
			rec.ID, i, a.Name, a.Text); err != nil {
			return fmt.Errorf("inserting attachment for %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// CorpusStore implements engine.CorpusRepository over SQLite. Examples are
// immutable once ingested; Put replaces by ID only during import.
type CorpusStore struct {
	db *sql.DB
}

// List returns the full corpus ordered by authored date then ID.
func (c *CorpusStore) List(ctx context.Context) ([]types.ExampleReport, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, audience, length, authored, text FROM example_reports ORDER BY authored, id`)
	if err != nil {
		return nil, fmt.Errorf("listing corpus: %w", err)
	}
	defer rows.Close()

	var corpus []types.ExampleReport
	for rows.Next() {
		var (
			ex       types.ExampleReport
			audience, length, authored string
		)
		if err := rows.Scan(&ex.ID, &audience, &length, &authored, &ex.Text); err != nil {
			return nil, fmt.Errorf("scanning example report: %w", err)
		}
		ex.Type = types.ReportType{Audience: types.Audience(audience), Length: types.LengthVariant(length)}
		if authored != "" {
			if t, perr := time.Parse(timeLayout, authored); perr == nil {
				ex.Authored = t
			}
		}
		corpus = append(corpus, ex)
	}
	return corpus, rows.Err()
}

// Put inserts or replaces one example report.
func (c *CorpusStore) Put(ctx context.Context, ex types.ExampleReport) error {
	authored := ""
	if !ex.Authored.IsZero() {
		authored = ex.Authored.Format(timeLayout)
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO example_reports (id, audience, length, authored, text) VALUES (?, ?, ?, ?, ?)`,
		ex.ID, string(ex.Type.Audience), string(ex.Type.Length), authored, ex.Text)
	if err != nil {
		return fmt.Errorf("inserting example report %s: %w", ex.ID, err)
	}
	return nil
}
