// Package sqlite provides the persistent label store.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pharmaguard/pharmaguard-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.LabelStore = (*Store)(nil)

// Store is a SQLite-backed label store. Embedding vectors are stored as
// little-endian float32 BLOBs alongside their passages.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.pharmaguard/data/labels.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".pharmaguard", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "labels.db")

	// WAL mode for better concurrency between embedding writes and reads
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		version, err := migrationVersion(name)
		if err != nil {
			return err
		}
		if version <= currentVersion {
			continue
		}

		contents, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(contents)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// migrationVersion parses the numeric prefix of a migration filename.
func migrationVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("migration %s: missing version prefix", name)
	}
	version, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("migration %s: bad version prefix: %w", name, err)
	}
	return version, nil
}

// SaveLabel stores an ingested label. Labels are immutable: inserting an
// existing id fails rather than updating.
func (s *Store) SaveLabel(ctx context.Context, label *domain.Label) error {
	sectionsJSON, err := json.Marshal(label.Sections)
	if err != nil {
		return fmt.Errorf("marshalling sections: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO labels (id, drug_name, set_id, effective_time, sections, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, label.ID, label.DrugName, label.SetID, label.EffectiveTime,
		string(sectionsJSON), label.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving label: %w", err)
	}
	return nil
}

// GetLabel retrieves a label by ID.
func (s *Store) GetLabel(ctx context.Context, id string) (*domain.Label, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, drug_name, set_id, effective_time, sections, created_at
		FROM labels WHERE id = ?
	`, id)

	return scanLabel(row.Scan)
}

// FindLabelByDrug returns the most recently ingested label whose drug
// name contains the given name.
func (s *Store) FindLabelByDrug(ctx context.Context, drugName string) (*domain.Label, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, drug_name, set_id, effective_time, sections, created_at
		FROM labels WHERE drug_name LIKE ? COLLATE NOCASE
		ORDER BY created_at DESC LIMIT 1
	`, "%"+drugName+"%")

	return scanLabel(row.Scan)
}

// ListLabels returns labels matching the drug name, latest first.
func (s *Store) ListLabels(ctx context.Context, drugName string, limit int) ([]domain.Label, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, drug_name, set_id, effective_time, sections, created_at
		FROM labels WHERE drug_name LIKE ? COLLATE NOCASE
		ORDER BY created_at DESC LIMIT ?
	`, "%"+drugName+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("querying labels: %w", err)
	}
	defer rows.Close()

	var labels []domain.Label //nolint:prealloc // size unknown from query
	for rows.Next() {
		label, err := scanLabel(rows.Scan)
		if err != nil {
			return nil, err
		}
		labels = append(labels, *label)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating labels: %w", err)
	}
	return labels, nil
}

// SavePassages stores the passages of a label.
func (s *Store) SavePassages(ctx context.Context, passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (id, label_id, section, position, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range passages {
		embeddingBlob := float32SliceToBytes(p.Embedding)
		if _, err := stmt.ExecContext(ctx, p.ID, p.LabelID, string(p.Section),
			p.Position, p.Text, embeddingBlob); err != nil {
			return fmt.Errorf("saving passage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetPassages retrieves all passages of a label ordered by (section, position).
func (s *Store) GetPassages(ctx context.Context, labelID string) ([]domain.Passage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label_id, section, position, content, embedding
		FROM passages WHERE label_id = ?
		ORDER BY section, position
	`, labelID)
	if err != nil {
		return nil, fmt.Errorf("querying passages: %w", err)
	}
	defer rows.Close()

	var passages []domain.Passage //nolint:prealloc // size unknown from query
	for rows.Next() {
		passage, err := scanPassage(rows.Scan)
		if err != nil {
			return nil, err
		}
		passages = append(passages, *passage)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating passages: %w", err)
	}
	return passages, nil
}

// GetPassage retrieves a specific passage by ID.
func (s *Store) GetPassage(ctx context.Context, id string) (*domain.Passage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, label_id, section, position, content, embedding
		FROM passages WHERE id = ?
	`, id)

	return scanPassage(row.Scan)
}

// UpdatePassageEmbedding sets the embedding vector of one passage. An
// empty vector is rejected; the process-wide dimension check happens in
// the index, the only embedding writer.
func (s *Store) UpdatePassageEmbedding(ctx context.Context, passageID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding for passage %s", domain.ErrInvalidInput, passageID)
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE passages SET embedding = ? WHERE id = ?",
		float32SliceToBytes(embedding), passageID)
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HasEmbeddings reports whether the label has any embedded passages.
func (s *Store) HasEmbeddings(ctx context.Context, labelID string) (bool, error) {
	var exists int
	row := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM passages
			WHERE label_id = ? AND embedding IS NOT NULL AND length(embedding) > 0
		)
	`, labelID)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("checking embeddings: %w", err)
	}
	return exists == 1, nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// scanLabel scans a label from a row or rows scan function.
func scanLabel(scan func(...any) error) (*domain.Label, error) {
	var label domain.Label
	var sectionsJSON string

	if err := scan(&label.ID, &label.DrugName, &label.SetID,
		&label.EffectiveTime, &sectionsJSON, &label.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning label: %w", err)
	}

	if sectionsJSON != "" {
		if err := json.Unmarshal([]byte(sectionsJSON), &label.Sections); err != nil {
			return nil, fmt.Errorf("unmarshaling sections: %w", err)
		}
	}

	return &label, nil
}

// scanPassage scans a passage from a row or rows scan function.
func scanPassage(scan func(...any) error) (*domain.Passage, error) {
	var passage domain.Passage
	var section string
	var embeddingBlob []byte

	if err := scan(&passage.ID, &passage.LabelID, &section,
		&passage.Position, &passage.Text, &embeddingBlob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning passage: %w", err)
	}

	passage.Section = domain.Section(section)
	passage.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &passage, nil
}
