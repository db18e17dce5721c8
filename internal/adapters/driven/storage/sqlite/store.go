// Package sqlite provides the SQLite-backed implementation of every storage
// port, plus the FTS5-backed text index used by keyword search.
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
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/teamhub/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to all
// storage interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.teamhub/data/teamhub.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".teamhub", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "teamhub.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
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

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// VersionStore returns a VersionStore interface backed by this store.
func (s *Store) VersionStore() driven.VersionStore {
	return &versionStore{store: s}
}

// ActivityStore returns an ActivityStore interface backed by this store.
func (s *Store) ActivityStore() driven.ActivityStore {
	return &activityStore{store: s}
}

// UserStore returns a UserStore interface backed by this store.
func (s *Store) UserStore() driven.UserStore {
	return &userStore{store: s}
}

// TextIndex returns the FTS5-backed text index.
func (s *Store) TextIndex() driven.TextIndex {
	return &textIndex{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or fully overwrites a document.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, summary, tags, embedding, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			summary = excluded.summary,
			tags = excluded.tags,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Title, doc.Content, doc.Summary, string(tagsJSON),
		float32SliceToBytes(doc.Embedding), doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, title, content, summary, tags, embedding, created_by, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns documents matching the filter, most recently
// updated first. Tag filtering uses json_each over the tags column.
func (s *documentStore) ListDocuments(
	ctx context.Context, filter driven.DocumentFilter,
) ([]domain.Document, error) {
	query := `
		SELECT id, title, content, summary, tags, embedding, created_by, created_at, updated_at
		FROM documents
	`
	var args []any
	if filter.Tag != "" {
		query += ` WHERE EXISTS (SELECT 1 FROM json_each(documents.tags) WHERE json_each.value = ?)`
		args = append(args, filter.Tag)
	}
	query += ` ORDER BY updated_at DESC, id`

	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, (page-1)*filter.Limit)
	}

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument hard-deletes a document. Versions and activities survive.
func (s *documentStore) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanDocument reads one document row through the given scan function.
func scanDocument(scan func(...any) error) (*domain.Document, error) {
	var doc domain.Document
	var tagsJSON string
	var embedding []byte
	var createdAt, updatedAt sql.NullTime
	if err := scan(&doc.ID, &doc.Title, &doc.Content, &doc.Summary, &tagsJSON,
		&embedding, &doc.CreatedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	doc.Embedding = bytesToFloat32Slice(embedding)
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		doc.UpdatedAt = updatedAt.Time
	}
	return &doc, nil
}

// ==================== Version Store ====================

// versionStore implements driven.VersionStore.
type versionStore struct {
	store *Store
}

var _ driven.VersionStore = (*versionStore)(nil)

// SaveVersion appends a snapshot. Versions are insert-only.
func (s *versionStore) SaveVersion(ctx context.Context, v *domain.Version) error {
	tagsJSON, err := json.Marshal(v.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO versions (id, doc_id, title, content, tags, summary, edited_by, edited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.DocID, v.Title, v.Content, string(tagsJSON), v.Summary, v.EditedBy, v.EditedAt)

	if err != nil {
		return fmt.Errorf("saving version: %w", err)
	}
	return nil
}

// ListVersions returns a document's versions, newest first.
func (s *versionStore) ListVersions(ctx context.Context, docID string) ([]domain.Version, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, doc_id, title, content, tags, summary, edited_by, edited_at
		FROM versions WHERE doc_id = ?
		ORDER BY edited_at DESC
	`, docID)
	if err != nil {
		return nil, fmt.Errorf("querying versions: %w", err)
	}
	defer rows.Close()

	versions := []domain.Version{}
	for rows.Next() {
		var v domain.Version
		var tagsJSON string
		var editedAt sql.NullTime
		if err := rows.Scan(&v.ID, &v.DocID, &v.Title, &v.Content, &tagsJSON,
			&v.Summary, &v.EditedBy, &editedAt); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &v.Tags); err != nil {
			return nil, fmt.Errorf("unmarshaling tags: %w", err)
		}
		if editedAt.Valid {
			v.EditedAt = editedAt.Time
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating versions: %w", err)
	}
	return versions, nil
}

// ==================== Activity Store ====================

// activityStore implements driven.ActivityStore.
type activityStore struct {
	store *Store
}

var _ driven.ActivityStore = (*activityStore)(nil)

// Append records an activity entry.
func (s *activityStore) Append(ctx context.Context, a *domain.Activity) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO activities (id, action, doc_id, doc_title, user_id, user_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, string(a.Action), a.DocID, a.DocTitle, a.UserID, a.UserName, a.CreatedAt)

	if err != nil {
		return fmt.Errorf("appending activity: %w", err)
	}
	return nil
}

// Latest returns the most recent n entries, newest first.
func (s *activityStore) Latest(ctx context.Context, n int) ([]domain.Activity, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, action, doc_id, doc_title, user_id, user_name, created_at
		FROM activities
		ORDER BY created_at DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("querying activities: %w", err)
	}
	defer rows.Close()

	items := []domain.Activity{}
	for rows.Next() {
		var a domain.Activity
		var action string
		var createdAt sql.NullTime
		if err := rows.Scan(&a.ID, &action, &a.DocID, &a.DocTitle, &a.UserID,
			&a.UserName, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.Action = domain.Action(action)
		if createdAt.Valid {
			a.CreatedAt = createdAt.Time
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activities: %w", err)
	}
	return items, nil
}

// ==================== User Store ====================

// userStore implements driven.UserStore.
type userStore struct {
	store *Store
}

var _ driven.UserStore = (*userStore)(nil)

// CreateUser stores a new user. The unique index on email turns duplicate
// registrations into domain.ErrAlreadyExists.
func (s *userStore) CreateUser(ctx context.Context, u *domain.User) error {
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), created)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: email already in use", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *userStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUser(ctx, "id", id)
}

// GetUserByEmail retrieves a user by email.
func (s *userStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getUser(ctx, "email", email)
}

func (s *userStore) getUser(ctx context.Context, column, value string) (*domain.User, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM users WHERE `+column+` = ?
	`, value)

	var u domain.User
	var role string
	var createdAt sql.NullTime
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.Role = domain.Role(role)
	if createdAt.Valid {
		u.CreatedAt = createdAt.Time
	}
	return &u, nil
}

// ==================== Text Index ====================

// textIndex implements driven.TextIndex over the documents_fts table.
type textIndex struct {
	store *Store
}

var _ driven.TextIndex = (*textIndex)(nil)

// Search runs an FTS5 match ranked by bm25. The raw bm25 value is smaller
// for better matches, so it is negated to produce a higher-is-better score.
func (s *textIndex) Search(ctx context.Context, query string, limit int) ([]driven.TextHit, error) {
	match := buildMatchQuery(query)
	if match == "" {
		return []driven.TextHit{}, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT d.id, bm25(documents_fts) AS rank
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.rowid
		WHERE documents_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("fts search: %w", err)
	}
	defer rows.Close()

	hits := []driven.TextHit{}
	for rows.Next() {
		var hit driven.TextHit
		var rank float64
		if err := rows.Scan(&hit.DocID, &rank); err != nil {
			return nil, fmt.Errorf("scanning hit: %w", err)
		}
		hit.Score = -rank
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hits: %w", err)
	}
	return hits, nil
}

// buildMatchQuery turns free text into a safe FTS5 expression: each term is
// double-quoted (neutralising operator syntax) and terms are OR-ed so any
// matching term qualifies a document, with bm25 ordering the results.
func buildMatchQuery(query string) string {
	terms := strings.Fields(query)
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ReplaceAll(t, `"`, "")
		if t == "" {
			continue
		}
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// ==================== Embedding encoding ====================

// float32SliceToBytes encodes an embedding as little-endian float32 bytes.
// A nil or empty slice encodes as nil, which round-trips to nil.
func float32SliceToBytes(vals []float32) []byte {
	if len(vals) == 0 {
		return nil
	}
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// bytesToFloat32Slice decodes a little-endian float32 blob.
func bytesToFloat32Slice(buf []byte) []float32 {
	if len(buf) == 0 {
		return nil
	}
	vals := make([]float32, len(buf)/4)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vals
}
