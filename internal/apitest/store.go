package apitest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"ohara-cli/internal/model"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("already exists")
	ErrValidation      = errors.New("validation error")
	ErrInvalidFilename = errors.New("invalid filename")
)

func notFoundErr(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

func alreadyExistsErr(kind, name string) error {
	return fmt.Errorf("%s %s: %w", kind, name, ErrAlreadyExists)
}

func validationErr(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrValidation)
}

var validFilename = regexp.MustCompile(`^[\w][\w\-]*\.md$`)

// DefaultCategories seeds a fresh database.
var DefaultCategories = []string{
	"Mentorship",
	"Tools and infrastructure maintenance",
	"Aiding engineering team",
	"Providing engagement guidance and support",
	"Feedbacks I am giving",
	"Feedback I have received",
	"Methodology improvements",
	"Process improvement",
	"Open Source & Community",
	"Knowledge Sharing",
}

// DefaultTags seeds a fresh database.
var DefaultTags = []string{"go", "docker", "security", "code-review"}

const (
	kindCategory = "category"
	kindTag      = "tag"
)

// Store is the SQLite-backed state of the mock backend.
type Store struct {
	db        *sql.DB
	now       func() time.Time
	sanitizer *bluemonday.Policy

	// Serializes read-modify-write sequences (validation against metadata, uniqueness).
	mu sync.Mutex
}

// OpenStore opens (and migrates) a SQLite database. Use ":memory:" for tests.
func OpenStore(ctx context.Context, path string, seedDefaults bool) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		path = ":memory:"
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A :memory: database is per-connection; keep exactly one.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	s := &Store{
		db:        db,
		now:       time.Now,
		sanitizer: bluemonday.StrictPolicy(),
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if seedDefaults {
		if err := s.seedVocabulary(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SetClock overrides the clock used for server-assigned dates.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS touchpoints (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			date TEXT NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL,
			tags_json TEXT NOT NULL,
			people_json TEXT NOT NULL,
			url TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS vocabulary (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			UNIQUE(kind, name)
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			filename TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) seedVocabulary(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vocabulary`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, c := range DefaultCategories {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO vocabulary(kind, name) VALUES(?, ?)`, kindCategory, c); err != nil {
			return err
		}
	}
	for _, t := range DefaultTags {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO vocabulary(kind, name) VALUES(?, ?)`, kindTag, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetMetadata(ctx context.Context) (model.Metadata, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, name FROM vocabulary ORDER BY seq`)
	if err != nil {
		return model.Metadata{}, err
	}
	defer rows.Close()

	md := model.EmptyMetadata()
	for rows.Next() {
		var kind, name string
		if err := rows.Scan(&kind, &name); err != nil {
			return model.Metadata{}, err
		}
		switch kind {
		case kindCategory:
			md.Categories = append(md.Categories, name)
		case kindTag:
			md.Tags = append(md.Tags, name)
		}
	}
	return md, rows.Err()
}

func (s *Store) AddCategory(ctx context.Context, name string) error {
	return s.addVocabulary(ctx, kindCategory, name)
}

func (s *Store) AddTag(ctx context.Context, name string) error {
	return s.addVocabulary(ctx, kindTag, name)
}

func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	return s.removeVocabulary(ctx, kindCategory, name)
}

func (s *Store) RemoveTag(ctx context.Context, name string) error {
	return s.removeVocabulary(ctx, kindTag, name)
}

func (s *Store) addVocabulary(ctx context.Context, kind, name string) error {
	if name == "" {
		return validationErr(kind + " name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vocabulary WHERE kind = ? AND name = ?`, kind, name).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return alreadyExistsErr(kind, name)
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO vocabulary(kind, name) VALUES(?, ?)`, kind, name)
	return err
}

// removeVocabulary never touches touchpoints: assignments are snapshots, not references.
func (s *Store) removeVocabulary(ctx context.Context, kind, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vocabulary WHERE kind = ? AND name = ?`, kind, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFoundErr(kind, name)
	}
	return nil
}

func (s *Store) ListTouchpoints(ctx context.Context) ([]model.Touchpoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, description, category, tags_json, people_json, url FROM touchpoints ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Touchpoint{}
	for rows.Next() {
		tp, err := scanTouchpoint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tp)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTouchpoint(r scanner) (model.Touchpoint, error) {
	var tp model.Touchpoint
	var tagsJSON, peopleJSON string
	if err := r.Scan(&tp.ID, &tp.Date, &tp.Description, &tp.Category, &tagsJSON, &peopleJSON, &tp.URL); err != nil {
		return model.Touchpoint{}, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &tp.Tags); err != nil {
		return model.Touchpoint{}, err
	}
	if err := json.Unmarshal([]byte(peopleJSON), &tp.PeopleInvolved); err != nil {
		return model.Touchpoint{}, err
	}
	return tp, nil
}

func (s *Store) sanitizeInput(in *model.TouchpointInput) {
	in.Description = s.sanitizer.Sanitize(in.Description)
	in.URL = s.sanitizer.Sanitize(in.URL)
	if in.Tags == nil {
		in.Tags = []string{}
	}
	if in.PeopleInvolved == nil {
		in.PeopleInvolved = []string{}
	}
	for i, p := range in.PeopleInvolved {
		in.PeopleInvolved[i] = s.sanitizer.Sanitize(p)
	}
}

func (s *Store) validateInput(ctx context.Context, in model.TouchpointInput) error {
	if in.Description == "" {
		return validationErr("description is required")
	}
	md, err := s.GetMetadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to load metadata for validation: %w", err)
	}
	if !md.HasCategory(in.Category) {
		return validationErr(fmt.Sprintf("unknown category: %s", in.Category))
	}
	for _, tag := range in.Tags {
		if !md.HasTag(tag) {
			return validationErr(fmt.Sprintf("unknown tag: %s", tag))
		}
	}
	return nil
}

func (s *Store) CreateTouchpoint(ctx context.Context, in model.TouchpointInput) (model.Touchpoint, error) {
	s.sanitizeInput(&in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateInput(ctx, in); err != nil {
		return model.Touchpoint{}, err
	}
	tp := model.Touchpoint{
		ID:             uuid.New().String(),
		Date:           s.now().UTC().Format(time.RFC3339),
		Description:    in.Description,
		Category:       in.Category,
		Tags:           in.Tags,
		PeopleInvolved: in.PeopleInvolved,
		URL:            in.URL,
	}
	if err := s.insert(ctx, tp); err != nil {
		return model.Touchpoint{}, err
	}
	return tp, nil
}

// Seed inserts tp as-is (no validation, caller-chosen id and date). Test fixtures
// use it for historical dates and for vocabulary that no longer exists.
func (s *Store) Seed(ctx context.Context, tp model.Touchpoint) (model.Touchpoint, error) {
	if tp.ID == "" {
		tp.ID = uuid.New().String()
	}
	if tp.Tags == nil {
		tp.Tags = []string{}
	}
	if tp.PeopleInvolved == nil {
		tp.PeopleInvolved = []string{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return tp, s.insert(ctx, tp)
}

func (s *Store) insert(ctx context.Context, tp model.Touchpoint) error {
	tags, err := json.Marshal(tp.Tags)
	if err != nil {
		return err
	}
	people, err := json.Marshal(tp.PeopleInvolved)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO touchpoints(id, date, description, category, tags_json, people_json, url) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		tp.ID, tp.Date, tp.Description, tp.Category, string(tags), string(people), tp.URL)
	return err
}

func (s *Store) UpdateTouchpoint(ctx context.Context, id string, in model.TouchpointInput) (model.Touchpoint, error) {
	s.sanitizeInput(&in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateInput(ctx, in); err != nil {
		return model.Touchpoint{}, err
	}
	tags, err := json.Marshal(in.Tags)
	if err != nil {
		return model.Touchpoint{}, err
	}
	people, err := json.Marshal(in.PeopleInvolved)
	if err != nil {
		return model.Touchpoint{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE touchpoints SET description = ?, category = ?, tags_json = ?, people_json = ?, url = ? WHERE id = ?`,
		in.Description, in.Category, string(tags), string(people), in.URL, id)
	if err != nil {
		return model.Touchpoint{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.Touchpoint{}, notFoundErr("touchpoint", id)
	}
	row := s.db.QueryRowContext(ctx, `SELECT id, date, description, category, tags_json, people_json, url FROM touchpoints WHERE id = ?`, id)
	return scanTouchpoint(row)
}

func (s *Store) DeleteTouchpoint(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM touchpoints WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFoundErr("touchpoint", id)
	}
	return nil
}

func validateReportFilename(filename string) error {
	if !validFilename.MatchString(filename) {
		return fmt.Errorf("report filename %s (must match alphanumeric/hyphens ending in .md): %w", filename, ErrInvalidFilename)
	}
	return nil
}

// ListReports returns report names, newest-looking (reverse lexical) first.
func (s *Store) ListReports(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT filename FROM reports`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (s *Store) GetReport(ctx context.Context, filename string) (string, error) {
	if err := validateReportFilename(filename); err != nil {
		return "", err
	}
	var content string
	err := s.db.QueryRowContext(ctx, `SELECT content FROM reports WHERE filename = ?`, filename).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFoundErr("report", filename)
	}
	return content, err
}

// PutReport uploads or overwrites a report.
func (s *Store) PutReport(ctx context.Context, filename, content string) error {
	if err := validateReportFilename(filename); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reports(filename, content, updated_at) VALUES(?, ?, ?)`,
		filename, content, s.now().UTC().Format(time.RFC3339))
	return err
}
