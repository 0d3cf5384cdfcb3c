package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"storyreel/internal/config"
)

// Store manages project persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the projects database and applies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "projects.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

const projectColumns = `id, title, language_code, current_step, status, idea_text,
    script_text, audio_file_path, captions_json, sections_json, final_video_path,
    error_message, progress_stage, progress_message, created_at, updated_at`

// Create inserts a new draft project and returns the stored record.
func (s *Store) Create(ctx context.Context, title, languageCode string) (*Project, error) {
	if languageCode == "" {
		languageCode = "en"
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	id := uuid.NewString()

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO projects (
            id, title, language_code, current_step, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id,
		title,
		languageCode,
		1,
		StatusDraft,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a project by identifier. Returns nil when no project matches.
func (s *Store) GetByID(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// Update persists changes to an existing project.
func (s *Store) Update(ctx context.Context, project *Project) error {
	if project == nil {
		return errors.New("project is nil")
	}
	project.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE projects
         SET title = ?, language_code = ?, current_step = ?, status = ?, idea_text = ?,
             script_text = ?, audio_file_path = ?, captions_json = ?, sections_json = ?,
             final_video_path = ?, error_message = ?, progress_stage = ?, progress_message = ?,
             updated_at = ?
         WHERE id = ?`,
		project.Title,
		project.LanguageCode,
		project.CurrentStep,
		project.Status,
		nullableString(project.IdeaText),
		nullableString(project.ScriptText),
		nullableString(project.AudioFilePath),
		nullableString(project.CaptionsJSON),
		nullableString(project.SectionsJSON),
		nullableString(project.FinalVideoPath),
		nullableString(project.ErrorMessage),
		nullableString(project.ProgressStage),
		nullableString(project.ProgressMessage),
		project.UpdatedAt.Format(time.RFC3339Nano),
		project.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// List returns projects filtered by status set, or all projects when no status
// is provided, ordered newest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Project, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + projectColumns + ` FROM projects`
	orderClause := ` ORDER BY created_at DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// ListByStatus returns projects matching a status ordered by creation time.
func (s *Store) ListByStatus(ctx context.Context, status Status) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, fmt.Errorf("query by status: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// NextPending returns the oldest project awaiting a render, or nil when the
// queue is empty.
func (s *Store) NextPending(ctx context.Context) (*Project, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+projectColumns+` FROM projects WHERE status = ? ORDER BY created_at LIMIT 1`,
		StatusPending,
	)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return project, nil
}

// ResetStuck fails projects left in a rendering state by a previous daemon run.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE projects
         SET status = ?, error_message = ?, progress_stage = NULL,
             progress_message = NULL, updated_at = ?
         WHERE status IN (?, ?, ?, ?)`,
		StatusFailed,
		DaemonStopReason,
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusProcessingClips,
		StatusConcatenating,
		StatusSubtitling,
		StatusMuxing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck projects: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a project record. Returns false when no project matched.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	return affected > 0, nil
}

// Stats returns a count of projects grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM projects GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("project stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// HealthSummary aggregates project state for diagnostic output.
type HealthSummary struct {
	Total     int
	Pending   int
	Rendering int
	Completed int
	Failed    int
}

// Health aggregates project counts for diagnostic output.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}
	health := HealthSummary{}
	for status, count := range stats {
		health.Total += count
		switch {
		case status == StatusPending:
			health.Pending += count
		case IsRenderingStatus(status):
			health.Rendering += count
		case status == StatusCompleted:
			health.Completed += count
		case status == StatusFailed:
			health.Failed += count
		}
	}
	return health, nil
}

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, error) {
	var (
		project         Project
		ideaText        sql.NullString
		scriptText      sql.NullString
		audioFilePath   sql.NullString
		captionsJSON    sql.NullString
		sectionsJSON    sql.NullString
		finalVideoPath  sql.NullString
		errorMessage    sql.NullString
		progressStage   sql.NullString
		progressMessage sql.NullString
		createdAt       string
		updatedAt       string
	)

	err := scanner.Scan(
		&project.ID,
		&project.Title,
		&project.LanguageCode,
		&project.CurrentStep,
		&project.Status,
		&ideaText,
		&scriptText,
		&audioFilePath,
		&captionsJSON,
		&sectionsJSON,
		&finalVideoPath,
		&errorMessage,
		&progressStage,
		&progressMessage,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	project.IdeaText = ideaText.String
	project.ScriptText = scriptText.String
	project.AudioFilePath = audioFilePath.String
	project.CaptionsJSON = captionsJSON.String
	project.SectionsJSON = sectionsJSON.String
	project.FinalVideoPath = finalVideoPath.String
	project.ErrorMessage = errorMessage.String
	project.ProgressStage = progressStage.String
	project.ProgressMessage = progressMessage.String

	if project.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if project.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &project, nil
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
