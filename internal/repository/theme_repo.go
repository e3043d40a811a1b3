package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"wordclash/internal/database"
	"wordclash/internal/models"
)

// ThemeRepository handles database operations for themes and their words
type ThemeRepository struct {
	db *database.DB
}

// NewThemeRepository creates a new theme repository
func NewThemeRepository(db *database.DB) *ThemeRepository {
	return &ThemeRepository{db: db}
}

const themeColumns = `t.id, t.parent_id, t.name, t.is_folder, t.built_in, t.position, t.created_at,
	(SELECT COUNT(*) FROM words w WHERE w.theme_id = t.id)`

func scanTheme(scan func(dest ...interface{}) error) (models.Theme, error) {
	var theme models.Theme
	var parentID sql.NullInt64
	err := scan(
		&theme.ID,
		&parentID,
		&theme.Name,
		&theme.IsFolder,
		&theme.BuiltIn,
		&theme.Position,
		&theme.CreatedAt,
		&theme.WordCount,
	)
	if parentID.Valid {
		id := parentID.Int64
		theme.ParentID = &id
	}
	return theme, err
}

// ListThemes returns every theme ordered by parent and position
func (r *ThemeRepository) ListThemes(ctx context.Context) ([]models.Theme, error) {
	query := `SELECT ` + themeColumns + ` FROM themes t ORDER BY t.parent_id, t.position, t.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query themes: %w", err)
	}
	defer rows.Close()

	var themes []models.Theme
	for rows.Next() {
		theme, err := scanTheme(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		themes = append(themes, theme)
	}
	return themes, rows.Err()
}

// GetTheme retrieves a theme by ID
func (r *ThemeRepository) GetTheme(ctx context.Context, id int64) (*models.Theme, error) {
	query := `SELECT ` + themeColumns + ` FROM themes t WHERE t.id = ?`
	theme, err := scanTheme(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("theme %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get theme: %w", err)
	}
	return &theme, nil
}

// FindTheme looks a theme up by name under parentID (nil for the root)
func (r *ThemeRepository) FindTheme(ctx context.Context, parentID *int64, name string) (*models.Theme, error) {
	query := `SELECT ` + themeColumns + ` FROM themes t WHERE t.name = ? AND t.parent_id IS NULL`
	args := []interface{}{name}
	if parentID != nil {
		query = `SELECT ` + themeColumns + ` FROM themes t WHERE t.name = ? AND t.parent_id = ?`
		args = append(args, *parentID)
	}

	theme, err := scanTheme(r.db.QueryRowContext(ctx, query, args...).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("theme %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find theme: %w", err)
	}
	return &theme, nil
}

// CreateTheme inserts a theme at the end of its siblings together with its words
func (r *ThemeRepository) CreateTheme(ctx context.Context, parentID *int64, name string, isFolder, builtIn bool, words []models.WordInput) (*models.Theme, error) {
	theme := &models.Theme{ParentID: parentID, Name: name, IsFolder: isFolder, BuiltIn: builtIn}

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		var position sql.NullInt64
		query := `SELECT MAX(position) FROM themes WHERE parent_id IS NULL`
		args := []interface{}{}
		if parentID != nil {
			query = `SELECT MAX(position) FROM themes WHERE parent_id = ?`
			args = append(args, *parentID)
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&position); err != nil {
			return fmt.Errorf("failed to read sibling position: %w", err)
		}
		if position.Valid {
			theme.Position = int(position.Int64) + 1
		}

		var parent interface{}
		if parentID != nil {
			parent = *parentID
		}
		id, err := tx.ExecReturningID(ctx,
			`INSERT INTO themes (parent_id, name, is_folder, built_in, position) VALUES (?, ?, ?, ?, ?)`,
			parent, name, isFolder, builtIn, theme.Position,
		)
		if err != nil {
			return fmt.Errorf("failed to create theme: %w", err)
		}
		theme.ID = id

		_, err = insertWords(ctx, tx, id, 0, words)
		return err
	})
	if err != nil {
		return nil, err
	}

	theme.WordCount = len(words)
	return theme, nil
}

// RenameTheme changes the name of a theme
func (r *ThemeRepository) RenameTheme(ctx context.Context, id int64, name string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE themes SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("failed to rename theme: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("theme %d", id))
}

// DeleteTheme deletes a theme, its descendants and their words
func (r *ThemeRepository) DeleteTheme(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM themes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("theme %d", id))
}

// AddWords appends words to a leaf theme
func (r *ThemeRepository) AddWords(ctx context.Context, themeID int64, words []models.WordInput) ([]models.Word, error) {
	var added []models.Word
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		var position sql.NullInt64
		if err := tx.QueryRowContext(ctx, `SELECT MAX(position) FROM words WHERE theme_id = ?`, themeID).Scan(&position); err != nil {
			return fmt.Errorf("failed to read word position: %w", err)
		}
		start := 0
		if position.Valid {
			start = int(position.Int64) + 1
		}

		var err error
		added, err = insertWords(ctx, tx, themeID, start, words)
		return err
	})
	return added, err
}

func insertWords(ctx context.Context, q database.DBTX, themeID int64, start int, words []models.WordInput) ([]models.Word, error) {
	out := make([]models.Word, 0, len(words))
	for i, in := range words {
		source := strings.TrimSpace(in.SourceText)
		target := strings.TrimSpace(in.TargetText)
		id, err := q.ExecReturningID(ctx,
			`INSERT INTO words (theme_id, source_text, target_text, position) VALUES (?, ?, ?, ?)`,
			themeID, source, target, start+i,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert word %q: %w", source, err)
		}
		out = append(out, models.Word{ID: id, ThemeID: themeID, SourceText: source, TargetText: target, Position: start + i})
	}
	return out, nil
}

// DeleteWord removes one word from a theme
func (r *ThemeRepository) DeleteWord(ctx context.Context, themeID, wordID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM words WHERE id = ? AND theme_id = ?`, wordID, themeID)
	if err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return expectOneRow(result, fmt.Sprintf("word %d", wordID))
}

// ListWords returns the words of one theme in position order
func (r *ThemeRepository) ListWords(ctx context.Context, themeID int64) ([]models.Word, error) {
	return r.GetWordsForThemes(ctx, []int64{themeID})
}

// GetWordsForThemes returns the words of the given leaf themes grouped in
// the order of themeIDs, each group in position order
func (r *ThemeRepository) GetWordsForThemes(ctx context.Context, themeIDs []int64) ([]models.Word, error) {
	if len(themeIDs) == 0 {
		return nil, nil
	}

	args := make([]interface{}, len(themeIDs))
	for i, id := range themeIDs {
		args[i] = id
	}
	query := `
		SELECT id, theme_id, source_text, target_text, position, created_at
		FROM words
		WHERE theme_id IN (` + database.Placeholders(len(themeIDs)) + `)
		ORDER BY position, id
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	byTheme := make(map[int64][]models.Word, len(themeIDs))
	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.ID, &w.ThemeID, &w.SourceText, &w.TargetText, &w.Position, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		byTheme[w.ThemeID] = append(byTheme[w.ThemeID], w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var words []models.Word
	seen := make(map[int64]bool, len(themeIDs))
	for _, id := range themeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		words = append(words, byTheme[id]...)
	}
	return words, nil
}

func expectOneRow(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
