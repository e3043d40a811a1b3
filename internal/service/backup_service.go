package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"wordclash/internal/database"
	"wordclash/internal/models"
	"wordclash/internal/repository"
)

const backupVersion = "2.0"

// BackupData is the portable content of a wordclash database
type BackupData struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Themes     []ThemeBackup       `json:"themes"`
	Words      []WordBackup        `json:"words"`
	Settings   map[string]string   `json:"settings"`
	Sessions   []models.SessionLog `json:"sessions"`
}

// ThemeBackup represents a theme record for backup
type ThemeBackup struct {
	ID        int64     `json:"id"`
	ParentID  *int64    `json:"parent_id"`
	Name      string    `json:"name"`
	IsFolder  bool      `json:"is_folder"`
	BuiltIn   bool      `json:"built_in"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// WordBackup represents a word for backup
type WordBackup struct {
	ID         int64     `json:"id"`
	ThemeID    int64     `json:"theme_id"`
	SourceText string    `json:"source_text"`
	TargetText string    `json:"target_text"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db      *database.DB
	history *repository.HistoryRepository
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db, history: repository.NewHistoryRepository(db)}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	log.WithField("path", outputPath).Info("Database exported")
	return nil
}

// ExportToWriter encodes a complete backup as indented JSON
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup := &BackupData{
		Version:    backupVersion,
		ExportedAt: time.Now().UTC(),
		Settings:   map[string]string{},
	}

	if err := s.exportThemes(ctx, backup); err != nil {
		return fmt.Errorf("failed to export themes: %w", err)
	}
	if err := s.exportWords(ctx, backup); err != nil {
		return fmt.Errorf("failed to export words: %w", err)
	}
	if err := s.exportSettings(ctx, backup); err != nil {
		return fmt.Errorf("failed to export settings: %w", err)
	}
	if err := s.exportSessions(ctx, backup); err != nil {
		return fmt.Errorf("failed to export sessions: %w", err)
	}

	log.WithFields(log.Fields{
		"themes":   len(backup.Themes),
		"words":    len(backup.Words),
		"settings": len(backup.Settings),
		"sessions": len(backup.Sessions),
	}).Info("Backup prepared")

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a backup file
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup. Rows whose ID already exists are kept
// as they are, so importing the same backup twice changes nothing.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	log.WithFields(log.Fields{"version": backup.Version, "exported_at": backup.ExportedAt}).Info("Importing backup")

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := importThemes(ctx, tx, backup.Themes); err != nil {
			return fmt.Errorf("failed to import themes: %w", err)
		}
		if err := importWords(ctx, tx, backup.Words); err != nil {
			return fmt.Errorf("failed to import words: %w", err)
		}
		for name, value := range backup.Settings {
			if _, err := tx.ExecContext(ctx, tx.GetDialect().UpsertSettings(), name, value); err != nil {
				return fmt.Errorf("failed to import setting %s: %w", name, err)
			}
		}
		return resyncSequences(ctx, tx)
	})
	if err != nil {
		return err
	}

	for i := range backup.Sessions {
		if err := s.history.SaveSession(ctx, &backup.Sessions[i]); err != nil {
			return fmt.Errorf("failed to import session %s: %w", backup.Sessions[i].ID, err)
		}
	}

	log.Info("Database import completed successfully")
	return nil
}

// Clear deletes every theme, word, setting and session
func (s *BackupService) Clear(ctx context.Context) error {
	// Children before parents
	tables := []string{"question_logs", "session_logs", "words", "themes", "settings"}

	return s.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
			log.WithField("table", table).Info("Cleared table")
		}
		return nil
	})
}

func (s *BackupService) exportThemes(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, parent_id, name, is_folder, built_in, position, created_at FROM themes ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t ThemeBackup
		var parentID sql.NullInt64
		if err := rows.Scan(&t.ID, &parentID, &t.Name, &t.IsFolder, &t.BuiltIn, &t.Position, &t.CreatedAt); err != nil {
			return err
		}
		if parentID.Valid {
			id := parentID.Int64
			t.ParentID = &id
		}
		backup.Themes = append(backup.Themes, t)
	}
	return rows.Err()
}

func (s *BackupService) exportWords(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, theme_id, source_text, target_text, position, created_at FROM words ORDER BY id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w WordBackup
		if err := rows.Scan(&w.ID, &w.ThemeID, &w.SourceText, &w.TargetText, &w.Position, &w.CreatedAt); err != nil {
			return err
		}
		backup.Words = append(backup.Words, w)
	}
	return rows.Err()
}

func (s *BackupService) exportSettings(ctx context.Context, backup *BackupData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM settings ORDER BY name`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		backup.Settings[name] = value
	}
	return rows.Err()
}

func (s *BackupService) exportSessions(ctx context.Context, backup *BackupData) error {
	summaries, err := s.history.ListSessions(ctx, 0)
	if err != nil {
		return err
	}
	// oldest first so a restore keeps the original order
	for i := len(summaries) - 1; i >= 0; i-- {
		session, err := s.history.GetSession(ctx, summaries[i].ID)
		if err != nil {
			return err
		}
		backup.Sessions = append(backup.Sessions, *session)
	}
	return nil
}

func importThemes(ctx context.Context, tx *database.Tx, themes []ThemeBackup) error {
	query := tx.GetDialect().InsertIgnore(
		`INSERT INTO themes (id, parent_id, name, is_folder, built_in, position, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for _, t := range themes {
		var parent interface{}
		if t.ParentID != nil {
			parent = *t.ParentID
		}
		if _, err := tx.ExecContext(ctx, query, t.ID, parent, t.Name, t.IsFolder, t.BuiltIn, t.Position, t.CreatedAt); err != nil {
			return fmt.Errorf("theme %d: %w", t.ID, err)
		}
	}
	return nil
}

func importWords(ctx context.Context, tx *database.Tx, words []WordBackup) error {
	query := tx.GetDialect().InsertIgnore(
		`INSERT INTO words (id, theme_id, source_text, target_text, position, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	for _, w := range words {
		if _, err := tx.ExecContext(ctx, query, w.ID, w.ThemeID, w.SourceText, w.TargetText, w.Position, w.CreatedAt); err != nil {
			return fmt.Errorf("word %d: %w", w.ID, err)
		}
	}
	return nil
}

// resyncSequences moves postgres sequences past the imported IDs. The other
// dialects derive the next ID from the table itself.
func resyncSequences(ctx context.Context, tx *database.Tx) error {
	if tx.GetDialect().DriverName() != "postgres" {
		return nil
	}
	for _, table := range []string{"themes", "words"} {
		query := fmt.Sprintf(`SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)`, table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to resync %s sequence: %w", table, err)
		}
	}
	return nil
}
