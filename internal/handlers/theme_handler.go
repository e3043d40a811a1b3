package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"wordclash/internal/importer"
	"wordclash/internal/models"
	"wordclash/internal/service"
)

// ThemeHandler handles theme tree HTTP requests
type ThemeHandler struct {
	themes        *service.ThemeService
	uploadMaxSize int64
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(themes *service.ThemeService, uploadMaxSize int64) *ThemeHandler {
	return &ThemeHandler{themes: themes, uploadMaxSize: uploadMaxSize}
}

type themeResponse struct {
	Theme *models.Theme `json:"theme"`
	Words []models.Word `json:"words"`
}

type importResponse struct {
	Theme   *models.Theme         `json:"theme"`
	Words   int                   `json:"words"`
	Skipped []importer.SkippedRow `json:"skipped"`
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// List returns the whole theme tree
func (h *ThemeHandler) List(w http.ResponseWriter, r *http.Request) {
	tree, err := h.themes.Tree(r.Context())
	if err != nil {
		respondWithServiceError(w, "Failed to list themes", err)
		return
	}
	respondJSON(w, http.StatusOK, tree)
}

// Get returns one theme with its words
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid theme ID", "", nil)
		return
	}
	theme, words, err := h.themes.GetTheme(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, "Failed to load theme", err)
		return
	}
	respondJSON(w, http.StatusOK, themeResponse{Theme: theme, Words: words})
}

// Create adds a folder or leaf theme
func (h *ThemeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ThemeInput
	if err := decodeJSON(r, &in); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid theme", "decode theme", err)
		return
	}
	theme, err := h.themes.CreateTheme(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, "Failed to create theme", err)
		return
	}
	respondJSON(w, http.StatusCreated, theme)
}

// Rename changes a theme's name
func (h *ThemeHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid theme ID", "", nil)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid theme", "decode rename", err)
		return
	}
	if err := h.themes.RenameTheme(r.Context(), id, body.Name); err != nil {
		respondWithServiceError(w, "Failed to rename theme", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a theme and everything below it
func (h *ThemeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid theme ID", "", nil)
		return
	}
	if err := h.themes.DeleteTheme(r.Context(), id); err != nil {
		respondWithServiceError(w, "Failed to delete theme", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddWords appends words to a leaf theme
func (h *ThemeHandler) AddWords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid theme ID", "", nil)
		return
	}
	var words []models.WordInput
	if err := decodeJSON(r, &words); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid words", "decode words", err)
		return
	}
	added, err := h.themes.AddWords(r.Context(), id, words)
	if err != nil {
		respondWithServiceError(w, "Failed to add words", err)
		return
	}
	respondJSON(w, http.StatusCreated, added)
}

// DeleteWord removes one word from a theme
func (h *ThemeHandler) DeleteWord(w http.ResponseWriter, r *http.Request) {
	themeID, ok := pathID(r, "id")
	wordID, ok2 := pathID(r, "wordId")
	if !ok || !ok2 {
		respondWithError(w, http.StatusBadRequest, "Invalid ID", "", nil)
		return
	}
	if err := h.themes.DeleteWord(r.Context(), themeID, wordID); err != nil {
		respondWithServiceError(w, "Failed to delete word", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import creates a leaf theme from an uploaded xlsx or csv file. Form fields:
// file, name (defaults to the file name), parentId, sourceColumn,
// targetColumn, sheet and skipHeader.
func (h *ThemeHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadMaxSize)
	if err := r.ParseMultipartForm(h.uploadMaxSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Upload too large or malformed", "parse import form", err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file", "read import file", err)
		return
	}
	defer file.Close()

	format, err := importer.FormatFromName(header.Filename)
	if err != nil {
		respondWithServiceError(w, "Unsupported import", err)
		return
	}

	cfg := importer.DefaultConfig()
	if v := r.FormValue("sourceColumn"); v != "" {
		cfg.SourceColumn = v
	}
	if v := r.FormValue("targetColumn"); v != "" {
		cfg.TargetColumn = v
	}
	cfg.SheetName = r.FormValue("sheet")
	if v := r.FormValue("skipHeader"); v != "" {
		cfg.SkipHeader, _ = strconv.ParseBool(v)
	}

	result, err := importer.ImportReader(file, format, cfg)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Could not read import file", "import", err)
		return
	}

	in := models.ThemeInput{Name: r.FormValue("name"), Words: result.Words}
	if in.Name == "" {
		in.Name = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	if v := r.FormValue("parentId"); v != "" {
		parentID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid parent ID", "", nil)
			return
		}
		in.ParentID = &parentID
	}

	theme, err := h.themes.CreateTheme(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, "Failed to create imported theme", err)
		return
	}
	respondJSON(w, http.StatusCreated, importResponse{Theme: theme, Words: len(result.Words), Skipped: result.Skipped})
}
