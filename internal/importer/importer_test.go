package importer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName() error = %v", err)
		}
		if err := f.SetSheetRow("Sheet1", axis, &row); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "words.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	return path
}

func TestImportFileExcel(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"German", "English"},
		{"Hund", "dog"},
		{"", ""},
		{"Katze", ""},
		{"  Haus ", " house"},
	})

	result, err := ImportFile(path, DefaultConfig())
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}

	if len(result.Words) != 2 {
		t.Fatalf("ImportFile() words = %d, want 2", len(result.Words))
	}
	if got := result.Words[1]; got.SourceText != "Haus" || got.TargetText != "house" {
		t.Errorf("ImportFile() second word = %+v, want trimmed Haus/house", got)
	}
	if result.Processed != 4 {
		t.Errorf("ImportFile() processed = %d, want 4", result.Processed)
	}
	// excelize drops trailing empty rows, but the blank middle row is kept
	if len(result.Skipped) != 2 || result.Skipped[0].Row != 3 || result.Skipped[1].Row != 4 {
		t.Errorf("ImportFile() skipped = %+v, want rows 3 and 4", result.Skipped)
	}
}

func TestImportReaderCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cfg       Config
		wantWords int
		wantSkip  int
	}{
		{
			name:      "header skipped",
			input:     "source,target\nrot,red\nblau,blue\n",
			cfg:       DefaultConfig(),
			wantWords: 2,
		},
		{
			name:      "no header",
			input:     "rot,red\nblau,blue\n",
			cfg:       Config{},
			wantWords: 2,
		},
		{
			name:      "short rows reported",
			input:     "rot,red\ngrün\n,yellow\n",
			cfg:       Config{},
			wantWords: 1,
			wantSkip:  2,
		},
		{
			name:      "custom columns",
			input:     "1,rot,x,red\n2,blau,y,blue\n",
			cfg:       Config{SourceColumn: "B", TargetColumn: "D"},
			wantWords: 2,
		},
		{
			name:      "quoted commas",
			input:     "\"Guten Tag, Herr\",\"Good day, sir\"\n",
			cfg:       Config{},
			wantWords: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ImportReader(strings.NewReader(tt.input), FormatCSV, tt.cfg)
			if err != nil {
				t.Fatalf("ImportReader() error = %v", err)
			}
			if len(result.Words) != tt.wantWords {
				t.Errorf("ImportReader() words = %d, want %d", len(result.Words), tt.wantWords)
			}
			if len(result.Skipped) != tt.wantSkip {
				t.Errorf("ImportReader() skipped = %d, want %d", len(result.Skipped), tt.wantSkip)
			}
		})
	}
}

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"words.xlsx", FormatXLSX, false},
		{"WORDS.CSV", FormatCSV, false},
		{"words.pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FormatFromName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("FormatFromName() error = %v, want %v", err, ErrUnsupportedFormat)
			}
			if got != tt.want {
				t.Errorf("FormatFromName() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestImportReaderBadColumn(t *testing.T) {
	_, err := ImportReader(strings.NewReader("a,b\n"), FormatCSV, Config{SourceColumn: "1"})
	if err == nil {
		t.Errorf("ImportReader() error = nil, want invalid column error")
	}
}
