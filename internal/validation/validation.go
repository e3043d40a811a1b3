package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"wordclash/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterStructValidation(gameConfigRules, models.GameConfig{})
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is the list of problems found in one value
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return strings.Join(parts, "; ")
}

// gameConfigRules checks the constraints that span more than one field
func gameConfigRules(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(models.GameConfig)
	if cfg.TimerMode != models.TimerNone && cfg.TimeLimitSeconds <= 0 {
		sl.ReportError(cfg.TimeLimitSeconds, "timeLimit", "TimeLimitSeconds", "required_with_timer", "")
	}
	if cfg.IsReplay && cfg.ReplayOf == "" {
		sl.ReportError(cfg.ReplayOf, "replayOf", "ReplayOf", "required_with_replay", "")
	}
}

// ValidateGameConfig checks a configuration before a game is started
func ValidateGameConfig(cfg models.GameConfig) error {
	return format(validate.Struct(cfg))
}

// ValidateThemeInput checks a new theme and its words
func ValidateThemeInput(in models.ThemeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return Errors{{Field: "name", Message: "name is required"}}
	}
	if in.IsFolder && len(in.Words) > 0 {
		return Errors{{Field: "words", Message: "folders cannot hold words"}}
	}
	return format(validate.Struct(in))
}

// ValidateWord checks one word pair
func ValidateWord(in models.WordInput) error {
	in.SourceText = strings.TrimSpace(in.SourceText)
	in.TargetText = strings.TrimSpace(in.TargetText)
	return format(validate.Struct(in))
}

func format(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	out := make(Errors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		field := jsonName(fe.Field())
		var message string
		switch fe.Tag() {
		case "required":
			message = field + " is required"
		case "min":
			message = field + " must be at least " + fe.Param()
		case "max":
			message = field + " must be at most " + fe.Param()
		case "oneof":
			message = field + " must be one of: " + fe.Param()
		case "gt":
			message = field + " must be greater than " + fe.Param()
		case "required_with_timer":
			message = "timeLimit must be positive when a timer is enabled"
		case "required_with_replay":
			message = "replayOf is required for a replay"
		default:
			message = field + " is invalid"
		}
		out = append(out, ValidationError{Field: field, Message: message})
	}
	return out
}

var jsonNames = map[string]string{
	"ThemeIDs":         "themeIds",
	"WordCount":        "wordCount",
	"Mode":             "mode",
	"TimerMode":        "timerMode",
	"TimeLimitSeconds": "timeLimit",
	"Direction":        "direction",
	"BatchSize":        "batchSize",
	"OptionsCount":     "optionsCount",
	"TotalQuestions":   "totalQuestions",
	"SourceText":       "source",
	"TargetText":       "target",
	"Name":             "name",
	"Words":            "words",
	"timeLimit":        "timeLimit",
	"replayOf":         "replayOf",
}

func jsonName(field string) string {
	if name, ok := jsonNames[field]; ok {
		return name
	}
	return field
}
