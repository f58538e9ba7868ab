package builder

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelection is returned when a selection cannot be submitted
var ErrInvalidSelection = errors.New("invalid report selection")

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult contains the result of validation
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

// InvalidSelectionError carries the failed validation result
type InvalidSelectionError struct {
	Result *ValidationResult
}

func (e *InvalidSelectionError) Error() string {
	messages := make([]string, 0, len(e.Result.Errors))
	for _, ve := range e.Result.Errors {
		messages = append(messages, ve.Message)
	}
	return fmt.Sprintf("%s: %s", ErrInvalidSelection, strings.Join(messages, "; "))
}

func (e *InvalidSelectionError) Unwrap() error {
	return ErrInvalidSelection
}

// Validate checks a selection against the rules of the template:
//   - every template needs a non-blank title
//   - Competitive Analysis needs brand and competitor folders
//   - Sentiment Analysis needs brand folders; competitors are optional
//   - every other template needs at least one data source
func Validate(templateName string, sel SelectionState) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	if strings.TrimSpace(templateName) == "" {
		result.addError("template", "required", "Template is required")
	}
	if strings.TrimSpace(sel.Title) == "" {
		result.addError("title", "required", "Report title is required")
	}

	switch KindFor(templateName) {
	case KindComparative:
		if len(sel.BrandFolderIDs) == 0 {
			result.addError("brand_folder_ids", "required", "Select at least one brand folder")
		}
		if templateName == TemplateCompetitiveAnalysis && len(sel.CompetitorFolderIDs) == 0 {
			result.addError("competitor_folder_ids", "required", "Select at least one competitor folder")
		}
		validateIDs("brand_folder_ids", sel.BrandFolderIDs, result)
		validateIDs("competitor_folder_ids", sel.CompetitorFolderIDs, result)
	default:
		if len(sel.SelectedDataSources) == 0 {
			result.addError("selected_data_sources", "required", "Select at least one data source")
		}
		validateIDs("selected_data_sources", sel.SelectedDataSources, result)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// CanSubmit reports whether the generate action is enabled for a selection
func CanSubmit(templateName string, sel SelectionState) bool {
	return Validate(templateName, sel).IsValid
}

func validateIDs(field string, ids []int, result *ValidationResult) {
	for i, id := range ids {
		if id <= 0 {
			result.addError(fmt.Sprintf("%s[%d]", field, i), "invalid", "Identifiers must be positive")
		}
	}
}

// addError adds an error to the validation result
func (r *ValidationResult) addError(field, code, message string) {
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Code:    code,
		Message: message,
	})
	r.IsValid = false
}
