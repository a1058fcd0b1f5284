package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/norsk-prova/quiz-session-service/internal/errors"
	"github.com/norsk-prova/quiz-session-service/internal/models"
)

// Validator wraps the struct validator with the custom rules for question
// sets and session requests.
type Validator struct {
	structValidator *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{structValidator: validate}
}

// Validate runs struct-tag validation and converts failures into the shared
// validation error type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := apperrors.ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

// Custom validation functions

func ValidateQuestionKind(fl validator.FieldLevel) bool {
	validKinds := []models.QuestionKind{
		models.KindScalarChoice,
		models.KindImageChoice,
		models.KindWordInText,
		models.KindParagraphChoice,
		models.KindFillInBlanks,
		models.KindRegionClick,
		models.KindMultiDropdown,
		models.KindDualDropdown,
	}

	value := fl.Field().String()
	for _, validKind := range validKinds {
		if string(validKind) == value {
			return true
		}
	}
	return false
}

func ValidateDifficultyLevel(fl validator.FieldLevel) bool {
	validLevels := []models.DifficultyLevel{
		models.DifficultyEasy,
		models.DifficultyMedium,
		models.DifficultyHard,
	}

	value := fl.Field().String()
	for _, validLevel := range validLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}

func ValidateSessionMode(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == string(models.ModeReading) || value == string(models.ModeListening)
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_kind", ValidateQuestionKind)
	validate.RegisterValidation("difficulty_level", ValidateDifficultyLevel)
	validate.RegisterValidation("session_mode", ValidateSessionMode)

	// Use json tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
