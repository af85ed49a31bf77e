package validator

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/harshithb3304/Learning-Management-System-sub001/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateCourseCreate validates course creation business rules
func (bv *BusinessValidator) ValidateCourseCreate(req *CourseCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if strings.TrimSpace(req.Title) == "" {
		errors = append(errors, ValidationError{
			Field:   "title",
			Message: "cannot be blank",
			Value:   req.Title,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateCourseworkCreate validates coursework creation business rules
func (bv *BusinessValidator) ValidateCourseworkCreate(req *CourseworkCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.DueDate != nil && req.DueDate.Before(time.Now()) {
		errors = append(errors, ValidationError{
			Field:   "due_date",
			Message: "must be in the future",
			Value:   req.DueDate,
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateRoleUpdate validates a role change request against the
// closed role set
func (bv *BusinessValidator) ValidateRoleUpdate(req *RoleUpdateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if _, ok := models.ParseRole(req.Role); !ok {
		errors = append(errors, ValidationError{
			Field:   "role",
			Message: "unknown role",
			Value:   req.Role,
			Rule:    "user_role",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// Title validation (1-200 characters after trimming)
	bv.validate.RegisterValidation("course_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// Description validation (max 2000 characters)
	bv.validate.RegisterValidation("course_description", func(fl validator.FieldLevel) bool {
		desc := fl.Field().String()
		return len(desc) <= 2000
	})

	// Due date validation (must be in future)
	bv.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		field := fl.Field()

		if field.Kind() == reflect.Ptr && field.IsNil() {
			return true // Optional field
		}

		var dueDate time.Time
		if field.Kind() == reflect.Ptr {
			dueDate = field.Elem().Interface().(time.Time)
		} else {
			dueDate = field.Interface().(time.Time)
		}

		return dueDate.After(time.Now())
	})

	// Role validation against the closed role set
	bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseRole(fl.Field().String())
		return ok
	})
}
