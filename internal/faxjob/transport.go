package faxjob

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/ahmethakanbesel/fax-api/internal/apperror"
)

var faxNumberPattern = regexp.MustCompile(`^\+?[0-9][0-9\-\s()]*$`)

var validate = newValidator()

func newValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("faxnumber", func(fl validatorv10.FieldLevel) bool {
		return faxNumberPattern.MatchString(fl.Field().String())
	})
	return v
}

func validationError(err error) *apperror.AppError {
	var ve validatorv10.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return apperror.New(apperror.BadRequest, err.Error())
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return apperror.New(apperror.BadRequest, strings.Join(msgs, "; "))
}

type CreateJobRequest struct {
	ID               string `json:"id" validate:"omitempty,uuid"`
	FileURL          string `json:"fileUrl" validate:"required,url,max=2048"`
	FaxNumber        string `json:"faxNumber" validate:"required,max=32,faxnumber"`
	RequestUser      string `json:"requestUser" validate:"omitempty,max=255"`
	FileName         string `json:"fileName" validate:"omitempty,max=255"`
	CallbackURL      string `json:"callbackUrl" validate:"omitempty,url,max=2048"`
	OrderDestination string `json:"orderDestination" validate:"omitempty,max=255"`
}

func (r CreateJobRequest) Validate() *apperror.AppError {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

type GetJobRequest struct {
	ID string `validate:"required,uuid"`
}

func (r GetJobRequest) Validate() *apperror.AppError {
	if err := validate.Struct(r); err != nil {
		return apperror.New(apperror.BadRequest, "invalid job id")
	}
	return nil
}

// UpdateStatusRequest drives the Mark* transitions. ErrorMessage is only
// used when Status is StatusError.
type UpdateStatusRequest struct {
	Status       *int   `json:"status" validate:"required,oneof=-1 0 1 2"`
	ErrorMessage string `json:"errorMessage" validate:"max=4096"`
}

func (r UpdateStatusRequest) Validate() *apperror.AppError {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

type SetConvertedPDFRequest struct {
	Path string `json:"path" validate:"required,max=1024"`
}

func (r SetConvertedPDFRequest) Validate() *apperror.AppError {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}
