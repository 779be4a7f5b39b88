package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/storage"
)

const maxFormBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so field errors line up with request keys
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerForm struct {
	Email     string `json:"email" validate:"required,email,min=6,max=100"`
	Password1 string `json:"password1" validate:"required,min=8,max=25"`
	Password2 string `json:"password2" validate:"required,eqfield=Password1"`
}

type profileForm struct {
	Username string `json:"username" validate:"required,max=100"`
}

type blogPostForm struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
	Tags    []uint `json:"tags" validate:"required,min=1"`
}

// normalize trims surrounding whitespace before validation.
func (f *loginForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

func (f *registerForm) normalize() {
	f.Email = strings.TrimSpace(f.Email)
}

func (f *profileForm) normalize() {
	f.Username = strings.TrimSpace(f.Username)
}

func (f *blogPostForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	if strings.TrimSpace(f.Content) == "" {
		f.Content = ""
	}
}

// validateForm runs the struct rules and collects every failure per field.
func validateForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errs.NewInternalErrorWithCause("validate form", err)
	}

	apiErr := errs.NewValidationError()
	for _, fe := range validationErrs {
		apiErr.AddFieldError(fe.Field(), validationMessage(fe))
	}
	return apiErr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "min":
		if fe.Kind() == reflect.Slice {
			return "This field is required."
		}
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	default:
		return "Enter a valid value."
	}
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// isURLEncoded also accepts a missing Content-Type, which parses as an empty form.
func isURLEncoded(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/x-www-form-urlencoded"
}

var formContentTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

func unsupportedMediaType(r *http.Request) error {
	return errs.NewUnsupportedMediaTypeError(r.Header.Get("Content-Type"), formContentTypes)
}

// removeMultipartFiles deletes the temp files backing a parsed multipart form.
// The server only cleans up forms parsed on the original request, and
// handlers here always see a copy made by WithContext.
func removeMultipartFiles(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxFormBytes)
		}
		return errs.NewMalformedPayloadError("JSON", err)
	}
	return nil
}

// bindForm fills one of the simple string forms from JSON or url-encoded input.
func bindForm(w http.ResponseWriter, r *http.Request, dst any, fields map[string]*string) error {
	if isJSON(r) {
		return decodeJSON(w, r, dst)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	switch {
	case isMultipart(r):
		err := r.ParseMultipartForm(maxFormBytes)
		defer removeMultipartFiles(r)
		if err != nil {
			return errs.NewMalformedPayloadError("multipart form", err)
		}
	case isURLEncoded(r):
		if err := r.ParseForm(); err != nil {
			return errs.NewMalformedPayloadError("form", err)
		}
	default:
		return unsupportedMediaType(r)
	}
	for name, target := range fields {
		*target = r.PostFormValue(name)
	}
	return nil
}

func (h accountHandler) bindLogin(w http.ResponseWriter, r *http.Request) (loginForm, error) {
	var form loginForm
	err := bindForm(w, r, &form, map[string]*string{
		"email":    &form.Email,
		"password": &form.Password,
	})
	if err != nil {
		return form, err
	}
	form.normalize()
	return form, validateForm(form)
}

func (h accountHandler) bindRegister(w http.ResponseWriter, r *http.Request) (registerForm, error) {
	var form registerForm
	err := bindForm(w, r, &form, map[string]*string{
		"email":     &form.Email,
		"password1": &form.Password1,
		"password2": &form.Password2,
	})
	if err != nil {
		return form, err
	}
	form.normalize()
	return form, validateForm(form)
}

func (h accountHandler) bindProfile(w http.ResponseWriter, r *http.Request) (profileForm, error) {
	var form profileForm
	err := bindForm(w, r, &form, map[string]*string{
		"username": &form.Username,
	})
	if err != nil {
		return form, err
	}
	form.normalize()
	return form, validateForm(form)
}

// parseTagIDs accepts repeated values and comma-separated lists.
func parseTagIDs(values []string) ([]uint, error) {
	var ids []uint
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil || id == 0 {
				return nil, errs.NewFieldError("tags", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", part))
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

// bindBlogPost reads the blog form. The returned cleanup closes any uploaded
// file and removes multipart temp files; it is never nil.
func (h blogPostHandler) bindBlogPost(w http.ResponseWriter, r *http.Request) (blogPostForm, *storage.Upload, func(), error) {
	var form blogPostForm
	cleanup := func() {}

	switch {
	case isJSON(r):
		if err := decodeJSON(w, r, &form); err != nil {
			return form, nil, cleanup, err
		}
	case isMultipart(r):
		r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+maxFormBytes)
		err := r.ParseMultipartForm(maxFormBytes)
		cleanup = func() { removeMultipartFiles(r) }
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return form, nil, cleanup, errs.NewFieldError("image", "Image file too large.")
			}
			return form, nil, cleanup, errs.NewMalformedPayloadError("multipart form", err)
		}
		if err := h.bindFormValues(r, &form); err != nil {
			return form, nil, cleanup, err
		}
	case isURLEncoded(r):
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			return form, nil, cleanup, errs.NewMalformedPayloadError("form", err)
		}
		if err := h.bindFormValues(r, &form); err != nil {
			return form, nil, cleanup, err
		}
	default:
		return form, nil, cleanup, unsupportedMediaType(r)
	}

	form.normalize()
	if err := validateForm(form); err != nil {
		return form, nil, cleanup, err
	}

	if r.MultipartForm == nil {
		return form, nil, cleanup, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil, cleanup, nil
	}
	if err != nil {
		return form, nil, cleanup, errs.NewFieldError("image", "Upload a valid image.")
	}

	upload := &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
	removeFiles := cleanup
	return form, upload, func() {
		_ = file.Close()
		removeFiles()
	}, nil
}

func (h blogPostHandler) bindFormValues(r *http.Request, form *blogPostForm) error {
	form.Title = r.PostFormValue("title")
	form.Content = r.PostFormValue("content")
	ids, err := parseTagIDs(r.PostForm["tags"])
	if err != nil {
		return err
	}
	form.Tags = ids
	return nil
}
