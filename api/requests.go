package api

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/cosminvladulescu/bcon-site/errs"
	"github.com/cosminvladulescu/bcon-site/models"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var slugRule = validation.Match(slugPattern).Error("must contain only lowercase letters, digits and single hyphens")

// ratingRule accepts a nil pointer and any rating within the allowed range.
var ratingRule = validation.By(func(value interface{}) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}
	rating, ok := v.(int)
	if !ok {
		return errors.New("must be a whole number")
	}
	if rating < models.MinRating || rating > models.MaxRating {
		return fmt.Errorf("must be between %d and %d", models.MinRating, models.MaxRating)
	}
	return nil
})

// validationError turns ozzo validation output into an errs.ApiErr naming the
// first offending field, as missing when its rule was Required.
func validationError(err error) error {
	if err == nil {
		return nil
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return errs.NewInternalErrorWithCause("validate request", internal.InternalError())
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make([]string, 0, len(fieldErrs))
		for field := range fieldErrs {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		field := fields[0]

		var ruleErr validation.Error
		if errors.As(fieldErrs[field], &ruleErr) && ruleErr.Code() == validation.ErrRequired.Code() {
			return errs.NewMissingRequiredFieldError(field)
		}
		return errs.NewInvalidFieldError(field, fieldErrs[field].Error())
	}

	return errs.NewValidationError("", err.Error())
}

func trim(values ...*string) {
	for _, v := range values {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
}

// Auth

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Validate() error {
	trim(&r.Email)
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Password, validation.Required),
	)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r *registerRequest) Validate() error {
	trim(&r.Email, &r.Name)
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat, validation.Length(3, 255)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&r.Name, validation.Required, validation.Length(2, 100)),
	)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

type profileResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Contact

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

func (r *contactRequest) Validate() error {
	trim(&r.Name, &r.Email, &r.Phone, &r.Company, &r.Message)
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, is.EmailFormat, validation.Length(3, 255)),
		validation.Field(&r.Phone, validation.Length(0, 50)),
		validation.Field(&r.Company, validation.Length(0, 200)),
		validation.Field(&r.Message, validation.Required, validation.Length(1, 10000)),
	)
}

func (r *contactRequest) toModel() *models.ContactMessage {
	return &models.ContactMessage{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Company: r.Company,
		Message: r.Message,
	}
}

// Blog posts

type blogPostRequest struct {
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Excerpt   string `json:"excerpt"`
	Content   string `json:"content"`
	ImageURL  string `json:"image_url"`
	Category  string `json:"category"`
	Published bool   `json:"published"`
}

func (r *blogPostRequest) Validate() error {
	trim(&r.Title, &r.Slug, &r.Excerpt, &r.ImageURL, &r.Category)
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Slug, validation.Required, validation.Length(1, 200), slugRule),
		validation.Field(&r.ImageURL, is.RequestURI),
	)
}

func (r *blogPostRequest) toModel(author string) *models.BlogPost {
	return &models.BlogPost{
		Title:     r.Title,
		Slug:      r.Slug,
		Excerpt:   r.Excerpt,
		Content:   r.Content,
		ImageURL:  r.ImageURL,
		Category:  r.Category,
		Author:    author,
		Published: r.Published,
	}
}

// blogPostUpdate changes only the fields present in the request body.
type blogPostUpdate struct {
	Title     *string `json:"title"`
	Slug      *string `json:"slug"`
	Excerpt   *string `json:"excerpt"`
	Content   *string `json:"content"`
	ImageURL  *string `json:"image_url"`
	Category  *string `json:"category"`
	Published *bool   `json:"published"`
}

func (r *blogPostUpdate) Validate() error {
	trim(r.Title, r.Slug, r.Excerpt, r.ImageURL, r.Category)
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 300)),
		validation.Field(&r.Slug, validation.NilOrNotEmpty, validation.Length(1, 200), slugRule),
		validation.Field(&r.ImageURL, is.RequestURI),
	)
}

func (r *blogPostUpdate) fields() map[string]any {
	fields := map[string]any{}
	setString(fields, "title", r.Title)
	setString(fields, "slug", r.Slug)
	setString(fields, "excerpt", r.Excerpt)
	setString(fields, "content", r.Content)
	setString(fields, "image_url", r.ImageURL)
	setString(fields, "category", r.Category)
	setBool(fields, "published", r.Published)
	return fields
}

// Projects

type projectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Challenge   string `json:"challenge"`
	Solution    string `json:"solution"`
	Results     string `json:"results"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
	Year        string `json:"year"`
	IsFeatured  bool   `json:"is_featured"`
}

func (r *projectRequest) Validate() error {
	trim(&r.Title, &r.Category, &r.ImageURL, &r.Year)
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.ImageURL, is.RequestURI),
		validation.Field(&r.Year, validation.Length(0, 20)),
	)
}

func (r *projectRequest) toModel() *models.Project {
	return &models.Project{
		Title:       r.Title,
		Description: r.Description,
		Challenge:   r.Challenge,
		Solution:    r.Solution,
		Results:     r.Results,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Year:        r.Year,
		IsFeatured:  r.IsFeatured,
	}
}

type projectUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Challenge   *string `json:"challenge"`
	Solution    *string `json:"solution"`
	Results     *string `json:"results"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"image_url"`
	Year        *string `json:"year"`
	IsFeatured  *bool   `json:"is_featured"`
}

func (r *projectUpdate) Validate() error {
	trim(r.Title, r.Category, r.ImageURL, r.Year)
	return validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 300)),
		validation.Field(&r.Description, validation.NilOrNotEmpty),
		validation.Field(&r.ImageURL, is.RequestURI),
		validation.Field(&r.Year, validation.Length(0, 20)),
	)
}

func (r *projectUpdate) fields() map[string]any {
	fields := map[string]any{}
	setString(fields, "title", r.Title)
	setString(fields, "description", r.Description)
	setString(fields, "challenge", r.Challenge)
	setString(fields, "solution", r.Solution)
	setString(fields, "results", r.Results)
	setString(fields, "category", r.Category)
	setString(fields, "image_url", r.ImageURL)
	setString(fields, "year", r.Year)
	setBool(fields, "is_featured", r.IsFeatured)
	return fields
}

// Testimonials

type testimonialRequest struct {
	ClientName string `json:"client_name"`
	Company    string `json:"company"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	Rating     *int   `json:"rating"`
	LogoURL    string `json:"logo_url"`
	IsActive   *bool  `json:"is_active"`
}

func (r *testimonialRequest) Validate() error {
	trim(&r.ClientName, &r.Company, &r.Role, &r.LogoURL)
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.Required),
		validation.Field(&r.Rating, ratingRule),
		validation.Field(&r.LogoURL, is.RequestURI),
	)
}

func (r *testimonialRequest) toModel() *models.Testimonial {
	t := &models.Testimonial{
		ClientName: r.ClientName,
		Company:    r.Company,
		Role:       r.Role,
		Content:    r.Content,
		Rating:     models.MaxRating,
		LogoURL:    r.LogoURL,
		IsActive:   true,
	}
	if r.Rating != nil {
		t.Rating = *r.Rating
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
	return t
}

type testimonialUpdate struct {
	ClientName *string `json:"client_name"`
	Company    *string `json:"company"`
	Role       *string `json:"role"`
	Content    *string `json:"content"`
	Rating     *int    `json:"rating"`
	LogoURL    *string `json:"logo_url"`
	IsActive   *bool   `json:"is_active"`
}

func (r *testimonialUpdate) Validate() error {
	trim(r.ClientName, r.Company, r.Role, r.LogoURL)
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientName, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Content, validation.NilOrNotEmpty),
		validation.Field(&r.Rating, ratingRule),
		validation.Field(&r.LogoURL, is.RequestURI),
	)
}

func (r *testimonialUpdate) fields() map[string]any {
	fields := map[string]any{}
	setString(fields, "client_name", r.ClientName)
	setString(fields, "company", r.Company)
	setString(fields, "role", r.Role)
	setString(fields, "content", r.Content)
	setString(fields, "logo_url", r.LogoURL)
	setBool(fields, "is_active", r.IsActive)
	if r.Rating != nil {
		fields["rating"] = *r.Rating
	}
	return fields
}

func setString(fields map[string]any, column string, v *string) {
	if v != nil {
		fields[column] = *v
	}
}

func setBool(fields map[string]any, column string, v *bool) {
	if v != nil {
		fields[column] = *v
	}
}
