package web

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
)

// DueDateLayout is the format of the due date input (HTML datetime-local).
const DueDateLayout = "2006-01-02T15:04"

const (
	msgRequired      = "This field is required."
	msgInvalidEmail  = "Please enter a valid email address"
	msgShortPassword = "Password must be at least 6 characters"
	msgUsernameLen   = "Username must be between 3 and 80 characters"
	msgPasswordMatch = "Passwords must match"
	msgInvalidChoice = "Not a valid choice."
	msgInvalidDate   = "Not a valid datetime value."
	msgEmailTooLong  = "Email must be at most 254 characters"
)

const (
	passwordMin = 6
	emailMax    = 254
	usernameMin = 3
	usernameMax = 80
)

// FieldErrors maps a form field name to its first failing rule.
type FieldErrors map[string]string

func (e FieldErrors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

type LoginForm struct {
	Email    string
	Password string
	Errors   FieldErrors
}

func parseLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Errors:   FieldErrors{},
	}
}

func (f *LoginForm) Validate() bool {
	checkEmail(f.Errors, "email", f.Email)
	checkPassword(f.Errors, "password", f.Password)
	return len(f.Errors) == 0
}

type RegisterForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Errors          FieldErrors
}

func parseRegisterForm(r *http.Request) *RegisterForm {
	return &RegisterForm{
		Username:        r.PostFormValue("username"),
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
		Errors:          FieldErrors{},
	}
}

func (f *RegisterForm) Validate() bool {
	if strings.TrimSpace(f.Username) == "" {
		f.Errors.add("username", msgRequired)
	} else if n := utf8.RuneCountInString(f.Username); n < usernameMin || n > usernameMax {
		f.Errors.add("username", msgUsernameLen)
	}
	checkEmail(f.Errors, "email", f.Email)
	checkPassword(f.Errors, "password", f.Password)
	if f.ConfirmPassword == "" {
		f.Errors.add("confirm_password", msgRequired)
	} else if f.ConfirmPassword != f.Password {
		f.Errors.add("confirm_password", msgPasswordMatch)
	}
	return len(f.Errors) == 0
}

// TaskForm backs both the create and the update page. DueDate and
// CategoryID hold the raw submitted text so a rejected form re-renders as
// typed.
type TaskForm struct {
	Name        string
	Description string
	DueDate     string
	CategoryID  string
	Errors      FieldErrors

	Input models.TaskInput
}

func parseTaskForm(r *http.Request) *TaskForm {
	return &TaskForm{
		Name:        r.PostFormValue("name"),
		Description: r.PostFormValue("description"),
		DueDate:     strings.TrimSpace(r.PostFormValue("due_date")),
		CategoryID:  r.PostFormValue("category_id"),
		Errors:      FieldErrors{},
	}
}

// taskFormFrom pre-fills the form with an existing task.
func taskFormFrom(t *models.Task) *TaskForm {
	f := &TaskForm{
		Name:        t.Name,
		Description: t.Description,
		CategoryID:  strconv.FormatInt(t.CategoryID, 10),
		Errors:      FieldErrors{},
	}
	if t.DueDate != nil {
		f.DueDate = t.DueDate.In(time.Local).Format(DueDateLayout)
	}
	return f
}

// Validate checks the fields and, when they pass, fills Input. The due date
// is read in the server's local time zone. Whether it lies in the past is
// left to the task service.
func (f *TaskForm) Validate(categories []models.Category) bool {
	if strings.TrimSpace(f.Name) == "" {
		f.Errors.add("name", msgRequired)
	} else if n := utf8.RuneCountInString(f.Name); n < services.TaskNameMin || n > services.TaskNameMax {
		f.Errors.add("name", "Field must be between 4 and 80 characters long.")
	}

	var due *time.Time
	if f.DueDate != "" {
		t, err := time.ParseInLocation(DueDateLayout, f.DueDate, time.Local)
		if err != nil {
			f.Errors.add("due_date", msgInvalidDate)
		} else {
			due = &t
		}
	}

	categoryID, err := strconv.ParseInt(f.CategoryID, 10, 64)
	switch {
	case err != nil || categoryID == 0:
		f.Errors.add("category_id", msgRequired)
	case !hasCategory(categories, categoryID):
		f.Errors.add("category_id", msgInvalidChoice)
	}

	if len(f.Errors) > 0 {
		return false
	}

	f.Input = models.TaskInput{
		CategoryID:  categoryID,
		Name:        f.Name,
		Description: f.Description,
		DueDate:     due,
	}
	return true
}

func hasCategory(categories []models.Category, id int64) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func checkEmail(errs FieldErrors, field, value string) {
	if value == "" {
		errs.add(field, msgRequired)
		return
	}
	if len(value) > emailMax {
		errs.add(field, msgEmailTooLong)
		return
	}
	if !validEmail(value) {
		errs.add(field, msgInvalidEmail)
	}
}

func checkPassword(errs FieldErrors, field, value string) {
	if value == "" {
		errs.add(field, msgRequired)
		return
	}
	if utf8.RuneCountInString(value) < passwordMin {
		errs.add(field, msgShortPassword)
	}
}

// validEmail accepts a bare address (no display name) whose domain has at
// least one dot.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
