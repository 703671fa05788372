package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/server/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"login.html", "register.html", "tasks.html", "details.html", "task_form.html"}

// viewData is what every page template receives.
type viewData struct {
	User    *models.User
	Flashes []Flash
	Now     time.Time

	Next     string
	Login    *LoginForm
	Register *RegisterForm

	View       models.TaskFilter
	Tasks      []models.Task
	Task       *models.Task
	TaskForm   *TaskForm
	Categories []models.Category
}

var templateFuncs = template.FuncMap{
	"dueDate":   formatDueDate,
	"countdown": countdown,
	"viewTitle": viewTitle,
}

func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(page).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

// render writes page with status. Flashes queued for this request are
// displayed after any passed in data.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data *viewData) {
	if u, ok := currentUser(r.Context()); ok && data.User == nil {
		pub := u.Public()
		data.User = &pub
	}
	data.Flashes = append(popFlashes(w, r), data.Flashes...)
	data.Now = s.now()

	t, ok := s.templates[page]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown page %q", page))
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func formatDueDate(t *time.Time) string {
	if t == nil {
		return "No due date"
	}
	return t.In(time.Local).Format("Mon, 02 Jan 2006 15:04")
}

// countdown renders the time left until the due date, for example
// "2 days, 3 hours left" or "overdue by 5 minutes".
func countdown(t *models.Task, now time.Time) string {
	left, ok := t.TimeLeft(now)
	if !ok {
		return "No due date"
	}
	if left < 0 {
		return "overdue by " + humanDuration(-left)
	}
	return humanDuration(left) + " left"
}

func humanDuration(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return plural(days, "day") + ", " + plural(hours, "hour")
	case hours > 0:
		return plural(hours, "hour") + ", " + plural(minutes, "minute")
	default:
		return plural(minutes, "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func viewTitle(v models.TaskFilter) string {
	switch v {
	case models.FilterCompleted:
		return "Completed tasks"
	case models.FilterAll:
		return "All tasks"
	default:
		return "Pending tasks"
	}
}
