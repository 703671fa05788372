package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/gorilla/mux"
)

func (s *Server) listTasks(filter models.TaskFilter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := currentUser(r.Context())

		tasks, err := s.tasks.List(r.Context(), user.ID, filter)
		if err != nil {
			s.serverError(w, r, err)
			return
		}

		s.render(w, r, http.StatusOK, "tasks.html", &viewData{View: filter, Tasks: tasks})
	}
}

func (s *Server) taskDetails(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	task, err := s.tasks.Get(r.Context(), taskID(r), user.ID)
	if err != nil {
		s.taskError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "details.html", &viewData{Task: task})
}

// deleteTask and toggleTask redirect home whether or not the task was found.
func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	err := s.tasks.Delete(r.Context(), taskID(r), user.ID)
	switch {
	case err == nil:
		addFlash(w, r, FlashSuccess, "Task deleted successfully")
	case errors.Is(err, common.ErrorNotFound):
	default:
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) toggleTask(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	_, err := s.tasks.ToggleComplete(r.Context(), taskID(r), user.ID)
	switch {
	case err == nil:
		addFlash(w, r, FlashSuccess, "Task status updated")
	case errors.Is(err, common.ErrorNotFound):
	default:
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())

	categories, err := s.tasks.Categories(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := &viewData{Categories: categories, TaskForm: &TaskForm{Errors: FieldErrors{}}}

	if r.Method == http.MethodPost {
		form := parseTaskForm(r)
		data.TaskForm = form

		if form.Validate(categories) {
			_, err := s.tasks.Create(r.Context(), user.ID, form.Input)
			if err == nil {
				addFlash(w, r, FlashSuccess, "Task created successfully")
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			if !formError(form, err) {
				s.serverError(w, r, err)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "task_form.html", data)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	user, _ := currentUser(r.Context())
	id := taskID(r)

	task, err := s.tasks.Get(r.Context(), id, user.ID)
	if err != nil {
		s.taskError(w, r, err)
		return
	}

	categories, err := s.tasks.Categories(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	data := &viewData{Task: task, Categories: categories, TaskForm: taskFormFrom(task)}

	if r.Method == http.MethodPost {
		form := parseTaskForm(r)
		data.TaskForm = form

		if form.Validate(categories) {
			_, err := s.tasks.Update(r.Context(), id, user.ID, form.Input)
			switch {
			case err == nil:
				addFlash(w, r, FlashSuccess, "Task updated successfully")
				http.Redirect(w, r, "/", http.StatusFound)
				return
			case errors.Is(err, common.ErrorNotFound):
				s.taskError(w, r, err)
				return
			case !formError(form, err):
				s.serverError(w, r, err)
				return
			}
		}
	}

	s.render(w, r, http.StatusOK, "task_form.html", data)
}

// taskError answers 404 for tasks the user cannot see and 500 otherwise.
func (s *Server) taskError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrorNotFound) {
		http.NotFound(w, r)
		return
	}
	s.serverError(w, r, err)
}

// formError attaches a service validation failure to the form field it
// concerns. It reports false for any other error.
func formError(form *TaskForm, err error) bool {
	var ve *common.ValidationError
	if !errors.As(err, &ve) {
		return false
	}
	form.Errors.add(ve.Field, ve.Message)
	return true
}

// taskID reads the {id} route variable. The route pattern only admits
// digits, so a parse failure means an id too large to exist.
func taskID(r *http.Request) int64 {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return -1
	}
	return id
}
