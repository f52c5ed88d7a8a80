package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/query"
)

// taskRequest is the writable part of a task.
type taskRequest struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Date         string           `json:"date"`
	CategoryID   string           `json:"categoryId"`
	Status       model.Status     `json:"status"`
	Priority     model.Priority   `json:"priority"`
	Assignees    []string         `json:"assignees"`
	Dependencies []string         `json:"dependencies"`
	Recurrence   model.Recurrence `json:"recurrence"`
	Reminders    []int            `json:"reminders"`
}

func (r taskRequest) input() board.TaskInput {
	return board.TaskInput{
		Name:         r.Name,
		Description:  r.Description,
		Date:         r.Date,
		CategoryID:   r.CategoryID,
		Status:       r.Status,
		Priority:     r.Priority,
		Assignees:    r.Assignees,
		Dependencies: r.Dependencies,
		Recurrence:   r.Recurrence,
		Reminders:    r.Reminders,
	}
}

// filterFrom reads the list filter from query parameters.
func filterFrom(c echo.Context) query.Filter {
	return query.Filter{
		Search:     c.QueryParam("search"),
		CategoryID: c.QueryParam("category"),
		Status:     model.Status(c.QueryParam("status")),
		Priority:   model.Priority(c.QueryParam("priority")),
		Date:       c.QueryParam("date"),
		Assignee:   c.QueryParam("assignee"),
	}
}

func (s *Server) listed(c echo.Context) ([]model.Task, error) {
	key, err := query.ParseSortKey(c.QueryParam("sort"))
	if err != nil {
		return nil, badRequest(err.Error())
	}
	return s.svc.Tasks(filterFrom(c), key), nil
}

func (s *Server) handleListTasks(c echo.Context) error {
	tasks, err := s.listed(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	t, err := s.svc.CreateTask(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) handleGetTask(c echo.Context) error {
	t, ok := s.svc.Task(c.Param("id"))
	if !ok {
		return notFound("task", c.Param("id"))
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleUpdateTask(c echo.Context) error {
	var req taskRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	t, found, err := s.svc.UpdateTask(c.Request().Context(), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	if !found {
		return notFound("task", c.Param("id"))
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c echo.Context) error {
	found, err := s.svc.DeleteTask(c.Request().Context(), c.Param("id"), false)
	if err != nil {
		return err
	}
	if !found {
		return notFound("task", c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleCompleteTask(c echo.Context) error {
	req := struct {
		Completed *bool `json:"completed"`
	}{}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	completed := req.Completed == nil || *req.Completed

	t, found, err := s.svc.SetCompleted(c.Request().Context(), c.Param("id"), completed)
	if err != nil {
		return err
	}
	if !found {
		return notFound("task", c.Param("id"))
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleChangeStatus(c echo.Context) error {
	req := struct {
		Status model.Status `json:"status"`
	}{}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	t, found, err := s.svc.ChangeStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	if !found {
		return notFound("task", c.Param("id"))
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleArchiveTask(c echo.Context) error {
	moved, err := s.svc.ArchiveTask(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !moved {
		return echo.NewHTTPError(http.StatusConflict, "only completed active tasks can be archived")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAddComment(c echo.Context) error {
	req := struct {
		Text string `json:"text"`
	}{}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	comment, found, err := s.svc.AddComment(c.Request().Context(), c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	if !found {
		return notFound("task", c.Param("id"))
	}
	return c.JSON(http.StatusCreated, comment)
}

func (s *Server) handleBlocking(c echo.Context) error {
	if _, ok := s.svc.Task(c.Param("id")); !ok {
		return notFound("task", c.Param("id"))
	}
	blocking := s.svc.Blocking(c.Param("id"))
	if blocking == nil {
		blocking = []model.Task{}
	}
	return c.JSON(http.StatusOK, blocking)
}

func (s *Server) handleAttachment(c echo.Context) error {
	att, data, found, err := s.svc.Attachment(c.Request().Context(), c.Param("id"), c.Param("name"))
	if err != nil {
		return err
	}
	if !found {
		return notFound("attachment", c.Param("name"))
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+att.Name+`"`)
	return c.Blob(http.StatusOK, att.Type, data)
}

func (s *Server) handleListArchived(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.ArchivedTasks())
}

func (s *Server) handleGetArchived(c echo.Context) error {
	t, ok := s.svc.ArchivedTask(c.Param("id"))
	if !ok {
		return notFound("archived task", c.Param("id"))
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteArchived(c echo.Context) error {
	found, err := s.svc.DeleteTask(c.Request().Context(), c.Param("id"), true)
	if err != nil {
		return err
	}
	if !found {
		return notFound("archived task", c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}
