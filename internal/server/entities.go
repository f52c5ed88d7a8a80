package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (s *Server) handleListCategories(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Categories())
}

func (s *Server) handleCreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	cat, err := s.svc.CreateCategory(c.Request().Context(), req.Name, req.Color)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

func (s *Server) handleUpdateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	found, err := s.svc.UpdateCategory(c.Request().Context(), c.Param("id"), req.Name, req.Color)
	if err != nil {
		return err
	}
	if !found {
		return notFound("category", c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteCategory(c echo.Context) error {
	found, err := s.svc.DeleteCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return notFound("category", c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

type contactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Color string `json:"color"`
}

func (s *Server) handleListContacts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Contacts())
}

func (s *Server) handleCreateContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	contact, err := s.svc.CreateContact(c.Request().Context(), req.Name, req.Email, req.Color)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, contact)
}

func (s *Server) handleUpdateContact(c echo.Context) error {
	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	found, err := s.svc.UpdateContact(c.Request().Context(), c.Param("id"), req.Name, req.Email, req.Color)
	if err != nil {
		return err
	}
	if !found {
		return notFound("contact", c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteContact(c echo.Context) error {
	found, err := s.svc.DeleteContact(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !found {
		return notFound("contact", c.Param("id"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListNotes(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Notes())
}

func (s *Server) handleGetNote(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"date": c.Param("date"),
		"text": s.svc.Note(c.Param("date")),
	})
}

func (s *Server) handleSetNote(c echo.Context) error {
	req := struct {
		Text string `json:"text"`
	}{}
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request")
	}
	if err := s.svc.SetNote(c.Request().Context(), c.Param("date"), req.Text); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListNotifications(c echo.Context) error {
	ns, err := s.svc.Notifications(c.Request().Context(), c.QueryParam("unread") == "true")
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ns)
}

func (s *Server) handleMarkRead(c echo.Context) error {
	if err := s.svc.MarkNotificationRead(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
