package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/task-api/internal/api/metrics"
	"github.com/taskhive/task-api/internal/api/middleware"
	"github.com/taskhive/task-api/internal/core/ports"
)

// TaskHandler handles the owner-scoped task CRUD routes. Every handler
// resolves the caller through the principal attached by the Authenticate
// middleware; by the time a request reaches here the access policy has
// already refused anonymous callers.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// owner returns the caller's user id, failing fast if the middleware chain
// somehow did not attach a principal.
func owner(c echo.Context) (string, error) {
	principal, ok := middleware.Principal(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return principal.ID, nil
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  taskResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	ownerID, err := owner(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.service.Create(c.Request().Context(), ownerID, ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	metrics.TaskOpsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, toTaskResponse(task))
}

// List handles GET /api/tasks.
//
// @Summary      List the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   taskResponse
// @Failure      403  {object}  map[string]any
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	ownerID, err := owner(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.List(c.Request().Context(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get one of the caller's tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskResponse
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	ownerID, err := owner(c)
	if err != nil {
		return err
	}

	task, err := h.service.Get(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update handles PUT /api/tasks/:id.
//
// @Summary      Update one of the caller's tasks
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id"
// @Param        body  body      updateTaskRequest  true  "Fields to change"
// @Success      200   {object}  taskResponse
// @Failure      400   {object}  map[string]any
// @Failure      403   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	ownerID, err := owner(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.service.Update(c.Request().Context(), ownerID, c.Param("id"), ports.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		return err
	}

	metrics.TaskOpsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete handles DELETE /api/tasks/:id.
//
// @Summary      Delete one of the caller's tasks
// @Tags         tasks
// @Security     BearerAuth
// @Param        id  path  string  true  "Task id"
// @Success      204
// @Failure      403  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	ownerID, err := owner(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), ownerID, c.Param("id")); err != nil {
		return err
	}

	metrics.TaskOpsTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
