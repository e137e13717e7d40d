package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/telemetry"
)

// loadTask fetches the board and the task named by :task.
func (s *Server) loadTask(c *gin.Context) (*board.Board, board.Task, bool) {
	b, ok := s.loadBoard(c)
	if !ok {
		return nil, board.Task{}, false
	}
	t, ok := b.Task(c.Param("task"))
	if !ok {
		s.respondError(c, fmt.Errorf("%w: %s", engine.ErrTaskNotFound, c.Param("task")))
		return nil, board.Task{}, false
	}
	return b, t, true
}

// handleCreateTask adds a task to the todo column.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req engine.NewTask
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondStatus(c, http.StatusBadRequest, err)
		return
	}
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	next, created, err := engine.CreateTask(b, req, b.BaseStartDate, s.newID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if _, ok := s.saveBoard(c, b, next); !ok {
		return
	}
	s.record(telemetry.KindTaskCreated, b.ID, created.ID, map[string]any{"depends_on": created.DependsOn})
	c.JSON(http.StatusCreated, gin.H{"task": created})
}

// handleUpdateTask changes title, description, priority or progress.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req engine.Details
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondStatus(c, http.StatusBadRequest, err)
		return
	}
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	next, err := engine.UpdateDetails(b, c.Param("task"), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if _, ok := s.saveBoard(c, b, next); !ok {
		return
	}
	updated, _ := next.Task(c.Param("task"))
	s.record(telemetry.KindTaskUpdated, b.ID, updated.ID, req)
	c.JSON(http.StatusOK, gin.H{"task": updated})
}

// handleDeleteTask removes a task and the references to it.
func (s *Server) handleDeleteTask(c *gin.Context) {
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	next, err := engine.DeleteTask(b, c.Param("task"), b.BaseStartDate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	saved, ok := s.saveBoard(c, b, next)
	if !ok {
		return
	}
	s.record(telemetry.KindTaskDeleted, b.ID, c.Param("task"), nil)
	c.JSON(http.StatusOK, gin.H{"board": saved})
}

func (s *Server) handleSchedule(c *gin.Context) {
	b, t, ok := s.loadTask(c)
	if !ok {
		return
	}
	sch, err := engine.ComputeSchedule(b, t, b.BaseStartDate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sch)
}

func (s *Server) handleBlocking(c *gin.Context) {
	b, t, ok := s.loadTask(c)
	if !ok {
		return
	}
	blocking := engine.BlockingDependencies(b, t)
	if blocking == nil {
		blocking = []board.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"blocking_tasks": blocking})
}

// handleDependencyCheck answers whether ?dep= may become a dependency of
// the task.
func (s *Server) handleDependencyCheck(c *gin.Context) {
	dep := c.Query("dep")
	if dep == "" {
		s.respondStatus(c, http.StatusBadRequest, errors.New("dep query parameter is required"))
		return
	}
	b, t, ok := s.loadTask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"would_cycle": engine.HasCircularDependency(b, t.ID, dep)})
}

func (s *Server) handleAvailableDependencies(c *gin.Context) {
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	tasks, err := engine.AvailableDependencies(b, c.Param("task"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []board.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type dependencyRequest struct {
	DependsOn string `json:"depends_on" binding:"required"`
}

// handleAddDependency adds one dependency edge. A cycle answers 422 and a
// done task gaining an unfinished dependency answers 409.
func (s *Server) handleAddDependency(c *gin.Context) {
	var req dependencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondStatus(c, http.StatusBadRequest, err)
		return
	}
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	taskID := c.Param("task")
	next, err := engine.AddDependency(b, taskID, req.DependsOn, b.BaseStartDate)
	if errors.Is(err, engine.ErrCircularDependency) || errors.Is(err, engine.ErrBlockedTransition) {
		s.record(telemetry.KindDependencyRejected, b.ID, taskID, map[string]string{"depends_on": req.DependsOn})
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	saved, ok := s.saveBoard(c, b, next)
	if !ok {
		return
	}
	s.record(telemetry.KindDependencyAdded, b.ID, taskID, map[string]string{"depends_on": req.DependsOn})
	c.JSON(http.StatusOK, gin.H{"board": saved})
}

type moveRequest struct {
	ColumnID string `json:"column_id" binding:"required"`
}

// handleMove applies a guarded column move. A refused move answers 409 with
// the guard decision.
func (s *Server) handleMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondStatus(c, http.StatusBadRequest, err)
		return
	}
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	taskID := c.Param("task")
	from, _ := b.Task(taskID)

	next, decision, err := engine.MoveTask(b, taskID, req.ColumnID, s.now(), b.BaseStartDate, s.policy)
	var blocked *engine.BlockedError
	if errors.As(err, &blocked) {
		s.record(telemetry.KindMoveBlocked, b.ID, taskID, map[string]any{
			"to":       req.ColumnID,
			"blocking": taskIDs(blocked.BlockingTasks),
		})
		c.JSON(http.StatusConflict, decision)
		return
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	saved, ok := s.saveBoard(c, b, next)
	if !ok {
		return
	}
	s.record(telemetry.KindTaskMoved, b.ID, taskID, map[string]string{"from": from.ColumnID, "to": req.ColumnID})
	c.JSON(http.StatusOK, gin.H{"board": saved, "decision": decision})
}

func taskIDs(tasks []board.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
