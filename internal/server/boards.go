package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/papapumpkin/closeboard/internal/board"
	"github.com/papapumpkin/closeboard/internal/engine"
	"github.com/papapumpkin/closeboard/internal/telemetry"
)

type boardRequest struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	BaseStartDate board.Date     `json:"base_start_date"`
	Columns       []board.Column `json:"columns"`
}

// defaultColumns is the layout of a board created without columns.
func defaultColumns() []board.Column {
	return []board.Column{
		{ID: "todo", Title: "To do", Type: board.ColumnTodo},
		{ID: "in-progress", Title: "In progress", Type: board.ColumnInProgress},
		{ID: "done", Title: "Done", Type: board.ColumnDone},
	}
}

func (s *Server) handleListBoards(c *gin.Context) {
	boards, err := s.store.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": boards})
}

// handleCreateBoard validates, schedules and stores a new board.
func (s *Server) handleCreateBoard(c *gin.Context) {
	var req boardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondStatus(c, http.StatusBadRequest, err)
		return
	}
	b := &board.Board{
		ID:            req.ID,
		Name:          req.Name,
		BaseStartDate: req.BaseStartDate,
		Columns:       req.Columns,
	}
	if b.ID == "" {
		b.ID = s.newID()
	}
	if b.BaseStartDate.IsZero() {
		b.BaseStartDate = board.DateOf(s.now())
	}
	if len(b.Columns) == 0 {
		b.Columns = defaultColumns()
	}

	if errs := engine.ValidateBoard(b); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		s.logger.Warn("rejected invalid board")
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid board", "errors": msgs})
		return
	}
	scheduled, err := engine.Reschedule(b, b.BaseStartDate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	created, err := s.store.Create(c.Request.Context(), scheduled)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.record(telemetry.KindBoardCreated, created.ID, "", map[string]int{"tasks": created.TaskCount()})
	c.JSON(http.StatusCreated, gin.H{"board": created})
}

func (s *Server) handleGetBoard(c *gin.Context) {
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": b})
}

func (s *Server) handleDeleteBoard(c *gin.Context) {
	id := c.Param("id")
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	s.record(telemetry.KindBoardDeleted, id, "", nil)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type propagateRequest struct {
	TaskID string `json:"task_id" binding:"required"`
}

// handlePropagate recomputes the dates downstream of a task.
func (s *Server) handlePropagate(c *gin.Context) {
	var req propagateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondStatus(c, http.StatusBadRequest, err)
		return
	}
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	next, err := engine.RecalculateDates(b, req.TaskID, b.BaseStartDate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	saved, ok := s.saveBoard(c, b, next)
	if !ok {
		return
	}
	s.record(telemetry.KindDatesPropagated, b.ID, req.TaskID, nil)
	c.JSON(http.StatusOK, gin.H{"board": saved})
}

// handleReschedule recomputes every planned date on the board.
func (s *Server) handleReschedule(c *gin.Context) {
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	next, err := engine.Reschedule(b, b.BaseStartDate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	saved, ok := s.saveBoard(c, b, next)
	if !ok {
		return
	}
	s.record(telemetry.KindDatesPropagated, b.ID, "", map[string]bool{"full": true})
	c.JSON(http.StatusOK, gin.H{"board": saved})
}

func (s *Server) handleSequence(c *gin.Context) {
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	seq, err := engine.TopologicalOrder(b.Tasks())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sequence": seq})
}

func (s *Server) handleStreams(c *gin.Context) {
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	streams, err := engine.IndependentStreams(b.Tasks())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streams": streams})
}

type taskStatus struct {
	TaskID string        `json:"task_id"`
	Status engine.Status `json:"status"`
}

// handleStatus classifies every task on the day given by ?today=, or on
// the current day.
func (s *Server) handleStatus(c *gin.Context) {
	today := board.DateOf(s.now())
	if raw := c.Query("today"); raw != "" {
		d, err := board.ParseDate(raw)
		if err != nil {
			s.respondStatus(c, http.StatusBadRequest, fmt.Errorf("today: %w", err))
			return
		}
		today = d
	}
	b, ok := s.loadBoard(c)
	if !ok {
		return
	}
	tasks := b.Tasks()
	statuses := s.classifier.ClassifyAll(tasks, today)
	out := make([]taskStatus, len(tasks))
	for i, t := range tasks {
		out[i] = taskStatus{TaskID: t.ID, Status: statuses[t.ID]}
	}
	c.JSON(http.StatusOK, gin.H{"today": today, "statuses": out})
}
