package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ansel1/merry/v2"
	"github.com/gin-gonic/gin"
	"github.com/reelcut/reelcut-engine/analytics"
	"github.com/reelcut/reelcut-engine/events"
	"github.com/reelcut/reelcut-engine/export"
	"github.com/reelcut/reelcut-engine/store"
	"github.com/reelcut/reelcut-engine/timeline"
	"github.com/rs/zerolog"
)

type EngineServer struct {
	store  *store.Store
	broker *events.Broker
	logger zerolog.Logger
}

func (s *EngineServer) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", s.healthHandler)
	router.GET("/schemas", s.schemasHandler)
	router.GET("/events", s.eventsHandler)

	projects := router.Group("/projects")
	projects.POST("", s.createProjectHandler)
	projects.GET("", s.listProjectsHandler)
	projects.GET("/:id", s.getProjectHandler)
	projects.POST("/:id/commands/:command", s.commandHandler)
	projects.POST("/:id/undo", s.undoHandler)
	projects.POST("/:id/redo", s.redoHandler)
	projects.GET("/:id/history", s.historyHandler)
	projects.GET("/:id/gaps", s.gapsHandler)
	projects.GET("/:id/transition-slot", s.transitionSlotHandler)
	projects.GET("/:id/joinable-chain", s.joinableChainHandler)
	projects.GET("/:id/resolve", s.resolveHandler)
	projects.GET("/:id/selection", s.selectionHandler)
	projects.GET("/:id/export", s.exportHandler)
}

func (s *EngineServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type CreateProjectInput struct {
	Name         string  `json:"name"`
	FPS          float64 `json:"fps"`
	CanvasWidth  int     `json:"canvasWidth"`
	CanvasHeight int     `json:"canvasHeight"`
}

func (s *EngineServer) createProjectHandler(c *gin.Context) {
	var input CreateProjectInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	project, err := s.store.CreateProject(input.Name, input.FPS, input.CanvasWidth, input.CanvasHeight)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *EngineServer) listProjectsHandler(c *gin.Context) {
	projects, err := s.store.ListProjects()
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *EngineServer) getProjectHandler(c *gin.Context) {
	project, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	if a := analytics.GetService(); a != nil {
		a.ProjectOpened(project.ID, project.SchemaVersion)
	}

	c.JSON(http.StatusOK, project)
}

func (s *EngineServer) undoHandler(c *gin.Context) {
	project, err := s.store.Undo(c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *EngineServer) redoHandler(c *gin.Context) {
	project, err := s.store.Redo(c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *EngineServer) historyHandler(c *gin.Context) {
	undo, redo := s.store.UndoDepth(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"undo": undo, "redo": redo})
}

func (s *EngineServer) gapsHandler(c *gin.Context) {
	project, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	gaps := timeline.FindGaps(project.Timeline.Items, c.Query("track"))
	c.JSON(http.StatusOK, gaps)
}

type TransitionSlotResult struct {
	Found bool                    `json:"found"`
	Slot  timeline.TransitionSlot `json:"slot"`
}

func (s *EngineServer) transitionSlotHandler(c *gin.Context) {
	project, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	item, found := project.Timeline.ItemByID(c.Query("item"))
	if !found {
		errorResponse(c, merry.Wrap(store.ErrUnknownItem))
		return
	}

	slot, ok := timeline.FindTransitionSlot(item, project.Timeline.Items, project.Timeline.Transitions)
	c.JSON(http.StatusOK, TransitionSlotResult{Found: ok, Slot: slot})
}

func (s *EngineServer) joinableChainHandler(c *gin.Context) {
	project, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	item, found := project.Timeline.ItemByID(c.Query("item"))
	if !found {
		errorResponse(c, merry.Wrap(store.ErrUnknownItem))
		return
	}

	chain := timeline.FindJoinableChain(item, project.Timeline.Items)
	c.JSON(http.StatusOK, gin.H{"itemIds": chain})
}

func (s *EngineServer) resolveHandler(c *gin.Context) {
	project, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	frame, err := strconv.ParseInt(c.Query("frame"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "frame must be an integer"})
		return
	}

	c.JSON(http.StatusOK, timeline.ResolveFrame(project.Timeline, frame))
}

// SelectionAggregate is the inspector view of a multi-selection: fields every
// selected item agrees on carry the value, the rest are flagged mixed.
type SelectionAggregate struct {
	Count   int                     `json:"count"`
	TrackID timeline.Mixed[string]  `json:"trackId"`
	Kind    timeline.Mixed[string]  `json:"kind"`
	Speed   timeline.Mixed[float64] `json:"speed"`
	Volume  timeline.Mixed[float64] `json:"volume"`
	Muted   timeline.Mixed[bool]    `json:"muted"`
}

func (s *EngineServer) selectionHandler(c *gin.Context) {
	project, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	ids := strings.Split(c.Query("items"), ",")
	var items []timeline.Item
	for _, id := range ids {
		if id == "" {
			continue
		}
		item, found := project.Timeline.ItemByID(id)
		if !found {
			errorResponse(c, merry.Wrap(store.ErrUnknownItem))
			return
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "items query is required"})
		return
	}

	aggregate := SelectionAggregate{Count: len(items)}
	aggregate.TrackID, _ = timeline.AggregateValues(items, func(i timeline.Item) string { return i.TrackID })
	aggregate.Kind, _ = timeline.AggregateValues(items, func(i timeline.Item) string { return i.Kind.Value })
	aggregate.Speed, _ = timeline.AggregateFloats(items, timeline.Item.SpeedOrDefault)
	aggregate.Volume, _ = timeline.AggregateFloats(items, timeline.Item.VolumeOrDefault)
	aggregate.Muted, _ = timeline.AggregateValues(items, func(i timeline.Item) bool { return i.Muted })

	c.JSON(http.StatusOK, aggregate)
}

func (s *EngineServer) exportHandler(c *gin.Context) {
	project, err := s.store.GetProject(c.Param("id"))
	if err != nil {
		errorResponse(c, err)
		return
	}

	format := c.DefaultQuery("format", export.FormatEDL.Value)
	data, contentType, err := export.Export(project.Timeline, format, export.Options{
		Title:   project.Name,
		TrackID: c.Query("track"),
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	if a := analytics.GetService(); a != nil {
		a.ExportGenerated(format, project.ID, len(data))
	}

	c.Data(http.StatusOK, contentType, data)
}

// errorResponse maps engine sentinels onto HTTP statuses. Anything unmapped
// falls back to the code carried by the error itself, 500 when there is none.
func errorResponse(c *gin.Context, err error) {
	status := merry.HTTPCode(err)
	switch {
	case errors.Is(err, store.ErrProjectNotFound),
		errors.Is(err, store.ErrUnknownItem),
		errors.Is(err, store.ErrUnknownTransition),
		errors.Is(err, timeline.ErrUnknownTrack):
		status = http.StatusNotFound
	case errors.Is(err, timeline.ErrItemOverlap),
		errors.Is(err, timeline.ErrTransitionBridgeConflict),
		errors.Is(err, store.ErrTrackLocked),
		errors.Is(err, store.ErrNothingToUndo),
		errors.Is(err, store.ErrNothingToRedo):
		status = http.StatusConflict
	case errors.Is(err, timeline.ErrInvalidSplitPoint),
		errors.Is(err, timeline.ErrInvalidPosition),
		errors.Is(err, timeline.ErrIncompatibleJoin),
		errors.Is(err, timeline.ErrCrossTrackOperation),
		errors.Is(err, timeline.ErrTransitionNotAdjacent),
		errors.Is(err, timeline.ErrDanglingTransitionRef),
		errors.Is(err, timeline.ErrDuplicateID),
		errors.Is(err, timeline.ErrSpeedOutOfRange),
		errors.Is(err, timeline.ErrSourceSpanMismatch),
		errors.Is(err, store.ErrInvalidTransitionDuration),
		errors.Is(err, export.ErrFormatNotFound),
		errors.Is(err, export.ErrNoExportableTrack):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
