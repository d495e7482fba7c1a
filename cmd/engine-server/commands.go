package main

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/reelcut/reelcut-engine/store"
	"github.com/samber/lo"
)

// commandRegistry lists every edit command the HTTP surface accepts. The zero
// values double as decode templates and as the source for GET /schemas.
var commandRegistry = []store.Command{
	store.SplitItem{},
	store.JoinItems{},
	store.TrimItem{},
	store.MoveItem{},
	store.DeleteItem{},
	store.AddItem{},
	store.UpdateItem{},
	store.AddTrack{},
	store.UpdateTrack{},
	store.AddTransition{},
	store.UpdateTransition{},
	store.RemoveTransition{},
	store.CloseGaps{},
	store.CloseLeadingGaps{},
}

type CommandResult struct {
	Project *store.Project `json:"project"`
	Outcome *store.Outcome `json:"outcome"`
}

func (s *EngineServer) commandHandler(c *gin.Context) {
	projectID := c.Param("id")
	commandName := c.Param("command")

	template, found := lo.Find(commandRegistry, func(cmd store.Command) bool {
		return cmd.Name() == commandName
	})
	if !found {
		c.Status(http.StatusNotFound)
		return
	}

	value := reflect.New(reflect.TypeOf(template))
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(value.Interface()); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	cmd := value.Elem().Interface().(store.Command)

	project, outcome, err := s.store.Apply(c, projectID, cmd)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, CommandResult{Project: project, Outcome: outcome})
}
