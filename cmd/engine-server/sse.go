package main

import (
	"io"

	"github.com/gin-gonic/gin"
)

// eventsHandler streams timeline change events over SSE. A project query
// parameter narrows the stream to one project.
func (s *EngineServer) eventsHandler(c *gin.Context) {
	projectID := c.Query("project")

	ch := s.broker.Subscribe()
	defer s.broker.Unsubscribe(ch)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-ch:
			if !ok {
				return false
			}
			if projectID != "" && event.Subject() != projectID {
				return true
			}
			c.SSEvent(event.Type(), event)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
