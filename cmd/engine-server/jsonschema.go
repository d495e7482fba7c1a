package main

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"
)

type CommandSchema struct {
	Name   string             `json:"name"`
	Schema *jsonschema.Schema `json:"schema"`
}

// schemasHandler publishes a JSON Schema per edit command so clients can
// generate forms and validate payloads before posting them.
func (s *EngineServer) schemasHandler(c *gin.Context) {
	var schemas []CommandSchema
	for _, cmd := range commandRegistry {
		schemas = append(schemas, CommandSchema{
			Name:   cmd.Name(),
			Schema: jsonschema.ReflectFromType(reflect.TypeOf(cmd)),
		})
	}
	c.JSON(http.StatusOK, schemas)
}
