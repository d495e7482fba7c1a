package analytics

import (
	"fmt"
	"sync"
	"time"

	r "github.com/rudderlabs/analytics-go/v4"
)

var (
	Instance *Service
	once     sync.Once
)

func Init(config Config) {
	once.Do(func() {
		Instance = newService(config)
	})
}

func GetService() *Service {
	return Instance
}

type Service struct {
	rudderClient r.Client
}

type Config struct {
	WriteKey  string
	DataPlane string
	Verbose   bool
}

func newService(config Config) *Service {
	if config.WriteKey == "" || config.DataPlane == "" {
		fmt.Printf("WARN: Rudderstack is not configured, data will not be sent to Rudderstack")
	}

	c, err := r.NewWithConfig(config.WriteKey,
		r.Config{
			DataPlaneUrl: config.DataPlane,
			Interval:     1 * time.Second,
			BatchSize:    100,
			Verbose:      config.Verbose,
			DisableGzip:  false,
		})

	if err != nil {
		fmt.Printf("FATAL: Failed to create rudderstack client: %v", err)
		panic(err)
	}

	return &Service{
		rudderClient: c,
	}
}

func (s *Service) EditApplied(operation string, projectID string, itemCount int, executionTime int64) {
	properties := map[string]interface{}{
		"operation":     operation,
		"projectId":     projectID,
		"itemCount":     itemCount,
		"executionTime": executionTime,
	}

	err := s.rudderClient.Enqueue(r.Track{
		Event:      "EditApplied",
		UserId:     "analytics",
		Properties: properties,
	})

	if err != nil {
		fmt.Printf("WARN: Failed to enqueue EditApplied event: %v\n", err)
	}
}

func (s *Service) ExportGenerated(format string, projectID string, byteSize int) {
	properties := map[string]interface{}{
		"format":    format,
		"projectId": projectID,
		"byteSize":  byteSize,
	}

	err := s.rudderClient.Enqueue(r.Track{
		Event:      "ExportGenerated",
		UserId:     "analytics",
		Properties: properties,
	})

	if err != nil {
		fmt.Printf("WARN: Failed to enqueue ExportGenerated event: %v\n", err)
	}
}

func (s *Service) ProjectOpened(projectID string, schemaVersion int) {
	properties := map[string]interface{}{
		"projectId":     projectID,
		"schemaVersion": schemaVersion,
	}

	err := s.rudderClient.Enqueue(r.Track{
		Event:      "ProjectOpened",
		UserId:     "analytics",
		Properties: properties,
	})

	if err != nil {
		fmt.Printf("WARN: Failed to enqueue ProjectOpened event: %v\n", err)
	}
}
