// Package events wraps timeline changes in CloudEvents envelopes and fans
// them out to in-process subscribers, which the SSE endpoint drains.
package events

import (
	"github.com/ansel1/merry/v2"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

const source = "reelcut-engine"

const (
	TypeProjectCreated  = "timeline.project.created"
	TypeProjectRestored = "timeline.project.restored"

	TypeTrackAdded   = "timeline.track.added"
	TypeTrackUpdated = "timeline.track.updated"

	TypeItemAdded   = "timeline.item.added"
	TypeItemUpdated = "timeline.item.updated"
	TypeItemSplit   = "timeline.item.split"
	TypeItemJoined  = "timeline.item.joined"
	TypeItemTrimmed = "timeline.item.trimmed"
	TypeItemMoved   = "timeline.item.moved"
	TypeItemDeleted = "timeline.item.deleted"

	TypeTransitionAdded   = "timeline.transition.added"
	TypeTransitionUpdated = "timeline.transition.updated"
	TypeTransitionRemoved = "timeline.transition.removed"

	TypeGapsClosed = "timeline.gaps.closed"
)

// NewEvent builds a CloudEvents envelope for one timeline change. The
// project id travels as the subject so subscribers can filter per project.
func NewEvent[T any](eventType, projectID string, data T) (cloudevents.Event, error) {
	event := cloudevents.NewEvent()
	event.SetID(uuid.NewString())
	event.SetSpecVersion(cloudevents.VersionV1)
	event.SetSource(source)
	event.SetType(eventType)
	event.SetSubject(projectID)
	err := event.SetData(
		cloudevents.ApplicationJSON,
		data,
	)
	if err != nil {
		return event, merry.Wrap(err)
	}

	return event, nil
}
