package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/jakehl/goid"
	"github.com/veridiapki/veridia"
	"github.com/veridiapki/veridia/pkg/models"
)

func BuildCloudEvent(ctx context.Context, payload interface{}) event.Event {
	event := cloudevents.NewEvent()

	event.SetSpecVersion("1.0")
	event.SetTime(time.Now())
	event.SetID(goid.NewV4UUID().String())
	event.SetData(cloudevents.ApplicationJSON, payload)

	eventSource, ok := ctx.Value(veridia.ContextKeySource).(string)
	if ok {
		event.SetSource(eventSource)
	} else {
		event.SetSource("source://unknown")
	}

	eventType, ok := ctx.Value(veridia.ContextKeyEventType).(string)
	if ok {
		event.SetType(eventType)
	} else if typedEventType, ok := ctx.Value(veridia.ContextKeyEventType).(models.EventType); ok {
		event.SetType(string(typedEventType))
	}

	eventSubject, ok := ctx.Value(veridia.ContextKeyEventSubject).(string)
	if ok {
		event.SetSubject(eventSubject)
	}

	if eventAuthType, ok := ctx.Value(veridia.ContextKeyAuthType).(string); ok && eventAuthType != "" {
		event.SetExtension("authtype", eventAuthType)
	}

	if eventAuthID, ok := ctx.Value(veridia.ContextKeyAuthID).(string); ok && eventAuthID != "" {
		event.SetExtension("authid", eventAuthID)
	}

	if eventAuthCtx, ok := ctx.Value(veridia.ContextKeyAuthContext).(map[string]interface{}); ok && eventAuthCtx != nil {
		// extensions dont allow nested objects. Must serialize to string
		eventAuthCtxBytes, err := json.Marshal(eventAuthCtx)
		if err != nil {
			eventAuthCtxBytes = []byte("{}")
		}
		event.SetExtension("authclaims", string(eventAuthCtxBytes))
	}

	return event
}

func ParseCloudEvent(msg []byte) (*event.Event, error) {
	var event cloudevents.Event
	err := json.Unmarshal(msg, &event)
	if err != nil {
		return nil, err
	}

	return &event, nil
}

func GetEventBody[E any](cloudEvent *event.Event) (*E, error) {
	var elem *E
	if cloudEvent == nil {
		return nil, fmt.Errorf("cloud event is null")
	}

	if cloudEvent.Data() == nil {
		return nil, fmt.Errorf("cloud event data is null")
	}

	eventDataBytes := cloudEvent.Data()
	err := json.Unmarshal(eventDataBytes, &elem)
	return elem, err
}
