package auditpub

import (
	"context"
	"fmt"

	"github.com/veridiapki/veridia"
	"github.com/veridiapki/veridia/pkg/eventpub"
	"github.com/veridiapki/veridia/pkg/models"
)

type AuditBody struct {
	Input    interface{} `json:"input"`
	HasError bool        `json:"has_error"`
	Output   interface{} `json:"output"`
}

type AuditPublisher struct {
	eventpub.ICloudEventPublisher
}

func NewAuditPublisher(publisher eventpub.ICloudEventPublisher) *AuditPublisher {
	return &AuditPublisher{
		ICloudEventPublisher: publisher,
	}
}

// HandleServiceOutputAndPublishAuditRecord publishes one audit event per
// service call, tagging the event type with ".error" when the call failed.
func (audit *AuditPublisher) HandleServiceOutputAndPublishAuditRecord(ctx context.Context, eventType models.EventType, input interface{}, err error, output interface{}) {
	auditEventType := fmt.Sprintf("audit.%s", eventType)
	auditBody := AuditBody{
		Input:  input,
		Output: output,
	}

	if err != nil {
		auditEventType = fmt.Sprintf("%s.error", eventType)
		auditBody.HasError = true
		auditBody.Output = err.Error()
	}

	ctx = context.WithValue(ctx, veridia.ContextKeyEventType, auditEventType)
	audit.PublishCloudEvent(ctx, auditBody)
}
