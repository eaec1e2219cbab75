package veridia

const (
	ContextKeyAuthID      string = "veridia.io/ctx/auth-id"
	ContextKeyAuthContext string = "veridia.io/ctx/auth-context"
	ContextKeyAuthType    string = "veridia.io/ctx/auth-type"
	ContextKeyRequestID   string = "veridia.io/ctx/request-id"
	ContextKeySource      string = "veridia.io/ctx/source"
	ContextKeySessionID   string = "veridia.io/ctx/session-id"

	ContextKeyEventType    string = "veridia.io/ctx/cloudevent/type"
	ContextKeyEventSubject string = "veridia.io/ctx/cloudevent/subject"
)
