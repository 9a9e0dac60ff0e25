// Package domain holds the transient request/response shapes shared between
// the send flows and the provider integrations. Nothing here outlives one
// process invocation.
package domain

// EmailMessage is a single-recipient email submission.
type EmailMessage struct {
	SenderAddress    string
	RecipientAddress string
	Subject          string
	PlainText        string
	HTML             string
}

// Email operation statuses as reported by the provider.
const (
	EmailStatusNotStarted = "NotStarted"
	EmailStatusRunning    = "Running"
	EmailStatusSucceeded  = "Succeeded"
	EmailStatusFailed     = "Failed"
	EmailStatusCanceled   = "Canceled"
)

// EmailResult is the terminal outcome of an email send operation.
type EmailResult struct {
	OperationID string
	Status      string
}

// Succeeded reports whether the provider accepted and delivered the message
// to its outbound pipeline.
func (r EmailResult) Succeeded() bool { return r.Status == EmailStatusSucceeded }

// SMSResult is the per-recipient outcome of one SMS submission. The provider
// returns exactly one entry per requested recipient.
type SMSResult struct {
	To             string
	MessageID      string
	Successful     bool
	HTTPStatusCode int
	ErrorMessage   string
}

// ChatMessageRef identifies a chat message created by the Teams flow.
type ChatMessageRef struct {
	ChatID    string
	MessageID string
}
