package engine

import "errors"

// Error taxonomy for step and handler faults. Step-level code converts all
// handler faults into structured results before returning to the
// orchestrator; the orchestrator classifies wrapped sentinels to choose the
// final job status.
var (
	// ErrConfiguration: missing handler slug, missing required settings,
	// missing credentials. Non-retryable.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthentication: token refresh failure, invalid/expired credentials.
	// Surfaced per-handler; does not abort sibling handlers.
	ErrAuthentication = errors.New("authentication error")

	// ErrTransientSource: network failure, rate limit, malformed response on
	// a single page/item. Recoverable within the same invocation by moving
	// to the next page/item; the next scheduled run retries naturally.
	ErrTransientSource = errors.New("transient source error")

	// ErrContentValidation: empty fetched content, unparseable shape.
	// Treated as "no new data", not a hard failure.
	ErrContentValidation = errors.New("content validation error")

	// ErrHandlerExecution: unexpected fault inside a handler, caught at the
	// step boundary and converted to a failure result.
	ErrHandlerExecution = errors.New("handler execution error")

	// ErrNoItems signals a fetch invocation found nothing new to process.
	// The job ends early with status completed_no_items.
	ErrNoItems = errors.New("no new items")

	// ErrAgentSkipped signals the AI step declined to process the item.
	// The job ends with status agent_skipped, reason recorded on the job.
	ErrAgentSkipped = errors.New("agent skipped")
)

// classified reports whether err already carries one of the taxonomy
// sentinels, so step code knows not to re-wrap it
func classified(err error) bool {
	for _, sentinel := range []error{
		ErrConfiguration,
		ErrAuthentication,
		ErrTransientSource,
		ErrContentValidation,
		ErrHandlerExecution,
		ErrNoItems,
		ErrAgentSkipped,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
