// Package generate submits transformation requests to the remote image
// generation service and classifies what comes back.
//
// The service is slow and occasionally unreliable, so every submission ends
// in exactly one Outcome: a generated image URL, a "still processing"
// signal that asks the user to retry, an explicit failure reported by the
// service, or a transport-level failure (including the client-side
// timeout). Nothing in this package retries; retry is always a fresh
// user-initiated submission.
package generate

// Default configuration constants
const (
	// DefaultTimeoutSeconds is the hard per-request timeout. The clock
	// starts when Submit issues the call; on expiry the in-flight request
	// is cancelled, not merely abandoned.
	DefaultTimeoutSeconds = 120

	// StylePreset is sent with every request. The service supports other
	// styles but the client always asks for photorealistic output.
	StylePreset = "realistic"
)

// Service status labels the classifier recognizes.
const (
	StatusWaiting    = "waiting"
	StatusProcessing = "processing"
	StatusFailed     = "failed"
)

// OutcomeKind identifies which variant of Outcome is populated.
type OutcomeKind int

const (
	// OutcomeSuccess means the service produced an image.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeProcessing means the service accepted the request but has not
	// finished; the user should retry later.
	OutcomeProcessing
	// OutcomeFailed means the service explicitly reported failure, or
	// returned a response that could not be interpreted as anything else.
	OutcomeFailed
	// OutcomeTransport means the request never completed at the network
	// level (connection failure or client-side timeout).
	OutcomeTransport
)

// String returns the string representation of an outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeProcessing:
		return "processing"
	case OutcomeFailed:
		return "failed"
	case OutcomeTransport:
		return "transport-error"
	default:
		return "unknown"
	}
}

// Outcome is the classified result of one generation request.
//
// Exactly one variant is populated. ImageURL is set if and only if Kind is
// OutcomeSuccess; StatusLabel only for OutcomeProcessing; ReasonText for
// OutcomeFailed and OutcomeTransport; TimedOut only for OutcomeTransport.
type Outcome struct {
	Kind        OutcomeKind
	ImageURL    string
	StatusLabel string
	ReasonText  string
	TimedOut    bool
}

// Success builds a success outcome for the given image URL.
func Success(imageURL string) Outcome {
	return Outcome{Kind: OutcomeSuccess, ImageURL: imageURL}
}

// Processing builds a still-processing outcome with the service's status label.
func Processing(statusLabel string) Outcome {
	return Outcome{Kind: OutcomeProcessing, StatusLabel: statusLabel}
}

// Failed builds a failure outcome with user-facing reason text.
func Failed(reasonText string) Outcome {
	return Outcome{Kind: OutcomeFailed, ReasonText: reasonText}
}

// TransportError builds a transport-failure outcome. timedOut distinguishes
// the client-side timeout from other network failures.
func TransportError(reasonText string, timedOut bool) Outcome {
	return Outcome{Kind: OutcomeTransport, ReasonText: reasonText, TimedOut: timedOut}
}

// transformRequest is the JSON body posted to the service.
type transformRequest struct {
	Image  string `json:"image"`  // base64, no data-URI prefix
	Prompt string `json:"prompt"` // transformation request text
	Style  string `json:"style"`  // always StylePreset
}

// serviceResponse holds the fields consumed from the service's JSON body.
// The fields are not mutually exclusive; Classify disambiguates them.
type serviceResponse struct {
	Success  bool       `json:"success"`
	ImageURL string     `json:"imageUrl"`
	Status   string     `json:"status"`
	Debug    *debugInfo `json:"debug"`
}

// debugInfo carries the service's diagnostic detail for failed requests.
type debugInfo struct {
	FailMsg string `json:"failMsg"`
}
