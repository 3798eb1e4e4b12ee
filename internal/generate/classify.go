package generate

import (
	"encoding/json"
	"fmt"
)

// Classify maps a raw service response body to exactly one Outcome.
//
// The service's payload fields are not mutually exclusive, so matching is
// by precedence, first match wins:
//
//  1. success is true AND imageUrl is non-empty -> success. Both conditions
//     are required so a partial or malformed success payload is never
//     treated as resolved.
//  2. status is "waiting" or "processing" -> still processing.
//  3. status is "failed" -> failed, with the service's debug message when
//     present ("Unknown error" otherwise).
//  4. anything else -> failed, with the raw status and success fields
//     embedded for diagnosis.
//
// Classify is total: any input, including bodies that are not valid JSON
// or carry none of the known fields, produces an Outcome. Degrading to a
// resolved failure beats leaving a conversation turn pending forever.
func Classify(body []byte) Outcome {
	var resp serviceResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Failed(fmt.Sprintf("Service returned an unreadable response: %v", err))
	}

	if resp.Success && resp.ImageURL != "" {
		return Success(resp.ImageURL)
	}

	switch resp.Status {
	case StatusWaiting, StatusProcessing:
		return Processing(resp.Status)
	case StatusFailed:
		if resp.Debug != nil && resp.Debug.FailMsg != "" {
			return Failed(resp.Debug.FailMsg)
		}
		return Failed("Unknown error")
	}

	return Failed(fmt.Sprintf("Generation did not complete (unknown status %q, success=%v)", resp.Status, resp.Success))
}
