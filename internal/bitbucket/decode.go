package bitbucket

import (
	"encoding/json"
	"fmt"
)

// remoteErrorBody is the error envelope Bitbucket Server returns on
// rejected requests. On a create conflict the first entry additionally
// embeds the pull request already occupying the requested identity.
type remoteErrorBody struct {
	Errors []remoteError `json:"errors"`
}

type remoteError struct {
	Message             string `json:"message"`
	ExistingPullRequest *struct {
		ID      int `json:"id"`
		Version int `json:"version"`
	} `json:"existingPullRequest"`
}

// decode is the single status-to-outcome mapping shared by every
// endpoint. The only per-endpoint variation is which statuses count as
// success.
//
// A transport error becomes KindTransport. 401 and 403 are mapped to
// KindAuthFailure and KindForbidden on every endpoint. Any other
// non-success status surfaces the server's errors[0].message verbatim as
// KindRemoteRejected, or KindMalformedResponse when the body cannot be
// parsed.
func decode(resp Response, transportErr error, username string, successStatuses ...int) error {
	if transportErr != nil {
		return transportError(transportErr)
	}

	switch resp.Status {
	case 401:
		return &OpError{
			Kind:    KindAuthFailure,
			Message: fmt.Sprintf("access denied for user %s, verify username and password", username),
			Status:  resp.Status,
		}
	case 403:
		return &OpError{
			Kind:    KindForbidden,
			Message: fmt.Sprintf("access denied for user %s", username),
			Status:  resp.Status,
		}
	}

	for _, s := range successStatuses {
		if resp.Status == s {
			return nil
		}
	}

	var body remoteErrorBody
	if err := json.Unmarshal(resp.Body, &body); err != nil || len(body.Errors) == 0 {
		return &OpError{
			Kind:    KindMalformedResponse,
			Message: fmt.Sprintf("server returned status %d with an unparseable body", resp.Status),
			Status:  resp.Status,
		}
	}

	opErr := &OpError{
		Kind:    KindRemoteRejected,
		Message: body.Errors[0].Message,
		Status:  resp.Status,
	}
	if existing := body.Errors[0].ExistingPullRequest; existing != nil {
		opErr.Existing = &ExistingPullRequest{ID: existing.ID, Version: existing.Version}
	}
	return opErr
}
