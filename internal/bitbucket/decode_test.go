package bitbucket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name            string
		resp            Response
		transportErr    error
		successStatuses []int
		wantKind        Kind
		wantStatus      int
		wantMessage     string
	}{
		{
			name:         "transport failure",
			transportErr: errors.New("dial tcp: connection refused"),
			wantKind:     KindTransport,
			wantMessage:  "request error: dial tcp: connection refused",
		},
		{
			name:            "401 maps to auth failure on any endpoint",
			resp:            Response{Status: 401},
			successStatuses: []int{200, 201},
			wantKind:        KindAuthFailure,
			wantStatus:      401,
			wantMessage:     "access denied for user builder, verify username and password",
		},
		{
			name:            "403 maps to forbidden on any endpoint",
			resp:            Response{Status: 403},
			successStatuses: []int{204},
			wantKind:        KindForbidden,
			wantStatus:      403,
			wantMessage:     "access denied for user builder",
		},
		{
			name:            "remote rejection carries server message verbatim",
			resp:            Response{Status: 409, Body: []byte(`{"errors":[{"message":"A branch with that name already exists."}]}`)},
			successStatuses: []int{200, 201},
			wantKind:        KindRemoteRejected,
			wantStatus:      409,
			wantMessage:     "A branch with that name already exists.",
		},
		{
			name:            "unparseable error body",
			resp:            Response{Status: 500, Body: []byte("<html>Internal Server Error</html>")},
			successStatuses: []int{200},
			wantKind:        KindMalformedResponse,
			wantStatus:      500,
		},
		{
			name:            "parseable body with empty errors array",
			resp:            Response{Status: 500, Body: []byte(`{"errors":[]}`)},
			successStatuses: []int{200},
			wantKind:        KindMalformedResponse,
			wantStatus:      500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decode(tt.resp, tt.transportErr, "builder", tt.successStatuses...)
			require.Error(t, err)

			var opErr *OpError
			require.ErrorAs(t, err, &opErr)
			assert.Equal(t, tt.wantKind, opErr.Kind)
			assert.Equal(t, tt.wantStatus, opErr.Status)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, opErr.Message)
			}
		})
	}
}

func TestDecode_Success(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		successStatuses []int
	}{
		{"200 of 200/201", 200, []int{200, 201}},
		{"201 of 200/201", 201, []int{200, 201}},
		{"204 only", 204, []int{204}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decode(Response{Status: tt.status}, nil, "builder", tt.successStatuses...)
			assert.NoError(t, err)
		})
	}
}

func TestDecode_CreateConflictCarriesExistingPullRequest(t *testing.T) {
	body := `{"errors":[{
		"message": "Only one pull request may be open for a given source and target branch",
		"existingPullRequest": {"id": 42, "version": 7}
	}]}`

	err := decode(Response{Status: 409, Body: []byte(body)}, nil, "builder", 201)
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindRemoteRejected, opErr.Kind)
	require.NotNil(t, opErr.Existing)
	assert.Equal(t, 42, opErr.Existing.ID)
	assert.Equal(t, 7, opErr.Existing.Version)
}

func TestIsKind(t *testing.T) {
	err := decode(Response{Status: 401}, nil, "builder", 200)

	assert.True(t, IsKind(err, KindAuthFailure))
	assert.False(t, IsKind(err, KindForbidden))
	assert.False(t, IsKind(errors.New("plain"), KindAuthFailure))
}
