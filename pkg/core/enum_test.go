package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallType(t *testing.T) {
	tests := []struct {
		input   string
		want    CallType
		wantErr bool
	}{
		{input: "incoming", want: CallIncoming},
		{input: "OUTGOING", want: CallOutgoing},
		{input: "  missed ", want: CallMissed},
		{input: "", wantErr: true},
		{input: "dropped", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCallType(tt.input)
			if tt.wantErr {
				var verr *ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, "call_type", verr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCallTypes(t *testing.T) {
	for _, ct := range CallTypes() {
		assert.True(t, ct.Valid(), ct.String())
	}
	assert.False(t, CallType("voicemail").Valid())
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input   string
		want    Direction
		wantErr bool
	}{
		{input: "s", want: DirectionSent},
		{input: "Sent", want: DirectionSent},
		{input: "r", want: DirectionReceived},
		{input: " received ", want: DirectionReceived},
		{input: "x", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDirection(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDirectionFromSent(t *testing.T) {
	assert.Equal(t, DirectionSent, DirectionFromSent(true))
	assert.Equal(t, DirectionReceived, DirectionFromSent(false))

	m := &Message{Direction: DirectionFromSent(true)}
	assert.True(t, m.IsSent())
}
