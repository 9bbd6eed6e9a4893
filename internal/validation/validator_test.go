package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ActorID  string `json:"actorId" validate:"required"`
	TargetID string `json:"targetId" validate:"required,nefield=ActorID"`
	Mode     string `json:"mode" validate:"omitempty,oneof=swipe story"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(&sample{ActorID: "a", TargetID: "b", Mode: "story"}))
}

func TestStruct_UsesJSONNames(t *testing.T) {
	err := Struct(&sample{TargetID: "b", Mode: "grid"})
	require.Error(t, err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Fields, 2)
	assert.Equal(t, "actorId", verr.Fields[0].Field)
	assert.Equal(t, "actorId is required", verr.Fields[0].Message)
	assert.Equal(t, "mode must be one of: swipe story", verr.Fields[1].Message)
}

func TestStruct_SelfTarget(t *testing.T) {
	err := Struct(&sample{ActorID: "a", TargetID: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "targetId must differ from")
}
