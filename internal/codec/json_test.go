package codec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/oggyb/muzz-discovery/internal/codec"
)

type sample struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
	Score  *float64  `json:"score,omitempty"`
}

func TestRegistered(t *testing.T) {
	assert.NotNil(t, encoding.GetCodec(codec.Name))
}

func TestRoundTrip_Struct(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	in := sample{UserID: "u-1", At: at}

	b, err := codec.JSON{}.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"userId":"u-1","at":"2026-05-01T12:00:00Z"}`, string(b))

	var out sample
	require.NoError(t, codec.JSON{}.Unmarshal(b, &out))
	assert.Equal(t, "u-1", out.UserID)
	assert.True(t, at.Equal(out.At))
	assert.Nil(t, out.Score)
}

func TestProtoMessagesUseProtojson(t *testing.T) {
	in := &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}

	b, err := codec.JSON{}.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"SERVING"`)

	out := &healthpb.HealthCheckResponse{}
	require.NoError(t, codec.JSON{}.Unmarshal(b, out))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, out.GetStatus())
}
