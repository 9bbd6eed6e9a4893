package discovery_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oggyb/muzz-discovery/internal/logger"
	"github.com/oggyb/muzz-discovery/internal/server"
	"github.com/oggyb/muzz-discovery/internal/service/discovery"
)

func dialBufnet(t *testing.T, registrars ...server.Registrar) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv, _ := server.NewGRPCServer(logger.Discard(), registrars...)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestTransport_EndToEnd(t *testing.T) {
	appCtx, gdb := newTestApp(t)
	seedMinimal(t, gdb)
	conn := dialBufnet(t, discovery.NewRegistrar(appCtx))
	client := discovery.NewClient(conn)
	ctx := context.Background()

	out, err := client.GetFeed(ctx, &discovery.GetFeedRequest{UserID: "u1", Mode: "story"})
	require.NoError(t, err)
	assert.Equal(t, "story", out.Mode)
	require.Len(t, out.Candidates, 2)
	require.Len(t, out.StoryPanels, 2)
	assert.Equal(t, out.Candidates[0].CandidateID, out.StoryPanels[0].CandidateID)
	assert.NotEmpty(t, out.StoryPanels[0].ContextPanel)
	assert.Nil(t, out.Candidates[0].Live, "live profile is not serialized")

	res, err := client.Like(ctx, &discovery.InteractionRequest{ActorID: "u1", TargetID: "u3"})
	require.NoError(t, err)
	assert.True(t, res.Success)

	strip, err := client.GetBoostStrip(ctx, &discovery.GetBoostStripRequest{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, strip.Upcoming, 1)

	_, err = client.GetFeed(ctx, &discovery.GetFeedRequest{UserID: "ghost"})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestTransport_Health(t *testing.T) {
	appCtx, _ := newTestApp(t)
	conn := dialBufnet(t, discovery.NewRegistrar(appCtx))

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: discovery.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
