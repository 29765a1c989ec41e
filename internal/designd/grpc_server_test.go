package designd

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newBufconnClient(t *testing.T) (*SearchStore, *StageOptimizerClient) {
	t.Helper()
	store, executor := newTestExecutor(t, nil)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterStageOptimizerServer(srv, NewOptimizerGRPCServer(store, executor))
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

	return store, NewStageOptimizerClient(conn)
}

func mustStruct(t *testing.T, v any) *structpb.Struct {
	t.Helper()
	s, err := ToStruct(v)
	require.NoError(t, err)
	return s
}

func TestStructRoundTrip(t *testing.T) {
	req := CreateSearchRequest{SearchID: "search-1", Samples: 12, Engines: []string{"LR79"}}
	var got CreateSearchRequest
	require.NoError(t, FromStruct(mustStruct(t, req), &got))
	assert.Equal(t, req, got)
}

func TestGRPCSolveStage(t *testing.T) {
	_, client := newBufconnClient(t)
	ctx := context.Background()

	resp, err := client.SolveStage(ctx, mustStruct(t, map[string]any{
		"requirement": map[string]any{
			"payload": 10, "delta_v": 3000, "gravity": 9.81,
			"atm_fraction": 0.5, "twr": 1, "fuel_ratio": 0.05,
		},
	}))
	require.NoError(t, err)
	st := resp.GetFields()["stage"].GetStructValue().GetFields()
	assert.Equal(t, "RL10A-3", st["engine"].GetStringValue())
	assert.Equal(t, 7.0, st["count"].GetNumberValue())
}

func TestGRPCSolveStageErrorCodes(t *testing.T) {
	_, client := newBufconnClient(t)
	ctx := context.Background()

	_, err := client.SolveStage(ctx, mustStruct(t, map[string]any{
		"requirement": map[string]any{"payload": 10, "delta_v": 3000, "gravity": 9.81, "twr": 1000},
	}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.SolveStage(ctx, mustStruct(t, map[string]any{
		"requirement": map[string]any{"payload": 10, "delta_v": 3000, "gravity": -1, "twr": 1},
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.SolveStage(ctx, mustStruct(t, map[string]any{"requirement": "not an object"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestGRPCSearchLifecycle(t *testing.T) {
	store, client := newBufconnClient(t)
	ctx := context.Background()

	created, err := client.CreateSearch(ctx, mustStruct(t, CreateSearchRequest{
		SearchID:    "search-1",
		VehicleYAML: testVehicleYAML,
		Samples:     50,
	}))
	require.NoError(t, err)
	assert.Equal(t, "search-1", created.GetFields()["search"].GetStructValue().GetFields()["id"].GetStringValue())

	waitForStatus(t, store, "search-1", StatusCompleted)

	got, err := client.GetSearch(ctx, mustStruct(t, map[string]any{"search_id": "search-1"}))
	require.NoError(t, err)
	search := got.GetFields()["search"].GetStructValue().GetFields()
	assert.Equal(t, "completed", search["status"].GetStringValue())
	stages := search["result"].GetStructValue().GetFields()["stages"].GetListValue().GetValues()
	require.Len(t, stages, 2)
	assert.Equal(t, "RL10A-3", stages[0].GetStructValue().GetFields()["engine"].GetStringValue())

	_, err = client.StopSearch(ctx, mustStruct(t, map[string]any{"search_id": "search-1"}))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	_, err = client.CreateSearch(ctx, mustStruct(t, CreateSearchRequest{SearchID: "search-1", VehicleYAML: testVehicleYAML}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestGRPCGetSearchErrors(t *testing.T) {
	_, client := newBufconnClient(t)
	ctx := context.Background()

	_, err := client.GetSearch(ctx, mustStruct(t, map[string]any{}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetSearch(ctx, mustStruct(t, map[string]any{"search_id": "missing"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.StopSearch(ctx, mustStruct(t, map[string]any{"search_id": "missing"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.CreateSearch(ctx, mustStruct(t, map[string]any{"samples": 5}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
