package designd

import (
	"context"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/logger"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// OptimizerGRPCServer implements StageOptimizerServer on top of a SearchExecutor.
type OptimizerGRPCServer struct {
	store    *SearchStore
	Executor *SearchExecutor
}

func NewOptimizerGRPCServer(store *SearchStore, executor *SearchExecutor) *OptimizerGRPCServer {
	return &OptimizerGRPCServer{
		store:    store,
		Executor: executor,
	}
}

func decodeRequest(in *structpb.Struct, v any) error {
	if in == nil {
		return status.Error(codes.InvalidArgument, "request is required")
	}
	if err := FromStruct(in, v); err != nil {
		return status.Error(codes.InvalidArgument, "invalid request: "+err.Error())
	}
	return nil
}

func encodeResponse(v any) (*structpb.Struct, error) {
	out, err := ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func (s *OptimizerGRPCServer) SolveStage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req SolveStageRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	st, err := s.Executor.Solve(req)
	if err != nil {
		return nil, status.Error(grpcCodeFor(err), err.Error())
	}
	return encodeResponse(map[string]any{"stage": convertStageToJSON(st)})
}

func (s *OptimizerGRPCServer) CreateSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req CreateSearchRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	rec, err := s.Executor.Submit(req)
	if err != nil {
		return nil, status.Error(grpcCodeFor(err), err.Error())
	}
	logger.Info("search created", "search_id", rec.ID)
	return encodeResponse(map[string]any{"search": convertSearchToJSON(rec)})
}

func (s *OptimizerGRPCServer) GetSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req searchRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	if req.SearchID == "" {
		return nil, status.Error(codes.InvalidArgument, "search_id is required")
	}
	rec, ok := s.store.Get(req.SearchID)
	if !ok {
		return nil, status.Error(codes.NotFound, "search not found")
	}
	return encodeResponse(map[string]any{"search": convertSearchToJSON(rec)})
}

func (s *OptimizerGRPCServer) StopSearch(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req searchRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, err
	}
	rec, err := s.Executor.Stop(req.SearchID)
	if err != nil {
		return nil, status.Error(grpcCodeFor(err), err.Error())
	}
	logger.Info("search cancelled", "search_id", req.SearchID)
	return encodeResponse(map[string]any{"search": convertSearchToJSON(rec)})
}
