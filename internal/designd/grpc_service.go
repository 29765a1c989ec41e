package designd

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// StageOptimizer messages are google.protobuf.Struct values carrying the same
// JSON documents as the HTTP API, so no generated stubs are needed.
const (
	StageOptimizerServiceName = "rocket.v1.StageOptimizer"

	solveStageMethod   = "/rocket.v1.StageOptimizer/SolveStage"
	createSearchMethod = "/rocket.v1.StageOptimizer/CreateSearch"
	getSearchMethod    = "/rocket.v1.StageOptimizer/GetSearch"
	stopSearchMethod   = "/rocket.v1.StageOptimizer/StopSearch"
)

// StageOptimizerServer is the server API for the StageOptimizer service.
type StageOptimizerServer interface {
	SolveStage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateSearch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSearch(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StopSearch(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterStageOptimizerServer(s grpc.ServiceRegistrar, srv StageOptimizerServer) {
	s.RegisterService(&StageOptimizer_ServiceDesc, srv)
}

type unaryMethod func(StageOptimizerServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StageOptimizerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StageOptimizerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// StageOptimizer_ServiceDesc is the grpc.ServiceDesc for the StageOptimizer service.
var StageOptimizer_ServiceDesc = grpc.ServiceDesc{
	ServiceName: StageOptimizerServiceName,
	HandlerType: (*StageOptimizerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SolveStage", Handler: unaryHandler(solveStageMethod, StageOptimizerServer.SolveStage)},
		{MethodName: "CreateSearch", Handler: unaryHandler(createSearchMethod, StageOptimizerServer.CreateSearch)},
		{MethodName: "GetSearch", Handler: unaryHandler(getSearchMethod, StageOptimizerServer.GetSearch)},
		{MethodName: "StopSearch", Handler: unaryHandler(stopSearchMethod, StageOptimizerServer.StopSearch)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rocket/v1/stage_optimizer.proto",
}

// StageOptimizerClient is the client API for the StageOptimizer service.
type StageOptimizerClient struct {
	cc grpc.ClientConnInterface
}

func NewStageOptimizerClient(cc grpc.ClientConnInterface) *StageOptimizerClient {
	return &StageOptimizerClient{cc: cc}
}

func (c *StageOptimizerClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StageOptimizerClient) SolveStage(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, solveStageMethod, in, opts...)
}

func (c *StageOptimizerClient) CreateSearch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, createSearchMethod, in, opts...)
}

func (c *StageOptimizerClient) GetSearch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getSearchMethod, in, opts...)
}

func (c *StageOptimizerClient) StopSearch(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, stopSearchMethod, in, opts...)
}

// ToStruct encodes v as JSON and wraps it in a Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromStruct decodes a Struct into v through its JSON form.
func FromStruct(s *structpb.Struct, v any) error {
	b, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
