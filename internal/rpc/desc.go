package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "clarity.v1.ClarityService"

const (
	computeMethod     = "/" + ServiceName + "/Compute"
	appendProofMethod = "/" + ServiceName + "/AppendProof"
	listProofsMethod  = "/" + ServiceName + "/ListProofs"
)

// ClarityServer is the server API for ClarityService. Messages are
// google.protobuf.Struct so no generated code is needed on either side.
type ClarityServer interface {
	Compute(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AppendProof(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProofs(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ClarityServiceDesc describes ClarityService for grpc.Server.RegisterService.
var ClarityServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ClarityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Compute", Handler: unaryHandler(computeMethod, ClarityServer.Compute)},
		{MethodName: "AppendProof", Handler: unaryHandler(appendProofMethod, ClarityServer.AppendProof)},
		{MethodName: "ListProofs", Handler: unaryHandler(listProofsMethod, ClarityServer.ListProofs)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clarity/v1/clarity.proto",
}

// RegisterClarityServer registers srv on s.
func RegisterClarityServer(s grpc.ServiceRegistrar, srv ClarityServer) {
	s.RegisterService(&ClarityServiceDesc, srv)
}

type unaryCall func(ClarityServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ClarityServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ClarityServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// #endregion service-desc
