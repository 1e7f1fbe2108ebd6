// Package rpc serves the gates over gRPC. Messages are google.protobuf.Struct
// values so the service needs no generated code:
//
//	service GateService {
//	  rpc Evaluate(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
//
// The request carries {"gate": name, "text": text}; the response is the
// gate's JSON result.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "fcs.gates.v1.GateService"

const evaluateMethod = "/" + ServiceName + "/Evaluate"

// #region server-api
// GateServiceServer is implemented by the gate server.
type GateServiceServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterGateServiceServer attaches srv to a gRPC server.
func RegisterGateServiceServer(s grpc.ServiceRegistrar, srv GateServiceServer) {
	s.RegisterService(&gateServiceDesc, srv)
}

var gateServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GateServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "fcs/gates/v1/gate_service.proto",
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GateServiceServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GateServiceServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// #endregion server-api

// #region client-api
// GateServiceClient is the client side of GateService.
type GateServiceClient interface {
	Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type gateServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGateServiceClient wraps a client connection.
func NewGateServiceClient(cc grpc.ClientConnInterface) GateServiceClient {
	return &gateServiceClient{cc: cc}
}

func (c *gateServiceClient) Evaluate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, evaluateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// #endregion client-api
