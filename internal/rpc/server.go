package rpc

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/fcs-gates/internal/gate"
	"github.com/danielpatrickdp/fcs-gates/internal/logging"
)

// RequestIDKey is the metadata key read for caller-supplied request ids.
const RequestIDKey = "x-request-id"

// #region server
// Server implements GateServiceServer over a set of loaded gates.
type Server struct {
	gates    map[string]*gate.Gate
	recorder *logging.Recorder
}

// NewServer indexes gates by name. recorder may be nil.
func NewServer(gates []*gate.Gate, recorder *logging.Recorder) *Server {
	s := &Server{gates: make(map[string]*gate.Gate, len(gates)), recorder: recorder}
	for _, g := range gates {
		s.gates[g.Spec().Name] = g
	}
	return s
}

// Evaluate routes the request to the named gate. Only an unknown gate is
// an RPC error; every other problem is reported inside the gate result.
func (s *Server) Evaluate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := in.AsMap()
	name, _ := req["gate"].(string)
	g, ok := s.gates[name]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown gate %q", name)
	}
	delete(req, "gate")

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}
	res := g.Evaluate(raw)

	if s.recorder != nil {
		s.recorder.Record("grpc", requestID(ctx), res)
	}
	return resultStruct(res)
}

// #endregion server

// #region grpc-server
// NewGRPCServer returns a grpc.Server with the gate service registered and
// a logging interceptor installed.
func NewGRPCServer(gates []*gate.Gate, recorder *logging.Recorder, logger *slog.Logger, opts ...grpc.ServerOption) *grpc.Server {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append(opts, grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	srv := grpc.NewServer(opts...)
	RegisterGateServiceServer(srv, NewServer(gates, recorder))
	return srv
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Debug("grpc call", "method", info.FullMethod, "code", status.Code(err).String(), "duration", time.Since(start))
		return resp, err
	}
}

// #endregion grpc-server

// #region helpers
func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(RequestIDKey); len(v) > 0 {
		return v[0]
	}
	return ""
}

func resultStruct(res gate.Result) (*structpb.Struct, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode result: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "decode result: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build result: %v", err)
	}
	return out, nil
}

// #endregion helpers
