package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region client-struct
// Client wraps the gRPC connection to a gate server.
type Client struct {
	conn   *grpc.ClientConn
	client GateServiceClient
}

// #endregion client-struct

// #region constructor
// NewClient connects to a gate server. Without options the connection is
// plaintext.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	if len(opts) == 0 {
		opts = []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, client: NewGateServiceClient(conn)}, nil
}

// NewClientWithService creates a Client with an injected service implementation.
func NewClientWithService(svc GateServiceClient) *Client {
	return &Client{client: svc}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region evaluate
// Evaluate scores text with the named gate and returns the gate's JSON
// result as a map. requestID is optional.
func (c *Client) Evaluate(ctx context.Context, gateName, text, requestID string) (map[string]any, error) {
	in, err := structpb.NewStruct(map[string]any{"gate": gateName, "text": text})
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if requestID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDKey, requestID)
	}
	resp, err := c.client.Evaluate(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("evaluate rpc: %w", err)
	}
	return resp.AsMap(), nil
}

// #endregion evaluate
