package api

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"sp500dash/internal/dashboard"
)

// Client calls a remote Dashboard gRPC service.
type Client struct {
	conn *grpc.ClientConn
}

// Dial creates a Client for addr over plaintext. Extra options are appended
// after the transport credentials.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Update requests a bundle. A nil criteria asks the server for its defaults.
func (c *Client) Update(ctx context.Context, crit *dashboard.Criteria) (dashboard.Bundle, error) {
	out, err := c.UpdateRaw(ctx, crit)
	if err != nil {
		return dashboard.Bundle{}, err
	}
	var b dashboard.Bundle
	if err := fromStruct(out, &b); err != nil {
		return dashboard.Bundle{}, fmt.Errorf("decoding bundle: %w", err)
	}
	return b, nil
}

// UpdateRaw is Update returning the undecoded response, for generic JSON
// processing.
func (c *Client) UpdateRaw(ctx context.Context, crit *dashboard.Criteria) (*structpb.Struct, error) {
	in := &structpb.Struct{}
	if crit != nil {
		var err error
		if in, err = toStruct(crit); err != nil {
			return nil, err
		}
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodUpdate, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Options requests the filter choices.
func (c *Client) Options(ctx context.Context) (dashboard.FilterOptions, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, methodOptions, &structpb.Struct{}, out); err != nil {
		return dashboard.FilterOptions{}, err
	}
	var o dashboard.FilterOptions
	if err := fromStruct(out, &o); err != nil {
		return dashboard.FilterOptions{}, fmt.Errorf("decoding options: %w", err)
	}
	return o, nil
}
