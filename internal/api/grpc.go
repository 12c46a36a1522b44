package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"sp500dash/internal/dashboard"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "sp500dash.Dashboard"

const (
	methodUpdate  = "/" + ServiceName + "/Update"
	methodOptions = "/" + ServiceName + "/Options"
)

// DashboardRPC is the server API of the Dashboard gRPC service. Messages are
// google.protobuf.Struct values carrying the JSON form of dashboard.Criteria,
// dashboard.Bundle and dashboard.FilterOptions.
type DashboardRPC interface {
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Options(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// DashboardServiceDesc describes the Dashboard service for grpc.Server.
var DashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardRPC)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Update", Handler: updateHandler},
		{MethodName: "Options", Handler: optionsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sp500dash/dashboard.proto",
}

// RegisterDashboardServer registers srv on s.
func RegisterDashboardServer(s grpc.ServiceRegistrar, srv DashboardRPC) {
	s.RegisterService(&DashboardServiceDesc, srv)
}

func updateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardRPC).Update(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodUpdate}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardRPC).Update(ctx, req.(*structpb.Struct))
	})
}

func optionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DashboardRPC).Options(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodOptions}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(DashboardRPC).Options(ctx, req.(*structpb.Struct))
	})
}

// ---------------------------------------------------------------------------
// Server side
// ---------------------------------------------------------------------------

var _ DashboardRPC = (*grpcDashboard)(nil)

type grpcDashboard struct {
	svc *DashboardService
}

// NewDashboardRPC adapts svc to the gRPC service interface.
func NewDashboardRPC(svc *DashboardService) DashboardRPC {
	return &grpcDashboard{svc: svc}
}

// Update decodes the criteria, falling back to the defaults for an empty
// request, and returns the bundle.
func (g *grpcDashboard) Update(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	c, err := g.svc.DefaultCriteria()
	if err != nil {
		return nil, statusError(err)
	}
	if len(in.GetFields()) > 0 {
		if err := fromStruct(in, &c); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decoding criteria: %v", err)
		}
	}
	b, err := g.svc.Update(ctx, "grpc", c)
	if err != nil {
		return nil, statusError(err)
	}
	return toStruct(b)
}

// Options returns the filter choices.
func (g *grpcDashboard) Options(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	o, err := g.svc.Options(ctx)
	if err != nil {
		return nil, statusError(err)
	}
	return toStruct(o)
}

func statusError(err error) error {
	switch {
	case errors.Is(err, dashboard.ErrInvalidCriteria):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, dashboard.ErrNilPanel):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// ---------------------------------------------------------------------------
// Struct conversion
// ---------------------------------------------------------------------------

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	return json.Unmarshal(data, v)
}
