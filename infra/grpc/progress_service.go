package grpc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rna/app"
	"rna/domain"
	"rna/pkg/catalog"
	"rna/pkg/progress"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ProgressServiceName = "rna.progress.v1.ProgressService"

const (
	getViewCategoriesMethod = "/" + ProgressServiceName + "/GetViewCategories"
	getOverviewMethod       = "/" + ProgressServiceName + "/GetOverview"
)

// ProgressServiceServer takes the RNA id as a StringValue and answers with a
// Struct shaped like the HTTP API's JSON.
type ProgressServiceServer interface {
	GetViewCategories(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetOverview(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

var ProgressServiceDesc = grpc.ServiceDesc{
	ServiceName: ProgressServiceName,
	HandlerType: (*ProgressServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetViewCategories", Handler: progressHandler(getViewCategoriesMethod, ProgressServiceServer.GetViewCategories)},
		{MethodName: "GetOverview", Handler: progressHandler(getOverviewMethod, ProgressServiceServer.GetOverview)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rna/progress/v1/progress.proto",
}

func RegisterProgressServiceServer(s grpc.ServiceRegistrar, srv ProgressServiceServer) {
	s.RegisterService(&ProgressServiceDesc, srv)
}

type progressMethod func(ProgressServiceServer, context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)

func progressHandler(fullMethod string, method progressMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(wrapperspb.StringValue)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return method(srv.(ProgressServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return method(srv.(ProgressServiceServer), ctx, req.(*wrapperspb.StringValue))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type ProgressServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProgressServiceClient(cc grpc.ClientConnInterface) *ProgressServiceClient {
	return &ProgressServiceClient{cc: cc}
}

func (c *ProgressServiceClient) GetViewCategories(ctx context.Context, rnaID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, getViewCategoriesMethod, wrapperspb.String(rnaID), out, opts...)
	return out, err
}

func (c *ProgressServiceClient) GetOverview(ctx context.Context, rnaID string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	err := c.cc.Invoke(ctx, getOverviewMethod, wrapperspb.String(rnaID), out, opts...)
	return out, err
}

type ProgressService struct {
	repository app.Repository
	catalog    *catalog.Catalog
}

var _ ProgressServiceServer = (*ProgressService)(nil)

func NewProgressService(repository app.Repository, catalog *catalog.Catalog) *ProgressService {
	return &ProgressService{
		repository: repository,
		catalog:    catalog,
	}
}

func (s *ProgressService) GetViewCategories(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	categories, err := s.viewCategories(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}

	return toStruct(map[string]any{
		"rnaId":      req.GetValue(),
		"categories": categories,
	})
}

func (s *ProgressService) GetOverview(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	categories, err := s.viewCategories(ctx, req.GetValue())
	if err != nil {
		return nil, err
	}

	return toStruct(map[string]any{
		"rnaId":    req.GetValue(),
		"overview": progress.Summarize(categories),
	})
}

func (s *ProgressService) viewCategories(ctx context.Context, rnaID string) ([]domain.ViewCategory, error) {
	if strings.TrimSpace(rnaID) == "" {
		return nil, status.Error(codes.InvalidArgument, "rna id is required")
	}

	rna, err := s.repository.GetRna(ctx, rnaID)
	if err != nil {
		return nil, s.mapError(err)
	}

	answers, err := s.repository.GetAnswersByRnaID(ctx, rna.ID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return progress.ComputeViewCategories(s.catalog.Categories, s.catalog.SubCategories, s.catalog.Questions, answers), nil
}

func (s *ProgressService) mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return status.Error(codes.NotFound, "rna not found")
	}

	zap.L().Error("Progress lookup failed", zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

// toStruct goes through JSON so the Struct carries the same field names and
// decimal strings as the HTTP responses.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}

	return out, nil
}
