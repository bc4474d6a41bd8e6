package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"rna/domain"
	"rna/infra/memory"
	"rna/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type brokenRepository struct {
	*memory.Repository
}

func (brokenRepository) GetRna(context.Context, string) (domain.Rna, error) {
	return domain.Rna{}, errors.New("connection reset")
}

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]domain.Category{{ID: "C1", Name: "Shelter"}, {ID: "C2", Name: "Water"}},
		[]domain.SubCategory{
			{ID: "S1", CategoryID: "C1", Name: "Damage"},
			{ID: "S2", CategoryID: "C2", Name: "Access"},
		},
		[]domain.Question{
			{ID: "Q1", SubCategoryID: "S1", Text: "Roof intact?", Type: domain.QuestionTypeYesNo},
			{ID: "Q2", SubCategoryID: "S1", Text: "Walls intact?", Type: domain.QuestionTypeYesNo},
			{ID: "Q3", SubCategoryID: "S2", Text: "Water point working?", Type: domain.QuestionTypeYesNo},
		},
	)
}

func startServer(t *testing.T, service ProgressServiceServer) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	server := NewServerWithListener(lis)
	server.RegisterProgressService(service)

	go func() { _ = server.Start() }()
	t.Cleanup(server.GracefulStop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func seededRepository(t *testing.T) *memory.Repository {
	t.Helper()
	ctx := context.Background()

	repo := memory.NewRepository()
	_, err := repo.CreateRna(ctx, domain.Rna{ID: "r1", Name: "Riverside"})
	require.NoError(t, err)

	for _, questionID := range []string{"Q1", "Q3"} {
		_, err := repo.SaveAnswer(ctx, domain.Answer{RnaID: "r1", QuestionID: questionID, Value: "true"})
		require.NoError(t, err)
	}

	return repo
}

func TestProgressService_GetViewCategories(t *testing.T) {
	conn := startServer(t, NewProgressService(seededRepository(t), testCatalog()))
	client := NewProgressServiceClient(conn)

	res, err := client.GetViewCategories(context.Background(), "r1")
	require.NoError(t, err)

	fields := res.AsMap()
	assert.Equal(t, "r1", fields["rnaId"])

	categories, ok := fields["categories"].([]any)
	require.True(t, ok)
	require.Len(t, categories, 2)

	shelter := categories[0].(map[string]any)
	assert.Equal(t, "C1", shelter["id"])
	assert.Equal(t, float64(2), shelter["totalQuestionAmount"])
	assert.Equal(t, float64(1), shelter["answeredQuestionAmount"])
	assert.Len(t, shelter["subCategories"], 1)
}

func TestProgressService_GetOverview(t *testing.T) {
	conn := startServer(t, NewProgressService(seededRepository(t), testCatalog()))

	res, err := NewProgressServiceClient(conn).GetOverview(context.Background(), "r1")
	require.NoError(t, err)

	overview := res.AsMap()["overview"].(map[string]any)
	assert.Equal(t, float64(3), overview["totalQuestionAmount"])
	assert.Equal(t, float64(2), overview["answeredQuestionAmount"])
	assert.Equal(t, "67", overview["completionPercent"])
}

func TestProgressService_ErrorCodes(t *testing.T) {
	tests := []struct {
		name    string
		service *ProgressService
		rnaID   string
		code    codes.Code
	}{
		{"empty id", NewProgressService(memory.NewRepository(), testCatalog()), " ", codes.InvalidArgument},
		{"unknown rna", NewProgressService(memory.NewRepository(), testCatalog()), "missing", codes.NotFound},
		{"repository failure", NewProgressService(brokenRepository{memory.NewRepository()}, testCatalog()), "r1", codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := startServer(t, tt.service)

			_, err := NewProgressServiceClient(conn).GetOverview(context.Background(), tt.rnaID)
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestServer_HealthReportsProgressService(t *testing.T) {
	conn := startServer(t, NewProgressService(memory.NewRepository(), testCatalog()))

	res, err := grpc_health_v1.NewHealthClient(conn).Check(context.Background(), &grpc_health_v1.HealthCheckRequest{
		Service: ProgressServiceName,
	})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, res.GetStatus())
}

type panickingService struct{}

func (panickingService) GetViewCategories(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	panic("boom")
}

func (panickingService) GetOverview(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error) {
	panic("boom")
}

func TestServer_RecoversFromPanics(t *testing.T) {
	conn := startServer(t, panickingService{})

	_, err := NewProgressServiceClient(conn).GetViewCategories(context.Background(), "r1")
	require.Error(t, err)
	assert.Equal(t, codes.Internal, status.Code(err))
}
