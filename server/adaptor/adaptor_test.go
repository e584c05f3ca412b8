package adaptor

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/ponyo877/signtalk/rpc"
	"github.com/ponyo877/signtalk/server/domain"
	"github.com/ponyo877/signtalk/server/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestClient(t *testing.T, uc Usecase, stream StreamUsecase) rpc.SigntalkServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	rpc.RegisterSigntalkServiceServer(server, NewAdaptor(uc, stream))
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return rpc.NewSigntalkServiceClient(conn)
}

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestStreamMessageRoundTrip(t *testing.T) {
	t.Parallel()

	stream := &echoStream{}
	client := newTestClient(t, &mockUsecase{}, stream)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := client.StreamMessage(ctx)
	require.NoError(t, err)

	for _, msg := range []rpc.ClientMessage{
		rpc.NewJoin("alice_bob", "alice"),
		rpc.NewLandmark("alice_bob", 1, "alice", nil, true),
		rpc.NewSend("alice_bob", 1, "alice", "학교 가"),
	} {
		in, err := msg.ToStruct()
		require.NoError(t, err)
		require.NoError(t, s.Send(in))
	}

	out, err := s.Recv()
	require.NoError(t, err)
	got := rpc.ServerMessageFromStruct(out)
	assert.Equal(t, "alice", got.Sender)
	assert.Equal(t, "학교 가", got.Message)
	assert.Equal(t, []string{"/v/school.mp4"}, got.URLs)
	assert.Equal(t, []string{"가다"}, got.Miss)

	require.NoError(t, s.CloseSend())
	_, err = s.Recv()
	assert.Error(t, err)

	seen := stream.seen()
	require.Len(t, seen, 3)
	assert.Equal(t, domain.RequestJoin, seen[0].Type)
	assert.Equal(t, domain.RequestLandmark, seen[1].Type)
	assert.True(t, seen[1].End)
	assert.Equal(t, 1, seen[2].RoomID)
}

func TestStreamMessageSkipsUnknownType(t *testing.T) {
	t.Parallel()

	stream := &echoStream{}
	client := newTestClient(t, &mockUsecase{}, stream)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := client.StreamMessage(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Send(mustStruct(t, map[string]any{"type": "shout", "room": "r"})))
	in, err := rpc.NewSend("r", 0, "bob", "hi").ToStruct()
	require.NoError(t, err)
	require.NoError(t, s.Send(in))

	out, err := s.Recv()
	require.NoError(t, err)
	assert.Equal(t, "hi", rpc.ServerMessageFromStruct(out).Message)
	require.NoError(t, s.CloseSend())

	assert.Len(t, stream.seen(), 1)
}

func TestListMessages(t *testing.T) {
	t.Parallel()

	uc := &mockUsecase{}
	created := time.Date(2024, 5, 1, 3, 4, 0, 0, time.UTC)
	uc.On("ListMessages", mock.Anything, 7, 20).
		Return([]domain.Message{domain.NewMessage(1, 7, "alice", "Alice", "안녕", created)}, nil).Once()
	client := newTestClient(t, uc, &echoStream{})

	out, err := client.ListMessages(context.Background(), mustStruct(t, map[string]any{"room_id": 7, "limit": 20}))
	require.NoError(t, err)

	history := rpc.HistoryFromStruct(out)
	require.Len(t, history, 1)
	assert.Equal(t, "Alice", history[0].SenderName)
	assert.Equal(t, "안녕", history[0].Message)
	assert.Equal(t, created.Format(time.RFC3339), history[0].Date)
	uc.AssertExpectations(t)
}

func TestUnaryErrorCodes(t *testing.T) {
	t.Parallel()

	uc := &mockUsecase{}
	uc.On("SearchMessages", mock.Anything, 7, "(").
		Return(nil, fmt.Errorf("%w: bad pattern", domain.ErrInvalidInput)).Once()
	uc.On("LookupRoom", mock.Anything, "alice", "ghost").
		Return(0, fmt.Errorf("error looking up room: %w", domain.ErrUserNotFound)).Once()
	uc.On("Translate", mock.Anything, "안녕").
		Return(nil, fmt.Errorf("translate: %w", domain.ErrUpstreamUnavailable)).Once()
	client := newTestClient(t, uc, &echoStream{})
	ctx := context.Background()

	_, err := client.SearchMessages(ctx, mustStruct(t, map[string]any{"room_id": 7, "pattern": "("}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.LookupRoom(ctx, mustStruct(t, map[string]any{"user_a": "alice", "user_b": "ghost"}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.Translate(ctx, mustStruct(t, map[string]any{"text": "안녕"}))
	assert.Equal(t, codes.Unavailable, status.Code(err))
	uc.AssertExpectations(t)
}

func TestLookupRoomAndTranslate(t *testing.T) {
	t.Parallel()

	uc := &mockUsecase{}
	uc.On("LookupRoom", mock.Anything, "bob", "alice").Return(3, nil).Once()
	uc.On("Translate", mock.Anything, "학교 가").Return(usecase.TranslationResult{
		Translation: domain.Translation{Gloss: "학교1 가다", Meta: map[string]any{"model": "t5"}},
		CleanGloss:  "학교 가다",
		Mapping:     domain.Mapping{URLs: []string{"/v/school.mp4"}, Misses: []string{"가다"}},
	}, nil).Once()
	client := newTestClient(t, uc, &echoStream{})
	ctx := context.Background()

	out, err := client.LookupRoom(ctx, mustStruct(t, map[string]any{"user_a": "bob", "user_b": "alice"}))
	require.NoError(t, err)
	assert.Equal(t, float64(3), out.GetFields()["room_id"].GetNumberValue())
	assert.Equal(t, "alice_bob", out.GetFields()["room"].GetStringValue())

	out, err = client.Translate(ctx, mustStruct(t, map[string]any{"text": "학교 가"}))
	require.NoError(t, err)
	result := rpc.TranslateResultFromStruct(out)
	assert.Equal(t, "학교1 가다", result.Gloss)
	assert.Equal(t, "학교 가다", result.CleanGloss)
	assert.Equal(t, []string{"/v/school.mp4"}, result.URLs)
	assert.Equal(t, []string{"가다"}, result.Miss)
	assert.Equal(t, "t5", result.Meta["model"])
}
