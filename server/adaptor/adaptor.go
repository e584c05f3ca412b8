package adaptor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ponyo877/signtalk/rpc"
	"github.com/ponyo877/signtalk/server/domain"
	"google.golang.org/grpc/peer"
	"google.golang.org/protobuf/types/known/structpb"
)

const streamBuffer = 32

type Adaptor struct {
	uc     Usecase
	stream StreamUsecase
	rpc.UnimplementedSigntalkServiceServer
}

func NewAdaptor(uc Usecase, stream StreamUsecase) *Adaptor {
	return &Adaptor{uc: uc, stream: stream}
}

func toServerMessage(receive domain.Receive) rpc.ServerMessage {
	return rpc.ServerMessage{
		Sender:     receive.Sender,
		SenderName: receive.SenderName,
		Message:    receive.Message,
		Gloss:      receive.Gloss,
		URLs:       receive.URLs,
		Miss:       receive.Miss,
		Time:       receive.Time,
	}
}

func toHistory(messages []domain.Message) []rpc.HistoryMessage {
	history := make([]rpc.HistoryMessage, len(messages))
	for i, message := range messages {
		history[i] = rpc.HistoryMessage{
			Sender:     message.Sender,
			SenderName: message.SenderName,
			Message:    message.Content,
			Date:       message.CreatedAt.Format(time.RFC3339),
		}
	}
	return history
}

func toDomainRequest(in rpc.ClientMessage) (domain.StreamRequest, error) {
	switch in.Type {
	case rpc.ClientJoin:
		return domain.NewJoinRequest(in.Room, in.User), nil
	case rpc.ClientLeave:
		return domain.NewLeaveRequest(in.Room, in.User), nil
	case rpc.ClientSend:
		return domain.NewSendRequest(in.Room, in.RoomID, in.User, in.Text), nil
	case rpc.ClientLandmark:
		return domain.NewLandmarkRequest(in.Room, in.RoomID, in.User, domain.Frame(in.Frame), in.End), nil
	}
	return domain.StreamRequest{}, fmt.Errorf("unknown request type %q", in.Type)
}

func (a *Adaptor) StreamMessage(stream rpc.SigntalkService_StreamMessageServer) error {
	ctx := stream.Context()
	remote := "unknown"
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		remote = p.Addr.String()
	}
	sessionID := uuid.NewString()

	requestChan := make(chan domain.StreamRequest, streamBuffer)
	responseChan := make(chan domain.StreamResponse, streamBuffer)

	usecaseErr := make(chan error, 1)
	go func() {
		defer close(responseChan)
		usecaseErr <- a.stream.HandleStreamSession(ctx, requestChan, responseChan, sessionID, remote)
	}()

	responseErr := make(chan error, 1)
	go func() {
		var sendErr error
		for response := range responseChan {
			if sendErr != nil {
				continue
			}
			if response.IsError() {
				slog.Warn("Stream event rejected", "error", response.Error, "trace", response.Trace, "sessionID", sessionID)
				continue
			}
			message, err := toServerMessage(response.Receive).ToStruct()
			if err != nil {
				slog.Error("Failed to encode server message", "error", err, "sessionID", sessionID)
				continue
			}
			if err := stream.Send(message); err != nil {
				sendErr = fmt.Errorf("failed to send response: %w", err)
			}
		}
		responseErr <- sendErr
	}()

	recvErr := a.receive(stream, sessionID, requestChan)
	close(requestChan)

	err := <-usecaseErr
	sendErr := <-responseErr
	switch {
	case recvErr != nil && !errors.Is(recvErr, context.Canceled):
		return recvErr
	case sendErr != nil:
		return sendErr
	case err != nil && !errors.Is(err, context.Canceled):
		return err
	}
	return nil
}

func (a *Adaptor) receive(stream rpc.SigntalkService_StreamMessageServer, sessionID string, requestChan chan<- domain.StreamRequest) error {
	ctx := stream.Context()
	for {
		in, err := stream.Recv()
		if err != nil {
			if err == io.EOF {
				slog.Debug("Client disconnected", "sessionID", sessionID)
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Client disconnected with error", "error", err, "sessionID", sessionID)
			return err
		}

		message, err := rpc.ClientMessageFromStruct(in)
		if err == nil {
			var request domain.StreamRequest
			request, err = toDomainRequest(message)
			if err == nil {
				select {
				case requestChan <- request:
				case <-ctx.Done():
					return ctx.Err()
				}
				continue
			}
		}
		slog.Warn("Failed to convert request", "error", err, "sessionID", sessionID)
	}
}

func (a *Adaptor) ListMessages(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	roomID := int(in.GetFields()["room_id"].GetNumberValue())
	limit := int(in.GetFields()["limit"].GetNumberValue())
	messages, err := a.uc.ListMessages(ctx, roomID, limit)
	if err != nil {
		slog.Error("Error listing messages", "error", err, "roomID", roomID)
		return nil, grpcError(err)
	}
	return rpc.HistoryToStruct(toHistory(messages))
}

func (a *Adaptor) SearchMessages(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	roomID := int(in.GetFields()["room_id"].GetNumberValue())
	pattern := in.GetFields()["pattern"].GetStringValue()
	messages, err := a.uc.SearchMessages(ctx, roomID, pattern)
	if err != nil {
		slog.Error("Error searching messages", "error", err, "roomID", roomID)
		return nil, grpcError(err)
	}
	return rpc.HistoryToStruct(toHistory(messages))
}

func (a *Adaptor) LookupRoom(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userA := in.GetFields()["user_a"].GetStringValue()
	userB := in.GetFields()["user_b"].GetStringValue()
	roomID, err := a.uc.LookupRoom(ctx, userA, userB)
	if err != nil {
		slog.Error("Error looking up room", "error", err, "userA", userA, "userB", userB)
		return nil, grpcError(err)
	}
	return structpb.NewStruct(map[string]any{
		"room_id": roomID,
		"room":    domain.PairRoomKey(userA, userB),
	})
}

func (a *Adaptor) Translate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	result, err := a.uc.Translate(ctx, in.GetFields()["text"].AsInterface())
	if err != nil {
		slog.Error("Error translating text", "error", err)
		return nil, grpcError(err)
	}
	return rpc.TranslateResult{
		Gloss:      result.Translation.Gloss,
		CleanGloss: result.CleanGloss,
		URLs:       result.Mapping.URLs,
		Miss:       result.Mapping.Misses,
		Meta:       result.Translation.Meta,
	}.ToStruct()
}
