// Package rpc holds the SigntalkService gRPC definition shared by the server
// and the CLI. Messages travel as structpb.Struct values; message.go provides
// typed views over them.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "signtalk.SigntalkService"

	SigntalkService_StreamMessage_FullMethodName  = "/signtalk.SigntalkService/StreamMessage"
	SigntalkService_ListMessages_FullMethodName   = "/signtalk.SigntalkService/ListMessages"
	SigntalkService_SearchMessages_FullMethodName = "/signtalk.SigntalkService/SearchMessages"
	SigntalkService_LookupRoom_FullMethodName     = "/signtalk.SigntalkService/LookupRoom"
	SigntalkService_Translate_FullMethodName      = "/signtalk.SigntalkService/Translate"
)

type SigntalkService_StreamMessageServer = grpc.BidiStreamingServer[structpb.Struct, structpb.Struct]

type SigntalkService_StreamMessageClient = grpc.BidiStreamingClient[structpb.Struct, structpb.Struct]

// SigntalkServiceServer is the server API for SigntalkService.
type SigntalkServiceServer interface {
	StreamMessage(SigntalkService_StreamMessageServer) error
	ListMessages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SearchMessages(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LookupRoom(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Translate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedSigntalkServiceServer must be embedded to have forward compatible implementations.
type UnimplementedSigntalkServiceServer struct{}

func (UnimplementedSigntalkServiceServer) StreamMessage(SigntalkService_StreamMessageServer) error {
	return status.Errorf(codes.Unimplemented, "method StreamMessage not implemented")
}

func (UnimplementedSigntalkServiceServer) ListMessages(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListMessages not implemented")
}

func (UnimplementedSigntalkServiceServer) SearchMessages(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SearchMessages not implemented")
}

func (UnimplementedSigntalkServiceServer) LookupRoom(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method LookupRoom not implemented")
}

func (UnimplementedSigntalkServiceServer) Translate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Translate not implemented")
}

func RegisterSigntalkServiceServer(s grpc.ServiceRegistrar, srv SigntalkServiceServer) {
	s.RegisterService(&SigntalkService_ServiceDesc, srv)
}

func _SigntalkService_StreamMessage_Handler(srv interface{}, stream grpc.ServerStream) error {
	return srv.(SigntalkServiceServer).StreamMessage(&grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

func _SigntalkService_ListMessages_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SigntalkServiceServer).ListMessages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SigntalkService_ListMessages_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SigntalkServiceServer).ListMessages(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _SigntalkService_SearchMessages_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SigntalkServiceServer).SearchMessages(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SigntalkService_SearchMessages_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SigntalkServiceServer).SearchMessages(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _SigntalkService_LookupRoom_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SigntalkServiceServer).LookupRoom(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SigntalkService_LookupRoom_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SigntalkServiceServer).LookupRoom(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _SigntalkService_Translate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SigntalkServiceServer).Translate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: SigntalkService_Translate_FullMethodName,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SigntalkServiceServer).Translate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var SigntalkService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SigntalkServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListMessages", Handler: _SigntalkService_ListMessages_Handler},
		{MethodName: "SearchMessages", Handler: _SigntalkService_SearchMessages_Handler},
		{MethodName: "LookupRoom", Handler: _SigntalkService_LookupRoom_Handler},
		{MethodName: "Translate", Handler: _SigntalkService_Translate_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamMessage",
			Handler:       _SigntalkService_StreamMessage_Handler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "signtalk.proto",
}

// SigntalkServiceClient is the client API for SigntalkService.
type SigntalkServiceClient interface {
	StreamMessage(ctx context.Context, opts ...grpc.CallOption) (SigntalkService_StreamMessageClient, error)
	ListMessages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SearchMessages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	LookupRoom(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Translate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type signtalkServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSigntalkServiceClient(cc grpc.ClientConnInterface) SigntalkServiceClient {
	return &signtalkServiceClient{cc}
}

func (c *signtalkServiceClient) StreamMessage(ctx context.Context, opts ...grpc.CallOption) (SigntalkService_StreamMessageClient, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	stream, err := c.cc.NewStream(ctx, &SigntalkService_ServiceDesc.Streams[0], SigntalkService_StreamMessage_FullMethodName, cOpts...)
	if err != nil {
		return nil, err
	}
	return &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}, nil
}

func (c *signtalkServiceClient) ListMessages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SigntalkService_ListMessages_FullMethodName, in, opts...)
}

func (c *signtalkServiceClient) SearchMessages(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SigntalkService_SearchMessages_FullMethodName, in, opts...)
}

func (c *signtalkServiceClient) LookupRoom(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SigntalkService_LookupRoom_FullMethodName, in, opts...)
}

func (c *signtalkServiceClient) Translate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, SigntalkService_Translate_FullMethodName, in, opts...)
}

func (c *signtalkServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	cOpts := append([]grpc.CallOption{grpc.StaticMethod()}, opts...)
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}
