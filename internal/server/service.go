package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bol.v1.BOLService"

// BOLServer is the server API for bol.v1.BOLService. Requests and responses
// are google.protobuf.Struct messages.
type BOLServer interface {
	ParseText(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListShipments(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Stats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IngestFile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	IngestDirectory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(BOLServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func handler(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(BOLServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(BOLServer), ctx, req.(*structpb.Struct))
			})
		},
	}
}

// BOLServiceDesc is the grpc.ServiceDesc for bol.v1.BOLService.
var BOLServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BOLServer)(nil),
	Methods: []grpc.MethodDesc{
		handler("ParseText", BOLServer.ParseText),
		handler("ListShipments", BOLServer.ListShipments),
		handler("Stats", BOLServer.Stats),
		handler("IngestFile", BOLServer.IngestFile),
		handler("IngestDirectory", BOLServer.IngestDirectory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bol/v1/bol.proto",
}

func RegisterBOLServer(s grpc.ServiceRegistrar, srv BOLServer) {
	s.RegisterService(&BOLServiceDesc, srv)
}

// BOLClient calls bol.v1.BOLService.
type BOLClient struct {
	cc grpc.ClientConnInterface
}

func NewBOLClient(cc grpc.ClientConnInterface) *BOLClient {
	return &BOLClient{cc: cc}
}

func (c *BOLClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BOLClient) ParseText(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ParseText", in, opts...)
}

func (c *BOLClient) ListShipments(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListShipments", in, opts...)
}

func (c *BOLClient) Stats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Stats", in, opts...)
}

func (c *BOLClient) IngestFile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "IngestFile", in, opts...)
}

func (c *BOLClient) IngestDirectory(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "IngestDirectory", in, opts...)
}
