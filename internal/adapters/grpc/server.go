package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/daniiyalw/ai-icap-exam/internal/application"
)

// AccessInternalService is the service-to-service chapter access check.
// Requests and responses travel as structpb to avoid codegen for a
// single-method internal contract.
type AccessInternalService interface {
	VerifyAccess(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type AccessInternalServer struct {
	service *application.Service
}

func NewAccessInternalServer(service *application.Service) *AccessInternalServer {
	return &AccessInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc AccessInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "icap.exam.v1.AccessInternalService",
		HandlerType: (*AccessInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "VerifyAccess",
				Handler:    verifyAccessHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "icap/exam/v1/access_internal.proto",
	}, svc)
}

func (s *AccessInternalServer) VerifyAccess(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	chapterVal := req.GetFields()["chapter"]
	if chapterVal == nil {
		return nil, status.Error(codes.InvalidArgument, "missing chapter")
	}
	chapter := int(chapterVal.GetNumberValue())

	var token *string
	if tokenVal := req.GetFields()["token"]; tokenVal != nil {
		if _, isNull := tokenVal.GetKind().(*structpb.Value_NullValue); !isNull {
			raw := tokenVal.GetStringValue()
			token = &raw
		}
	}

	verification, err := s.service.VerifyAccess(ctx, token, chapter)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "verify access: %v", err)
	}

	fields := map[string]any{
		"valid": verification.Valid,
		"mode":  verification.Mode,
	}
	if verification.Username != "" {
		fields["username"] = verification.Username
	}
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func verifyAccessHandler(svc AccessInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.VerifyAccess(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/icap.exam.v1.AccessInternalService/VerifyAccess",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.VerifyAccess(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
