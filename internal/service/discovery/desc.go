package discovery

import (
	"context"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-discovery/internal/boost"
	"github.com/oggyb/muzz-discovery/internal/codec"
	feed "github.com/oggyb/muzz-discovery/internal/discovery"
	"github.com/oggyb/muzz-discovery/internal/interaction"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "discovery.v1.DiscoveryService"

// DiscoveryServer is the server API for DiscoveryService.
type DiscoveryServer interface {
	GetFeed(context.Context, *GetFeedRequest) (*feed.Feed, error)
	SaveRecipe(context.Context, *SaveRecipeRequest) (*Recipe, error)
	ListRecipes(context.Context, *ListRecipesRequest) (*ListRecipesResponse, error)
	Like(context.Context, *InteractionRequest) (*InteractionResponse, error)
	SuperLike(context.Context, *InteractionRequest) (*InteractionResponse, error)
	Rewind(context.Context, *RewindRequest) (*InteractionResponse, error)
	GetMatches(context.Context, *GetMatchesRequest) (*interaction.MatchPage, error)
	GetBoostStrip(context.Context, *GetBoostStripRequest) (*boost.Strip, error)
	GetLikeCount(context.Context, *GetLikeCountRequest) (*GetLikeCountResponse, error)
}

var _ DiscoveryServer = (*Service)(nil)

// ServiceDesc describes DiscoveryService. Messages travel with the "json"
// content subtype registered by the codec package.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiscoveryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetFeed", Handler: unary("GetFeed", DiscoveryServer.GetFeed)},
		{MethodName: "SaveRecipe", Handler: unary("SaveRecipe", DiscoveryServer.SaveRecipe)},
		{MethodName: "ListRecipes", Handler: unary("ListRecipes", DiscoveryServer.ListRecipes)},
		{MethodName: "Like", Handler: unary("Like", DiscoveryServer.Like)},
		{MethodName: "SuperLike", Handler: unary("SuperLike", DiscoveryServer.SuperLike)},
		{MethodName: "Rewind", Handler: unary("Rewind", DiscoveryServer.Rewind)},
		{MethodName: "GetMatches", Handler: unary("GetMatches", DiscoveryServer.GetMatches)},
		{MethodName: "GetBoostStrip", Handler: unary("GetBoostStrip", DiscoveryServer.GetBoostStrip)},
		{MethodName: "GetLikeCount", Handler: unary("GetLikeCount", DiscoveryServer.GetLikeCount)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "discovery/v1/discovery.proto",
}

// RegisterDiscoveryServer attaches srv to s.
func RegisterDiscoveryServer(s grpc.ServiceRegistrar, srv DiscoveryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(DiscoveryServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DiscoveryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DiscoveryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Client calls DiscoveryService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codec.Name)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFeed(ctx context.Context, in *GetFeedRequest, opts ...grpc.CallOption) (*feed.Feed, error) {
	return invoke[feed.Feed](ctx, c.cc, "GetFeed", in, opts)
}

func (c *Client) SaveRecipe(ctx context.Context, in *SaveRecipeRequest, opts ...grpc.CallOption) (*Recipe, error) {
	return invoke[Recipe](ctx, c.cc, "SaveRecipe", in, opts)
}

func (c *Client) ListRecipes(ctx context.Context, in *ListRecipesRequest, opts ...grpc.CallOption) (*ListRecipesResponse, error) {
	return invoke[ListRecipesResponse](ctx, c.cc, "ListRecipes", in, opts)
}

func (c *Client) Like(ctx context.Context, in *InteractionRequest, opts ...grpc.CallOption) (*InteractionResponse, error) {
	return invoke[InteractionResponse](ctx, c.cc, "Like", in, opts)
}

func (c *Client) SuperLike(ctx context.Context, in *InteractionRequest, opts ...grpc.CallOption) (*InteractionResponse, error) {
	return invoke[InteractionResponse](ctx, c.cc, "SuperLike", in, opts)
}

func (c *Client) Rewind(ctx context.Context, in *RewindRequest, opts ...grpc.CallOption) (*InteractionResponse, error) {
	return invoke[InteractionResponse](ctx, c.cc, "Rewind", in, opts)
}

func (c *Client) GetMatches(ctx context.Context, in *GetMatchesRequest, opts ...grpc.CallOption) (*interaction.MatchPage, error) {
	return invoke[interaction.MatchPage](ctx, c.cc, "GetMatches", in, opts)
}

func (c *Client) GetBoostStrip(ctx context.Context, in *GetBoostStripRequest, opts ...grpc.CallOption) (*boost.Strip, error) {
	return invoke[boost.Strip](ctx, c.cc, "GetBoostStrip", in, opts)
}

func (c *Client) GetLikeCount(ctx context.Context, in *GetLikeCountRequest, opts ...grpc.CallOption) (*GetLikeCountResponse, error) {
	return invoke[GetLikeCountResponse](ctx, c.cc, "GetLikeCount", in, opts)
}
