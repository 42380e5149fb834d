package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Wire names of the scoring service. Requests and responses are
// google.protobuf.Struct values: {"text": string} -> {"polarity": number}.
const (
	ScorerServiceName = "talentscout.sentiment.v1.Scorer"
	scoreMethod       = "/" + ScorerServiceName + "/Score"
)

var (
	errConnectionShutdown       = errors.New("connection shutdown")
	errConnectionStateUnchanged = errors.New("connection state did not change")
	errMissingPolarity          = errors.New("score response missing polarity")
)

// RemoteConfig holds configuration for the remote scorer client.
type RemoteConfig struct {
	Address          string
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	KeepaliveTime    time.Duration
	KeepaliveTimeout time.Duration
}

// DefaultRemoteConfig returns default client settings for addr.
func DefaultRemoteConfig(addr string) RemoteConfig {
	return RemoteConfig{
		Address:          addr,
		ConnectTimeout:   5 * time.Second,
		RequestTimeout:   2 * time.Second,
		KeepaliveTime:    2 * time.Minute,
		KeepaliveTimeout: 10 * time.Second,
	}
}

// RemoteScorer scores text through an external gRPC scoring service.
type RemoteScorer struct {
	conn    *grpc.ClientConn
	addr    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewRemoteScorer connects to the scoring service and waits until the
// connection is ready, so a bad address fails at startup.
func NewRemoteScorer(cfg RemoteConfig, logger *slog.Logger, opts ...grpc.DialOption) (*RemoteScorer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	kacp := keepalive.ClientParameters{
		Time:                cfg.KeepaliveTime,
		Timeout:             cfg.KeepaliveTimeout,
		PermitWithoutStream: false,
	}
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(kacp),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentiment client for %s: %w", cfg.Address, err)
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()
	if err := waitForReady(connectCtx, conn); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Warn("failed to close gRPC connection after readiness failure", "error", closeErr)
		}
		return nil, fmt.Errorf("sentiment service at %s not ready: %w", cfg.Address, err)
	}

	logger.Info("Connected to sentiment service", "address", cfg.Address)

	return &RemoteScorer{
		conn:    conn,
		addr:    cfg.Address,
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}, nil
}

func waitForReady(ctx context.Context, conn *grpc.ClientConn) error {
	for {
		state := conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Idle:
			conn.Connect()
		case connectivity.Shutdown:
			return errConnectionShutdown
		}

		if !conn.WaitForStateChange(ctx, state) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w from %s", errConnectionStateUnchanged, state)
		}
	}
}

// Polarity implements Scorer.
func (r *RemoteScorer) Polarity(ctx context.Context, text string) (float64, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	req, err := structpb.NewStruct(map[string]any{"text": text})
	if err != nil {
		return 0, fmt.Errorf("build score request: %w", err)
	}
	resp := &structpb.Struct{}
	if err := r.conn.Invoke(ctx, scoreMethod, req, resp); err != nil {
		return 0, fmt.Errorf("score request failed: %w", err)
	}

	v, ok := resp.GetFields()["polarity"]
	if !ok {
		return 0, errMissingPolarity
	}
	return clamp(v.GetNumberValue()), nil
}

// Health reports whether the connection to the scoring service is usable.
func (r *RemoteScorer) Health(ctx context.Context) error {
	if err := waitForReady(ctx, r.conn); err != nil {
		return fmt.Errorf("sentiment service at %s unavailable: %w", r.addr, err)
	}
	return nil
}

// Close closes the gRPC connection.
func (r *RemoteScorer) Close() {
	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			r.logger.Warn("failed to close gRPC connection", "error", err)
		}
	}
}

// scorerServer is the handler type registered with grpc.Server.
type scorerServer interface {
	Scorer
}

var scorerServiceDesc = grpc.ServiceDesc{
	ServiceName: ScorerServiceName,
	HandlerType: (*scorerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Score",
			Handler:    scoreHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "talentscout/sentiment/v1/scorer.proto",
}

func scoreHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := &structpb.Struct{}
	if err := dec(req); err != nil {
		return nil, err
	}
	handle := func(ctx context.Context, in any) (any, error) {
		text := in.(*structpb.Struct).GetFields()["text"].GetStringValue()
		polarity, err := srv.(scorerServer).Polarity(ctx, text)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "score: %v", err)
		}
		return structpb.NewStruct(map[string]any{"polarity": polarity})
	}
	if interceptor == nil {
		return handle(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: scoreMethod}
	return interceptor(ctx, req, info, handle)
}

// RegisterScorerServer exposes scorer as the Score service on s.
func RegisterScorerServer(s *grpc.Server, scorer Scorer) {
	s.RegisterService(&scorerServiceDesc, scorer)
}

// Ensure RemoteScorer implements Scorer.
var _ Scorer = (*RemoteScorer)(nil)
