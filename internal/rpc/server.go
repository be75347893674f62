package rpc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/activity"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/engine"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/service"
)

// #region server-struct
// Server implements ClarityServer over a service.Service.
type Server struct {
	svc *service.Service
}

// NewServer wraps svc.
func NewServer(svc *service.Service) *Server {
	return &Server{svc: svc}
}

// #endregion server-struct

// #region serve
// Serve listens on addr until ctx is cancelled, then stops gracefully and
// flushes pending fog writes.
func Serve(ctx context.Context, addr string, svc *service.Service) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	gs := grpc.NewServer()
	RegisterClarityServer(gs, NewServer(svc))

	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()
	log.Printf("[RPC] listening on %s", lis.Addr())
	err = gs.Serve(lis)
	svc.Flush()
	return err
}

// #endregion serve

// #region handlers
// Compute runs one clarity computation for {"user_id"}.
func (s *Server) Compute(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	res, err := s.svc.Compute(ctx, stringField(in, "user_id"))
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(resultMap(res))
}

// AppendProof appends {"user_id", "module", "short_text", "source_id"}.
func (s *Server) AppendProof(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	p, err := s.svc.AppendProof(ctx,
		stringField(in, "user_id"),
		proof.Module(stringField(in, "module")),
		stringField(in, "short_text"),
		stringField(in, "source_id"),
	)
	if err != nil {
		return nil, toStatus(err)
	}
	return structpb.NewStruct(proofMap(p))
}

// ListProofs lists {"user_id", "limit"} newest first.
func (s *Server) ListProofs(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	proofs, err := s.svc.ListProofs(ctx, stringField(in, "user_id"), int(numberField(in, "limit")))
	if err != nil {
		return nil, toStatus(err)
	}
	items := make([]any, len(proofs))
	for i, p := range proofs {
		items[i] = proofMap(p)
	}
	return structpb.NewStruct(map[string]any{"proofs": items})
}

// #endregion handlers

// #region encoding
func resultMap(res engine.Result) map[string]any {
	r := res.Fog
	return map[string]any{
		"user_id":       res.UserID,
		"clarity_score": r.Score,
		"scores": map[string]any{
			"checkins":    r.Scores.Checkins,
			"recovery":    r.Scores.Recovery,
			"alignment":   r.Scores.Alignment,
			"reflection":  r.Scores.Reflection,
			"consistency": r.Scores.Consistency,
		},
		"fog_value":       r.State.FogValue,
		"fog_bucket":      string(r.State.FogBucket),
		"raw_fog":         r.RawFog,
		"previous_fog":    r.Previous,
		"previous_source": string(res.PrevSource),
		"persisting":      res.WriteQueued,
		"computed_at":     res.ComputedAt.UTC().Format(time.RFC3339Nano),
	}
}

func proofMap(p proof.LifeProof) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"user_id":    p.UserID,
		"module":     string(p.Module),
		"short_text": p.ShortText,
		"created_at": p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"source_id":  p.SourceID,
	}
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func numberField(s *structpb.Struct, key string) float64 {
	return s.GetFields()[key].GetNumberValue()
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, activity.ErrEmptyUser),
		errors.Is(err, proof.ErrEmptyText),
		errors.Is(err, proof.ErrTextTooLong),
		errors.Is(err, proof.ErrUnknownModule):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// #endregion encoding
