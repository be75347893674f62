package rpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/engine"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/fog"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/proof"
	"github.com/danielpatrickdp/clarity-fog/go-engine/internal/signals"
)

// #region types
// ComputeResult is the decoded response of a Compute call.
type ComputeResult struct {
	UserID         string
	ClarityScore   float64
	Scores         signals.Scores
	State          fog.State
	RawFog         float64
	PreviousFog    float64
	PreviousSource engine.PrevSource
	Persisting     bool
	ComputedAt     time.Time
}

// #endregion types

// #region client-struct
// Client wraps a gRPC connection to a ClarityService.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// NewClient connects to a ClarityService at addr.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion constructor

// #region compute
// Compute asks the server to run a clarity computation for userID.
func (c *Client) Compute(ctx context.Context, userID string) (ComputeResult, error) {
	out, err := c.call(ctx, computeMethod, map[string]any{"user_id": userID})
	if err != nil {
		return ComputeResult{}, fmt.Errorf("compute rpc: %w", err)
	}
	scores := out.GetFields()["scores"].GetStructValue()
	res := ComputeResult{
		UserID:       stringField(out, "user_id"),
		ClarityScore: numberField(out, "clarity_score"),
		Scores: signals.Scores{
			Checkins:    numberField(scores, "checkins"),
			Recovery:    numberField(scores, "recovery"),
			Alignment:   numberField(scores, "alignment"),
			Reflection:  numberField(scores, "reflection"),
			Consistency: numberField(scores, "consistency"),
		},
		State: fog.State{
			FogValue:  numberField(out, "fog_value"),
			FogBucket: fog.Bucket(stringField(out, "fog_bucket")),
		},
		RawFog:         numberField(out, "raw_fog"),
		PreviousFog:    numberField(out, "previous_fog"),
		PreviousSource: engine.PrevSource(stringField(out, "previous_source")),
		Persisting:     out.GetFields()["persisting"].GetBoolValue(),
	}
	res.ComputedAt, _ = time.Parse(time.RFC3339Nano, stringField(out, "computed_at"))
	return res, nil
}

// #endregion compute

// #region proofs
// AppendProof appends a proof through the server.
func (c *Client) AppendProof(ctx context.Context, userID string, module proof.Module, shortText, sourceID string) (proof.LifeProof, error) {
	out, err := c.call(ctx, appendProofMethod, map[string]any{
		"user_id":    userID,
		"module":     string(module),
		"short_text": shortText,
		"source_id":  sourceID,
	})
	if err != nil {
		return proof.LifeProof{}, fmt.Errorf("append proof rpc: %w", err)
	}
	return decodeProof(out), nil
}

// ListProofs lists recent proofs through the server.
func (c *Client) ListProofs(ctx context.Context, userID string, limit int) ([]proof.LifeProof, error) {
	out, err := c.call(ctx, listProofsMethod, map[string]any{
		"user_id": userID,
		"limit":   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list proofs rpc: %w", err)
	}
	values := out.GetFields()["proofs"].GetListValue().GetValues()
	proofs := make([]proof.LifeProof, 0, len(values))
	for _, v := range values {
		proofs = append(proofs, decodeProof(v.GetStructValue()))
	}
	return proofs, nil
}

// #endregion proofs

// #region helpers
func (c *Client) call(ctx context.Context, method string, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeProof(s *structpb.Struct) proof.LifeProof {
	p := proof.LifeProof{
		ID:        stringField(s, "id"),
		UserID:    stringField(s, "user_id"),
		Module:    proof.Module(stringField(s, "module")),
		ShortText: stringField(s, "short_text"),
		SourceID:  stringField(s, "source_id"),
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, stringField(s, "created_at"))
	return p
}

// #endregion helpers
