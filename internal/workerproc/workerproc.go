package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jobmatch-backend/internal/graph"
	"jobmatch-backend/internal/transfer"
)

// ResultKind names what an engine result fills in.
type ResultKind string

const (
	ResultResumeAnalysis ResultKind = "resume_analysis"
	ResultMatchScores    ResultKind = "match_scores"
	ResultFeedback       ResultKind = "feedback"
)

// Result is a message the engine posts to the results queue. TargetID is
// the resume, match or feedback id depending on Kind; only the payload
// for that kind is read.
type Result struct {
	Kind      ResultKind               `json:"kind"`
	TargetID  int64                    `json:"targetId"`
	RequestID string                   `json:"requestId,omitempty"`
	Analysis  *transfer.ResumeAnalysis `json:"analysis,omitempty"`
	Scores    *transfer.MatchScores    `json:"scores,omitempty"`
	Advice    *transfer.FeedbackAdvice `json:"advice,omitempty"`
}

// Recorder applies engine results. *transfer.Service implements it.
type Recorder interface {
	RecordResumeAnalysis(ctx context.Context, resumeID int64, in transfer.ResumeAnalysis) (transfer.ResumeView, error)
	RecordMatchScores(ctx context.Context, matchID int64, in transfer.MatchScores) (transfer.MatchView, error)
	RecordFeedback(ctx context.Context, feedbackID int64, in transfer.FeedbackAdvice) (transfer.FeedbackView, error)
}

var _ Recorder = (*transfer.Service)(nil)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a malformed payload.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode result"
	}
	return "decode result: " + e.Err.Error()
}

// ErrMissingTarget indicates a result without a target id.
type ErrMissingTarget struct {
	Meta      MessageMeta
	Kind      ResultKind
	RequestID string
}

func (e ErrMissingTarget) Error() string { return fmt.Sprintf("%s result missing target id", e.Kind) }

// ErrProcess indicates applying a well-formed result failed.
type ErrProcess struct {
	Kind      ResultKind
	TargetID  int64
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("apply %s %d", e.Kind, e.TargetID)
	}
	return fmt.Sprintf("apply %s %d: %v", e.Kind, e.TargetID, e.Err)
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseResult validates and decodes a results queue payload.
func ParseResult(body string) (Result, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return Result{}, meta, ErrEmptyBody{Meta: meta}
	}

	var res Result
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		return Result{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	var payload bool
	switch res.Kind {
	case ResultResumeAnalysis:
		payload = res.Analysis != nil
	case ResultMatchScores:
		payload = res.Scores != nil
	case ResultFeedback:
		payload = res.Advice != nil
	default:
		return Result{}, meta, ErrDecode{Meta: meta, Err: fmt.Errorf("unknown result kind %q", res.Kind)}
	}
	if !payload {
		return Result{}, meta, ErrDecode{Meta: meta, Err: fmt.Errorf("%s result has no payload", res.Kind)}
	}
	if res.TargetID <= 0 {
		return res, meta, ErrMissingTarget{Meta: meta, Kind: res.Kind, RequestID: res.RequestID}
	}
	return res, meta, nil
}

// Apply records a parsed result through rec.
func Apply(ctx context.Context, rec Recorder, res Result) error {
	if rec == nil {
		return errors.New("result recorder not configured")
	}
	ctx = transfer.WithRequestID(ctx, res.RequestID)

	var err error
	switch res.Kind {
	case ResultResumeAnalysis:
		_, err = rec.RecordResumeAnalysis(ctx, res.TargetID, *res.Analysis)
	case ResultMatchScores:
		_, err = rec.RecordMatchScores(ctx, res.TargetID, *res.Scores)
	case ResultFeedback:
		_, err = rec.RecordFeedback(ctx, res.TargetID, *res.Advice)
	default:
		err = fmt.Errorf("unknown result kind %q", res.Kind)
	}
	if err != nil {
		return ErrProcess{Kind: res.Kind, TargetID: res.TargetID, RequestID: res.RequestID, Err: err}
	}
	return nil
}

// Permanent reports whether retrying err cannot succeed: the target is
// gone or the payload breaks an invariant.
func Permanent(err error) bool {
	var verr *graph.ValidationError
	return errors.Is(err, graph.ErrNotFound) || errors.As(err, &verr)
}
