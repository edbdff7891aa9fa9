package queue

import (
	"encoding/json"
	"fmt"
)

// Kind names the work the external parsing/scoring engine is asked to do.
type Kind string

const (
	KindParseResume      Kind = "parse_resume"
	KindScoreMatch       Kind = "score_match"
	KindGenerateFeedback Kind = "generate_feedback"
)

// MessageVersion is bumped whenever the message shape changes.
const MessageVersion = 1

// Message is the payload sent to the engine queue.
type Message struct {
	Kind        Kind   `json:"kind"`
	ResumeID    int64  `json:"resumeId"`
	JobID       int64  `json:"jobId,omitempty"`
	MatchID     int64  `json:"matchId,omitempty"`
	FeedbackID  int64  `json:"feedbackId,omitempty"`
	FileKey     string `json:"fileKey,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
	EnqueuedAt  string `json:"enqueuedAt"`
	Version     int    `json:"version"`
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	switch msg.Kind {
	case KindParseResume, KindScoreMatch, KindGenerateFeedback:
	default:
		return Message{}, fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	return msg, nil
}
