package protocol

import (
	"encoding/json"
	"fmt"

	"classpulse/pkg/types"
)

// Inbound is the closed set of client message variants. Every frame is
// decoded exactly once at the transport boundary; anything with an
// unrecognized type tag decodes to Unknown rather than falling through.
type Inbound interface {
	inbound()
}

// RegisterTeacher claims the teacher slot of a session.
type RegisterTeacher struct {
	SessionID string
}

// RegisterStudent joins a session as a named student.
type RegisterStudent struct {
	SessionID   string
	StudentName string
}

// EmotionUpdate replaces a student's stored emotion vector.
type EmotionUpdate struct {
	SessionID string
	StudentID string
	Emotions  *types.EmotionVector
}

// Pong acknowledges a liveness PING. Carries nothing.
type Pong struct{}

// GetInsights asks the advisory bridge for teaching suggestions.
type GetInsights struct {
	SessionID   string
	EmotionData *types.AggregateSummary
	Transcript  string
}

// Unknown preserves the type tag of an unrecognized message so the
// router can log it before dropping.
type Unknown struct {
	Type string
}

func (RegisterTeacher) inbound() {}
func (RegisterStudent) inbound() {}
func (EmotionUpdate) inbound()   {}
func (Pong) inbound()            {}
func (GetInsights) inbound()     {}
func (Unknown) inbound()         {}

// rawInbound is the superset wire shape; the type tag selects which
// fields are meaningful.
type rawInbound struct {
	Type        string                  `json:"type"`
	SessionID   string                  `json:"sessionId"`
	StudentID   string                  `json:"studentId"`
	StudentName string                  `json:"studentName"`
	Emotions    *types.EmotionVector    `json:"emotions"`
	EmotionData *types.AggregateSummary `json:"emotionData"`
	Transcript  string                  `json:"transcript"`
}

// ParseInbound decodes a client frame into its variant. A JSON-level
// failure is returned as an error; an unknown type tag is not an error.
func ParseInbound(data []byte) (Inbound, error) {
	var raw rawInbound
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode inbound message: %w", err)
	}

	switch raw.Type {
	case types.MessageTypeRegisterTeacher:
		return RegisterTeacher{SessionID: raw.SessionID}, nil
	case types.MessageTypeRegisterStudent:
		return RegisterStudent{SessionID: raw.SessionID, StudentName: raw.StudentName}, nil
	case types.MessageTypeEmotionUpdate:
		return EmotionUpdate{SessionID: raw.SessionID, StudentID: raw.StudentID, Emotions: raw.Emotions}, nil
	case types.MessageTypePong:
		return Pong{}, nil
	case types.MessageTypeGetAIInsights:
		return GetInsights{SessionID: raw.SessionID, EmotionData: raw.EmotionData, Transcript: raw.Transcript}, nil
	default:
		return Unknown{Type: raw.Type}, nil
	}
}
