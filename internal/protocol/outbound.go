package protocol

import (
	"time"

	"classpulse/pkg/types"
)

// Outbound envelopes. Timestamps are unix milliseconds to match what
// the browser clients already parse.

// Registered confirms a successful REGISTER_* message. StudentID is
// present only for students.
type Registered struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
	StudentID string `json:"studentId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// StudentsList is the roster snapshot sent to a newly registered teacher.
type StudentsList struct {
	Type      string              `json:"type"`
	Students  []types.StudentInfo `json:"students"`
	Timestamp int64               `json:"timestamp"`
}

// AggregatedEmotions carries the latest classroom summary.
type AggregatedEmotions struct {
	Type      string                 `json:"type"`
	Data      types.AggregateSummary `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// StudentJoined notifies the teacher of a new student.
type StudentJoined struct {
	Type        string `json:"type"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	Timestamp   int64  `json:"timestamp"`
}

// StudentLeft notifies the teacher of a departed student.
type StudentLeft struct {
	Type      string `json:"type"`
	StudentID string `json:"studentId"`
	Timestamp int64  `json:"timestamp"`
}

// AIInsightsResponse carries either advisory text or a structured
// failure string, never both.
type AIInsightsResponse struct {
	Type      string `json:"type"`
	Insights  string `json:"insights,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorMessage reports a rejected inbound message. The connection
// stays open.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Ping is the liveness heartbeat. Clients answer with PONG.
type Ping struct {
	Type string `json:"type"`
}

func nowMillis() int64 { return time.Now().UnixMilli() }

func NewRegisteredTeacher(sessionID string) Registered {
	return Registered{Type: types.MessageTypeRegistered, SessionID: sessionID, Timestamp: nowMillis()}
}

func NewRegisteredStudent(sessionID, studentID string) Registered {
	return Registered{Type: types.MessageTypeRegistered, SessionID: sessionID, StudentID: studentID, Timestamp: nowMillis()}
}

func NewStudentsList(students []types.StudentInfo) StudentsList {
	return StudentsList{Type: types.MessageTypeStudentsList, Students: students, Timestamp: nowMillis()}
}

func NewAggregatedEmotions(summary types.AggregateSummary) AggregatedEmotions {
	return AggregatedEmotions{Type: types.MessageTypeAggregatedEmotions, Data: summary, Timestamp: nowMillis()}
}

func NewStudentJoined(studentID, studentName string) StudentJoined {
	return StudentJoined{Type: types.MessageTypeStudentJoined, StudentID: studentID, StudentName: studentName, Timestamp: nowMillis()}
}

func NewStudentLeft(studentID string) StudentLeft {
	return StudentLeft{Type: types.MessageTypeStudentLeft, StudentID: studentID, Timestamp: nowMillis()}
}

func NewInsights(text string) AIInsightsResponse {
	return AIInsightsResponse{Type: types.MessageTypeAIInsights, Insights: text, Timestamp: nowMillis()}
}

func NewInsightsError(message string) AIInsightsResponse {
	return AIInsightsResponse{Type: types.MessageTypeAIInsights, Error: message, Timestamp: nowMillis()}
}

func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: types.MessageTypeError, Message: message}
}

func NewPing() Ping {
	return Ping{Type: types.MessageTypePing}
}
