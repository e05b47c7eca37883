package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"classpulse/internal/insights"
	"classpulse/internal/router"
	"classpulse/internal/session"
	"classpulse/pkg/types"
)

// envelope is the superset of outbound fields, for decoding whatever
// the server pushes next.
type envelope struct {
	Type        string                  `json:"type"`
	SessionID   string                  `json:"sessionId"`
	StudentID   string                  `json:"studentId"`
	StudentName string                  `json:"studentName"`
	Students    []types.StudentInfo     `json:"students"`
	Data        *types.AggregateSummary `json:"data"`
	Message     string                  `json:"message"`
	Error       string                  `json:"error"`
	Timestamp   int64                   `json:"timestamp"`
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := session.NewRegistry(zerolog.Nop())
	bridge := insights.NewBridge(nil, zerolog.Nop())
	messageRouter := router.NewRouter(registry, bridge, zerolog.Nop())
	handler := NewHandler(messageRouter, 100, 5*time.Second, zerolog.Nop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.HandleWebSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return env
}

func writeJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestClassroomRoundTrip(t *testing.T) {
	srv := startServer(t)

	teacher := dial(t, srv)
	writeJSON(t, teacher, map[string]string{"type": types.MessageTypeRegisterTeacher, "sessionId": "ABC123"})

	if env := readEnvelope(t, teacher); env.Type != types.MessageTypeRegistered || env.SessionID != "ABC123" {
		t.Fatalf("expected REGISTERED, got %+v", env)
	}
	if env := readEnvelope(t, teacher); env.Type != types.MessageTypeStudentsList || len(env.Students) != 0 {
		t.Fatalf("expected empty STUDENTS_LIST, got %+v", env)
	}
	if env := readEnvelope(t, teacher); env.Type != types.MessageTypeAggregatedEmotions || env.Data.TotalStudents != 0 {
		t.Fatalf("expected initial aggregate, got %+v", env)
	}

	student := dial(t, srv)
	writeJSON(t, student, map[string]string{"type": types.MessageTypeRegisterStudent, "sessionId": "ABC123", "studentName": "Ana"})

	reg := readEnvelope(t, student)
	if reg.Type != types.MessageTypeRegistered || reg.StudentID == "" {
		t.Fatalf("student expected REGISTERED with id, got %+v", reg)
	}

	if env := readEnvelope(t, teacher); env.Type != types.MessageTypeStudentJoined || env.StudentName != "Ana" {
		t.Fatalf("expected STUDENT_JOINED, got %+v", env)
	}
	if env := readEnvelope(t, teacher); env.Type != types.MessageTypeAggregatedEmotions || env.Data.TotalStudents != 1 || env.Data.ActiveStudents != 0 {
		t.Fatalf("expected aggregate with total=1 active=0, got %+v", env)
	}

	writeJSON(t, student, map[string]interface{}{
		"type":      types.MessageTypeEmotionUpdate,
		"sessionId": "ABC123",
		"studentId": reg.StudentID,
		"emotions": types.EmotionVector{
			Emotions:     types.EmotionScores{Happy: 80, Neutral: 20},
			Confused:     10,
			Engaged:      70,
			CameraOn:     true,
			FaceDetected: true,
			Timestamp:    time.Now().UnixMilli(),
		},
	})

	env := readEnvelope(t, teacher)
	if env.Type != types.MessageTypeAggregatedEmotions {
		t.Fatalf("expected AGGREGATED_EMOTIONS, got %+v", env)
	}
	if env.Data.Emotions.Happy != 80 || env.Data.ActiveStudents != 1 || env.Data.TotalStudents != 1 {
		t.Fatalf("expected happy=80 active=1 total=1, got %+v", env.Data)
	}
	if env.Data.Confused != 10 || env.Data.Engaged != 70 {
		t.Fatalf("expected confused=10 engaged=70, got %+v", env.Data)
	}

	// A dropped student connection takes the same path as a clean close.
	_ = student.Close()

	if env := readEnvelope(t, teacher); env.Type != types.MessageTypeStudentLeft || env.StudentID != reg.StudentID {
		t.Fatalf("expected STUDENT_LEFT, got %+v", env)
	}
	if env := readEnvelope(t, teacher); env.Type != types.MessageTypeAggregatedEmotions || env.Data.TotalStudents != 0 {
		t.Fatalf("expected empty aggregate after departure, got %+v", env)
	}
}

func TestMissingFieldGetsErrorReply(t *testing.T) {
	srv := startServer(t)

	conn := dial(t, srv)
	writeJSON(t, conn, map[string]string{"type": types.MessageTypeRegisterTeacher})

	env := readEnvelope(t, conn)
	if env.Type != types.MessageTypeError || env.Message != "Session ID required" {
		t.Fatalf("expected ERROR reply, got %+v", env)
	}

	// The connection survives the rejected message.
	writeJSON(t, conn, map[string]string{"type": types.MessageTypeRegisterTeacher, "sessionId": "XYZ"})
	if env := readEnvelope(t, conn); env.Type != types.MessageTypeRegistered {
		t.Fatalf("connection unusable after ERROR: %+v", env)
	}
}

func TestDisabledInsightsOverTheWire(t *testing.T) {
	srv := startServer(t)

	teacher := dial(t, srv)
	writeJSON(t, teacher, map[string]string{"type": types.MessageTypeRegisterTeacher, "sessionId": "ABC123"})
	for i := 0; i < 3; i++ {
		readEnvelope(t, teacher) // REGISTERED, STUDENTS_LIST, aggregate
	}

	writeJSON(t, teacher, map[string]interface{}{
		"type":        types.MessageTypeGetAIInsights,
		"sessionId":   "ABC123",
		"emotionData": types.AggregateSummary{TotalStudents: 1},
	})

	env := readEnvelope(t, teacher)
	if env.Type != types.MessageTypeAIInsights {
		t.Fatalf("expected AI_INSIGHTS_RESPONSE, got %+v", env)
	}
	if env.Error != insights.ErrNotConfigured.Error() {
		t.Fatalf("expected the fixed not-configured error, got %q", env.Error)
	}
}
