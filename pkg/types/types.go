package types

// Client roles. A connection holds at most one role per session and
// acquires it through its first REGISTER_* message.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Inbound message types (client -> server).
const (
	MessageTypeRegisterTeacher = "REGISTER_TEACHER"
	MessageTypeRegisterStudent = "REGISTER_STUDENT"
	MessageTypeEmotionUpdate   = "EMOTION_UPDATE"
	MessageTypePong            = "PONG"
	MessageTypeGetAIInsights   = "GET_AI_INSIGHTS"
)

// Outbound message types (server -> client).
const (
	MessageTypeRegistered         = "REGISTERED"
	MessageTypeStudentsList       = "STUDENTS_LIST"
	MessageTypeAggregatedEmotions = "AGGREGATED_EMOTIONS"
	MessageTypeStudentJoined      = "STUDENT_JOINED"
	MessageTypeStudentLeft        = "STUDENT_LEFT"
	MessageTypeAIInsights         = "AI_INSIGHTS_RESPONSE"
	MessageTypeError              = "ERROR"
	MessageTypePing               = "PING"
)

// EmotionScores is the closed 7-category distribution produced by the
// browser-side face analysis. Values are percentage-like magnitudes in
// 0-100 and are not required to sum to 100.
type EmotionScores struct {
	Happy     float64 `json:"happy"`
	Sad       float64 `json:"sad"`
	Angry     float64 `json:"angry"`
	Fearful   float64 `json:"fearful"`
	Surprised float64 `json:"surprised"`
	Disgusted float64 `json:"disgusted"`
	Neutral   float64 `json:"neutral"`
}

// EmotionVector is one student's analysis sample. A new vector fully
// replaces the previous one; there is no incremental merge.
type EmotionVector struct {
	Emotions     EmotionScores `json:"emotions"`
	Confused     float64       `json:"confused"`
	Engaged      float64       `json:"engaged"`
	CameraOn     bool          `json:"cameraOn"`
	FaceDetected bool          `json:"faceDetected"`
	Timestamp    int64         `json:"timestamp"` // capture time, unix milliseconds
}

// Active reports whether the vector counts toward the classroom
// aggregate: camera on and a face in frame.
func (v *EmotionVector) Active() bool {
	return v != nil && v.CameraOn && v.FaceDetected
}

// CategoryAverages holds the per-category aggregate, rounded to
// integer percentages.
type CategoryAverages struct {
	Happy     int `json:"happy"`
	Sad       int `json:"sad"`
	Angry     int `json:"angry"`
	Fearful   int `json:"fearful"`
	Surprised int `json:"surprised"`
	Disgusted int `json:"disgusted"`
	Neutral   int `json:"neutral"`
}

// AggregateSummary is the rolling classroom-level view pushed to the
// teacher. Averages cover active students only; TotalStudents counts
// every registered student regardless of activity.
type AggregateSummary struct {
	Emotions       CategoryAverages `json:"emotions"`
	Confused       int              `json:"confused"`
	Engaged        int              `json:"engaged"`
	TotalStudents  int              `json:"totalStudents"`
	ActiveStudents int              `json:"activeStudents"`
}

// StudentInfo is the roster row sent in STUDENTS_LIST snapshots.
type StudentInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JoinedAt int64  `json:"joinedAt"` // unix milliseconds
}
