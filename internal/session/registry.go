package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"classpulse/pkg/interfaces"
	"classpulse/pkg/types"
)

// Student is one registered participant. Owned exclusively by its
// session; the peer is referenced for outbound delivery, never owned.
type Student struct {
	ID         string
	Name       string
	JoinedAt   time.Time
	Emotions   *types.EmotionVector // nil until the first EMOTION_UPDATE
	LastUpdate time.Time
	Peer       interfaces.Peer
}

// ConnectionInfo records the role a live connection acquired through
// registration. Discarded on disconnect.
type ConnectionInfo struct {
	Role      string
	SessionID string
	StudentID string // set only for students
}

// session groups one teacher slot and zero or more students under an
// externally chosen key. It exists only while it has a teacher or at
// least one student.
type session struct {
	id        string
	teacher   interfaces.Peer // nil when no teacher is registered
	students  map[string]*Student
	joinOrder []string
	createdAt time.Time
}

// Registry is the single owner of all session, student and connection
// records. Every mutation and every aggregate snapshot runs under one
// mutex, which gives the same at-most-one-handler-at-a-time guarantee
// the message flow assumes; nothing that can block on the network is
// ever done while the lock is held.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*session
	conns    map[interfaces.Peer]ConnectionInfo
	log      zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		conns:    make(map[interfaces.Peer]ConnectionInfo),
		log:      logger.With().Str("component", "registry").Logger(),
	}
}

// getOrCreate returns the session for id, creating it on first use.
// Caller must hold r.mu.
func (r *Registry) getOrCreate(id string) *session {
	s, ok := r.sessions[id]
	if !ok {
		s = &session{
			id:        id,
			students:  make(map[string]*Student),
			createdAt: time.Now(),
		}
		r.sessions[id] = s
		r.log.Info().Str("session", id).Msg("created session")
	}
	return s
}

// RegisterTeacher claims the teacher slot of a session, creating the
// session if needed. A new registration always displaces the previous
// teacher connection, even if it is still open; the ousted connection
// is neither closed nor notified.
func (r *Registry) RegisterTeacher(sessionID string, peer interfaces.Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(sessionID)
	s.teacher = peer
	r.conns[peer] = ConnectionInfo{Role: types.RoleTeacher, SessionID: sessionID}
	r.log.Info().Str("session", sessionID).Msg("teacher registered")
}

// RegisterStudent adds a named student to a session, creating the
// session if needed, and returns the generated student id. Ids are
// unique for the process lifetime, best effort.
func (r *Registry) RegisterStudent(sessionID string, peer interfaces.Peer, name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreate(sessionID)
	id := newStudentID()
	s.students[id] = &Student{
		ID:       id,
		Name:     name,
		JoinedAt: time.Now(),
		Peer:     peer,
	}
	s.joinOrder = append(s.joinOrder, id)
	r.conns[peer] = ConnectionInfo{Role: types.RoleStudent, SessionID: sessionID, StudentID: id}
	r.log.Info().Str("session", sessionID).Str("student", id).Str("name", name).Msg("student registered")
	return id
}

// RecordEmotionUpdate replaces a student's stored vector. An unknown
// session or student is logged and reported as false; nothing is
// mutated and no error propagates to the caller.
func (r *Registry) RecordEmotionUpdate(sessionID, studentID string, vector *types.EmotionVector) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		r.log.Warn().Str("session", sessionID).Msg("emotion update for unknown session")
		return false
	}
	st, ok := s.students[studentID]
	if !ok {
		r.log.Warn().Str("session", sessionID).Str("student", studentID).Msg("emotion update for unknown student")
		return false
	}

	st.Emotions = vector
	st.LastUpdate = time.Now()
	return true
}

// RemoveConnection clears whatever role the connection held. A teacher
// frees the session's teacher slot (unless a later registration already
// displaced this connection); a student is deleted from the roster. The
// session itself is destroyed the instant it has no students and no
// teacher.
func (r *Registry) RemoveConnection(peer interfaces.Peer) (ConnectionInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.conns[peer]
	if !ok {
		return ConnectionInfo{}, false
	}
	delete(r.conns, peer)

	s, ok := r.sessions[info.SessionID]
	if !ok {
		return info, true
	}

	switch info.Role {
	case types.RoleTeacher:
		// Only the currently seated connection frees the slot; an
		// ousted predecessor disconnecting must not evict its successor.
		if s.teacher == peer {
			s.teacher = nil
		}
	case types.RoleStudent:
		if _, exists := s.students[info.StudentID]; exists {
			delete(s.students, info.StudentID)
			for i, id := range s.joinOrder {
				if id == info.StudentID {
					s.joinOrder = append(s.joinOrder[:i], s.joinOrder[i+1:]...)
					break
				}
			}
		}
	}

	if len(s.students) == 0 && s.teacher == nil {
		delete(r.sessions, info.SessionID)
		r.log.Info().Str("session", info.SessionID).Msg("destroyed empty session")
	}
	return info, true
}

// Lookup returns the role record for a live connection.
func (r *Registry) Lookup(peer interfaces.Peer) (ConnectionInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.conns[peer]
	return info, ok
}

// TeacherPeer returns the session's current teacher connection, if the
// session exists and a teacher is seated.
func (r *Registry) TeacherPeer(sessionID string) (interfaces.Peer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok || s.teacher == nil {
		return nil, false
	}
	return s.teacher, true
}

// ListStudents returns a roster snapshot in join order. The slice
// shares nothing with registry state.
func (r *Registry) ListStudents(sessionID string) []types.StudentInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	roster := make([]types.StudentInfo, 0, len(s.students))
	for _, id := range s.joinOrder {
		st := s.students[id]
		roster = append(roster, types.StudentInfo{
			ID:       st.ID,
			Name:     st.Name,
			JoinedAt: st.JoinedAt.UnixMilli(),
		})
	}
	return roster
}

// Aggregate computes the classroom summary from a consistent snapshot
// of the session's students. Missing sessions yield the zero summary.
func (r *Registry) Aggregate(sessionID string) types.AggregateSummary {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if !ok {
		r.mu.Unlock()
		return Summarize(nil)
	}
	vectors := make([]*types.EmotionVector, 0, len(s.students))
	for _, st := range s.students {
		vectors = append(vectors, st.Emotions)
	}
	r.mu.Unlock()

	return Summarize(vectors)
}

// Peers returns every live connection, for liveness pings.
func (r *Registry) Peers() []interfaces.Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	peers := make([]interfaces.Peer, 0, len(r.conns))
	for p := range r.conns {
		peers = append(peers, p)
	}
	return peers
}

// Stats reports registry sizes for the health endpoint.
func (r *Registry) Stats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	students := 0
	for _, s := range r.sessions {
		students += len(s.students)
	}
	return map[string]int{
		"sessions":    len(r.sessions),
		"connections": len(r.conns),
		"students":    students,
	}
}

// newStudentID generates a process-unique student id. The millisecond
// prefix keeps ids roughly sortable by join time; the uuid suffix makes
// collisions negligible.
func newStudentID() string {
	return fmt.Sprintf("student_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
