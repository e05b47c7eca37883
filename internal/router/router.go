// Package router dispatches decoded client messages to their handlers
// and fans the resulting pushes out to the right recipients. One
// inbound message is handled to completion, including the pushes it
// triggers, before its connection's next message is read.
package router

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"classpulse/internal/insights"
	"classpulse/internal/protocol"
	"classpulse/internal/session"
	"classpulse/pkg/interfaces"
	"classpulse/pkg/types"
)

// Router owns no state of its own; all session and connection records
// live in the registry.
type Router struct {
	registry *session.Registry
	bridge   *insights.Bridge
	log      zerolog.Logger
}

func NewRouter(registry *session.Registry, bridge *insights.Bridge, logger zerolog.Logger) *Router {
	return &Router{
		registry: registry,
		bridge:   bridge,
		log:      logger.With().Str("component", "router").Logger(),
	}
}

// HandleMessage decodes one frame and dispatches it. Unparseable
// payloads and unrecognized types are logged and dropped; the
// connection stays open. A failure handling one connection's message
// never touches any other connection or session.
func (r *Router) HandleMessage(peer interfaces.Peer, data []byte) {
	msg, err := protocol.ParseInbound(data)
	if err != nil {
		r.log.Warn().Err(err).Msg("dropping malformed message")
		return
	}

	switch m := msg.(type) {
	case protocol.RegisterTeacher:
		r.handleRegisterTeacher(peer, m)
	case protocol.RegisterStudent:
		r.handleRegisterStudent(peer, m)
	case protocol.EmotionUpdate:
		r.handleEmotionUpdate(m)
	case protocol.Pong:
		r.log.Debug().Msg("pong received")
	case protocol.GetInsights:
		r.handleGetInsights(peer, m)
	case protocol.Unknown:
		r.log.Warn().Str("type", m.Type).Msg("unknown message type")
	}
}

// HandleDisconnect runs the removal path for a closed connection:
// clear its role, tell the teacher a student left, refresh the
// aggregate. Empty sessions are destroyed by the registry itself.
func (r *Router) HandleDisconnect(peer interfaces.Peer) {
	info, ok := r.registry.RemoveConnection(peer)
	if !ok {
		r.log.Debug().Msg("unregistered client disconnected")
		return
	}

	r.log.Info().Str("role", info.Role).Str("session", info.SessionID).Msg("client disconnected")

	if info.Role == types.RoleStudent {
		r.pushToTeacher(info.SessionID, protocol.NewStudentLeft(info.StudentID))
		r.pushAggregate(info.SessionID)
	}
}

func (r *Router) handleRegisterTeacher(peer interfaces.Peer, m protocol.RegisterTeacher) {
	if m.SessionID == "" {
		r.send(peer, protocol.NewError("Session ID required"))
		return
	}

	r.registry.RegisterTeacher(m.SessionID, peer)

	r.send(peer, protocol.NewRegisteredTeacher(m.SessionID))
	r.send(peer, protocol.NewStudentsList(r.registry.ListStudents(m.SessionID)))
	r.send(peer, protocol.NewAggregatedEmotions(r.registry.Aggregate(m.SessionID)))
}

func (r *Router) handleRegisterStudent(peer interfaces.Peer, m protocol.RegisterStudent) {
	if m.SessionID == "" || m.StudentName == "" {
		r.send(peer, protocol.NewError("Session ID and name required"))
		return
	}

	studentID := r.registry.RegisterStudent(m.SessionID, peer, m.StudentName)

	r.send(peer, protocol.NewRegisteredStudent(m.SessionID, studentID))
	r.pushToTeacher(m.SessionID, protocol.NewStudentJoined(studentID, m.StudentName))
	r.pushAggregate(m.SessionID)
}

func (r *Router) handleEmotionUpdate(m protocol.EmotionUpdate) {
	if m.SessionID == "" || m.StudentID == "" || m.Emotions == nil {
		r.log.Warn().Str("session", m.SessionID).Str("student", m.StudentID).Msg("invalid emotion update")
		return
	}

	// Unknown session or student: already logged by the registry, no
	// reply, no state change.
	if !r.registry.RecordEmotionUpdate(m.SessionID, m.StudentID, m.Emotions) {
		return
	}

	r.pushAggregate(m.SessionID)
}

// handleGetInsights forwards the aggregate and transcript to the
// advisory bridge. The configured check comes first so a disabled
// bridge answers identically for every caller; the teacher-role check
// is a capability gate, not authentication. The external call runs
// without the registry lock, so other sessions proceed while it is
// pending; there is no cancellation of an in-flight call.
func (r *Router) handleGetInsights(peer interfaces.Peer, m protocol.GetInsights) {
	if !r.bridge.Enabled() {
		r.send(peer, protocol.NewInsightsError(insights.ErrNotConfigured.Error()))
		return
	}

	info, ok := r.registry.Lookup(peer)
	if !ok || info.Role != types.RoleTeacher {
		r.send(peer, protocol.NewError("Only teachers can request AI insights"))
		return
	}

	if m.EmotionData == nil {
		r.send(peer, protocol.NewError("Emotion data required"))
		return
	}

	r.log.Info().Str("session", m.SessionID).Msg("generating insights")

	text, err := r.bridge.Advise(context.Background(), *m.EmotionData, m.Transcript)
	if err != nil {
		if errors.Is(err, insights.ErrNotConfigured) {
			r.send(peer, protocol.NewInsightsError(err.Error()))
			return
		}
		r.send(peer, protocol.NewInsightsError("Failed to generate insights: "+err.Error()))
		return
	}

	r.send(peer, protocol.NewInsights(text))
}

// pushAggregate recomputes the session summary and pushes it to the
// teacher only. The snapshot is taken after the triggering mutation
// completed, so it is never torn.
func (r *Router) pushAggregate(sessionID string) {
	r.pushToTeacher(sessionID, protocol.NewAggregatedEmotions(r.registry.Aggregate(sessionID)))
}

// pushToTeacher delivers to the session's teacher, best effort. No
// teacher, a closed teacher connection, or a full buffer means the
// message is dropped; never queued, never retried.
func (r *Router) pushToTeacher(sessionID string, v interface{}) {
	teacher, ok := r.registry.TeacherPeer(sessionID)
	if !ok || !teacher.IsOpen() {
		return
	}
	if err := teacher.WriteJSON(v); err != nil {
		r.log.Debug().Err(err).Str("session", sessionID).Msg("teacher push dropped")
	}
}

// send replies to the message's own sender, best effort.
func (r *Router) send(peer interfaces.Peer, v interface{}) {
	if err := peer.WriteJSON(v); err != nil {
		r.log.Debug().Err(err).Msg("reply dropped")
	}
}
