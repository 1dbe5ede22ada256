// internal/game/session.go
package game

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tablehunt/internal/question"
)

// Engine drives the room state machine: start, round advance, answer
// resolution and finish. It emits outbound events through a Broadcaster and
// mirrors state to the persistence collaborator through fire-and-forget
// callbacks. All gameplay mutation happens under the room lock.
type Engine struct {
	registry  *Registry
	pool      *question.Pool
	scorer    Scorer
	settings  Settings
	log       *logrus.Logger
	broadcast Broadcaster

	// OnRoomChanged receives a snapshot after gameplay mutations. It must
	// not block; the in-memory room is the sole source of truth and a slow
	// or failing mirror never stalls a handler.
	OnRoomChanged func(RoomSnapshot)

	// OnMatchFinished receives the final record exactly once per room, when
	// the room transitions to finished.
	OnMatchFinished func(MatchRecord)
}

// NewEngine wires the engine to its collaborators.
func NewEngine(registry *Registry, pool *question.Pool, settings Settings, broadcast Broadcaster, log *logrus.Logger) *Engine {
	return &Engine{
		registry:  registry,
		pool:      pool,
		scorer:    NewScorer(settings),
		settings:  settings,
		log:       log,
		broadcast: broadcast,
	}
}

// Registry exposes the room registry the engine operates on.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Start moves a lobby room to in-progress. Only the host may start. In
// pairing mode the board is generated before the status flips, so a failed
// generation leaves the room in the lobby.
func (e *Engine) Start(code string, starterID uuid.UUID) error {
	room, ok := e.registry.GetRoom(code)
	if !ok {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.HostID != starterID {
		return ErrForbidden
	}
	if room.Status != StatusLobby {
		return ErrAlreadyStarted
	}

	if room.Mode == ModePairs {
		items, err := e.pool.GeneratePairs(e.settings.PairCount)
		if err != nil {
			return err
		}
		pairs := make([]*MatchItem, len(items))
		for i, it := range items {
			pairs[i] = &MatchItem{ID: it.ID, Name: it.Name}
		}
		room.Pairs = pairs
		room.selections = make(map[uuid.UUID]Selection)
	}

	room.Status = StatusInProgress
	room.touchLocked()
	e.log.WithFields(logrus.Fields{"code": code, "mode": room.Mode}).Info("game started")

	e.broadcast.BroadcastRoom(code, map[string]interface{}{"type": EventGameStarted, "code": code})
	if room.Mode == ModePairs {
		e.broadcast.BroadcastRoom(code, roomStatePayload(room))
	} else {
		e.nextRoundLocked(room)
	}
	e.mirrorLocked(room)
	return nil
}

// NextRound advances the legacy timed-round mode. The room is re-resolved by
// code so a timer firing against a finished or removed room is a silent
// no-op.
func (e *Engine) NextRound(code string) {
	room, ok := e.registry.GetRoom(code)
	if !ok {
		return
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	e.nextRoundLocked(room)
}

// nextRoundLocked increments the round, draws a question and schedules the
// unconditional advance timer. Assumes the room lock is held.
func (e *Engine) nextRoundLocked(room *Room) {
	if room.Status != StatusInProgress {
		return
	}
	room.cancelRoundTimerLocked()

	next := room.Round + 1
	if next > room.TotalRounds {
		e.finishLocked(room)
		return
	}

	room.Round = next
	q := e.pool.Draw()
	room.CurrentQ = &q
	room.RoundEndsAt = time.Now().Add(e.settings.RoundDuration)
	room.touchLocked()

	// The question id is the answer; clients never see it here.
	e.broadcast.BroadcastRoom(room.Code, map[string]interface{}{
		"type": EventNewQuestion,
		"question": map[string]interface{}{
			"name":       q.Name,
			"category":   q.Category,
			"difficulty": q.Difficulty,
		},
		"endsAt": room.RoundEndsAt.UnixMilli(),
	})

	code := room.Code
	room.roundTimer = time.AfterFunc(e.settings.RoundDuration, func() {
		// Rounds advance whether or not anyone answered.
		e.NextRound(code)
	})
}

// SubmitAnswer resolves a timed-round answer. Unknown rooms, players or a
// missing current question are silent no-ops.
func (e *Engine) SubmitAnswer(code string, playerID uuid.UUID, answerID int) {
	room, ok := e.registry.GetRoom(code)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.CurrentQ == nil {
		return
	}
	p := room.FindPlayer(playerID)
	if p == nil {
		return
	}

	correct := answerID == room.CurrentQ.ID
	if correct {
		e.scorer.CorrectAnswer(p, room.CurrentQ.Rarity())
	} else {
		e.scorer.WrongAnswer(p)
	}
	room.touchLocked()

	e.broadcast.BroadcastRoom(code, scorePayload(p))
	e.broadcast.SendPlayer(code, playerID, map[string]interface{}{
		"type":    EventAnswerSubmitted,
		"correct": correct,
	})
	e.mirrorLocked(room)
}

// Finish moves a room to finished and broadcasts the podium. Calling it on a
// missing or already-finished room is a safe no-op.
func (e *Engine) Finish(code string) {
	room, ok := e.registry.GetRoom(code)
	if !ok {
		return
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	e.finishLocked(room)
}

// finishLocked performs the terminal transition. Idempotent. Assumes the room
// lock is held.
func (e *Engine) finishLocked(room *Room) {
	if room.Status == StatusFinished {
		return
	}
	room.Status = StatusFinished
	room.cancelRoundTimerLocked()
	room.RoundEndsAt = time.Time{}
	room.touchLocked()
	e.log.WithField("code", room.Code).Info("game finished")

	e.broadcast.BroadcastRoom(room.Code, podiumPayload(room))
	if e.OnMatchFinished != nil {
		e.OnMatchFinished(matchRecordLocked(room))
	}
	e.mirrorLocked(room)
}

// MirrorRoom pushes a fresh snapshot to the persistence collaborator, used by
// the gateway after joins and disconnects.
func (e *Engine) MirrorRoom(code string) {
	room, ok := e.registry.GetRoom(code)
	if !ok {
		return
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	e.mirrorLocked(room)
}
