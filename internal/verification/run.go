package verification

import (
	"time"

	"go.uber.org/zap"

	"sign-scan/scanner-backend/internal/progress"
	"sign-scan/scanner-backend/pkg/workflows"
)

var runStates = workflows.NewStateMachine(map[State][]State{
	StateIdle:            {StateValidating},
	StateValidating:      {StateContentChecking, StateFailed},
	StateContentChecking: {StateComparing, StateFailed},
	StateComparing:       {StateCompleted, StateFailed},
	StateCompleted:       {},
	StateFailed:          {},
})

// run holds the state of one Verify invocation. It is never shared.
type run struct {
	userID      string
	state       State
	transitions []Transition
	publisher   ProgressPublisher
	logger      *zap.Logger
	now         func() time.Time
}

func (r *run) advance(to State, detail string) {
	if err := runStates.Check(r.state, to); err != nil {
		// a programming error in the pipeline, not a user-facing failure
		r.logger.Error("Invalid verification transition", zap.Error(err))
		return
	}

	t := Transition{From: r.state, To: to, Detail: detail, At: r.now()}
	r.transitions = append(r.transitions, t)
	r.state = to
	r.publish(detail)
}

// publish sends a progress message for the current state without changing it
func (r *run) publish(text string) {
	if r.publisher == nil {
		return
	}
	err := r.publisher.SendToUser(r.userID, progress.Message{
		Type:      progress.TypeVerification,
		State:     string(r.state),
		Text:      text,
		Timestamp: r.now(),
	})
	if err != nil {
		r.logger.Debug("Progress update not delivered",
			zap.String("user_id", r.userID),
			zap.String("state", string(r.state)),
			zap.Error(err))
	}
}

func (r *run) fail(message string, err error) (*Outcome, error) {
	r.advance(StateFailed, message)
	return &Outcome{
		State:       r.state,
		Failure:     message,
		Transitions: r.transitions,
	}, err
}
