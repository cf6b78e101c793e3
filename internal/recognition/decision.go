package recognition

import (
	"sync"

	"github.com/tkaraca/facegate/internal/config"
)

// Status is the aggregate verdict for a frame.
type Status string

const (
	// StatusAccept means temporal consensus was reached for one identity.
	StatusAccept Status = "ACCEPT"
	// StatusUnknown means the stream has shown a consistently unrecognized
	// person for several rounds.
	StatusUnknown Status = "UNKNOWN"
	// StatusPending means more frames are needed before a verdict.
	StatusPending Status = "pending"
)

// outcome of classifying one frame's match.
type outcome int

const (
	outcomeVerified outcome = iota
	outcomeRejectedGlobal  // failed the distance or margin gate
	outcomeRejectedProfile // passed the global gate, failed the identity threshold
)

func (o outcome) rejected() bool {
	return o != outcomeVerified
}

// observation is one classified frame in the sliding window.
type observation struct {
	candidateID string
	result      outcome
}

// Verdict is the smoothed decision for a frame.
type Verdict struct {
	Status     Status
	StudentID  string
	Confidence float64
	Message    string
}

// Engine converts per-frame match results into stable verdicts using a
// two-stage threshold gate and a sliding-window consensus. It owns one
// temporal state per school, created on demand; frames from the same
// school serialize on a per-school mutex so independent camera streams
// never block each other.
type Engine struct {
	cfg      config.RecognitionConfig
	profiles Profiles

	mu      sync.Mutex
	schools map[string]*schoolState
}

type schoolState struct {
	mu            sync.Mutex
	history       []observation
	unknownStreak int
}

// NewEngine creates a decision engine. Profiles may be nil; every identity
// then falls back to the strict threshold.
func NewEngine(cfg config.RecognitionConfig, profiles Profiles) *Engine {
	return &Engine{
		cfg:      cfg,
		profiles: profiles,
		schools:  make(map[string]*schoolState),
	}
}

func (e *Engine) state(schoolID string) *schoolState {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.schools[schoolID]
	if !ok {
		st = &schoolState{}
		e.schools[schoolID] = st
	}
	return st
}

// classify applies the two-stage gate to a single match.
func (e *Engine) classify(match MatchResult) observation {
	// Stage 1: global distance gate plus the ambiguity margin against the
	// runner-up. A single known identity has no runner-up to be confused with.
	if match.BestDistance > e.cfg.DistanceThreshold {
		return observation{result: outcomeRejectedGlobal}
	}
	if match.HasSecond && match.SecondDistance-match.BestDistance < e.cfg.Margin {
		return observation{result: outcomeRejectedGlobal}
	}

	// Stage 2: calibrated per-identity threshold, strict fallback for
	// identities without a profile.
	threshold := e.cfg.StrictFallback
	if profile, ok := e.profiles.Lookup(match.BestID); ok {
		threshold = profile.Threshold
	}
	if match.BestDistance <= threshold {
		return observation{candidateID: match.BestID, result: outcomeVerified}
	}

	// The candidate is kept for diagnostics but never counts toward consensus.
	return observation{candidateID: match.BestID, result: outcomeRejectedProfile}
}

// Evaluate feeds one frame's match into the school's sliding window and
// returns the smoothed verdict. A zero match (empty gallery) yields a
// pending verdict without touching the window.
func (e *Engine) Evaluate(schoolID string, match MatchResult) Verdict {
	if match.BestID == "" {
		return Verdict{Status: StatusPending, Message: "no enrolled faces"}
	}

	obs := e.classify(match)

	st := e.state(schoolID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.history = append(st.history, obs)
	if len(st.history) > e.cfg.WindowSize {
		st.history = st.history[1:]
	}

	counts := make(map[string]int)
	for _, o := range st.history {
		if o.result == outcomeVerified {
			counts[o.candidateID]++
		}
	}

	// Window order keeps the winner deterministic should two identities
	// somehow reach consensus in the same window.
	for _, o := range st.history {
		if o.result == outcomeVerified && counts[o.candidateID] >= e.cfg.ConsensusCount {
			// The accepted person's remaining frames must not bleed into
			// the next person's verification.
			st.history = nil
			st.unknownStreak = 0

			return Verdict{
				Status:     StatusAccept,
				StudentID:  o.candidateID,
				Confidence: 1 - match.BestDistance,
			}
		}
	}

	rejects := 0
	for _, o := range st.history {
		if o.result.rejected() {
			rejects++
		}
	}
	if rejects >= e.cfg.ConsensusCount {
		st.unknownStreak++
		if st.unknownStreak > e.cfg.UnknownFrames {
			st.unknownStreak = 0
			return Verdict{Status: StatusUnknown, Message: "person not recognized"}
		}
	}

	return Verdict{Status: StatusPending, Message: "still verifying"}
}

// Reset drops the temporal state for a school. Used after a gallery
// refresh so stale observations do not vote on the new gallery.
func (e *Engine) Reset(schoolID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.schools, schoolID)
}
