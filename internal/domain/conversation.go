package domain

import "errors"

// HistoryWindowSize is the number of most recent turns used as generation
// context. It is fixed.
const HistoryWindowSize = 5

// UserSession is the persisted per-user state: personality, declared name
// and conversation history.
type UserSession struct {
	UserID      UserID
	Profile     PersonalityProfile
	DisplayName string
	History     []Turn
}

// NewSession builds the state of a user seen for the first time.
func NewSession(userID UserID) *UserSession {
	return &UserSession{
		UserID:  userID,
		Profile: DefaultProfile(),
	}
}

// Window returns the last min(HistoryWindowSize, len(History)) turns in
// chronological order.
func (s *UserSession) Window() []Turn {
	n := len(s.History)
	if n > HistoryWindowSize {
		n = HistoryWindowSize
	}
	out := make([]Turn, n)
	copy(out, s.History[len(s.History)-n:])
	return out
}

func (s *UserSession) AppendTurn(userText, aiText string) {
	s.History = append(s.History, Turn{UserText: userText, AIText: aiText})
}

// ResetTraits reapplies the default value to every trait. Paid-tier traits
// are reset only on paid profiles; on free profiles they are skipped.
// Display name, gender, paid flag and history are kept.
func (s *UserSession) ResetTraits() error {
	p := s.Profile.Clone()
	for _, t := range AllTraits() {
		next, err := ApplySetting(p, t, ResetTraitValue)
		if errors.Is(err, ErrTierNotAllowed) {
			continue
		}
		if err != nil {
			return err
		}
		p = next
	}
	s.Profile = p
	return nil
}

// Clone returns a deep copy, so stores never share memory with callers.
func (s *UserSession) Clone() *UserSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Profile = s.Profile.Clone()
	out.History = append([]Turn(nil), s.History...)
	return &out
}
