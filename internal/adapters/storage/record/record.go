// Package record is the persisted shape of a user session, shared by every
// storage engine so records can move between them.
package record

import (
	"encoding/json"
	"fmt"

	"github.com/PabloGalante/myvfriend/internal/domain"
)

type Document struct {
	Profile     ProfileDoc   `json:"profile" firestore:"profile"`
	DisplayName string       `json:"display_name" firestore:"display_name"`
	Messages    []MessageDoc `json:"messages" firestore:"messages"`
}

type ProfileDoc struct {
	// Personality is keyed by trait key. Trait labels are accepted on read
	// for records written by older tools.
	Personality map[string]int `json:"personality" firestore:"personality"`
	AIGender    string         `json:"ai_gender" firestore:"ai_gender"`
	IsPaidUser  bool           `json:"is_paid_user" firestore:"is_paid_user"`
}

type MessageDoc struct {
	User string `json:"user" firestore:"user"`
	AI   string `json:"ai" firestore:"ai"`
}

func FromSession(s *domain.UserSession) Document {
	personality := make(map[string]int, len(s.Profile.Traits))
	for t, v := range s.Profile.Traits {
		personality[string(t)] = v
	}

	msgs := make([]MessageDoc, 0, len(s.History))
	for _, turn := range s.History {
		msgs = append(msgs, MessageDoc{User: turn.UserText, AI: turn.AIText})
	}

	gender := s.Profile.AIGender
	if gender == "" {
		gender = domain.GenderNeutral
	}

	return Document{
		Profile: ProfileDoc{
			Personality: personality,
			AIGender:    string(gender),
			IsPaidUser:  s.Profile.IsPaidUser,
		},
		DisplayName: s.DisplayName,
		Messages:    msgs,
	}
}

// ToSession rebuilds a session. Unknown traits and out-of-range values are
// dropped so they read as the default; an unknown gender reads as neutral.
func (d Document) ToSession(userID domain.UserID) *domain.UserSession {
	s := &domain.UserSession{
		UserID:      userID,
		DisplayName: d.DisplayName,
		Profile: domain.PersonalityProfile{
			Traits:     make(map[domain.Trait]int, len(d.Profile.Personality)),
			AIGender:   domain.GenderNeutral,
			IsPaidUser: d.Profile.IsPaidUser,
		},
	}

	if g, err := domain.ParseGender(d.Profile.AIGender); err == nil {
		s.Profile.AIGender = g
	}

	for key, v := range d.Profile.Personality {
		t, err := domain.ParseTrait(key)
		if err != nil || v < domain.MinTraitValue || v > domain.MaxTraitValue {
			continue
		}
		s.Profile.Traits[t] = v
	}

	if len(d.Messages) > 0 {
		s.History = make([]domain.Turn, 0, len(d.Messages))
		for _, m := range d.Messages {
			s.History = append(s.History, domain.Turn{UserText: m.User, AIText: m.AI})
		}
	}
	return s
}

func Marshal(s *domain.UserSession) ([]byte, error) {
	data, err := json.Marshal(FromSession(s))
	if err != nil {
		return nil, fmt.Errorf("encode session record: %w", err)
	}
	return data, nil
}

func Unmarshal(userID domain.UserID, data []byte) (*domain.UserSession, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	return doc.ToSession(userID), nil
}
