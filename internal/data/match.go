package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Match is one archived session.
type Match struct {
	ID          uint64 `gorm:"primaryKey"`
	StartedAt   time.Time
	FinishedAt  time.Time
	PlayerCount int

	Players []MatchPlayer
	Rounds  []MatchRound
}

// MatchPlayer is a player's final line in an archived session, including
// players who disconnected before the end.
type MatchPlayer struct {
	ID      uint64 `gorm:"primaryKey"`
	MatchID uint64 `gorm:"index"`

	Seat         int
	Name         string
	Score        int
	Rank         int
	Disconnected bool
}

// MatchRound is one graded round in an archived session.
type MatchRound struct {
	ID      uint64 `gorm:"primaryKey"`
	MatchID uint64 `gorm:"index"`

	Number         int
	Category       string
	ShortQuestion  string
	CorrectAnswers int
}

// Record persists a finished match along with its players and rounds.
func (s *Store) Record(match *Match) error {
	return s.db.Create(match).Error
}

// FindMatchByID fetches an archived match with its players and rounds,
// returning nil if there is no match with that id.
func (s *Store) FindMatchByID(id uint64) (*Match, error) {
	var match Match
	err := s.db.Preload("Players").Preload("Rounds").First(&match, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &match, nil
}

// RecentMatches returns the most recently finished matches, newest first.
func (s *Store) RecentMatches(limit int) ([]Match, error) {
	var matches []Match
	err := s.db.Preload("Players").Preload("Rounds").
		Order("finished_at desc").Limit(limit).Find(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}
