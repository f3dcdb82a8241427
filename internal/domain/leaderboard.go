package domain

import (
	"sort"
	"time"
)

// LeaderboardEntry is one ranked player of an event.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player"`
	Score    int    `json:"score"`
	Level    int    `json:"level"`
}

// Leaderboard captures the ordered scoreboard for an event.
type Leaderboard struct {
	EventID   string             `json:"eventId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// RankScores orders score rows by score desc, then level desc, then player id, and
// assigns 1-indexed ranks.
func RankScores(scores []Score) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(scores))
	for _, s := range scores {
		entries = append(entries, LeaderboardEntry{PlayerID: s.PlayerID, Score: s.Score, Level: s.Level})
	}
	SortEntries(entries)
	return entries
}

// SortEntries sorts in place and rewrites ranks.
func SortEntries(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].Level != entries[j].Level {
			return entries[i].Level > entries[j].Level
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
