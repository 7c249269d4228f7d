package models

import "time"

// Language is an ISO 639-1 code of a supported language.
type Language string

const (
	LanguageEN Language = "en"
	LanguageKO Language = "ko"
	LanguageRU Language = "ru"
)

// Word is an immutable lexical entry shared across all users. The scheduler
// only reads words; they are created by vocabulary ingestion and never deleted
// while a learning record references them.
type Word struct {
	ID        int64     `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Language  Language  `json:"language" db:"language"`
	Phonetic  string    `json:"phonetic" db:"phonetic"`   // optional transcription
	AudioURL  string    `json:"audio_url" db:"audio_url"` // optional cached pronunciation reference
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
