package model

import "time"

// Message senders.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Message is one turn of a conversation. Assistant text is stored raw;
// inline actions are extracted when the message is rendered.
type Message struct {
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// IsUser reports whether the message was typed by the user.
func (m Message) IsUser() bool { return m.Sender == SenderUser }

// ChatSession is a saved conversation with the backend.
type ChatSession struct {
	ID       string    `json:"id" db:"id"`
	Title    string    `json:"title" db:"title"`
	Date     time.Time `json:"date" db:"date"`
	Messages []Message `json:"messages" db:"-"`
}
