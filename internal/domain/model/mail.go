package model

import (
	"encoding/json"
	"time"
)

// Mail is an inbox message. From is a snapshot of the sender taken when the mail was stored.
type Mail struct {
	ID      int64  `json:"id"`
	Unread  *bool  `json:"unread,omitempty"` // nil carries no read state
	From    User   `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Date    string `json:"date"`
}

func (m Mail) Validate() error {
	if err := m.From.Validate(); err != nil {
		return nestErr("mail", "from", err)
	}
	if _, err := ParseDate(m.Date); err != nil {
		return fieldErr("mail", "date", err)
	}
	return nil
}

// SentAt is the parsed Date. It assumes the mail passed Validate.
func (m Mail) SentAt() time.Time {
	t, _ := ParseDate(m.Date)
	return t
}

// IsUnread treats an absent flag as read.
func (m Mail) IsUnread() bool {
	return m.Unread != nil && *m.Unread
}

type mailWire struct {
	ID      *int64          `json:"id"`
	Unread  *bool           `json:"unread"`
	From    json.RawMessage `json:"from"`
	Subject *string         `json:"subject"`
	Body    *string         `json:"body"`
	Date    *string         `json:"date"`
}

func (m *Mail) UnmarshalJSON(data []byte) error {
	var w mailWire
	if err := json.Unmarshal(data, &w); err != nil {
		return decodeErr("mail", err)
	}
	if err := requireFields("mail",
		has("id", w.ID != nil),
		has("from", present(w.From)),
		has("subject", w.Subject != nil),
		has("body", w.Body != nil),
		has("date", w.Date != nil),
	); err != nil {
		return err
	}

	var from User
	if err := json.Unmarshal(w.From, &from); err != nil {
		return nestErr("mail", "from", err)
	}

	v := Mail{
		ID:      *w.ID,
		Unread:  w.Unread,
		From:    from,
		Subject: *w.Subject,
		Body:    *w.Body,
		Date:    *w.Date,
	}
	if err := v.Validate(); err != nil {
		return err
	}
	*m = v
	return nil
}
