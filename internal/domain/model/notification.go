package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Notification announces a challenge to a user together with its tests.
// Sender is a snapshot, like Mail.From. Tests may be empty.
type Notification struct {
	ID     int64  `json:"id"`
	Unread *bool  `json:"unread,omitempty"`
	Sender User   `json:"sender"`
	Body   string `json:"body"`
	Date   string `json:"date"`
	Tests  []Test `json:"tests"`
}

func (n Notification) Validate() error {
	if err := n.Sender.Validate(); err != nil {
		return nestErr("notification", "sender", err)
	}
	if _, err := ParseDate(n.Date); err != nil {
		return fieldErr("notification", "date", err)
	}
	return nil
}

func (n Notification) SentAt() time.Time {
	t, _ := ParseDate(n.Date)
	return t
}

func (n Notification) IsUnread() bool {
	return n.Unread != nil && *n.Unread
}

// MarshalJSON writes a nil Tests slice as [] so the key always round-trips.
func (n Notification) MarshalJSON() ([]byte, error) {
	type plain Notification
	p := plain(n)
	if p.Tests == nil {
		p.Tests = []Test{}
	}
	return json.Marshal(p)
}

type notificationWire struct {
	ID     *int64          `json:"id"`
	Unread *bool           `json:"unread"`
	Sender json.RawMessage `json:"sender"`
	Body   *string         `json:"body"`
	Date   *string         `json:"date"`
	Tests  json.RawMessage `json:"tests"`
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var w notificationWire
	if err := json.Unmarshal(data, &w); err != nil {
		return decodeErr("notification", err)
	}
	if err := requireFields("notification",
		has("id", w.ID != nil),
		has("sender", present(w.Sender)),
		has("body", w.Body != nil),
		has("date", w.Date != nil),
		has("tests", present(w.Tests)),
	); err != nil {
		return err
	}

	var sender User
	if err := json.Unmarshal(w.Sender, &sender); err != nil {
		return nestErr("notification", "sender", err)
	}
	tests, err := decodeTests(w.Tests)
	if err != nil {
		return err
	}

	v := Notification{
		ID:     *w.ID,
		Unread: w.Unread,
		Sender: sender,
		Body:   *w.Body,
		Date:   *w.Date,
		Tests:  tests,
	}
	if err := v.Validate(); err != nil {
		return err
	}
	*n = v
	return nil
}

// DecodeTests decodes a JSON array of tests with per-element error paths.
func DecodeTests(raw json.RawMessage) ([]Test, error) {
	if !present(raw) {
		return []Test{}, nil
	}
	return decodeTests(raw)
}

func decodeTests(raw json.RawMessage) ([]Test, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, decodeErr("notification.tests", err)
	}
	tests := make([]Test, 0, len(items))
	for i, item := range items {
		var t Test
		if err := json.Unmarshal(item, &t); err != nil {
			return nil, nestErr("notification", fmt.Sprintf("tests[%d]", i), err)
		}
		tests = append(tests, t)
	}
	return tests, nil
}
