package model

import (
	"encoding/json"
	"tle_zone_dashboard/internal/common"
)

// Test is one input / expected output pair of a challenge.
// The ExpeectedOutput wire name is what the dashboard client sends; keep it.
type Test struct {
	Input           string `json:"Input"`
	ExpeectedOutput string `json:"ExpeectedOutput"`
}

type testWire struct {
	Input           *string `json:"Input"`
	ExpeectedOutput *string `json:"ExpeectedOutput"`
}

func (t *Test) UnmarshalJSON(data []byte) error {
	var w testWire
	if err := json.Unmarshal(data, &w); err != nil {
		return decodeErr("test", err)
	}
	if err := requireFields("test",
		has("Input", w.Input != nil),
		has("ExpeectedOutput", w.ExpeectedOutput != nil),
	); err != nil {
		return err
	}
	*t = Test{Input: *w.Input, ExpeectedOutput: *w.ExpeectedOutput}
	return nil
}

// Question is a coding challenge. ID is a string natural key (a slug of the title
// when the author does not pick one). Outputtype casing matches the client.
type Question struct {
	Title       string `json:"Title"`
	Description string `json:"Description"`
	Level       int    `json:"Level"`
	ID          string `json:"ID"`
	InputTypes  string `json:"InputTypes"`
	Outputtype  string `json:"Outputtype"`
}

func (q Question) Validate() error {
	if q.ID == "" {
		return fieldErr("question", "ID", common.ErrMissingRequiredField)
	}
	return nil
}

type questionWire struct {
	Title       *string `json:"Title"`
	Description *string `json:"Description"`
	Level       *int    `json:"Level"`
	ID          *string `json:"ID"`
	InputTypes  *string `json:"InputTypes"`
	Outputtype  *string `json:"Outputtype"`
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return decodeErr("question", err)
	}
	if err := requireFields("question",
		has("Title", w.Title != nil),
		has("Description", w.Description != nil),
		has("Level", w.Level != nil),
		has("ID", w.ID != nil),
		has("InputTypes", w.InputTypes != nil),
		has("Outputtype", w.Outputtype != nil),
	); err != nil {
		return err
	}

	v := Question{
		Title:       *w.Title,
		Description: *w.Description,
		Level:       *w.Level,
		ID:          *w.ID,
		InputTypes:  *w.InputTypes,
		Outputtype:  *w.Outputtype,
	}
	if err := v.Validate(); err != nil {
		return err
	}
	*q = v
	return nil
}
