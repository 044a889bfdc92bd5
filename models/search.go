package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexString accepts either a JSON string or a JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*f = FlexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = FlexString(n.String())
	return nil
}

// VendorSearchRequest is the body of the AI vendor search.
type VendorSearchRequest struct {
	EventType          string     `json:"eventType"`
	Budget             FlexString `json:"budget"`
	GuestsCount        FlexString `json:"guestsCount"`
	Date               string     `json:"date"`
	City               string     `json:"city"`
	Description        string     `json:"description,omitempty"`
	ClarificationCount int        `json:"clarificationCount,omitempty"`
}

// VendorMatch is one recommended vendor.
type VendorMatch struct {
	VendorID       int      `json:"vendorId"`
	RelevanceScore float64  `json:"relevanceScore"` // 0..10
	Reason         string   `json:"reason"`
	EstimatedPrice *float64 `json:"estimatedPrice,omitempty"`
}

// CostEstimate is the expected spend for one service category.
type CostEstimate struct {
	Category       string  `json:"category"`
	EstimatedPrice float64 `json:"estimatedPrice"`
	Notes          string  `json:"notes,omitempty"`
}

// VendorSearchResult is the validated answer of the AI vendor search.
type VendorSearchResult struct {
	Vendors               []VendorMatch  `json:"vendors"`
	EventConcept          string         `json:"eventConcept"`
	EstimatedCosts        []CostEstimate `json:"estimatedCosts"`
	NeedsClarification    *bool          `json:"needsClarification,omitempty"`
	ClarificationQuestion string         `json:"clarificationQuestion,omitempty"`
}
