// Package tryjob extracts build identifiers from try-job listings.
//
// Two listing shapes are accepted:
//   - the legacy indented text report printed by the review tool
//   - a structured JSON list of {result, status, url} records
//
// Both produce the same output: build ids deduplicated and sorted by numeric
// value.
package tryjob

import "encoding/json"

// Shape identifies a try-job listing format.
type Shape int

const (
	ShapeUnknown    Shape = iota
	ShapeText             // indented builder/url report
	ShapeStructured       // JSON list of build records
)

func (s Shape) String() string {
	switch s {
	case ShapeText:
		return "text"
	case ShapeStructured:
		return "structured"
	}
	return "unknown"
}

// Sniff examines the listing to determine its shape.
func Sniff(data []byte) Shape {
	for len(data) > 0 && (data[0] == ' ' || data[0] == '\t' || data[0] == '\n' || data[0] == '\r') {
		data = data[1:]
	}
	if len(data) == 0 {
		return ShapeUnknown
	}
	if data[0] == '[' && isRecordList(data) {
		return ShapeStructured
	}
	return ShapeText
}

func isRecordList(data []byte) bool {
	var records []json.RawMessage
	return json.Unmarshal(data, &records) == nil
}
