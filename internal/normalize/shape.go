// Package normalize flattens the heterogeneous upstream payloads into
// uniform record lists and canonical fields. Every upstream wraps its item
// list differently (KAMIS under data.item or data.price, the public-data
// portal under response.body.items.item, the Seoul feed under
// <service>.row), and each of them collapses a one-element list into a bare
// object. The functions here absorb all of that: they never panic and never
// return nil slices, and unexpected shapes degrade to an empty list plus a
// reason code the composer can surface for debugging.
package normalize

import (
	"bytes"
	"encoding/json"
)

// Record is one raw upstream item: the source-specific field names with
// string or number values, untouched.
type Record map[string]json.RawMessage

// Reason explains why a normalizer produced no records.
type Reason string

const (
	ReasonOK              Reason = ""
	ReasonParseFailed     Reason = "parse_failed"
	ReasonMissingResponse Reason = "missing_response_object"
	ReasonMissingBody     Reason = "missing_body"
	ReasonMissingItems    Reason = "missing_items"
	ReasonEmpty           Reason = "empty"
	ReasonUpstreamError   Reason = "upstream_error"
)

// CoerceList turns a raw JSON value that may be an array, a single object,
// null, or absent into a flat record slice. A single object always becomes a
// one-element slice; everything unusable becomes an empty slice.
func CoerceList(raw json.RawMessage) []Record {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Record{}
	}
	switch trimmed[0] {
	case '[':
		var list []Record
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return []Record{}
		}
		out := make([]Record, 0, len(list))
		for _, r := range list {
			if r != nil {
				out = append(out, r)
			}
		}
		return out
	case '{':
		var one Record
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return []Record{}
		}
		return []Record{one}
	default:
		// Scalar (KAMIS error payloads put status strings here).
		return []Record{}
	}
}

// KamisItems extracts the item list from a KAMIS price response. The list
// lives under data.item for most actions and under data.price for
// dailySalesList; data itself may also be a bare status array on error.
func KamisItems(body []byte) ([]Record, Reason) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []Record{}, ReasonParseFailed
	}
	trimmed := bytes.TrimSpace(envelope.Data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Record{}, ReasonMissingBody
	}
	if trimmed[0] == '[' {
		// KAMIS reports errors as data:["900"] style status arrays; a list
		// of objects here would be a direct item list.
		items := CoerceList(trimmed)
		if len(items) == 0 {
			return []Record{}, ReasonUpstreamError
		}
		return items, ReasonOK
	}
	var data struct {
		Item  json.RawMessage `json:"item"`
		Price json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return []Record{}, ReasonParseFailed
	}
	if items := CoerceList(data.Item); len(items) > 0 {
		return items, ReasonOK
	}
	if items := CoerceList(data.Price); len(items) > 0 {
		return items, ReasonOK
	}
	return []Record{}, ReasonEmpty
}

// PortalMeta carries the public-data portal response header and paging
// fields, kept for diagnostics.
type PortalMeta struct {
	ResultCode string `json:"resultCode,omitempty"`
	ResultMsg  string `json:"resultMsg,omitempty"`
	TotalCount int    `json:"totalCount,omitempty"`
	NumOfRows  int    `json:"numOfRows,omitempty"`
	PageNo     int    `json:"pageNo,omitempty"`
}

// resultOK reports whether a portal result code means success. The portal
// answers "00" normally but some services shorten it to "0".
func (m PortalMeta) resultOK() bool {
	return m.ResultCode == "" || m.ResultCode == "00" || m.ResultCode == "0"
}

// PortalItems extracts the item list from a public-data portal response
// (response.body.items.item). The portal nests three levels deep and
// collapses single results to a bare object.
func PortalItems(body []byte) ([]Record, PortalMeta, Reason) {
	var envelope struct {
		Response *struct {
			Header *PortalMeta `json:"header"`
			Body   *struct {
				Items      json.RawMessage `json:"items"`
				TotalCount int             `json:"totalCount"`
				NumOfRows  int             `json:"numOfRows"`
				PageNo     int             `json:"pageNo"`
			} `json:"body"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []Record{}, PortalMeta{}, ReasonParseFailed
	}
	if envelope.Response == nil {
		return []Record{}, PortalMeta{}, ReasonMissingResponse
	}
	meta := PortalMeta{}
	if envelope.Response.Header != nil {
		meta = *envelope.Response.Header
	}
	if !meta.resultOK() {
		return []Record{}, meta, ReasonUpstreamError
	}
	if envelope.Response.Body == nil {
		return []Record{}, meta, ReasonMissingBody
	}
	meta.TotalCount = envelope.Response.Body.TotalCount
	meta.NumOfRows = envelope.Response.Body.NumOfRows
	meta.PageNo = envelope.Response.Body.PageNo

	trimmed := bytes.TrimSpace(envelope.Response.Body.Items)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []Record{}, meta, ReasonMissingItems
	}
	// items is usually {"item": ...} but some services inline the list.
	if trimmed[0] == '[' {
		items := CoerceList(trimmed)
		if len(items) == 0 {
			return []Record{}, meta, ReasonEmpty
		}
		return items, meta, ReasonOK
	}
	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return []Record{}, meta, ReasonParseFailed
	}
	items := CoerceList(wrapper.Item)
	if len(items) == 0 {
		return []Record{}, meta, ReasonEmpty
	}
	return items, meta, ReasonOK
}

// PortalData extracts the flat data list from a katCode portal response,
// which skips the response/body nesting and answers {"data": [...]}.
func PortalData(body []byte) ([]Record, Reason) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []Record{}, ReasonParseFailed
	}
	items := CoerceList(envelope.Data)
	if len(items) == 0 {
		return []Record{}, ReasonEmpty
	}
	return items, ReasonOK
}

// SeoulRows extracts the row list from a Seoul open-data response for the
// named service, checking the embedded RESULT code (INFO-000 is success).
func SeoulRows(body []byte, service string) ([]Record, Reason) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return []Record{}, ReasonParseFailed
	}
	payload, ok := envelope[service]
	if !ok {
		return []Record{}, ReasonMissingResponse
	}
	var svc struct {
		Result *struct {
			Code string `json:"CODE"`
		} `json:"RESULT"`
		Row json.RawMessage `json:"row"`
	}
	if err := json.Unmarshal(payload, &svc); err != nil {
		return []Record{}, ReasonParseFailed
	}
	if svc.Result != nil && svc.Result.Code != "INFO-000" {
		return []Record{}, ReasonUpstreamError
	}
	rows := CoerceList(svc.Row)
	if len(rows) == 0 {
		return []Record{}, ReasonEmpty
	}
	return rows, ReasonOK
}
