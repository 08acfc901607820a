package errors

import "encoding/json"

// ProblemDetails is an RFC 7807 problem object. Extensions are written as
// top-level members next to the standard ones.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

// NewProblemDetails builds a problem without extensions
func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: instance,
	}
}

// WithExtension sets one extension member
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = map[string]interface{}{}
	}
	pd.Extensions[key] = value
	return pd
}

// MarshalJSON merges Extensions into the object. Standard members win over
// an extension of the same name.
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	type standard ProblemDetails
	base, err := json.Marshal((*standard)(pd))
	if err != nil || len(pd.Extensions) == 0 {
		return base, err
	}

	merged := make(map[string]json.RawMessage, len(pd.Extensions)+5)
	for k, v := range pd.Extensions {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(base, &members); err != nil {
		return nil, err
	}
	for k, v := range members {
		merged[k] = v
	}
	return json.Marshal(merged)
}
