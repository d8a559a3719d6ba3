package cta

import (
	"encoding/json"
	"net/http"
)

// Entry is the JSON form of one registered button.
type Entry struct {
	ID     string       `json:"id"`
	Kind   Kind         `json:"kind"`
	Modal  *ModalConfig `json:"modal,omitempty"`
	Target string       `json:"target,omitempty"`
	URL    string       `json:"url,omitempty"`
	NewTab bool         `json:"newTab,omitempty"`
}

// Manifest lists the registry in id order.
func (r Registry) Manifest() []Entry {
	out := make([]Entry, 0, len(r))
	for _, id := range r.IDs() {
		a, ok := r.Lookup(id)
		if !ok {
			continue
		}
		e := Entry{ID: id, Kind: KindOf(a)}
		switch v := a.(type) {
		case InquiryAction:
			cfg := v.Config()
			e.Modal = &cfg
		case ScrollAction:
			e.Target = v.TargetID
		case LinkAction:
			e.URL, e.NewTab = v.URL, v.NewTab
		case TelAction:
			e.URL = "tel:" + v.Phone
		case MailtoAction:
			e.URL = "mailto:" + v.Email
		}
		out = append(out, e)
	}
	return out
}

// Handler serves the manifest so pages can render their buttons from one source.
func (r Registry) Handler() http.Handler {
	body, err := json.Marshal(map[string][]Entry{"data": r.Manifest()})
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err != nil {
			http.Error(w, `{"error":"An unexpected error occurred"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cache-Control", "public, max-age=300")
		_, _ = w.Write(body)
	})
}
