package engine

import "strings"

// KeywordEntry maps a substring to a canned reply.
type KeywordEntry struct {
	Match string
	Reply string
}

// Responder is the secondary reply path used when the dialogue loop yields no
// reply: first case-insensitive substring match wins, in declaration order,
// then the static default reply if enabled.
type Responder struct {
	entries      []KeywordEntry
	defaultReply string
	useDefault   bool
}

// NewResponder creates a responder over the given keyword table.
func NewResponder(entries []KeywordEntry, defaultReply string, useDefault bool) *Responder {
	return &Responder{
		entries:      entries,
		defaultReply: defaultReply,
		useDefault:   useDefault,
	}
}

// Reply resolves a reply for the message body. The second return value names
// the origin ("keyword" or "default") for instrumentation.
func (r *Responder) Reply(body string) (string, string, bool) {
	lowered := strings.ToLower(body)
	for _, entry := range r.entries {
		if strings.Contains(lowered, strings.ToLower(entry.Match)) {
			return entry.Reply, "keyword", true
		}
	}
	if r.useDefault && r.defaultReply != "" {
		return r.defaultReply, "default", true
	}
	return "", "", false
}
