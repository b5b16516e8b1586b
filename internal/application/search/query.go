// Package search implements the commission search language: a whitespace-separated list of
// prefix:value tokens such as "state:review state:accepted order:a creator:alice".
package search

import (
	"strconv"
	"strings"
)

const (
	OrderAscending  = "a"
	OrderDescending = "d"
)

// CommissionsSearchQuery is the parsed form of a search string. Unset fields are zero.
type CommissionsSearchQuery struct {
	Sort         string // "", "created_date" or "updated_date"
	SelfManaged  *bool
	Review       bool
	Accepted     bool
	InProgress   bool
	Closed       bool
	Rejected     bool
	Offer        *int64
	Order        string // "", "a" or "d"
	Commissioner string
	Creator      string
}

// state tokens in canonical order. "finished" selects CLOSED.
var stateTokens = []struct {
	value string
	field func(q *CommissionsSearchQuery) *bool
}{
	{"review", func(q *CommissionsSearchQuery) *bool { return &q.Review }},
	{"accepted", func(q *CommissionsSearchQuery) *bool { return &q.Accepted }},
	{"in_progress", func(q *CommissionsSearchQuery) *bool { return &q.InProgress }},
	{"finished", func(q *CommissionsSearchQuery) *bool { return &q.Closed }},
	{"rejected", func(q *CommissionsSearchQuery) *bool { return &q.Rejected }},
}

// Parse never fails. Tokens without exactly one colon, unknown prefixes and
// unrecognised values are dropped.
func Parse(s string) CommissionsSearchQuery {
	var q CommissionsSearchQuery
	for _, tok := range strings.Fields(s) {
		if strings.Count(tok, ":") != 1 {
			continue
		}
		prefix, value, _ := strings.Cut(tok, ":")
		if value == "" {
			continue
		}
		q.apply(strings.ToLower(prefix), value)
	}
	return q
}

func (q *CommissionsSearchQuery) apply(prefix, value string) {
	lower := strings.ToLower(value)
	switch prefix {
	case "sort":
		if lower == "created_date" || lower == "updated_date" {
			q.Sort = lower
		}
	case "self_managed":
		if b, ok := parseBool(lower); ok {
			q.SelfManaged = &b
		}
	case "state":
		for _, st := range stateTokens {
			if st.value == lower {
				*st.field(q) = true
			}
		}
	case "offer":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			q.Offer = &n
		}
	case "order":
		if lower == OrderAscending || lower == OrderDescending {
			q.Order = lower
		}
	case "commissioner":
		q.Commissioner = value
	case "creator":
		q.Creator = value
	}
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// String renders the canonical search string: fields in a fixed order, unset fields omitted.
func (q CommissionsSearchQuery) String() string {
	var toks []string
	if q.Sort != "" {
		toks = append(toks, "sort:"+q.Sort)
	}
	if q.SelfManaged != nil {
		toks = append(toks, "self_managed:"+strconv.FormatBool(*q.SelfManaged))
	}
	for _, st := range stateTokens {
		if *st.field(&q) {
			toks = append(toks, "state:"+st.value)
		}
	}
	if q.Offer != nil {
		toks = append(toks, "offer:"+strconv.FormatInt(*q.Offer, 10))
	}
	if q.Order != "" {
		toks = append(toks, "order:"+q.Order)
	}
	if q.Commissioner != "" {
		toks = append(toks, "commissioner:"+q.Commissioner)
	}
	if q.Creator != "" {
		toks = append(toks, "creator:"+q.Creator)
	}
	return strings.Join(toks, " ")
}

// HasStates reports whether any state token was given.
func (q CommissionsSearchQuery) HasStates() bool {
	return q.Review || q.Accepted || q.InProgress || q.Closed || q.Rejected
}
