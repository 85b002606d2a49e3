package pipeline

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/goleads/internal/lead"
)

// State is threaded through the stages. The engine owns it; stages receive
// a copy and report their output as a Partial.
type State struct {
	Criteria       lead.Criteria
	SourceURLs     []string
	CandidateNames []string
	Leads          []lead.Lead
}

// FieldSet names state fields as a bitmask.
type FieldSet uint8

const (
	FieldSourceURLs FieldSet = 1 << iota
	FieldCandidateNames
	FieldLeads
)

func (f FieldSet) String() string {
	var names []string
	if f&FieldSourceURLs != 0 {
		names = append(names, "source_urls")
	}
	if f&FieldCandidateNames != 0 {
		names = append(names, "candidate_names")
	}
	if f&FieldLeads != 0 {
		names = append(names, "leads")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Partial is a stage's output. Only fields set through the setters are
// merged into the state.
type Partial struct {
	sourceURLs     []string
	candidateNames []string
	leads          []lead.Lead
	written        FieldSet
}

func (p *Partial) SetSourceURLs(v []string) {
	p.sourceURLs = v
	p.written |= FieldSourceURLs
}

func (p *Partial) SetCandidateNames(v []string) {
	p.candidateNames = v
	p.written |= FieldCandidateNames
}

func (p *Partial) SetLeads(v []lead.Lead) {
	p.leads = v
	p.written |= FieldLeads
}

// Written reports which fields the partial carries.
func (p Partial) Written() FieldSet { return p.written }

// merge applies p to st, rejecting fields outside owned.
func merge(st *State, p Partial, owned FieldSet) error {
	if extra := p.written &^ owned; extra != 0 {
		return fmt.Errorf("stage wrote fields it does not own: %s", extra)
	}
	if p.written&FieldSourceURLs != 0 {
		st.SourceURLs = append([]string(nil), p.sourceURLs...)
	}
	if p.written&FieldCandidateNames != 0 {
		st.CandidateNames = append([]string(nil), p.candidateNames...)
	}
	if p.written&FieldLeads != 0 {
		st.Leads = append([]lead.Lead(nil), p.leads...)
	}
	return nil
}

// clone returns a copy whose slices do not alias st.
func (st State) clone() State {
	return State{
		Criteria:       st.Criteria,
		SourceURLs:     append([]string(nil), st.SourceURLs...),
		CandidateNames: append([]string(nil), st.CandidateNames...),
		Leads:          append([]lead.Lead(nil), st.Leads...),
	}
}

// nameSet is an insertion-ordered set of candidate names. Identity is
// case-sensitive.
type nameSet struct {
	order []string
	seen  map[string]struct{}
}

func newNameSet() *nameSet { return &nameSet{seen: make(map[string]struct{})} }

// add reports whether name was new.
func (s *nameSet) add(name string) bool {
	if _, ok := s.seen[name]; ok {
		return false
	}
	s.seen[name] = struct{}{}
	s.order = append(s.order, name)
	return true
}

func (s *nameSet) first(n int) []string {
	if n > 0 && len(s.order) > n {
		return append([]string(nil), s.order[:n]...)
	}
	return append([]string(nil), s.order...)
}
