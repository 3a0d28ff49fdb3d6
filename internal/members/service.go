package members

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cleared-dev/bote/internal/model"
)

var aliasPattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// Service provides in-memory lookup over the member roster.
type Service struct {
	members []model.Member
	byID    map[int]model.Member
}

// NewService creates a Service from a slice of members.
func NewService(members []model.Member) *Service {
	byID := make(map[int]model.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	return &Service{members: members, byID: byID}
}

// All returns all members.
func (s *Service) All() []model.Member {
	return s.members
}

// Get returns a member by ID.
func (s *Service) Get(id int) (model.Member, bool) {
	m, ok := s.byID[id]
	return m, ok
}

// Exists reports whether a member ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// Alias returns the alias to embed in a member's transaction IDs.
func (s *Service) Alias(id int) string {
	m, ok := s.byID[id]
	if !ok {
		return model.UnknownAlias
	}
	return m.TransactionAlias()
}

// ByName finds a member by case-insensitive name or alias.
func (s *Service) ByName(name string) (model.Member, bool) {
	for _, m := range s.members {
		if strings.EqualFold(m.Name, name) || strings.EqualFold(m.Alias, name) {
			return m, true
		}
	}
	return model.Member{}, false
}

// Validate checks a member before it joins the roster.
func Validate(m model.Member) error {
	if m.ID <= 0 {
		return fmt.Errorf("member id must be positive, got %d", m.ID)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("member %d: name is required", m.ID)
	}
	if m.Alias != "" && !aliasPattern.MatchString(m.Alias) {
		return fmt.Errorf("member %d: alias %q must be two letters", m.ID, m.Alias)
	}
	return nil
}
