package fakeconsole

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/samber/lo"

	"github.com/networkteam/crmsuite/contact"
)

// Record is a contact stored by the console.
type Record struct {
	ID uuid.UUID
	contact.Contact

	Member          bool
	MembershipLevel string
	MemberSince     time.Time
	NotifyMember    bool
	Groups          []string
	Archived        bool
	Created         time.Time
}

// ListName is the name shown in result lists.
func (r Record) ListName() string {
	return r.Contact.ListName()
}

// Field returns the value of a searchable field by its criteria label.
func (r Record) Field(label string) string {
	switch label {
	case "First name":
		return r.FirstName
	case "Last name":
		return r.LastName
	case "Email":
		return r.Email
	case "Organization":
		return r.Company
	case "Phone":
		return r.Phone
	}
	return ""
}

// CriteriaFields are the fields offered by the "Add criteria" dialog.
var CriteriaFields = []string{"First name", "Last name", "Email", "Organization", "Phone"}

// Criterion restricts an advanced search to records whose field contains
// Value, ignoring case. An empty value matches every record.
type Criterion struct {
	Field string
	Value string
}

func (c Criterion) matches(r Record) bool {
	if c.Value == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Field(c.Field)), strings.ToLower(c.Value))
}

// SavedSearch is a named list of criteria.
type SavedSearch struct {
	Name     string
	Criteria []Criterion
	Created  time.Time
}

// Store holds the console's records in memory.
type Store struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]Record
	searches map[string]SavedSearch
}

func NewStore() *Store {
	return &Store{
		records:  make(map[uuid.UUID]Record),
		searches: make(map[string]SavedSearch),
	}
}

// Add stores a new record and returns it with its assigned id.
func (s *Store) Add(r Record) Record {
	r.ID = uuid.Must(uuid.NewV4())
	if r.Created.IsZero() {
		r.Created = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r
	return r
}

func (s *Store) Get(id uuid.UUID) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

// Archive marks a record as archived. Archived records are hidden from the
// list search but still found by the advanced search.
func (s *Store) Archive(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return false
	}
	r.Archived = true
	s.records[id] = r
	return true
}

func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	return true
}

// sorted returns all records ordered by list name, then creation time.
func (s *Store) sorted() []Record {
	s.mu.RLock()
	records := lo.Values(s.records)
	s.mu.RUnlock()
	slices.SortFunc(records, func(a, b Record) int {
		return cmp.Or(
			strings.Compare(a.ListName(), b.ListName()),
			a.Created.Compare(b.Created),
		)
	})
	return records
}

// Search is the list screen's live filter. An empty query lists nothing;
// archived records are never listed.
func (s *Store) Search(query string) []Record {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	return lo.Filter(s.sorted(), func(r Record, _ int) bool {
		if r.Archived {
			return false
		}
		return lo.SomeBy([]string{r.FirstName, r.LastName, r.Email, r.Company}, func(v string) bool {
			return strings.Contains(strings.ToLower(v), query)
		})
	})
}

// Match returns the records matching all criteria, archived ones included.
func (s *Store) Match(criteria []Criterion) []Record {
	return lo.Filter(s.sorted(), func(r Record, _ int) bool {
		return lo.EveryBy(criteria, func(c Criterion) bool { return c.matches(r) })
	})
}

// SaveSearch stores criteria under name, replacing an existing search of the
// same name.
func (s *Store) SaveSearch(name string, criteria []Criterion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches[name] = SavedSearch{
		Name:     name,
		Criteria: slices.Clone(criteria),
		Created:  time.Now(),
	}
}

func (s *Store) SavedSearch(name string) (SavedSearch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ss, ok := s.searches[name]
	return ss, ok
}

// SavedSearches returns all saved searches, newest first.
func (s *Store) SavedSearches() []SavedSearch {
	s.mu.RLock()
	searches := lo.Values(s.searches)
	s.mu.RUnlock()
	slices.SortFunc(searches, func(a, b SavedSearch) int {
		return cmp.Or(b.Created.Compare(a.Created), strings.Compare(a.Name, b.Name))
	})
	return searches
}

// Seed adds a fixed set of test contacts. The last two are archived.
func (s *Store) Seed() {
	seed := []struct {
		first, last, company, phone string
		archived                    bool
	}{
		{"Ada", "Lovelace", "Analytical Engines", "+44 20 7946 0001", false},
		{"Grace", "Hopper", "Navy Computing", "+1 202 555 0102", false},
		{"Alan", "Turing", "Bletchley Park", "+44 20 7946 0003", false},
		{"Edsger", "Dijkstra", "Mathematisch Centrum", "+31 20 555 0104", false},
		{"Barbara", "Liskov", "Venus Systems", "+1 617 555 0105", true},
		{"Niklaus", "Wirth", "Lilith Workstations", "+41 44 555 0106", true},
	}
	for _, c := range seed {
		s.Add(Record{
			Contact:  contact.New(c.first, c.last, c.company, c.phone),
			Archived: c.archived,
		})
	}
}
