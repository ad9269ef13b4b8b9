package league

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockDirectory is an in-memory Directory for testing consumers of league
// membership. It is safe for concurrent use.
type MockDirectory struct {
	mu sync.Mutex

	Users   map[string]*User
	Members []Member

	// Spies for method calls
	ListMembersFunc   func(ctx context.Context, organizationID string, role Role) ([]Member, error)
	GetMembershipFunc func(ctx context.Context, organizationID, userID string) (*Member, error)
	GetUserFunc       func(ctx context.Context, userID string) (*User, error)

	// Call records
	ListMembersCalls []struct {
		OrganizationID string
		Role           Role
	}
	GetUserCalls []string
}

// NewMockDirectory creates a new mock instance.
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{Users: map[string]*User{}}
}

// AddUser registers a user and, when organizationID is set, a membership.
func (m *MockDirectory) AddUser(organizationID string, user User, role Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := user
	m.Users[user.ID] = &u
	if organizationID != "" {
		m.Members = append(m.Members, Member{
			ID:             fmt.Sprintf("%s-%s", organizationID, user.ID),
			OrganizationID: organizationID,
			UserID:         user.ID,
			UserName:       user.Name,
			Role:           role,
		})
	}
}

func (m *MockDirectory) ListMembers(ctx context.Context, organizationID string, role Role) ([]Member, error) {
	m.mu.Lock()
	m.ListMembersCalls = append(m.ListMembersCalls, struct {
		OrganizationID string
		Role           Role
	}{organizationID, role})
	fn := m.ListMembersFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, organizationID, role)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	members := []Member{}
	for _, member := range m.Members {
		if member.OrganizationID == organizationID && (role == "" || member.Role == role) {
			members = append(members, member)
		}
	}
	return members, nil
}

func (m *MockDirectory) GetMembership(ctx context.Context, organizationID, userID string) (*Member, error) {
	m.mu.Lock()
	fn := m.GetMembershipFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, organizationID, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, member := range m.Members {
		if member.OrganizationID == organizationID && member.UserID == userID {
			found := member
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: membership of %s in %s", ErrNotFound, userID, organizationID)
}

func (m *MockDirectory) GetUser(ctx context.Context, userID string) (*User, error) {
	m.mu.Lock()
	m.GetUserCalls = append(m.GetUserCalls, userID)
	fn := m.GetUserFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.Users[userID]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	found := *user
	return &found, nil
}

// MockStore is a mock implementation of the LeagueStore interface. Reads fall
// through to the embedded MockDirectory; writes are recorded and delegated to
// the Func spies when set.
type MockStore struct {
	*MockDirectory

	CreateOrganizationFunc func(ctx context.Context, name string) (*Organization, error)
	UpsertUserFunc         func(ctx context.Context, user User) (*User, error)
	AddMemberFunc          func(ctx context.Context, organizationID, userID string, role Role, handicap *float64) (*Member, error)
	CreateSeasonFunc       func(ctx context.Context, organizationID, name string) (*Season, error)
	CreateRoundFunc        func(ctx context.Context, seasonID string, date time.Time) (*Round, error)
	CreateTeamFunc         func(ctx context.Context, organizationID, name string) (*Team, error)
	CreateMatchFunc        func(ctx context.Context, m NewMatch) (*Match, error)
	GetMatchFunc           func(ctx context.Context, matchID string) (*Match, error)

	CreateMatchCalls []NewMatch
	seq              int
}

// NewMock creates a new mock store.
func NewMock() *MockStore {
	return &MockStore{MockDirectory: NewMockDirectory()}
}

func (m *MockStore) nextID(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *MockStore) CreateOrganization(ctx context.Context, name string) (*Organization, error) {
	if m.CreateOrganizationFunc != nil {
		return m.CreateOrganizationFunc(ctx, name)
	}
	return &Organization{ID: m.nextID("org"), Name: name}, nil
}

func (m *MockStore) UpsertUser(ctx context.Context, user User) (*User, error) {
	if m.UpsertUserFunc != nil {
		return m.UpsertUserFunc(ctx, user)
	}
	if user.ID == "" {
		user.ID = m.nextID("user")
	}
	m.AddUser("", user, "")
	return &user, nil
}

func (m *MockStore) AddMember(ctx context.Context, organizationID, userID string, role Role, handicap *float64) (*Member, error) {
	if m.AddMemberFunc != nil {
		return m.AddMemberFunc(ctx, organizationID, userID, role, handicap)
	}
	member := Member{ID: m.nextID("member"), OrganizationID: organizationID, UserID: userID, Role: role, Handicap: handicap}
	m.mu.Lock()
	if u, ok := m.Users[userID]; ok {
		member.UserName = u.Name
	}
	m.Members = append(m.Members, member)
	m.mu.Unlock()
	return &member, nil
}

func (m *MockStore) CreateSeason(ctx context.Context, organizationID, name string) (*Season, error) {
	if m.CreateSeasonFunc != nil {
		return m.CreateSeasonFunc(ctx, organizationID, name)
	}
	return &Season{ID: m.nextID("season"), OrganizationID: organizationID, Name: name}, nil
}

func (m *MockStore) CreateRound(ctx context.Context, seasonID string, date time.Time) (*Round, error) {
	if m.CreateRoundFunc != nil {
		return m.CreateRoundFunc(ctx, seasonID, date)
	}
	return &Round{ID: m.nextID("round"), SeasonID: seasonID, Date: date}, nil
}

func (m *MockStore) CreateTeam(ctx context.Context, organizationID, name string) (*Team, error) {
	if m.CreateTeamFunc != nil {
		return m.CreateTeamFunc(ctx, organizationID, name)
	}
	return &Team{ID: m.nextID("team"), OrganizationID: organizationID, Name: name}, nil
}

func (m *MockStore) CreateMatch(ctx context.Context, nm NewMatch) (*Match, error) {
	m.mu.Lock()
	m.CreateMatchCalls = append(m.CreateMatchCalls, nm)
	m.mu.Unlock()
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(ctx, nm)
	}
	match := &Match{ID: m.nextID("match"), RoundID: nm.RoundID, Players: []MatchPlayer{}}
	for _, p := range nm.Players {
		match.Players = append(match.Players, MatchPlayer{ID: m.nextID("mp"), MatchID: match.ID, UserID: p.UserID})
	}
	return match, nil
}

func (m *MockStore) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(ctx, matchID)
	}
	return nil, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
}
