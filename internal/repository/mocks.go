package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Rinde17/investerra-app/internal/domain"
)

type MockUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*domain.User // key: ID
	nextID int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, telegramID int64, username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.TelegramID == telegramID {
			user.Username = username
			u := *user
			return &u, nil
		}
	}

	user := &domain.User{
		ID:         m.nextID,
		TelegramID: telegramID,
		Username:   username,
		CreatedAt:  time.Now(),
	}
	m.nextID++
	m.users[user.ID] = user
	u := *user
	return &u, nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if user, ok := m.users[id]; ok {
		u := *user
		return &u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if telegramID != 0 && user.TelegramID == telegramID {
			u := *user
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user.TelegramID != 0 {
		for _, existing := range m.users {
			if existing.TelegramID == user.TelegramID {
				return domain.ErrDuplicateUser
			}
		}
	}

	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	u := *user
	m.users[user.ID] = &u
	return nil
}

type MockAnalysisRepository struct {
	mu       sync.RWMutex
	analyses map[int64]*domain.Analysis // key: TerrainID
	nextID   int64
}

func NewMockAnalysisRepository() *MockAnalysisRepository {
	return &MockAnalysisRepository{
		analyses: make(map[int64]*domain.Analysis),
		nextID:   1,
	}
}

func (m *MockAnalysisRepository) GetByTerrainID(ctx context.Context, terrainID int64) (*domain.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.analyses[terrainID]
	if !ok {
		return nil, domain.ErrAnalysisNotFound
	}
	c := *a
	return &c, nil
}

func (m *MockAnalysisRepository) ListByTerrainIDs(ctx context.Context, terrainIDs []int64) (map[int64]*domain.Analysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64]*domain.Analysis, len(terrainIDs))
	for _, id := range terrainIDs {
		if a, ok := m.analyses[id]; ok {
			c := *a
			out[id] = &c
		}
	}
	return out, nil
}

func (m *MockAnalysisRepository) Upsert(ctx context.Context, a *domain.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertLocked(a)
	return nil
}

func (m *MockAnalysisRepository) upsertLocked(a *domain.Analysis) {
	if existing, ok := m.analyses[a.TerrainID]; ok {
		a.ID = existing.ID
		a.CreatedAt = existing.CreatedAt
	} else {
		a.ID = m.nextID
		m.nextID++
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
	}
	c := *a
	m.analyses[a.TerrainID] = &c
}

func (m *MockAnalysisRepository) deleteByTerrain(terrainID int64) {
	m.mu.Lock()
	delete(m.analyses, terrainID)
	m.mu.Unlock()
}

func (m *MockAnalysisRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.analyses)
}

// MockTerrainRepository shares its analyses with a MockAnalysisRepository
// so deletes cascade like the real schema.
type MockTerrainRepository struct {
	mu       sync.RWMutex
	terrains map[int64]*domain.Terrain
	nextID   int64
	analyses *MockAnalysisRepository

	// WriteError, when set, fails every transactional write without persisting anything.
	WriteError error
}

func NewMockTerrainRepository(analyses *MockAnalysisRepository) *MockTerrainRepository {
	if analyses == nil {
		analyses = NewMockAnalysisRepository()
	}
	return &MockTerrainRepository{
		terrains: make(map[int64]*domain.Terrain),
		nextID:   1,
		analyses: analyses,
	}
}

func (m *MockTerrainRepository) CreateWithAnalysis(ctx context.Context, t *domain.Terrain, a *domain.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteError != nil {
		return m.WriteError
	}

	now := time.Now()
	t.ID = m.nextID
	m.nextID++
	t.CreatedAt = now
	t.UpdatedAt = now
	c := *t
	m.terrains[t.ID] = &c

	if a != nil {
		a.TerrainID = t.ID
		m.analyses.mu.Lock()
		m.analyses.upsertLocked(a)
		m.analyses.mu.Unlock()
	}
	return nil
}

func (m *MockTerrainRepository) UpdateWithAnalysis(ctx context.Context, t *domain.Terrain, a *domain.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteError != nil {
		return m.WriteError
	}

	existing, ok := m.terrains[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return domain.ErrTerrainNotFound
	}

	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now()
	c := *t
	m.terrains[t.ID] = &c

	if a != nil {
		a.TerrainID = t.ID
		m.analyses.mu.Lock()
		m.analyses.upsertLocked(a)
		m.analyses.mu.Unlock()
	}
	return nil
}

func (m *MockTerrainRepository) GetByID(ctx context.Context, id int64) (*domain.Terrain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.terrains[id]
	if !ok {
		return nil, domain.ErrTerrainNotFound
	}
	c := *t
	return &c, nil
}

func (m *MockTerrainRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Terrain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Terrain
	for _, t := range m.terrains {
		if t.OwnerID == ownerID {
			out = append(out, *t)
		}
	}
	// newest first, like the postgres implementation
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockTerrainRepository) Delete(ctx context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.terrains[id]
	if !ok || t.OwnerID != ownerID {
		return domain.ErrTerrainNotFound
	}
	delete(m.terrains, id)
	m.analyses.deleteByTerrain(id)
	return nil
}

func (m *MockTerrainRepository) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, t := range m.terrains {
		if t.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}
