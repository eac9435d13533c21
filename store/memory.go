package store

import (
	"context"
	"sort"
	"sync"

	"grouporder/models"
)

// Memory keeps documents in process. Every read hands out a copy so callers
// never share maps with the store.
type Memory struct {
	mu        sync.Mutex
	producers map[string]models.Producer
	orders    map[string]models.Order
	users     map[string]models.User
	blacklist map[string]int64
}

func NewMemory() *Memory {
	return &Memory{
		producers: make(map[string]models.Producer),
		orders:    make(map[string]models.Order),
		users:     make(map[string]models.User),
		blacklist: make(map[string]int64),
	}
}

func (m *Memory) FindProducer(ctx context.Context, id string) (*models.Producer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.producers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneProducer(p)
	return &cp, nil
}

func (m *Memory) ListProducers(ctx context.Context) ([]models.ProducerInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ProducerInfo, 0, len(m.producers))
	for _, p := range m.producers {
		out = append(out, p.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) UpsertProducer(ctx context.Context, p *models.Producer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.producers[p.ID] = cloneProducer(*p)
	return nil
}

func (m *Memory) FindOrder(ctx context.Context, id string) (*models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := cloneOrder(o)
	return &cp, nil
}

func (m *Memory) CreateOrder(ctx context.Context, o *models.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *Memory) ListOrdersByCreator(ctx context.Context, userID string) ([]models.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		if o.CreatedBy == userID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) AddMember(ctx context.Context, orderID, key string, member models.Member, total TotalUpdate) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return 0, ErrNotFound
	}
	if _, taken := o.Members[key]; taken {
		return 0, ErrMemberExists
	}
	if o.Members == nil {
		o.Members = make(map[string]models.Member)
	}
	o.Members[key] = cloneMember(member)
	if total.Increment {
		o.TotalAmount += total.Value
	} else {
		o.TotalAmount = total.Value
	}
	m.orders[orderID] = o
	return o.TotalAmount, nil
}

func (m *Memory) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) InsertUser(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = *u
	return nil
}

func (m *Memory) BlacklistToken(ctx context.Context, token string, exp int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blacklist[token] = exp
	return nil
}

func (m *Memory) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blacklist[token]
	return ok, nil
}

func cloneProducer(p models.Producer) models.Producer {
	products := make(map[string]models.ProductDefinition, len(p.Products))
	for k, d := range p.Products {
		d.Images = append([]string(nil), d.Images...)
		d.Options = append([]string(nil), d.Options...)
		products[k] = d
	}
	p.Products = products
	return p
}

func cloneOrder(o models.Order) models.Order {
	members := make(map[string]models.Member, len(o.Members))
	for k, m := range o.Members {
		members[k] = cloneMember(m)
	}
	o.Members = members
	return o
}

func cloneMember(m models.Member) models.Member {
	items := make(map[string]models.LineItem, len(m.Items))
	for k, it := range m.Items {
		items[k] = it
	}
	m.Items = items
	return m
}
