package property

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/event"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu    sync.Mutex
	items map[string]*Property
	seq   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]*Property)}
}

func (r *fakeRepo) Create(_ context.Context, p *Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	p.ID = fmt.Sprintf("p-%d", r.seq)
	p.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Second)
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, f Filter) ([]*Property, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Property
	for _, p := range r.items {
		if f.HostID != "" && p.HostID != f.HostID {
			continue
		}
		if f.Keyword != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Keyword)) {
			continue
		}
		if f.MinPrice != nil && p.PricePerNight < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.PricePerNight > *f.MaxPrice {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, p *Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[p.ID]
	if !ok {
		return ErrNotFound
	}
	cp := *p
	cp.HostID = existing.HostID
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Publish(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func newTestService() (Service, *fakeRepo, *recorder) {
	repo := newFakeRepo()
	rec := &recorder{}
	log, _ := test.NewNullLogger()
	return NewService(repo, rec, log), repo, rec
}

func validCreate() CreateRequest {
	return CreateRequest{
		Title:         "Beach house",
		Description:   "Sea view",
		PricePerNight: money.MustParse("100"),
		Bedrooms:      2,
		Location:      "Lisbon",
	}
}

func TestCreate(t *testing.T) {
	svc, _, _ := newTestService()

	p, err := svc.Create(context.Background(), "host-1", validCreate())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "host-1", p.HostID)
	assert.Equal(t, money.Amount(10000), p.PricePerNight)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		want   error
	}{
		{"missing title", func(r *CreateRequest) { r.Title = "  " }, ErrTitleRequired},
		{"long title", func(r *CreateRequest) { r.Title = strings.Repeat("a", 201) }, ErrTitleTooLong},
		{"missing location", func(r *CreateRequest) { r.Location = "" }, ErrLocationRequired},
		{"long location", func(r *CreateRequest) { r.Location = strings.Repeat("a", 256) }, ErrLocationTooLong},
		{"negative price", func(r *CreateRequest) { r.PricePerNight = -1 }, ErrNegativePrice},
		{"negative bedrooms", func(r *CreateRequest) { r.Bedrooms = -1 }, ErrNegativeBedrooms},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreate()
			tc.mutate(&req)
			_, err := svc.Create(ctx, "host-1", req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// zero price and zero bedrooms are allowed
	req := validCreate()
	req.PricePerNight, req.Bedrooms = 0, 0
	_, err := svc.Create(ctx, "host-1", req)
	assert.NoError(t, err)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "host-1", validCreate())
	require.NoError(t, err)

	title := "Renamed"
	_, err = svc.Update(ctx, p.ID, "intruder", UpdateRequest{Title: &title})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	price := money.MustParse("80.50")
	updated, err := svc.Update(ctx, p.ID, "host-1", UpdateRequest{Title: &title, PricePerNight: &price})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, money.Amount(8050), updated.PricePerNight)
	assert.Equal(t, "Lisbon", updated.Location)

	negative := -3
	_, err = svc.Update(ctx, p.ID, "host-1", UpdateRequest{Bedrooms: &negative})
	assert.ErrorIs(t, err, ErrNegativeBedrooms)

	_, err = svc.Update(ctx, "missing", "host-1", UpdateRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_OwnerOnlyAndPublishes(t *testing.T) {
	svc, repo, rec := newTestService()
	ctx := context.Background()

	p, err := svc.Create(ctx, "host-1", validCreate())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, p.ID, "intruder"), ErrPermissionDenied)
	assert.Empty(t, rec.events)

	require.NoError(t, svc.Delete(ctx, p.ID, "host-1"))
	assert.Empty(t, repo.items)
	require.Len(t, rec.events, 1)
	assert.Equal(t, event.PropertyDeleted, rec.events[0].Type)

	assert.ErrorIs(t, svc.Delete(ctx, p.ID, "host-1"), ErrNotFound)
}

func TestList(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "host-1", validCreate())
	require.NoError(t, err)
	other := validCreate()
	other.Title = "City flat"
	other.PricePerNight = money.MustParse("40")
	_, err = svc.Create(ctx, "host-2", other)
	require.NoError(t, err)

	all, total, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	mine, _, err := svc.List(ctx, Filter{HostID: "host-2"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "City flat", mine[0].Title)

	lo, hi := money.MustParse("100"), money.MustParse("50")
	_, _, err = svc.List(ctx, Filter{MinPrice: &lo, MaxPrice: &hi})
	assert.ErrorIs(t, err, ErrInvalidPriceRange)
}
