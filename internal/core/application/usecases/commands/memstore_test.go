package commands_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/courier"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

var errNoTransaction = errors.New("no active transaction")

// memStore keeps aggregates as snapshots. A transaction holds txLock from
// Begin to Commit or Rollback, which serializes writers like a row lock.
type memStore struct {
	txLock sync.Mutex

	mu       sync.Mutex
	jobs     map[kernel.UUID]job.Snapshot
	couriers map[kernel.UUID]courier.Snapshot
}

func newMemStore() *memStore {
	return &memStore{
		jobs:     make(map[kernel.UUID]job.Snapshot),
		couriers: make(map[kernel.UUID]courier.Snapshot),
	}
}

func (s *memStore) Create() commands.UoW {
	return &memUoW{store: s}
}

// memJobUoWs narrows the store to the job-only factory.
type memJobUoWs struct{ store *memStore }

func (f memJobUoWs) Create() commands.JobUoW {
	return f.store.Create()
}

func (s *memStore) putJob(j *job.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[j.ID()] = j.Snapshot()
}

func (s *memStore) putCourier(c *courier.Courier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.couriers[c.ID()] = c.Snapshot()
}

func (s *memStore) job(id kernel.UUID) *job.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, err := job.RestoreJob(s.jobs[id])
	if err != nil {
		panic(err)
	}
	return j
}

func (s *memStore) courier(id kernel.UUID) *courier.Courier {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := courier.RestoreCourier(s.couriers[id])
	if err != nil {
		panic(err)
	}
	return c
}

type memUoW struct {
	store    *memStore
	inTx     bool
	jobs     map[kernel.UUID]job.Snapshot
	couriers map[kernel.UUID]courier.Snapshot
}

func (u *memUoW) Begin(context.Context) error {
	u.store.txLock.Lock()
	u.inTx = true
	u.jobs = make(map[kernel.UUID]job.Snapshot)
	u.couriers = make(map[kernel.UUID]courier.Snapshot)
	return nil
}

func (u *memUoW) Commit(context.Context) error {
	if !u.inTx {
		return errNoTransaction
	}
	u.store.mu.Lock()
	for id, s := range u.jobs {
		u.store.jobs[id] = s
	}
	for id, s := range u.couriers {
		u.store.couriers[id] = s
	}
	u.store.mu.Unlock()
	u.end()
	return nil
}

func (u *memUoW) Rollback(context.Context) error {
	if !u.inTx {
		return errNoTransaction
	}
	u.end()
	return nil
}

func (u *memUoW) end() {
	u.inTx = false
	u.jobs = nil
	u.couriers = nil
	u.store.txLock.Unlock()
}

func (u *memUoW) JobRepository() ports.JobRepository {
	return memJobRepo{u}
}

func (u *memUoW) CourierRepository() ports.CourierRepository {
	return memCourierRepo{u}
}

func (u *memUoW) loadJob(id kernel.UUID) (job.Snapshot, bool) {
	if s, ok := u.jobs[id]; ok {
		return s, true
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	s, ok := u.store.jobs[id]
	return s, ok
}

func (u *memUoW) loadCourier(id kernel.UUID) (courier.Snapshot, bool) {
	if s, ok := u.couriers[id]; ok {
		return s, true
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	s, ok := u.store.couriers[id]
	return s, ok
}

func (u *memUoW) stageJob(s job.Snapshot) {
	if u.inTx {
		u.jobs[s.ID] = s
		return
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.jobs[s.ID] = s
}

func (u *memUoW) stageCourier(s courier.Snapshot) {
	if u.inTx {
		u.couriers[s.ID] = s
		return
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.couriers[s.ID] = s
}

type memJobRepo struct{ u *memUoW }

func (r memJobRepo) Add(_ context.Context, j *job.Job) error {
	r.u.stageJob(j.Snapshot())
	return nil
}

func (r memJobRepo) Update(_ context.Context, j *job.Job) error {
	current, ok := r.u.loadJob(j.ID())
	if !ok {
		return errs.NewObjectNotFoundError("job", j.ID().String())
	}
	if current.Version != j.Version() {
		return errs.NewConcurrentModificationError("job", j.ID().String())
	}
	next := j.Snapshot()
	next.Version = j.Version() + 1
	r.u.stageJob(next)
	j.MarkPersisted(next.Version)
	return nil
}

func (r memJobRepo) Get(_ context.Context, id kernel.UUID) (*job.Job, error) {
	s, ok := r.u.loadJob(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("job", id.String())
	}
	return job.RestoreJob(s)
}

func (r memJobRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	return r.Get(ctx, id)
}

func (r memJobRepo) FindByStatusChangedBefore(context.Context, job.Status, time.Time, int) ([]*job.Job, error) {
	return nil, nil
}

func (r memJobRepo) SecurityCodeInUseSince(_ context.Context, code job.SecurityCode, since time.Time) (bool, error) {
	inUse := func(s job.Snapshot) bool {
		return s.SecurityCode == code && !s.CreatedAt.Before(since)
	}
	for _, s := range r.u.jobs {
		if inUse(s) {
			return true, nil
		}
	}
	r.u.store.mu.Lock()
	defer r.u.store.mu.Unlock()
	for _, s := range r.u.store.jobs {
		if inUse(s) {
			return true, nil
		}
	}
	return false, nil
}

type memCourierRepo struct{ u *memUoW }

func (r memCourierRepo) Add(_ context.Context, c *courier.Courier) error {
	r.u.stageCourier(c.Snapshot())
	return nil
}

func (r memCourierRepo) Update(_ context.Context, c *courier.Courier) error {
	if _, ok := r.u.loadCourier(c.ID()); !ok {
		return errs.NewObjectNotFoundError("courier", c.ID().String())
	}
	r.u.stageCourier(c.Snapshot())
	return nil
}

func (r memCourierRepo) Get(_ context.Context, id kernel.UUID) (*courier.Courier, error) {
	s, ok := r.u.loadCourier(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("courier", id.String())
	}
	return courier.RestoreCourier(s)
}

func (r memCourierRepo) GetForUpdate(ctx context.Context, id kernel.UUID) (*courier.Courier, error) {
	return r.Get(ctx, id)
}

func (r memCourierRepo) FindMatchable(context.Context, ports.CourierFilter) ([]*courier.Courier, error) {
	return nil, nil
}

func (r memCourierRepo) FindByIDs(context.Context, []kernel.UUID) ([]*courier.Courier, error) {
	return nil, nil
}
