package metrics

import (
	"context"
	"sync"
)

var _ metricsRepo = (*repoMock)(nil)

type repoMock struct {
	mutex   sync.Mutex
	metrics []Metric
	nextID  int

	// when set, Add fails with this error
	addErr error
}

func NewRepoMock() *repoMock {
	return &repoMock{
		nextID: 1,
	}
}

func (r *repoMock) Add(_ context.Context, metric Metric) (*Metric, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.addErr != nil {
		return nil, r.addErr
	}

	metric.ID = r.nextID
	r.nextID++
	r.metrics = append(r.metrics, metric)
	return &metric, nil
}

func (r *repoMock) List(_ context.Context) ([]Metric, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	all := make([]Metric, len(r.metrics))
	copy(all, r.metrics)
	return all, nil
}

func (r *repoMock) Count(_ context.Context) (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return len(r.metrics), nil
}
