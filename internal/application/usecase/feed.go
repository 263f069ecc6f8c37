package usecase

import (
	"context"
	"sync"

	"waypoint/internal/domain/model"
	"waypoint/internal/domain/repository/broker"
	"waypoint/pkg/logger"
	"waypoint/pkg/observable"
)

// Feed pushes full waypoint snapshots to live subscribers. A change
// notification carries the owner's id; every subscriber of that user gets a
// fresh snapshot that replaces whatever it had not yet read.
type Feed struct {
	receiver broker.Receiver
	source   *Lister
	consumer string

	mu    sync.Mutex
	users map[string]*userFeed
}

type userFeed struct {
	value *observable.Value[[]model.Waypoint]
	refs  int
}

func NewFeed(receiver broker.Receiver, source *Lister, consumer string) *Feed {
	return &Feed{
		receiver: receiver,
		source:   source,
		consumer: consumer,
		users:    map[string]*userFeed{},
	}
}

// Subscribe returns a channel that yields the user's current snapshot
// first, then every later snapshot. The first subscriber of a user loads the
// snapshot; later ones join the live value. The returned func unsubscribes.
func (f *Feed) Subscribe(ctx context.Context, userID string) (<-chan []model.Waypoint, func(), error) {
	f.mu.Lock()
	uf, ok := f.users[userID]
	if !ok {
		// loaded under f.mu so a concurrent refresh cannot be missed or overwritten
		snapshot, err := f.source.Snapshot(ctx, userID)
		if err != nil {
			f.mu.Unlock()

			return nil, nil, err
		}

		uf = &userFeed{value: observable.New(snapshot)}
		f.users[userID] = uf
	}
	uf.refs++
	ch, cancel := uf.value.Subscribe()
	f.mu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			cancel()

			f.mu.Lock()
			defer f.mu.Unlock()

			uf.refs--
			if uf.refs == 0 {
				delete(f.users, userID)
			}
		})
	}, nil
}

// Run consumes change notifications until ctx is done.
func (f *Feed) Run(ctx context.Context) error {
	messages, err := f.receiver.Messages(ctx, f.consumer)
	if err != nil {
		return err
	}

	for msg := range messages {
		if err := msg.Ack(); err != nil {
			logger.Warn("failed to ack change notification", "err", err)
		}

		f.refresh(ctx, msg.Body())
	}

	return nil
}

func (f *Feed) refresh(ctx context.Context, userID string) {
	f.mu.Lock()
	uf, ok := f.users[userID]
	f.mu.Unlock()

	if !ok {
		return
	}

	snapshot, err := f.source.Snapshot(ctx, userID)
	if err != nil {
		logger.Error("failed to load live snapshot", "user", userID, "err", err)

		return
	}

	uf.value.Set(snapshot)
}
