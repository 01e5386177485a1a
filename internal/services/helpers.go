package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"varirunBack/internal/models"
)

func acquire(ctx context.Context, locker Locker, key, busyMessage string) (func(), error) {
	if locker == nil {
		return func() {}, nil
	}
	unlock, err := locker.Lock(ctx, key)
	if err != nil {
		return nil, &models.AppError{Kind: models.ErrConflict, Message: busyMessage, Err: err}
	}
	return unlock, nil
}

func notify(n Notifier, userID int64, event string, data any) {
	if n == nil {
		return
	}
	n.Notify(userID, models.Notification{Type: event, Data: data, CreatedAt: time.Now()})
}

// notFoundAs turns a missing-row error into a NotFound for what.
func notFoundAs(err error, what string) error {
	if errors.Is(err, models.ErrNoRecord) {
		return models.NotFound(what)
	}
	return err
}

func lockKey(kind string, id int64) string {
	return fmt.Sprintf("lock:%s:%d", kind, id)
}
