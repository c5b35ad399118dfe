package notifsvc

import (
	"sync"

	"github.com/kymani/udahili/core"
)

// DispatcherMock records dispatched notifications synchronously for tests.
type DispatcherMock struct {
	mu            sync.Mutex
	Notifications []core.Notification
}

var _ core.NotificationDispatcher = (*DispatcherMock)(nil)

func NewDispatcherMock() *DispatcherMock {
	return &DispatcherMock{}
}

func (d *DispatcherMock) Dispatch(notifications ...core.Notification) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Notifications = append(d.Notifications, notifications...)
}

func (d *DispatcherMock) Sent() []core.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	sent := make([]core.Notification, len(d.Notifications))
	copy(sent, d.Notifications)
	return sent
}
