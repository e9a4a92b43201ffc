package notificator

import "context"

type Notificator interface {
	// Notify сообщает админам о сбое
	Notify(ctx context.Context, err error, details string) error
}
