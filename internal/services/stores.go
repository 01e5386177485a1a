package services

import (
	"context"

	"varirunBack/internal/models"
	"varirunBack/internal/onepay"
)

// Transactor runs fn in one database transaction. Stores called with the
// context passed to fn take part in it.
type Transactor interface {
	Exec(ctx context.Context, fn func(ctx context.Context) error) error
}

type PackageStore interface {
	GetByID(ctx context.Context, id int64) (models.Package, error)
	List(ctx context.Context, page models.Pagination) ([]models.Package, int64, error)
}

type ManualPaymentStore interface {
	Create(ctx context.Context, p models.ManualPayment) (models.ManualPayment, error)
	GetByID(ctx context.Context, id int64) (models.ManualPayment, error)
	GetByIDForUpdate(ctx context.Context, id int64) (models.ManualPayment, error)
	LatestByUserAndStatus(ctx context.Context, userID int64, status string) (models.ManualPayment, error)
	UpdatePending(ctx context.Context, p models.ManualPayment) error
	UpdateSlip(ctx context.Context, id int64, url, ref string) error
	TransitionStatus(ctx context.Context, id int64, fromStatus, toStatus string, approvedBy int64, notes string) error
	List(ctx context.Context, f models.PaymentFilter) ([]models.ManualPayment, int64, error)
}

type UserPackageStore interface {
	GetByUserID(ctx context.Context, userID int64) (models.UserPackage, error)
	Create(ctx context.Context, up models.UserPackage) (models.UserPackage, error)
	Update(ctx context.Context, up models.UserPackage) error
	ExistsBy(ctx context.Context, column, value string) (bool, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByLogin(ctx context.Context, login string) (models.User, error)
	SetPackage(ctx context.Context, userID, packageID int64) error
}

type RunResultStore interface {
	Create(ctx context.Context, rr models.RunResult) (models.RunResult, error)
	GetByID(ctx context.Context, id int64) (models.RunResult, error)
	UpdateStatus(ctx context.Context, id int64, fromStatus string, in models.UpdateRunStatusInput) error
	List(ctx context.Context, f models.RunResultFilter) ([]models.RunResult, int64, error)
}

type RankingStore interface {
	Increment(ctx context.Context, userID int64, rangeDelta float64, timeDelta int64) error
	GetByUserID(ctx context.Context, userID int64) (models.Ranking, error)
	All(ctx context.Context) ([]models.Ranking, error)
	Leaderboard(ctx context.Context, f models.LeaderboardFilter) ([]models.LeaderboardEntry, int64, error)
	UserNames(ctx context.Context, ids []int64) (map[int64]string, error)
}

type SummaryStore interface {
	Revenue(ctx context.Context, packageID *int64) ([]models.RevenueRow, error)
	Totals(ctx context.Context) (models.RangeTotals, error)
}

type LeaderboardCache interface {
	Add(ctx context.Context, userID int64, rangeDelta float64) error
	Replace(ctx context.Context, rankings []models.Ranking) error
	Top(ctx context.Context, n int) ([]models.LeaderboardEntry, error)
}

// ImageStore keeps uploaded images. Ref identifies the object for Delete.
type ImageStore interface {
	Upload(ctx context.Context, folder string, file models.Upload) (models.StoredFile, error)
	Delete(ctx context.Context, ref string) error
}

type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Notifier pushes an event to a connected user. Delivery is best effort.
type Notifier interface {
	Notify(userID int64, n models.Notification)
}

type PaymentGateway interface {
	GetTransaction(ctx context.Context, transactionID string) (onepay.Transaction, error)
	Code(data onepay.QRData) string
}
