package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"time"

	"varirunBack/internal/models"
	"varirunBack/internal/onepay"
)

var errInjected = errors.New("injected store failure")

// memDB backs every fake store. The fake transactor snapshots it and restores
// the snapshot when the transaction function fails.
type memDB struct {
	packages     map[int64]models.Package
	payments     map[int64]models.ManualPayment
	userPackages map[int64]models.UserPackage
	users        map[int64]models.User
	results      map[int64]models.RunResult
	rankings     map[int64]models.Ranking
	nextID       int64
	failOn       map[string]error
}

func newMemDB() *memDB {
	return &memDB{
		packages:     map[int64]models.Package{},
		payments:     map[int64]models.ManualPayment{},
		userPackages: map[int64]models.UserPackage{},
		users:        map[int64]models.User{},
		results:      map[int64]models.RunResult{},
		rankings:     map[int64]models.Ranking{},
		nextID:       100,
		failOn:       map[string]error{},
	}
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *memDB) fail(op string) error {
	return db.failOn[op]
}

type memSnapshot struct {
	packages     map[int64]models.Package
	payments     map[int64]models.ManualPayment
	userPackages map[int64]models.UserPackage
	users        map[int64]models.User
	results      map[int64]models.RunResult
	rankings     map[int64]models.Ranking
	nextID       int64
}

func (db *memDB) snapshot() memSnapshot {
	return memSnapshot{
		packages:     maps.Clone(db.packages),
		payments:     maps.Clone(db.payments),
		userPackages: maps.Clone(db.userPackages),
		users:        maps.Clone(db.users),
		results:      maps.Clone(db.results),
		rankings:     maps.Clone(db.rankings),
		nextID:       db.nextID,
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.packages = s.packages
	db.payments = s.payments
	db.userPackages = s.userPackages
	db.users = s.users
	db.results = s.results
	db.rankings = s.rankings
	db.nextID = s.nextID
}

type memTx struct {
	db      *memDB
	commits int
}

func (t *memTx) Exec(ctx context.Context, fn func(ctx context.Context) error) error {
	snap := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(snap)
		return err
	}
	t.commits++
	return nil
}

type memPackages struct{ db *memDB }

func (s memPackages) GetByID(_ context.Context, id int64) (models.Package, error) {
	p, ok := s.db.packages[id]
	if !ok {
		return models.Package{}, models.ErrNoRecord
	}
	return p, nil
}

func (s memPackages) List(_ context.Context, page models.Pagination) ([]models.Package, int64, error) {
	var out []models.Package
	for _, p := range s.db.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if page.Enabled() {
		start := min(page.Offset(), len(out))
		end := min(start+page.PerPage, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

type memPayments struct{ db *memDB }

func (s memPayments) Create(_ context.Context, p models.ManualPayment) (models.ManualPayment, error) {
	if err := s.db.fail("payments.Create"); err != nil {
		return models.ManualPayment{}, err
	}
	p.ID = s.db.id()
	p.Status = models.PaymentStatusPending
	p.CreatedAt = time.Now().Add(time.Duration(p.ID) * time.Millisecond)
	s.db.payments[p.ID] = p
	return p, nil
}

func (s memPayments) GetByID(_ context.Context, id int64) (models.ManualPayment, error) {
	p, ok := s.db.payments[id]
	if !ok {
		return models.ManualPayment{}, models.ErrNoRecord
	}
	return p, nil
}

func (s memPayments) GetByIDForUpdate(ctx context.Context, id int64) (models.ManualPayment, error) {
	return s.GetByID(ctx, id)
}

func (s memPayments) LatestByUserAndStatus(_ context.Context, userID int64, status string) (models.ManualPayment, error) {
	var found *models.ManualPayment
	for _, p := range s.db.payments {
		if p.UserID != userID || (status != "" && p.Status != status) {
			continue
		}
		if found == nil || p.ID > found.ID {
			cp := p
			found = &cp
		}
	}
	if found == nil {
		return models.ManualPayment{}, models.ErrNoRecord
	}
	return *found, nil
}

func (s memPayments) UpdatePending(_ context.Context, p models.ManualPayment) error {
	if err := s.db.fail("payments.UpdatePending"); err != nil {
		return err
	}
	cur, ok := s.db.payments[p.ID]
	if !ok || cur.Status != models.PaymentStatusPending {
		return models.ErrStatusChanged
	}
	cur.PackageID, cur.Amount, cur.Address, cur.Size = p.PackageID, p.Amount, p.Address, p.Size
	cur.PaymentSlipURL, cur.PaymentSlipRef = p.PaymentSlipURL, p.PaymentSlipRef
	s.db.payments[p.ID] = cur
	return nil
}

func (s memPayments) UpdateSlip(_ context.Context, id int64, url, ref string) error {
	if err := s.db.fail("payments.UpdateSlip"); err != nil {
		return err
	}
	cur, ok := s.db.payments[id]
	if !ok || cur.Status != models.PaymentStatusPending {
		return models.ErrStatusChanged
	}
	cur.PaymentSlipURL, cur.PaymentSlipRef = url, ref
	s.db.payments[id] = cur
	return nil
}

func (s memPayments) TransitionStatus(_ context.Context, id int64, from, to string, approvedBy int64, notes string) error {
	if err := s.db.fail("payments.TransitionStatus"); err != nil {
		return err
	}
	cur, ok := s.db.payments[id]
	if !ok || cur.Status != from {
		return models.ErrStatusChanged
	}
	cur.Status = to
	cur.ApprovedBy = &approvedBy
	cur.Notes = &notes
	s.db.payments[id] = cur
	return nil
}

func (s memPayments) List(_ context.Context, f models.PaymentFilter) ([]models.ManualPayment, int64, error) {
	var out []models.ManualPayment
	for _, p := range s.db.payments {
		if f.UserID != nil && p.UserID != *f.UserID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	total := int64(len(out))
	if f.Page.Enabled() {
		start := min(f.Page.Offset(), len(out))
		end := min(start+f.Page.PerPage, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

type memUserPackages struct{ db *memDB }

func (s memUserPackages) GetByUserID(_ context.Context, userID int64) (models.UserPackage, error) {
	for _, up := range s.db.userPackages {
		if up.UserID == userID {
			return up, nil
		}
	}
	return models.UserPackage{}, models.ErrNoRecord
}

func (s memUserPackages) Create(_ context.Context, up models.UserPackage) (models.UserPackage, error) {
	if err := s.db.fail("userPackages.Create"); err != nil {
		return models.UserPackage{}, err
	}
	for _, cur := range s.db.userPackages {
		if cur.UserID == up.UserID {
			return models.UserPackage{}, fmt.Errorf("duplicate user_id %d", up.UserID)
		}
	}
	up.ID = s.db.id()
	s.db.userPackages[up.ID] = up
	return up, nil
}

func (s memUserPackages) Update(_ context.Context, up models.UserPackage) error {
	if err := s.db.fail("userPackages.Update"); err != nil {
		return err
	}
	if _, ok := s.db.userPackages[up.ID]; !ok {
		return models.ErrNoRecord
	}
	s.db.userPackages[up.ID] = up
	return nil
}

func (s memUserPackages) ExistsBy(_ context.Context, column, value string) (bool, error) {
	for _, up := range s.db.userPackages {
		var v string
		switch column {
		case "invoice_id":
			v = up.InvoiceID
		case "transaction_id":
			v = up.TransactionID
		case "terminal_id":
			v = up.TerminalID
		case "ticket_id":
			if up.TicketID != nil {
				v = *up.TicketID
			}
		default:
			return false, fmt.Errorf("unknown column %s", column)
		}
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

type memUsers struct{ db *memDB }

func (s memUsers) GetByID(_ context.Context, id int64) (models.User, error) {
	u, ok := s.db.users[id]
	if !ok {
		return models.User{}, models.ErrNoRecord
	}
	return u, nil
}

func (s memUsers) GetByLogin(_ context.Context, login string) (models.User, error) {
	for _, u := range s.db.users {
		if u.Email == login || u.Phone == login {
			return u, nil
		}
	}
	return models.User{}, models.ErrNoRecord
}

func (s memUsers) SetPackage(_ context.Context, userID, packageID int64) error {
	if err := s.db.fail("users.SetPackage"); err != nil {
		return err
	}
	u, ok := s.db.users[userID]
	if !ok {
		return models.ErrNoRecord
	}
	u.PackageID = &packageID
	s.db.users[userID] = u
	return nil
}

type memResults struct{ db *memDB }

func (s memResults) Create(_ context.Context, rr models.RunResult) (models.RunResult, error) {
	if err := s.db.fail("results.Create"); err != nil {
		return models.RunResult{}, err
	}
	rr.ID = s.db.id()
	rr.Status = models.RunStatusPending
	s.db.results[rr.ID] = rr
	return rr, nil
}

func (s memResults) GetByID(_ context.Context, id int64) (models.RunResult, error) {
	rr, ok := s.db.results[id]
	if !ok {
		return models.RunResult{}, models.ErrNoRecord
	}
	return rr, nil
}

func (s memResults) UpdateStatus(_ context.Context, id int64, from string, in models.UpdateRunStatusInput) error {
	cur, ok := s.db.results[id]
	if !ok || cur.Status != from {
		return models.ErrStatusChanged
	}
	cur.Status = in.Status
	approver := in.ApprovedBy
	cur.ApprovedBy = &approver
	if in.RejectDescription != nil {
		cur.RejectDescription = in.RejectDescription
	}
	s.db.results[id] = cur
	return nil
}

func (s memResults) List(_ context.Context, f models.RunResultFilter) ([]models.RunResult, int64, error) {
	var out []models.RunResult
	for _, rr := range s.db.results {
		if f.UserID != nil && rr.UserID != *f.UserID {
			continue
		}
		if f.Status != "" && rr.Status != f.Status {
			continue
		}
		out = append(out, rr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

type memRankings struct{ db *memDB }

func (s memRankings) Increment(_ context.Context, userID int64, rangeDelta float64, timeDelta int64) error {
	if err := s.db.fail("rankings.Increment"); err != nil {
		return err
	}
	rk, ok := s.db.rankings[userID]
	if !ok {
		rk = models.Ranking{ID: s.db.id(), UserID: userID}
	}
	rk.TotalRange += rangeDelta
	rk.TotalTime += timeDelta
	s.db.rankings[userID] = rk
	return nil
}

func (s memRankings) GetByUserID(_ context.Context, userID int64) (models.Ranking, error) {
	if err := s.db.fail("rankings.GetByUserID"); err != nil {
		return models.Ranking{}, err
	}
	rk, ok := s.db.rankings[userID]
	if !ok {
		return models.Ranking{}, models.ErrNoRecord
	}
	return rk, nil
}

func (s memRankings) All(_ context.Context) ([]models.Ranking, error) {
	var out []models.Ranking
	for _, rk := range s.db.rankings {
		out = append(out, rk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s memRankings) Leaderboard(_ context.Context, f models.LeaderboardFilter) ([]models.LeaderboardEntry, int64, error) {
	all, _ := s.All(context.Background())
	sort.SliceStable(all, func(i, j int) bool { return all[i].TotalRange > all[j].TotalRange })
	var out []models.LeaderboardEntry
	for i, rk := range all {
		out = append(out, models.LeaderboardEntry{Rank: int64(i + 1), UserID: rk.UserID, Name: s.db.users[rk.UserID].Name, TotalRange: rk.TotalRange, TotalTime: rk.TotalTime})
	}
	total := int64(len(out))
	if f.Page.Enabled() {
		start := min(f.Page.Offset(), len(out))
		end := min(start+f.Page.PerPage, len(out))
		out = out[start:end]
	}
	return out, total, nil
}

func (s memRankings) UserNames(_ context.Context, ids []int64) (map[int64]string, error) {
	names := map[int64]string{}
	for _, id := range ids {
		if u, ok := s.db.users[id]; ok {
			names[id] = u.Name
		}
	}
	return names, nil
}

type memImages struct {
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (m *memImages) Upload(_ context.Context, folder string, file models.Upload) (models.StoredFile, error) {
	if m.uploadErr != nil {
		return models.StoredFile{}, m.uploadErr
	}
	ref := fmt.Sprintf("%s/%d-%s", folder, len(m.uploaded)+1, file.Filename)
	m.uploaded = append(m.uploaded, ref)
	return models.StoredFile{URL: "https://cdn.example.com/" + ref, Ref: ref}, nil
}

func (m *memImages) Delete(_ context.Context, ref string) error {
	m.deleted = append(m.deleted, ref)
	return m.deleteErr
}

type memNotifier struct {
	events []models.Notification
	users  []int64
}

func (n *memNotifier) Notify(userID int64, note models.Notification) {
	n.users = append(n.users, userID)
	n.events = append(n.events, note)
}

type memLocker struct {
	busy  bool
	locks int
	held  int
}

func (l *memLocker) Lock(_ context.Context, _ string) (func(), error) {
	if l.busy {
		return nil, errors.New("busy")
	}
	l.locks++
	l.held++
	return func() { l.held-- }, nil
}

type memCache struct {
	scores map[int64]float64
	err    error
}

func (c *memCache) Add(_ context.Context, userID int64, delta float64) error {
	if c.err != nil {
		return c.err
	}
	if c.scores == nil {
		c.scores = map[int64]float64{}
	}
	c.scores[userID] += delta
	return nil
}

func (c *memCache) Replace(_ context.Context, rankings []models.Ranking) error {
	c.scores = map[int64]float64{}
	for _, rk := range rankings {
		c.scores[rk.UserID] = rk.TotalRange
	}
	return nil
}

func (c *memCache) Top(_ context.Context, n int) ([]models.LeaderboardEntry, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []models.LeaderboardEntry
	for id, score := range c.scores {
		out = append(out, models.LeaderboardEntry{UserID: id, TotalRange: score})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalRange > out[j].TotalRange })
	if len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Rank = int64(i + 1)
	}
	return out, nil
}

type fakeGateway struct {
	tx    onepay.Transaction
	err   error
	asked []string
}

func (g *fakeGateway) GetTransaction(_ context.Context, id string) (onepay.Transaction, error) {
	g.asked = append(g.asked, id)
	return g.tx, g.err
}

func (g *fakeGateway) Code(data onepay.QRData) string {
	return fmt.Sprintf("QR|%s|%s|%s|%d", data.InvoiceID, data.TransactionID, data.TerminalID, data.Amount)
}

// fixture wires every service over one memDB.
type fixture struct {
	db       *memDB
	tx       *memTx
	images   *memImages
	notifier *memNotifier
	locker   *memLocker
	cache    *memCache
	gateway  *fakeGateway

	payments *ManualPaymentService
	results  *RunResultService
	qr       *QRPaymentService
	packages *PackageService
	rankings *RankingService
	profiles *ProfileService
}

func newFixture() *fixture {
	db := newMemDB()
	f := &fixture{
		db:       db,
		tx:       &memTx{db: db},
		images:   &memImages{},
		notifier: &memNotifier{},
		locker:   &memLocker{},
		cache:    &memCache{},
		gateway:  &fakeGateway{},
	}

	rng40, rng90 := "40", "90"
	db.packages[1] = models.Package{ID: 1, Name: "40KM", Price: 240000, Range: &rng40}
	db.packages[2] = models.Package{ID: 2, Name: "40KM + shirt", Price: 240000, Range: &rng40}
	db.packages[3] = models.Package{ID: 3, Name: "90KM", Price: 290000, Range: &rng90}
	db.users[1] = models.User{ID: 1, Name: "admin", Role: models.RoleAdmin}
	db.users[7] = models.User{ID: 7, Name: "runner seven", Email: "seven@example.com", Role: models.RoleUser}
	db.users[8] = models.User{ID: 8, Name: "runner eight", Role: models.RoleUser}

	userPackages := memUserPackages{db: db}
	ids := &IDGenerator{Store: userPackages}
	assigner := &PackageAssigner{UserPackages: userPackages, Users: memUsers{db: db}, IDs: ids}

	f.payments = &ManualPaymentService{
		Tx:       f.tx,
		Payments: memPayments{db: db},
		Packages: memPackages{db: db},
		Assigner: assigner,
		Images:   f.images,
		Locker:   f.locker,
		Notifier: f.notifier,
	}
	f.results = &RunResultService{
		Tx:       f.tx,
		Results:  memResults{db: db},
		Rankings: memRankings{db: db},
		Images:   f.images,
		Cache:    f.cache,
		Locker:   f.locker,
		Notifier: f.notifier,
	}
	f.qr = &QRPaymentService{
		Tx:           f.tx,
		Packages:     memPackages{db: db},
		UserPackages: userPackages,
		Assigner:     assigner,
		IDs:          ids,
		Gateway:      f.gateway,
		Notifier:     f.notifier,
	}
	f.packages = &PackageService{Packages: memPackages{db: db}, UserPackages: userPackages}
	f.rankings = &RankingService{Rankings: memRankings{db: db}, Cache: f.cache}
	f.profiles = &ProfileService{
		Users:        memUsers{db: db},
		Rankings:     memRankings{db: db},
		UserPackages: userPackages,
		Payments:     memPayments{db: db},
	}
	return f
}

func slip(name string) *models.Upload {
	return &models.Upload{Filename: name, ContentType: "image/jpeg", Data: []byte("jpeg")}
}
