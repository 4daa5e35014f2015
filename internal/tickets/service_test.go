package tickets_test

import (
	"context"
	"errors"
	"testing"

	"shop-bot/internal/accounting"
	"shop-bot/internal/config"
	"shop-bot/internal/database"
	"shop-bot/internal/models"
	"shop-bot/internal/tickets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockDBLayer is a mock implementation of the DBLayer interface
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) GetTicketByChannel(channelID int64) (*models.Ticket, error) {
	args := m.Called(channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockDBLayer) FindOpenTicket(userID int64, category string) (*models.Ticket, error) {
	args := m.Called(userID, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockDBLayer) InsertTicket(ticket models.Ticket) error {
	args := m.Called(ticket)
	return args.Error(0)
}

func (m *MockDBLayer) SetOpen(channelID int64, open bool) error {
	args := m.Called(channelID, open)
	return args.Error(0)
}

func (m *MockDBLayer) ClearPayload(channelID int64) error {
	args := m.Called(channelID)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteTicket(channelID int64) error {
	args := m.Called(channelID)
	return args.Error(0)
}

func (m *MockDBLayer) CountTickets() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockDBLayer) ListTickets(openOnly bool) ([]models.Ticket, error) {
	args := m.Called(openOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

// MockGuard is a mock implementation of the CreationGuard interface
type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) AcquireGuard(userID int64, category, ticketID string) (bool, error) {
	args := m.Called(userID, category, ticketID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuard) ReleaseGuard(userID int64, category, ticketID string) error {
	args := m.Called(userID, category, ticketID)
	return args.Error(0)
}

// MockTranscript is a mock implementation of the TranscriptArchiver interface
type MockTranscript struct {
	mock.Mock
}

func (m *MockTranscript) Save(channelID int64, category string) {
	m.Called(channelID, category)
}

func (m *MockTranscript) ViewURL(channelID int64) string {
	return m.Called(channelID).String(0)
}

func (m *MockTranscript) DownloadURL(channelID int64) string {
	return m.Called(channelID).String(0)
}

// MockPurchaseLogger is a mock implementation of the PurchaseLogger interface
type MockPurchaseLogger struct {
	mock.Mock
}

func (m *MockPurchaseLogger) LogPurchase(actor models.Actor, req accounting.PurchaseRequest) (*accounting.Receipt, error) {
	args := m.Called(actor, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounting.Receipt), args.Error(1)
}

// MockStockCatalog is a mock implementation of the StockCatalog interface
type MockStockCatalog struct {
	mock.Mock
}

func (m *MockStockCatalog) GetItemByID(id string) (*models.StockItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StockItem), args.Error(1)
}

var testRoles = config.RolesConfig{
	Staff: []int64{100},
	Owner: []int64{200},
}

var (
	staffActor = models.Actor{UserID: 1, Username: "staff", RoleIDs: []int64{100}}
	buyerActor = models.Actor{UserID: 42, Username: "buyerperson", RoleIDs: []int64{999}}
)

func newService(db *MockDBLayer, guard *MockGuard, transcript *MockTranscript, acct *MockPurchaseLogger, stock *MockStockCatalog) *tickets.TicketService {
	return tickets.NewTicketService(db, guard, transcript, acct, stock, nil, testRoles)
}

func TestCreatePurchaseTicket(t *testing.T) {
	db := new(MockDBLayer)
	guard := new(MockGuard)
	stock := new(MockStockCatalog)
	svc := newService(db, guard, new(MockTranscript), new(MockPurchaseLogger), stock)

	guard.On("AcquireGuard", int64(42), models.CategoryPurchase, mock.Anything).Return(true, nil)
	guard.On("ReleaseGuard", int64(42), models.CategoryPurchase, mock.Anything).Return(nil)
	db.On("FindOpenTicket", int64(42), models.CategoryPurchase).Return(nil, database.ErrTicketNotFound)
	db.On("CountTickets").Return(6, nil)
	db.On("InsertTicket", mock.MatchedBy(func(ticket models.Ticket) bool {
		return ticket.Number == 7 && ticket.Open &&
			ticket.PaymentMethod == "Cash App" &&
			ticket.Subtotal == 60 && ticket.Total == 55
	})).Return(nil)

	stock.On("GetItemByID", "a").Return(&models.StockItem{ID: "a", Name: "Sword", Price: 30}, nil)
	stock.On("GetItemByID", "b").Return(&models.StockItem{ID: "b", Name: "Helm", Price: 30}, nil)

	result, err := svc.Create(context.Background(), buyerActor, 111, models.CategoryPurchase, &tickets.PurchasePayload{
		Method:  "Cash App",
		ItemIDs: []string{"a", "b"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "ticket-buyer-0007", result.ChannelName)
	assert.Equal(t, int64(5), result.Discount)
	db.AssertExpectations(t)
	guard.AssertExpectations(t)
}

func TestCreateDuplicateConflict(t *testing.T) {
	db := new(MockDBLayer)
	guard := new(MockGuard)
	svc := newService(db, guard, new(MockTranscript), new(MockPurchaseLogger), new(MockStockCatalog))

	existing := &models.Ticket{ID: "x", ChannelID: 555, UserID: 42, Category: models.CategorySupport, Open: true}
	guard.On("AcquireGuard", int64(42), models.CategorySupport, mock.Anything).Return(true, nil)
	guard.On("ReleaseGuard", int64(42), models.CategorySupport, mock.Anything).Return(nil)
	db.On("FindOpenTicket", int64(42), models.CategorySupport).Return(existing, nil)

	_, err := svc.Create(context.Background(), buyerActor, 111, models.CategorySupport, nil)

	var dup *tickets.DuplicateTicketError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, int64(555), dup.ExistingChannelID)
	assert.True(t, errors.Is(err, database.ErrDuplicateTicket))
	db.AssertNotCalled(t, "InsertTicket", mock.Anything)
}

func TestCreateGuardContention(t *testing.T) {
	db := new(MockDBLayer)
	guard := new(MockGuard)
	svc := newService(db, guard, new(MockTranscript), new(MockPurchaseLogger), new(MockStockCatalog))

	guard.On("AcquireGuard", int64(42), models.CategorySupport, mock.Anything).Return(false, nil)
	db.On("FindOpenTicket", int64(42), models.CategorySupport).Return(nil, database.ErrTicketNotFound)

	_, err := svc.Create(context.Background(), buyerActor, 111, models.CategorySupport, nil)
	assert.True(t, errors.Is(err, database.ErrDuplicateTicket))
	db.AssertNotCalled(t, "InsertTicket", mock.Anything)
	guard.AssertNotCalled(t, "ReleaseGuard", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInvalidCategory(t *testing.T) {
	svc := newService(new(MockDBLayer), new(MockGuard), new(MockTranscript), new(MockPurchaseLogger), new(MockStockCatalog))

	_, err := svc.Create(context.Background(), buyerActor, 111, "Nonsense", nil)
	assert.Error(t, err)
}

func TestClosePurchaseTicketLogsOnce(t *testing.T) {
	db := new(MockDBLayer)
	transcript := new(MockTranscript)
	acct := new(MockPurchaseLogger)
	svc := newService(db, new(MockGuard), transcript, acct, new(MockStockCatalog))

	ticket := &models.Ticket{
		ID:            "x",
		ChannelID:     111,
		UserID:        42,
		Username:      "buyerperson",
		Category:      models.CategoryPurchase,
		Open:          true,
		Number:        7,
		PaymentMethod: "Cash App",
		ItemIDs:       []string{"a", "b"},
		Subtotal:      60,
		Total:         55,
	}
	db.On("GetTicketByChannel", int64(111)).Return(ticket, nil)
	db.On("SetOpen", int64(111), false).Return(nil)
	db.On("ClearPayload", int64(111)).Return(nil)
	transcript.On("Save", int64(111), models.CategoryPurchase).Return()

	acct.On("LogPurchase", staffActor, mock.MatchedBy(func(req accounting.PurchaseRequest) bool {
		return req.CustomerID == 42 && req.Discount == 5 &&
			req.PaymentInfo == "$buyer" && len(req.ItemIDs) == 2
	})).Return(&accounting.Receipt{CustomerID: 42, Total: 55}, nil)

	result, err := svc.Close(staffActor, 111, "$buyer")
	assert.NoError(t, err)
	assert.Equal(t, "closed-buyer-0007", result.ChannelName)
	assert.Equal(t, int64(42), result.HideFromID)
	assert.NotNil(t, result.Receipt)
	assert.Empty(t, result.Ticket.ItemIDs)
	acct.AssertNumberOfCalls(t, "LogPurchase", 1)
	db.AssertCalled(t, "ClearPayload", int64(111))
}

// statefulTicketDB holds a single ticket in memory so open/payload
// transitions carry across calls, the way the real store behaves.
type statefulTicketDB struct {
	ticket models.Ticket
}

func (f *statefulTicketDB) GetTicketByChannel(channelID int64) (*models.Ticket, error) {
	if f.ticket.ChannelID != channelID {
		return nil, database.ErrTicketNotFound
	}
	ticket := f.ticket
	return &ticket, nil
}

func (f *statefulTicketDB) FindOpenTicket(userID int64, category string) (*models.Ticket, error) {
	return nil, database.ErrTicketNotFound
}

func (f *statefulTicketDB) InsertTicket(ticket models.Ticket) error {
	f.ticket = ticket
	return nil
}

func (f *statefulTicketDB) SetOpen(channelID int64, open bool) error {
	f.ticket.Open = open
	return nil
}

func (f *statefulTicketDB) ClearPayload(channelID int64) error {
	f.ticket.PaymentMethod = ""
	f.ticket.ItemIDs = nil
	return nil
}

func (f *statefulTicketDB) DeleteTicket(channelID int64) error {
	return nil
}

func (f *statefulTicketDB) CountTickets() (int, error) {
	return 1, nil
}

func (f *statefulTicketDB) ListTickets(openOnly bool) ([]models.Ticket, error) {
	return []models.Ticket{f.ticket}, nil
}

func TestCloseReopenCloseLogsOnce(t *testing.T) {
	db := &statefulTicketDB{ticket: models.Ticket{
		ID:            "x",
		ChannelID:     111,
		UserID:        42,
		Username:      "buyerperson",
		Category:      models.CategoryPurchase,
		Open:          true,
		Number:        7,
		PaymentMethod: "Cash App",
		ItemIDs:       []string{"a", "b"},
		Subtotal:      60,
		Total:         55,
	}}
	acct := new(MockPurchaseLogger)
	acct.On("LogPurchase", mock.Anything, mock.Anything).Return(&accounting.Receipt{CustomerID: 42, Total: 55}, nil)
	svc := tickets.NewTicketService(db, new(MockGuard), nil, acct, new(MockStockCatalog), nil, testRoles)

	first, err := svc.Close(staffActor, 111, "$buyer")
	assert.NoError(t, err)
	assert.NotNil(t, first.Receipt)

	_, err = svc.Reopen(staffActor, 111)
	assert.NoError(t, err)

	second, err := svc.Close(staffActor, 111, "$buyer")
	assert.NoError(t, err)
	assert.Nil(t, second.Receipt)

	// The payload was consumed on the first close; one ledger commit
	// total, no matter how many reopen cycles follow.
	acct.AssertNumberOfCalls(t, "LogPurchase", 1)
}

func TestCloseAlreadyClosed(t *testing.T) {
	db := new(MockDBLayer)
	transcript := new(MockTranscript)
	acct := new(MockPurchaseLogger)
	svc := newService(db, new(MockGuard), transcript, acct, new(MockStockCatalog))

	closed := &models.Ticket{ID: "x", ChannelID: 111, UserID: 42, Category: models.CategoryPurchase, Open: false}
	db.On("GetTicketByChannel", int64(111)).Return(closed, nil)

	_, err := svc.Close(staffActor, 111, "")
	assert.True(t, errors.Is(err, database.ErrTicketNotFound))

	// A second close must have no side effects at all
	db.AssertNotCalled(t, "SetOpen", mock.Anything, mock.Anything)
	transcript.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	acct.AssertNotCalled(t, "LogPurchase", mock.Anything, mock.Anything)
}

func TestClosePermissionDenied(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockGuard), new(MockTranscript), new(MockPurchaseLogger), new(MockStockCatalog))

	_, err := svc.Close(buyerActor, 111, "")
	assert.True(t, errors.Is(err, database.ErrPermissionDenied))
	db.AssertNotCalled(t, "GetTicketByChannel", mock.Anything)
}

func TestReopen(t *testing.T) {
	db := new(MockDBLayer)
	acct := new(MockPurchaseLogger)
	svc := newService(db, new(MockGuard), new(MockTranscript), acct, new(MockStockCatalog))

	closed := &models.Ticket{ID: "x", ChannelID: 111, UserID: 42, Username: "buyerperson", Category: models.CategorySupport, Open: false, Number: 3}
	db.On("GetTicketByChannel", int64(111)).Return(closed, nil)
	db.On("SetOpen", int64(111), true).Return(nil)

	result, err := svc.Reopen(staffActor, 111)
	assert.NoError(t, err)
	assert.Equal(t, "ticket-buyer-0003", result.ChannelName)
	assert.True(t, result.Ticket.Open)

	// Reopening never touches the ledger
	acct.AssertNotCalled(t, "LogPurchase", mock.Anything, mock.Anything)
}

func TestReopenAlreadyOpen(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockGuard), new(MockTranscript), new(MockPurchaseLogger), new(MockStockCatalog))

	open := &models.Ticket{ID: "x", ChannelID: 111, Open: true}
	db.On("GetTicketByChannel", int64(111)).Return(open, nil)

	_, err := svc.Reopen(staffActor, 111)
	assert.True(t, errors.Is(err, database.ErrTicketNotFound))
	db.AssertNotCalled(t, "SetOpen", mock.Anything, mock.Anything)
}

func TestDeleteTicket(t *testing.T) {
	db := new(MockDBLayer)
	transcript := new(MockTranscript)
	svc := newService(db, new(MockGuard), transcript, new(MockPurchaseLogger), new(MockStockCatalog))

	ticket := &models.Ticket{ID: "x", ChannelID: 111, Category: models.CategorySupport, Open: false}
	db.On("GetTicketByChannel", int64(111)).Return(ticket, nil)
	db.On("DeleteTicket", int64(111)).Return(nil)
	transcript.On("Save", int64(111), models.CategorySupport).Return()
	transcript.On("ViewURL", int64(111)).Return("http://t/view?channel_id=111")
	transcript.On("DownloadURL", int64(111)).Return("http://t/download?channel_id=111")

	result, err := svc.Delete(staffActor, 111)
	assert.NoError(t, err)
	assert.Equal(t, models.CategorySupport, result.Category)
	assert.Equal(t, "http://t/view?channel_id=111", result.ViewURL)
	db.AssertExpectations(t)
}

func TestDeleteUnknownTicket(t *testing.T) {
	db := new(MockDBLayer)
	transcript := new(MockTranscript)
	svc := newService(db, new(MockGuard), transcript, new(MockPurchaseLogger), new(MockStockCatalog))

	db.On("GetTicketByChannel", int64(999)).Return(nil, database.ErrTicketNotFound)

	_, err := svc.Delete(staffActor, 999)
	assert.True(t, errors.Is(err, database.ErrTicketNotFound))

	// No archive, no record removal for an unknown channel
	transcript.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	db.AssertNotCalled(t, "DeleteTicket", mock.Anything)
}

func TestRename(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockGuard), new(MockTranscript), new(MockPurchaseLogger), new(MockStockCatalog))

	ticket := &models.Ticket{ID: "x", ChannelID: 111, Open: true}
	db.On("GetTicketByChannel", int64(111)).Return(ticket, nil)

	result, err := svc.Rename(staffActor, 111, "vip-deal")
	assert.NoError(t, err)
	assert.Equal(t, "vip-deal", result.ChannelName)

	_, err = svc.Rename(staffActor, 111, "")
	assert.Error(t, err)

	_, err = svc.Rename(buyerActor, 111, "nope")
	assert.True(t, errors.Is(err, database.ErrPermissionDenied))
}

func TestAddAndRemoveUser(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, new(MockGuard), new(MockTranscript), new(MockPurchaseLogger), new(MockStockCatalog))

	ticket := &models.Ticket{ID: "x", ChannelID: 111, Open: true}
	db.On("GetTicketByChannel", int64(111)).Return(ticket, nil)

	added, err := svc.AddUser(staffActor, 111, 77)
	assert.NoError(t, err)
	assert.True(t, added.Grant)
	assert.Equal(t, int64(77), added.UserID)

	removed, err := svc.RemoveUser(staffActor, 111, 77)
	assert.NoError(t, err)
	assert.False(t, removed.Grant)
}
