package tickets

import (
	"context"
	"fmt"

	"shop-bot/internal/accounting"
	"shop-bot/internal/config"
	"shop-bot/internal/database"
	"shop-bot/internal/models"
	"shop-bot/internal/utils"

	"github.com/google/uuid"
)

type DBLayer interface {
	GetTicketByChannel(channelID int64) (*models.Ticket, error)
	FindOpenTicket(userID int64, category string) (*models.Ticket, error)
	InsertTicket(ticket models.Ticket) error
	SetOpen(channelID int64, open bool) error
	ClearPayload(channelID int64) error
	DeleteTicket(channelID int64) error
	CountTickets() (int, error)
	ListTickets(openOnly bool) ([]models.Ticket, error)
}

// CreationGuard serializes the open-ticket check against concurrent
// creations for the same (user, category) pair.
type CreationGuard interface {
	AcquireGuard(userID int64, category, ticketID string) (bool, error)
	ReleaseGuard(userID int64, category, ticketID string) error
}

type TranscriptArchiver interface {
	Save(channelID int64, category string)
	ViewURL(channelID int64) string
	DownloadURL(channelID int64) string
}

type PurchaseLogger interface {
	LogPurchase(actor models.Actor, req accounting.PurchaseRequest) (*accounting.Receipt, error)
}

type StockCatalog interface {
	GetItemByID(id string) (*models.StockItem, error)
}

type KafkaPublisher interface {
	PublishTicketOpened(ticket models.Ticket) error
	PublishTicketClosed(ticket models.Ticket) error
	PublishTicketDeleted(channelID int64, category string) error
}

type TicketService struct {
	DB         DBLayer
	Guard      CreationGuard
	Transcript TranscriptArchiver
	Accounting PurchaseLogger
	Stock      StockCatalog
	Kafka      KafkaPublisher
	Roles      config.RolesConfig
}

func NewTicketService(db DBLayer, guard CreationGuard, transcript TranscriptArchiver, acct PurchaseLogger, stock StockCatalog, kafka KafkaPublisher, roles config.RolesConfig) *TicketService {
	return &TicketService{
		DB:         db,
		Guard:      guard,
		Transcript: transcript,
		Accounting: acct,
		Stock:      stock,
		Kafka:      kafka,
		Roles:      roles,
	}
}

// DuplicateTicketError reports a creation rejected because the user
// already has an open ticket in the category. The existing channel id
// lets the front-end point the user at it.
type DuplicateTicketError struct {
	ExistingChannelID int64
}

func (e *DuplicateTicketError) Error() string {
	return fmt.Sprintf("user already has an open ticket in channel %d", e.ExistingChannelID)
}

func (e *DuplicateTicketError) Unwrap() error { return database.ErrDuplicateTicket }

// PurchasePayload is the item selection captured before a Purchase
// ticket opens. Items are referenced by id; pricing happens here so
// the stored totals reflect prices at selection time.
type PurchasePayload struct {
	Method  string   `json:"method"`
	ItemIDs []string `json:"item_ids"`
}

// CreateResult tells the front-end what to do with the fresh channel.
type CreateResult struct {
	Ticket      models.Ticket `json:"ticket"`
	ChannelName string        `json:"channel_name"`
	Discount    int64         `json:"discount"`
}

// Create opens a ticket for the actor in the given category, bound to
// the channel the front-end just created. A user may hold at most one
// open ticket per category; a second request conflicts and returns
// the existing channel. The ctx bounds the whole creation, including
// the front-end's payment-method wait for Purchase tickets.
func (s *TicketService) Create(ctx context.Context, actor models.Actor, channelID int64, category string, payload *PurchasePayload) (*CreateResult, error) {
	if !models.ValidCategory(category) {
		return nil, fmt.Errorf("invalid ticket category %q", category)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ticket creation abandoned: %w", err)
	}

	ticketID := uuid.NewString()

	acquired, err := s.Guard.AcquireGuard(actor.UserID, category, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire creation guard: %w", err)
	}
	if !acquired {
		// A concurrent creation for the same pair is in flight; treat
		// it like the duplicate it is about to become.
		if existing, err := s.DB.FindOpenTicket(actor.UserID, category); err == nil {
			return nil, &DuplicateTicketError{ExistingChannelID: existing.ChannelID}
		}
		return nil, database.ErrDuplicateTicket
	}
	defer func() {
		if err := s.Guard.ReleaseGuard(actor.UserID, category, ticketID); err != nil {
			fmt.Printf("Guard release error: %v\n", err)
		}
	}()

	if existing, err := s.DB.FindOpenTicket(actor.UserID, category); err == nil {
		return nil, &DuplicateTicketError{ExistingChannelID: existing.ChannelID}
	}

	count, err := s.DB.CountTickets()
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}

	ticket := models.Ticket{
		ID:        ticketID,
		ChannelID: channelID,
		UserID:    actor.UserID,
		Username:  actor.Username,
		Category:  category,
		Open:      true,
		Number:    count + 1,
	}

	var discount int64
	if category == models.CategoryPurchase && payload != nil {
		discount, err = s.priceBasket(&ticket, payload)
		if err != nil {
			return nil, err
		}
	}

	if err := s.DB.InsertTicket(ticket); err != nil {
		return nil, fmt.Errorf("failed to insert ticket: %w", err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketOpened(ticket); err != nil {
			fmt.Printf("Kafka publish error (ticket opened): %v\n", err)
		}
	}

	return &CreateResult{
		Ticket:      ticket,
		ChannelName: utils.TicketChannelName(true, actor.Username, ticket.Number),
		Discount:    discount,
	}, nil
}

// priceBasket resolves the selected items and stamps the purchase
// payload onto the ticket. Unknown ids fail creation outright; the
// selection UI only offers real items.
func (s *TicketService) priceBasket(ticket *models.Ticket, payload *PurchasePayload) (int64, error) {
	var subtotal int64
	for _, id := range payload.ItemIDs {
		item, err := s.Stock.GetItemByID(id)
		if err != nil {
			return 0, fmt.Errorf("failed to price item %s: %w", id, err)
		}
		subtotal += item.Price
	}

	discount := accounting.Discount(subtotal, len(payload.ItemIDs))

	ticket.PaymentMethod = payload.Method
	ticket.ItemIDs = payload.ItemIDs
	ticket.Subtotal = subtotal
	ticket.Total = subtotal - discount
	return discount, nil
}

// CloseResult carries the front-end actions a close implies: rename
// the channel, hide it from the owner, and for a Purchase ticket the
// logged receipt.
type CloseResult struct {
	Ticket      models.Ticket       `json:"ticket"`
	ChannelName string              `json:"channel_name"`
	HideFromID  int64               `json:"hide_from_id"`
	Receipt     *accounting.Receipt `json:"receipt,omitempty"`
}

// Close moves an open ticket to closed. Staff only. Closing an
// already-closed or unknown ticket is NotFound and has no side
// effects. A Purchase ticket's captured payload is committed to the
// ledger here, with the confirmation info staff supplied.
func (s *TicketService) Close(actor models.Actor, channelID int64, confirmInfo string) (*CloseResult, error) {
	if !actor.HasAnyRole(s.Roles.Staff) && !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}

	ticket, err := s.DB.GetTicketByChannel(channelID)
	if err != nil {
		return nil, err
	}
	if !ticket.Open {
		return nil, database.ErrTicketNotFound
	}

	if err := s.DB.SetOpen(channelID, false); err != nil {
		return nil, fmt.Errorf("failed to close ticket %d: %w", channelID, err)
	}
	ticket.Open = false

	if s.Transcript != nil {
		s.Transcript.Save(channelID, ticket.Category)
	}

	result := &CloseResult{
		Ticket:      *ticket,
		ChannelName: utils.TicketChannelName(false, ticket.Username, ticket.Number),
		HideFromID:  ticket.UserID,
	}

	if ticket.Category == models.CategoryPurchase && len(ticket.ItemIDs) > 0 && s.Accounting != nil {
		receipt, err := s.Accounting.LogPurchase(actor, accounting.PurchaseRequest{
			CustomerID:  ticket.UserID,
			Username:    ticket.Username,
			Method:      ticket.PaymentMethod,
			PaymentInfo: confirmInfo,
			ItemIDs:     ticket.ItemIDs,
			Discount:    ticket.Subtotal - ticket.Total,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to log purchase for ticket %d: %w", channelID, err)
		}

		// The commit consumes the payload. A reopen followed by a
		// second close must not hit the ledger again.
		if err := s.DB.ClearPayload(channelID); err != nil {
			return nil, fmt.Errorf("failed to clear payload for ticket %d: %w", channelID, err)
		}
		ticket.PaymentMethod = ""
		ticket.ItemIDs = nil
		result.Ticket = *ticket
		result.Receipt = receipt
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketClosed(*ticket); err != nil {
			fmt.Printf("Kafka publish error (ticket closed): %v\n", err)
		}
	}

	return result, nil
}

// Reopen moves a closed ticket back to open. Staff only. The purchase
// ledger is untouched; a reopened Purchase ticket closing again will
// not re-log (its payload was consumed on the first close).
func (s *TicketService) Reopen(actor models.Actor, channelID int64) (*CloseResult, error) {
	if !actor.HasAnyRole(s.Roles.Staff) && !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}

	ticket, err := s.DB.GetTicketByChannel(channelID)
	if err != nil {
		return nil, err
	}
	if ticket.Open {
		return nil, database.ErrTicketNotFound
	}

	if err := s.DB.SetOpen(channelID, true); err != nil {
		return nil, fmt.Errorf("failed to reopen ticket %d: %w", channelID, err)
	}
	ticket.Open = true

	return &CloseResult{
		Ticket:      *ticket,
		ChannelName: utils.TicketChannelName(true, ticket.Username, ticket.Number),
		HideFromID:  ticket.UserID,
	}, nil
}

// DeleteResult points at the archived transcript; the record itself
// is gone once this returns.
type DeleteResult struct {
	Category    string `json:"category"`
	ViewURL     string `json:"view_url"`
	DownloadURL string `json:"download_url"`
}

// Delete archives the conversation and removes the ticket record.
// Staff only, terminal. Deleting an unknown channel is NotFound and
// triggers no archive.
func (s *TicketService) Delete(actor models.Actor, channelID int64) (*DeleteResult, error) {
	if !actor.HasAnyRole(s.Roles.Staff) && !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}

	ticket, err := s.DB.GetTicketByChannel(channelID)
	if err != nil {
		return nil, err
	}

	result := &DeleteResult{Category: ticket.Category}
	if s.Transcript != nil {
		s.Transcript.Save(channelID, ticket.Category)
		result.ViewURL = s.Transcript.ViewURL(channelID)
		result.DownloadURL = s.Transcript.DownloadURL(channelID)
	}

	if err := s.DB.DeleteTicket(channelID); err != nil {
		return nil, fmt.Errorf("failed to delete ticket %d: %w", channelID, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketDeleted(channelID, ticket.Category); err != nil {
			fmt.Printf("Kafka publish error (ticket deleted): %v\n", err)
		}
	}

	return result, nil
}

// MemberChange is the front-end action for rename/add-user/remove-user
// commands. These never touch ticket state.
type MemberChange struct {
	ChannelID   int64  `json:"channel_id"`
	ChannelName string `json:"channel_name,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
	Grant       bool   `json:"grant,omitempty"`
}

// Rename validates a staff rename of the ticket channel.
func (s *TicketService) Rename(actor models.Actor, channelID int64, name string) (*MemberChange, error) {
	if !actor.HasAnyRole(s.Roles.Staff) && !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}
	if _, err := s.DB.GetTicketByChannel(channelID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("channel name must not be empty")
	}
	return &MemberChange{ChannelID: channelID, ChannelName: name}, nil
}

// AddUser grants another user visibility into the ticket channel.
func (s *TicketService) AddUser(actor models.Actor, channelID, userID int64) (*MemberChange, error) {
	return s.memberChange(actor, channelID, userID, true)
}

// RemoveUser revokes a user's visibility into the ticket channel.
func (s *TicketService) RemoveUser(actor models.Actor, channelID, userID int64) (*MemberChange, error) {
	return s.memberChange(actor, channelID, userID, false)
}

func (s *TicketService) memberChange(actor models.Actor, channelID, userID int64, grant bool) (*MemberChange, error) {
	if !actor.HasAnyRole(s.Roles.Staff) && !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}
	if _, err := s.DB.GetTicketByChannel(channelID); err != nil {
		return nil, err
	}
	return &MemberChange{ChannelID: channelID, UserID: userID, Grant: grant}, nil
}

// Get returns the ticket bound to a channel.
func (s *TicketService) Get(channelID int64) (*models.Ticket, error) {
	return s.DB.GetTicketByChannel(channelID)
}

// List returns all tickets, or only the open ones.
func (s *TicketService) List(openOnly bool) ([]models.Ticket, error) {
	tickets, err := s.DB.ListTickets(openOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}
