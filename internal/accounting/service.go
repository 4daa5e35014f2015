package accounting

import (
	"fmt"
	"strings"

	"shop-bot/internal/config"
	"shop-bot/internal/database"
	"shop-bot/internal/models"
	"shop-bot/internal/payment"
	"shop-bot/internal/utils"

	"github.com/google/uuid"
)

type LogStore interface {
	InsertLog(log models.PurchaseLog) error
	SummaryByUser(userID int64) (*models.CustomerSummary, error)
	LogsByUser(userID int64) ([]models.PurchaseLog, error)
}

type StockLedger interface {
	GetItemByID(id string) (*models.StockItem, error)
	DecrementStock(id string, n int) error
}

type RoleAssigner interface {
	GrantRole(userID, roleID int64, reason string) error
}

type SheetAppender interface {
	AppendRow(username string, userID int64, item string, price int64) error
}

type KafkaPublisher interface {
	PublishPurchaseLogged(receipt Receipt) error
}

type AccountingService struct {
	Logs   LogStore
	Stock  StockLedger
	Gateway RoleAssigner
	Sheets SheetAppender
	Kafka  KafkaPublisher
	Roles  config.RolesConfig
}

func NewAccountingService(logs LogStore, stock StockLedger, gateway RoleAssigner, sheets SheetAppender, kafka KafkaPublisher, roles config.RolesConfig) *AccountingService {
	return &AccountingService{
		Logs:   logs,
		Stock:  stock,
		Gateway: gateway,
		Sheets: sheets,
		Kafka:  kafka,
		Roles:  roles,
	}
}

// PurchaseRequest carries one confirmed purchase into the logger.
// ItemIDs reference stock; Discount was computed at selection time.
type PurchaseRequest struct {
	CustomerID  int64
	Username    string
	Method      string
	PaymentInfo string
	ItemIDs     []string
	Discount    int64
}

// Receipt is the structured result of a logged purchase. The
// front-end renders it; nothing here is chat markup.
type Receipt struct {
	CustomerID   int64    `json:"customer_id"`
	Username     string   `json:"username"`
	Method       string   `json:"method"`
	ItemNames    []string `json:"item_names"`
	InvalidItems []string `json:"invalid_items,omitempty"`
	OutOfStock   []string `json:"out_of_stock,omitempty"`
	Unrecorded   []string `json:"unrecorded,omitempty"`
	Subtotal     int64    `json:"subtotal"`
	Discount     int64    `json:"discount"`
	Total        int64    `json:"total"`
	TotalSpent   int64    `json:"total_spent"`
	Transactions int      `json:"transactions"`
	Tier         int      `json:"tier"`
	Bookkept     bool     `json:"bookkept"`
	Message      string   `json:"message"`
}

// LogPurchase commits a confirmed purchase: per item it atomically
// decrements stock and appends one immutable log row with the item's
// name/price snapshot, then recomputes the customer's lifetime spend
// from history, derives their tier and grants roles best-effort.
// A failure on one item skips that item and keeps going; the failed
// names are surfaced on the receipt instead of aborting the batch.
func (s *AccountingService) LogPurchase(actor models.Actor, req PurchaseRequest) (*Receipt, error) {
	if !actor.HasAnyRole(s.Roles.Staff) && !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}

	if !payment.ValidMethod(req.Method) {
		return nil, fmt.Errorf("invalid payment method %q", req.Method)
	}

	receipt := &Receipt{
		CustomerID: req.CustomerID,
		Username:   req.Username,
		Method:     req.Method,
		Discount:   req.Discount,
	}

	// Resolve the basket first so the subtotal reflects only items
	// that still exist; unknown ids are reported, not fatal.
	var items []models.StockItem
	for _, id := range req.ItemIDs {
		item, err := s.Stock.GetItemByID(id)
		if err != nil {
			receipt.InvalidItems = append(receipt.InvalidItems, id)
			continue
		}
		items = append(items, *item)
		receipt.Subtotal += item.Price
	}

	if len(items) == 0 {
		// Zero-amount no-op purchase: nothing decremented, nothing
		// logged, empty receipt returned.
		receipt.Discount = 0
		receipt.Message = s.formatMessage(receipt)
		return receipt, nil
	}

	// Decrement every unit first so the totals only ever reflect stock
	// that actually committed.
	var committed []models.StockItem
	for _, item := range items {
		if err := s.Stock.DecrementStock(item.ID, 1); err != nil {
			receipt.OutOfStock = append(receipt.OutOfStock, item.DisplayName())
			receipt.Subtotal -= item.Price
			continue
		}
		committed = append(committed, item)
	}

	if len(committed) == 0 {
		receipt.Discount = 0
		receipt.Message = s.formatMessage(receipt)
		return receipt, nil
	}

	// A skipped item invalidates the selection-time discount, so it is
	// rederived from what actually sold.
	if len(committed) < len(items) {
		receipt.Discount = Discount(receipt.Subtotal, len(committed))
	}
	receipt.Total = receipt.Subtotal - receipt.Discount
	if receipt.Total < 0 {
		receipt.Total = 0
	}

	itemizedDiscount := receipt.Discount / int64(len(committed))

	bookkept := true
	for _, item := range committed {
		log := models.PurchaseLog{
			ID:        uuid.NewString(),
			UserID:    req.CustomerID,
			Username:  req.Username,
			ItemSet:   item.Set,
			ItemName:  item.Name,
			ItemPrice: item.Price,
		}
		if err := payment.ApplyInfo(&log, req.Method, req.PaymentInfo); err != nil {
			return nil, err
		}

		if err := s.Logs.InsertLog(log); err != nil {
			// The unit already left stock; surface the missing row
			// instead of abandoning the rest of the batch.
			fmt.Printf("Log write error (%s): %v\n", item.DisplayName(), err)
			receipt.Unrecorded = append(receipt.Unrecorded, item.DisplayName())
			continue
		}
		receipt.ItemNames = append(receipt.ItemNames, item.DisplayName())

		// Bookkeeping is best-effort; a webhook failure only flips
		// the receipt flag.
		if s.Sheets != nil {
			if err := s.Sheets.AppendRow(req.Username, req.CustomerID, item.DisplayName(), item.Price-itemizedDiscount); err != nil {
				bookkept = false
			}
		}
	}
	receipt.Bookkept = bookkept && s.Sheets != nil

	summary, err := s.Logs.SummaryByUser(req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute customer summary: %w", err)
	}
	receipt.TotalSpent = summary.TotalSpent
	receipt.Transactions = summary.Transactions

	tier := Tier(summary.TotalSpent)
	receipt.Tier = int(tier)
	s.grantRoles(req.CustomerID, tier, summary.TotalSpent)

	receipt.Message = s.formatMessage(receipt)

	if s.Kafka != nil {
		if err := s.Kafka.PublishPurchaseLogged(*receipt); err != nil {
			fmt.Printf("Kafka publish error (purchase logged): %v\n", err)
		}
	}

	return receipt, nil
}

// grantRoles assigns the customer role and, where a threshold is met,
// the single highest tier role. Gateway failures never affect the
// committed ledger.
func (s *AccountingService) grantRoles(customerID int64, tier TierLevel, totalSpent int64) {
	if s.Gateway == nil {
		return
	}

	if s.Roles.Customer != 0 {
		if err := s.Gateway.GrantRole(customerID, s.Roles.Customer, "Completed a purchase"); err != nil {
			fmt.Printf("Role grant error (customer): %v\n", err)
		}
	}

	if tier == TierNone {
		return
	}
	roleID, ok := s.Roles.Tiers[int(tier)]
	if !ok || roleID == 0 {
		return
	}
	reason := fmt.Sprintf("Spent %s", utils.FormatPrice(totalSpent))
	if err := s.Gateway.GrantRole(customerID, roleID, reason); err != nil {
		fmt.Printf("Role grant error (%s): %v\n", tier, err)
	}
}

// Summary exposes the derived customer spend summary for display
// ("Transaction #N").
func (s *AccountingService) Summary(userID int64) (*models.CustomerSummary, error) {
	summary, err := s.Logs.SummaryByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute summary for %d: %w", userID, err)
	}
	return summary, nil
}

// History returns a customer's full purchase log.
func (s *AccountingService) History(userID int64) ([]models.PurchaseLog, error) {
	logs, err := s.Logs.LogsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs for %d: %w", userID, err)
	}
	return logs, nil
}

func (s *AccountingService) formatMessage(r *Receipt) string {
	if len(r.ItemNames) == 0 {
		return fmt.Sprintf("%s purchased nothing for %s.", r.Username, utils.FormatPrice(0))
	}

	discountTag := ""
	if r.Discount > 0 {
		discountTag = fmt.Sprintf(" (-%s)", utils.FormatPrice(r.Discount))
	}

	return fmt.Sprintf("%s purchased %s for %s%s.",
		r.Username, strings.Join(r.ItemNames, ", "), utils.FormatPrice(r.Total), discountTag)
}
