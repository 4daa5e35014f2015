package stock

import (
	"fmt"
	"sort"
	"strings"

	"shop-bot/internal/config"
	"shop-bot/internal/database"
	"shop-bot/internal/models"

	"github.com/google/uuid"
)

type DBLayer interface {
	GetItemByID(id string) (*models.StockItem, error)
	GetItemByName(name string) (*models.StockItem, error)
	FindInSet(set, name string) (*models.StockItem, error)
	DecrementStock(id string, n int) error
	IncrementStock(id string, n int) error
	ListItems() ([]models.StockItem, error)
	CreateItem(item models.StockItem) error
	UpdateItem(item models.StockItem) error
	RemoveItem(id string) error
	SetAllQuantities(n int) error
}

type KafkaPublisher interface {
	PublishStockUpdated(action string, item models.StockItem) error
}

type StockService struct {
	DB    DBLayer
	Kafka KafkaPublisher
	Roles config.RolesConfig
}

func NewStockService(db DBLayer, kafka KafkaPublisher, roles config.RolesConfig) *StockService {
	return &StockService{DB: db, Kafka: kafka, Roles: roles}
}

// ItemUpdate reports an item before and after a staff edit so the
// front-end can announce price changes.
type ItemUpdate struct {
	Old models.StockItem
	New models.StockItem
}

func (u ItemUpdate) PriceChanged() bool {
	return u.Old.Price != u.New.Price
}

// ItemPatch holds the optional fields of an update command; nil
// fields are left untouched.
type ItemPatch struct {
	Set      *string
	Name     *string
	Price    *int64
	Quantity *int
}

func (p ItemPatch) Empty() bool {
	return p.Set == nil && p.Name == nil && p.Price == nil && p.Quantity == nil
}

func (s *StockService) GetItem(id string) (*models.StockItem, error) {
	item, err := s.DB.GetItemByID(id)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}
	return item, nil
}

func (s *StockService) GetItemByName(name string) (*models.StockItem, error) {
	item, err := s.DB.GetItemByName(name)
	if err != nil {
		return nil, fmt.Errorf("item %q: %w", name, err)
	}
	return item, nil
}

// AddItem creates a new stock item. Owner-only; duplicate (set, name)
// pairs are rejected.
func (s *StockService) AddItem(actor models.Actor, set, name string, price int64, quantity int) (*models.StockItem, error) {
	if !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}

	if _, err := s.DB.FindInSet(set, name); err == nil {
		return nil, database.ErrItemExists
	}

	item := models.StockItem{
		ID:       uuid.NewString(),
		Set:      set,
		Name:     name,
		Price:    price,
		Quantity: quantity,
	}

	if err := s.DB.CreateItem(item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishStockUpdated("added", item); err != nil {
			fmt.Printf("Kafka publish error (stock added): %v\n", err)
		}
	}

	return &item, nil
}

// UpdateItem applies an owner edit to an existing item.
func (s *StockService) UpdateItem(actor models.Actor, id string, patch ItemPatch) (*ItemUpdate, error) {
	if !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}

	if patch.Empty() {
		return nil, fmt.Errorf("at least one attribute must be updated")
	}

	item, err := s.DB.GetItemByID(id)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}

	updated := *item
	if patch.Set != nil {
		updated.Set = *patch.Set
	}
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	if patch.Quantity != nil {
		updated.Quantity = *patch.Quantity
	}

	if err := s.DB.UpdateItem(updated); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishStockUpdated("updated", updated); err != nil {
			fmt.Printf("Kafka publish error (stock updated): %v\n", err)
		}
	}

	return &ItemUpdate{Old: *item, New: updated}, nil
}

// RemoveItem deletes an item from the stock list. Owner-only.
func (s *StockService) RemoveItem(actor models.Actor, id string) (*models.StockItem, error) {
	if !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}

	item, err := s.DB.GetItemByID(id)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}

	if err := s.DB.RemoveItem(id); err != nil {
		return nil, fmt.Errorf("failed to remove item: %w", err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishStockUpdated("removed", *item); err != nil {
			fmt.Printf("Kafka publish error (stock removed): %v\n", err)
		}
	}

	return item, nil
}

// Restock adds quantity to an existing item. Staff-only.
func (s *StockService) Restock(actor models.Actor, id string, quantity int) (*models.StockItem, error) {
	if !actor.HasAnyRole(s.Roles.Staff) && !actor.HasAnyRole(s.Roles.Owner) {
		return nil, database.ErrPermissionDenied
	}

	if quantity <= 0 {
		return nil, fmt.Errorf("restock quantity must be positive")
	}

	if err := s.DB.IncrementStock(id, quantity); err != nil {
		return nil, fmt.Errorf("failed to restock item %s: %w", id, err)
	}

	item, err := s.DB.GetItemByID(id)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishStockUpdated("restocked", *item); err != nil {
			fmt.Printf("Kafka publish error (stock restocked): %v\n", err)
		}
	}

	return item, nil
}

// FillStock sets every item's quantity to n. Owner-only.
func (s *StockService) FillStock(actor models.Actor, n int) error {
	if !actor.HasAnyRole(s.Roles.Owner) {
		return database.ErrPermissionDenied
	}
	if n < 0 {
		return fmt.Errorf("fill amount cannot be negative")
	}
	return s.DB.SetAllQuantities(n)
}

// ClearStock zeroes every item's quantity. Owner-only.
func (s *StockService) ClearStock(actor models.Actor) error {
	if !actor.HasAnyRole(s.Roles.Owner) {
		return database.ErrPermissionDenied
	}
	return s.DB.SetAllQuantities(0)
}

// Stock returns the grouped shop listing: items grouped by set with
// the set subtotal, items cheapest-first, unlabeled items in an
// "Other" group placed last.
func (s *StockService) Stock() ([]models.StockSet, error) {
	items, err := s.DB.ListItems()
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}

	grouped := make(map[string]*models.StockSet)
	var order []string
	for _, item := range items {
		name := item.Set
		if name == "" {
			name = "Other"
		}
		set, ok := grouped[name]
		if !ok {
			set = &models.StockSet{Name: name}
			grouped[name] = set
			order = append(order, name)
		}
		set.SetPrice += item.Price
		set.Items = append(set.Items, item)
	}

	var sets []models.StockSet
	for _, name := range order {
		set := grouped[name]
		sort.Slice(set.Items, func(i, j int) bool {
			return set.Items[i].Price < set.Items[j].Price
		})
		if name == "Other" {
			continue
		}
		sets = append(sets, *set)
	}
	if other, ok := grouped["Other"]; ok {
		sets = append(sets, *other)
	}

	return sets, nil
}

// Search returns autocomplete entries whose display name contains the
// term, out-of-stock items marked rather than hidden, capped at 25.
func (s *StockService) Search(term string) ([]models.StockEntry, error) {
	items, err := s.DB.ListItems()
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})

	term = strings.ToLower(term)
	var entries []models.StockEntry
	for _, item := range items {
		if !strings.Contains(strings.ToLower(item.DisplayName()), term) {
			continue
		}
		entries = append(entries, models.StockEntry{
			ID:         item.ID,
			Label:      item.DisplayName(),
			Price:      item.Price,
			Quantity:   item.Quantity,
			OutOfStock: !item.InStock(),
		})
		if len(entries) == 25 {
			break
		}
	}

	return entries, nil
}

// AvailableItems returns only in-stock items, for display paths that
// hide exhausted stock (the purchase dropdown).
func (s *StockService) AvailableItems() ([]models.StockItem, error) {
	items, err := s.DB.ListItems()
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}

	var available []models.StockItem
	for _, item := range items {
		if item.InStock() {
			available = append(available, item)
		}
	}
	return available, nil
}
