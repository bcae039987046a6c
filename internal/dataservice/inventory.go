package dataservice

import (
	"context"
	"fmt"
)

// ItemStack is one entry in a character's inventory or equipped gear.
type ItemStack struct {
	ItemID     int64
	OwnerID    int64
	TemplateID int32
	Count      int32
	Enchant    int32
	Equipped   bool
	Slot       int32
}

// InventoryData is DataService's entry point into the items table, backing
// the InventoryData RPC surface.
type InventoryData struct {
	db *DB
}

// NewInventoryData constructs an InventoryData repository.
func NewInventoryData(db *DB) *InventoryData {
	return &InventoryData{db: db}
}

const itemColumns = `item_id, owner_id, template_id, count, enchant, equipped, slot`

func scanItem(row interface{ Scan(...any) error }) (ItemStack, error) {
	var it ItemStack
	err := row.Scan(&it.ItemID, &it.OwnerID, &it.TemplateID, &it.Count, &it.Enchant, &it.Equipped, &it.Slot)
	return it, err
}

// GetInventory returns every unequipped item a character owns.
func (i *InventoryData) GetInventory(ctx context.Context, ownerID int64) ([]ItemStack, error) {
	return i.query(ctx, ownerID, false)
}

// GetEquipment returns every item a character currently has equipped.
func (i *InventoryData) GetEquipment(ctx context.Context, ownerID int64) ([]ItemStack, error) {
	return i.query(ctx, ownerID, true)
}

func (i *InventoryData) query(ctx context.Context, ownerID int64, equipped bool) ([]ItemStack, error) {
	rows, err := i.db.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner_id = $1 AND equipped = $2 ORDER BY item_id`,
		ownerID, equipped)
	if err != nil {
		return nil, fmt.Errorf("querying items for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	items := make([]ItemStack, 0, 32)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem inserts a new stack into ownerID's inventory.
func (i *InventoryData) AddItem(ctx context.Context, ownerID int64, templateID, count int32) (ItemStack, error) {
	row := i.db.pool.QueryRow(ctx,
		`INSERT INTO items (owner_id, template_id, count) VALUES ($1, $2, $3)
		 RETURNING `+itemColumns,
		ownerID, templateID, count)
	it, err := scanItem(row)
	if err != nil {
		return ItemStack{}, fmt.Errorf("adding item template %d for owner %d: %w", templateID, ownerID, err)
	}
	return it, nil
}

// RemoveItem deletes an item stack outright.
func (i *InventoryData) RemoveItem(ctx context.Context, itemID int64) error {
	if _, err := i.db.pool.Exec(ctx, `DELETE FROM items WHERE item_id = $1`, itemID); err != nil {
		return fmt.Errorf("removing item %d: %w", itemID, err)
	}
	return nil
}

// MoveItem reassigns an item to a new inventory slot.
func (i *InventoryData) MoveItem(ctx context.Context, itemID int64, slot int32) error {
	if _, err := i.db.pool.Exec(ctx, `UPDATE items SET slot = $2 WHERE item_id = $1`, itemID, slot); err != nil {
		return fmt.Errorf("moving item %d to slot %d: %w", itemID, slot, err)
	}
	return nil
}

// EquipItem marks an item stack as equipped.
func (i *InventoryData) EquipItem(ctx context.Context, itemID int64) error {
	return i.setEquipped(ctx, itemID, true)
}

// UnequipItem marks an item stack as no longer equipped.
func (i *InventoryData) UnequipItem(ctx context.Context, itemID int64) error {
	return i.setEquipped(ctx, itemID, false)
}

func (i *InventoryData) setEquipped(ctx context.Context, itemID int64, equipped bool) error {
	if _, err := i.db.pool.Exec(ctx, `UPDATE items SET equipped = $2 WHERE item_id = $1`, itemID, equipped); err != nil {
		return fmt.Errorf("setting equipped=%v on item %d: %w", equipped, itemID, err)
	}
	return nil
}
