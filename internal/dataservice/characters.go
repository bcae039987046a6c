package dataservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/udisondev/la2go/internal/model"
)

// CharacterData is DataService's sole entry point into the characters
// table.
type CharacterData struct {
	db *DB
}

// NewCharacterData constructs a CharacterData repository.
func NewCharacterData(db *DB) *CharacterData {
	return &CharacterData{db: db}
}

const characterColumns = `character_id, account_id, name, class, level, experience,
	max_hp, current_hp, attack, defense, dex, gold, zone_id, x, y, z, created_at, updated_at`

func scanCharacter(row pgx.Row) (model.CharacterRecord, error) {
	var rec model.CharacterRecord
	err := row.Scan(
		&rec.CharacterID, &rec.AccountID, &rec.Name, &rec.Class, &rec.Level, &rec.Experience,
		&rec.MaxHP, &rec.CurrentHP, &rec.Attack, &rec.Defense, &rec.Dex, &rec.Gold,
		&rec.ZoneID, &rec.X, &rec.Y, &rec.Z, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}

// GetByAccount returns every character belonging to accountID, ordered by
// creation time.
func (c *CharacterData) GetByAccount(ctx context.Context, accountID int64) ([]model.CharacterRecord, error) {
	rows, err := c.db.pool.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE account_id = $1 ORDER BY created_at`, accountID)
	if err != nil {
		return nil, fmt.Errorf("listing characters for account %d: %w", accountID, err)
	}
	defer rows.Close()

	records := make([]model.CharacterRecord, 0, 4)
	for rows.Next() {
		rec, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating characters for account %d: %w", accountID, err)
	}
	return records, nil
}

// Get loads a single character by id, or ErrNotFound.
func (c *CharacterData) Get(ctx context.Context, characterID int64) (model.CharacterRecord, error) {
	row := c.db.pool.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE character_id = $1`, characterID)
	rec, err := scanCharacter(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.CharacterRecord{}, ErrNotFound
	}
	if err != nil {
		return model.CharacterRecord{}, fmt.Errorf("loading character %d: %w", characterID, err)
	}
	return rec, nil
}

// Create inserts a freshly-created character using the starting stats
// baked into rec (Attack/Defense/MaxHP/Dex are computed by AccountService
// at creation time, not here).
func (c *CharacterData) Create(ctx context.Context, rec model.CharacterRecord) (model.CharacterRecord, error) {
	row := c.db.pool.QueryRow(ctx,
		`INSERT INTO characters
			(account_id, name, class, level, experience, max_hp, current_hp, attack, defense, dex, gold, zone_id, x, y, z)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING `+characterColumns,
		rec.AccountID, rec.Name, rec.Class, rec.Level, rec.Experience,
		rec.MaxHP, rec.CurrentHP, rec.Attack, rec.Defense, rec.Dex, rec.Gold,
		rec.ZoneID, rec.X, rec.Y, rec.Z,
	)
	created, err := scanCharacter(row)
	if err != nil {
		if isUniqueViolation(err) {
			return model.CharacterRecord{}, fmt.Errorf("character name %q: %w", rec.Name, ErrDuplicateName)
		}
		return model.CharacterRecord{}, fmt.Errorf("creating character %q: %w", rec.Name, err)
	}
	return created, nil
}

// Save writes back the mutable fields of a character snapshot: position,
// vitals, level/experience, and gold. Called by DataService's own write-back
// sweep and, over RPC, by WorldService's disconnect/shutdown flush.
func (c *CharacterData) Save(ctx context.Context, rec model.CharacterRecord) error {
	_, err := c.db.pool.Exec(ctx,
		`UPDATE characters SET
			level = $2, experience = $3, max_hp = $4, current_hp = $5,
			attack = $6, defense = $7, dex = $8, gold = $9,
			zone_id = $10, x = $11, y = $12, z = $13, updated_at = now()
		 WHERE character_id = $1`,
		rec.CharacterID, rec.Level, rec.Experience, rec.MaxHP, rec.CurrentHP,
		rec.Attack, rec.Defense, rec.Dex, rec.Gold, rec.ZoneID, rec.X, rec.Y, rec.Z,
	)
	if err != nil {
		return fmt.Errorf("saving character %d: %w", rec.CharacterID, err)
	}
	return nil
}

// Delete permanently removes a character and its owned items/skills
// (cascading foreign keys).
func (c *CharacterData) Delete(ctx context.Context, characterID int64) error {
	tag, err := c.db.pool.Exec(ctx, `DELETE FROM characters WHERE character_id = $1`, characterID)
	if err != nil {
		return fmt.Errorf("deleting character %d: %w", characterID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CharacterSkill is one learned skill and its current level.
type CharacterSkill struct {
	SkillID    int32
	SkillLevel int32
}

// GetSkills returns every skill a character has learned.
func (c *CharacterData) GetSkills(ctx context.Context, characterID int64) ([]CharacterSkill, error) {
	rows, err := c.db.pool.Query(ctx,
		`SELECT skill_id, skill_level FROM character_skills WHERE character_id = $1 ORDER BY skill_id`, characterID)
	if err != nil {
		return nil, fmt.Errorf("querying skills for character %d: %w", characterID, err)
	}
	defer rows.Close()

	skills := make([]CharacterSkill, 0, 8)
	for rows.Next() {
		var s CharacterSkill
		if err := rows.Scan(&s.SkillID, &s.SkillLevel); err != nil {
			return nil, fmt.Errorf("scanning character skill row: %w", err)
		}
		skills = append(skills, s)
	}
	return skills, rows.Err()
}
