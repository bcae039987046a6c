package dataservice

import (
	"fmt"
	"net/rpc"
	"strings"
	"time"

	"github.com/udisondev/la2go/internal/model"
)

// Client is a thin net/rpc wrapper every gateway service dials DataService
// through. It exists because LoginService, AccountService, and WorldService
// all need the same narrow RPC surface and none of them own the
// repositories themselves.
type Client struct {
	rpc *rpc.Client
}

// Dial connects to a DataService RPC listener.
func Dial(addr string) (*Client, error) {
	c, err := rpc.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing dataservice at %s: %w", addr, err)
	}
	return &Client{rpc: c}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// wrapRPCErr distinguishes the sentinel errors a repository can return.
// net/rpc only propagates errors as plain strings across the wire, losing
// the errors.Is chain, so callers match on the sentinel's literal message
// instead (see DESIGN.md).
func wrapRPCErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case strings.Contains(err.Error(), ErrNotFound.Error()):
		return ErrNotFound
	case strings.Contains(err.Error(), ErrDuplicateUsername.Error()):
		return ErrDuplicateUsername
	case strings.Contains(err.Error(), ErrDuplicateName.Error()):
		return ErrDuplicateName
	default:
		return err
	}
}

// GetAccountByUsername looks up an account by login name.
func (c *Client) GetAccountByUsername(username string) (model.Account, error) {
	var reply AccountReply
	err := c.rpc.Call("AccountData.GetByUsername", GetByUsernameArgs{Username: username}, &reply)
	if err != nil {
		return model.Account{}, wrapRPCErr(err)
	}
	return reply.Account, nil
}

// GetAccountByID looks up an account by id.
func (c *Client) GetAccountByID(accountID int64) (model.Account, error) {
	var reply AccountReply
	err := c.rpc.Call("AccountData.GetByID", GetByIDArgs{AccountID: accountID}, &reply)
	if err != nil {
		return model.Account{}, wrapRPCErr(err)
	}
	return reply.Account, nil
}

// CreateAccount registers a new account with an already-hashed password.
func (c *Client) CreateAccount(username, email, passwordHash string) (model.Account, error) {
	var reply AccountReply
	err := c.rpc.Call("AccountData.Create", CreateAccountArgs{
		Username: username, Email: email, PasswordHash: passwordHash,
	}, &reply)
	if err != nil {
		return model.Account{}, wrapRPCErr(err)
	}
	return reply.Account, nil
}

// UpdateLastLogin stamps an account's last-login time with at.
func (c *Client) UpdateLastLogin(accountID int64, at time.Time) error {
	return wrapRPCErr(c.rpc.Call("AccountData.UpdateLastLogin", UpdateLastLoginArgs{
		AccountID: accountID, UnixMs: at.UnixMilli(),
	}, &struct{}{}))
}

// CheckBan reports whether an account is currently banned.
func (c *Client) CheckBan(accountID int64) (bool, error) {
	var reply CheckBanReply
	err := c.rpc.Call("AccountData.CheckBan", CheckBanArgs{AccountID: accountID}, &reply)
	if err != nil {
		return false, wrapRPCErr(err)
	}
	return reply.Banned, nil
}

// GetCharactersByAccount lists every character belonging to an account.
func (c *Client) GetCharactersByAccount(accountID int64) ([]model.CharacterRecord, error) {
	var reply CharacterListReply
	err := c.rpc.Call("CharacterData.GetByAccount", GetByAccountArgs{AccountID: accountID}, &reply)
	if err != nil {
		return nil, wrapRPCErr(err)
	}
	return reply.Characters, nil
}

// GetCharacter loads a single character by id.
func (c *Client) GetCharacter(characterID int64) (model.CharacterRecord, error) {
	var reply CharacterReply
	err := c.rpc.Call("CharacterData.Get", GetCharacterArgs{CharacterID: characterID}, &reply)
	if err != nil {
		return model.CharacterRecord{}, wrapRPCErr(err)
	}
	return reply.Character, nil
}

// CreateCharacter inserts a freshly-created character.
func (c *Client) CreateCharacter(rec model.CharacterRecord) (model.CharacterRecord, error) {
	var reply CharacterReply
	err := c.rpc.Call("CharacterData.Create", CreateCharacterArgs{Record: rec}, &reply)
	if err != nil {
		return model.CharacterRecord{}, wrapRPCErr(err)
	}
	return reply.Character, nil
}

// SaveCharacter upserts a character's mutable fields.
func (c *Client) SaveCharacter(rec model.CharacterRecord) error {
	return wrapRPCErr(c.rpc.Call("CharacterData.Save", SaveCharacterArgs{Record: rec}, &struct{}{}))
}

// DeleteCharacter permanently removes a character.
func (c *Client) DeleteCharacter(characterID int64) error {
	return wrapRPCErr(c.rpc.Call("CharacterData.Delete", DeleteCharacterArgs{CharacterID: characterID}, &struct{}{}))
}

// GetSkills returns every skill a character has learned.
func (c *Client) GetSkills(characterID int64) ([]CharacterSkill, error) {
	var reply GetSkillsReply
	err := c.rpc.Call("CharacterData.GetSkills", GetSkillsArgs{CharacterID: characterID}, &reply)
	if err != nil {
		return nil, wrapRPCErr(err)
	}
	return reply.Skills, nil
}

// GetAllMonsters returns the static monster-template table.
func (c *Client) GetAllMonsters() ([]MonsterTemplate, error) {
	var reply GetAllMonstersReply
	err := c.rpc.Call("GameData.GetAllMonsters", NoArgs{}, &reply)
	if err != nil {
		return nil, wrapRPCErr(err)
	}
	return reply.Monsters, nil
}

// GetAllSpawns returns the static spawn-point table.
func (c *Client) GetAllSpawns() ([]SpawnPoint, error) {
	var reply GetAllSpawnsReply
	err := c.rpc.Call("GameData.GetAllSpawns", NoArgs{}, &reply)
	if err != nil {
		return nil, wrapRPCErr(err)
	}
	return reply.Spawns, nil
}

// GetAllSkills returns the static skill-template table.
func (c *Client) GetAllSkills() ([]SkillTemplate, error) {
	var reply GetAllSkillsReply
	err := c.rpc.Call("GameData.GetAllSkills", NoArgs{}, &reply)
	if err != nil {
		return nil, wrapRPCErr(err)
	}
	return reply.Skills, nil
}

// GetAllItems returns the static item-template table.
func (c *Client) GetAllItems() ([]ItemTemplate, error) {
	var reply GetAllItemsReply
	err := c.rpc.Call("GameData.GetAllItems", NoArgs{}, &reply)
	if err != nil {
		return nil, wrapRPCErr(err)
	}
	return reply.Items, nil
}

// GetAllLootTables returns the static loot-table entries.
func (c *Client) GetAllLootTables() ([]LootEntry, error) {
	var reply GetAllLootTablesReply
	err := c.rpc.Call("GameData.GetAllLootTables", NoArgs{}, &reply)
	if err != nil {
		return nil, wrapRPCErr(err)
	}
	return reply.Entries, nil
}
