package dataservice

import (
	"context"
	"net"
	"net/rpc"
	"time"

	"github.com/udisondev/la2go/internal/model"
)

func msToTime(unixMs int64) time.Time {
	return time.UnixMilli(unixMs)
}

// Server exposes the four repositories over net/rpc + gob, the narrow RPC
// surface every gateway service reaches the relational store through.
// Method names on the wire are "AccountData.GetByUsername",
// "CharacterData.Save", and so on, matching the repository method they
// forward to.
type Server struct {
	rpc *rpc.Server

	accounts   *AccountData
	characters *CharacterData
	inventory  *InventoryData
	gamedata   *GameData
}

// NewServer registers every repository as an RPC receiver.
func NewServer(accounts *AccountData, characters *CharacterData, inventory *InventoryData, gamedata *GameData) (*Server, error) {
	s := &Server{
		rpc:        rpc.NewServer(),
		accounts:   accounts,
		characters: characters,
		inventory:  inventory,
		gamedata:   gamedata,
	}
	if err := s.rpc.RegisterName("AccountData", (*accountRPC)(accounts)); err != nil {
		return nil, err
	}
	if err := s.rpc.RegisterName("CharacterData", (*characterRPC)(characters)); err != nil {
		return nil, err
	}
	if err := s.rpc.RegisterName("InventoryData", (*inventoryRPC)(inventory)); err != nil {
		return nil, err
	}
	if err := s.rpc.RegisterName("GameData", (*gameDataRPC)(gamedata)); err != nil {
		return nil, err
	}
	return s, nil
}

// Serve accepts RPC connections on ln until it is closed.
func (s *Server) Serve(ln net.Listener) {
	s.rpc.Accept(ln)
}

// --- AccountData ---

type accountRPC AccountData

type GetByUsernameArgs struct{ Username string }
type AccountReply struct{ Account model.Account }

func (a *accountRPC) GetByUsername(args GetByUsernameArgs, reply *AccountReply) error {
	acc, err := (*AccountData)(a).GetByUsername(context.Background(), args.Username)
	if err != nil {
		return err
	}
	reply.Account = acc
	return nil
}

type GetByIDArgs struct{ AccountID int64 }

func (a *accountRPC) GetByID(args GetByIDArgs, reply *AccountReply) error {
	acc, err := (*AccountData)(a).GetByID(context.Background(), args.AccountID)
	if err != nil {
		return err
	}
	reply.Account = acc
	return nil
}

type CreateAccountArgs struct {
	Username, Email, PasswordHash string
}

func (a *accountRPC) Create(args CreateAccountArgs, reply *AccountReply) error {
	acc, err := (*AccountData)(a).Create(context.Background(), args.Username, args.Email, args.PasswordHash)
	if err != nil {
		return err
	}
	reply.Account = acc
	return nil
}

type UpdateLastLoginArgs struct {
	AccountID int64
	UnixMs    int64
}

func (a *accountRPC) UpdateLastLogin(args UpdateLastLoginArgs, reply *struct{}) error {
	return (*AccountData)(a).UpdateLastLogin(context.Background(), args.AccountID, msToTime(args.UnixMs))
}

type CheckBanArgs struct{ AccountID int64 }
type CheckBanReply struct{ Banned bool }

func (a *accountRPC) CheckBan(args CheckBanArgs, reply *CheckBanReply) error {
	banned, err := (*AccountData)(a).CheckBan(context.Background(), args.AccountID)
	if err != nil {
		return err
	}
	reply.Banned = banned
	return nil
}

// --- CharacterData ---

type characterRPC CharacterData

type GetByAccountArgs struct{ AccountID int64 }
type CharacterListReply struct{ Characters []model.CharacterRecord }

func (c *characterRPC) GetByAccount(args GetByAccountArgs, reply *CharacterListReply) error {
	recs, err := (*CharacterData)(c).GetByAccount(context.Background(), args.AccountID)
	if err != nil {
		return err
	}
	reply.Characters = recs
	return nil
}

type GetCharacterArgs struct{ CharacterID int64 }
type CharacterReply struct{ Character model.CharacterRecord }

func (c *characterRPC) Get(args GetCharacterArgs, reply *CharacterReply) error {
	rec, err := (*CharacterData)(c).Get(context.Background(), args.CharacterID)
	if err != nil {
		return err
	}
	reply.Character = rec
	return nil
}

type CreateCharacterArgs struct{ Record model.CharacterRecord }

func (c *characterRPC) Create(args CreateCharacterArgs, reply *CharacterReply) error {
	rec, err := (*CharacterData)(c).Create(context.Background(), args.Record)
	if err != nil {
		return err
	}
	reply.Character = rec
	return nil
}

type SaveCharacterArgs struct{ Record model.CharacterRecord }

func (c *characterRPC) Save(args SaveCharacterArgs, reply *struct{}) error {
	return (*CharacterData)(c).Save(context.Background(), args.Record)
}

type DeleteCharacterArgs struct{ CharacterID int64 }

func (c *characterRPC) Delete(args DeleteCharacterArgs, reply *struct{}) error {
	return (*CharacterData)(c).Delete(context.Background(), args.CharacterID)
}

type GetSkillsArgs struct{ CharacterID int64 }
type GetSkillsReply struct{ Skills []CharacterSkill }

func (c *characterRPC) GetSkills(args GetSkillsArgs, reply *GetSkillsReply) error {
	skills, err := (*CharacterData)(c).GetSkills(context.Background(), args.CharacterID)
	if err != nil {
		return err
	}
	reply.Skills = skills
	return nil
}

// --- InventoryData ---

type inventoryRPC InventoryData

type GetInventoryArgs struct{ OwnerID int64 }
type ItemListReply struct{ Items []ItemStack }

func (i *inventoryRPC) GetInventory(args GetInventoryArgs, reply *ItemListReply) error {
	items, err := (*InventoryData)(i).GetInventory(context.Background(), args.OwnerID)
	if err != nil {
		return err
	}
	reply.Items = items
	return nil
}

func (i *inventoryRPC) GetEquipment(args GetInventoryArgs, reply *ItemListReply) error {
	items, err := (*InventoryData)(i).GetEquipment(context.Background(), args.OwnerID)
	if err != nil {
		return err
	}
	reply.Items = items
	return nil
}

type MoveItemArgs struct {
	ItemID int64
	Slot   int32
}

func (i *inventoryRPC) MoveItem(args MoveItemArgs, reply *struct{}) error {
	return (*InventoryData)(i).MoveItem(context.Background(), args.ItemID, args.Slot)
}

type AddItemArgs struct {
	OwnerID    int64
	TemplateID int32
	Count      int32
}
type ItemReply struct{ Item ItemStack }

func (i *inventoryRPC) AddItem(args AddItemArgs, reply *ItemReply) error {
	it, err := (*InventoryData)(i).AddItem(context.Background(), args.OwnerID, args.TemplateID, args.Count)
	if err != nil {
		return err
	}
	reply.Item = it
	return nil
}

type RemoveItemArgs struct{ ItemID int64 }

func (i *inventoryRPC) RemoveItem(args RemoveItemArgs, reply *struct{}) error {
	return (*InventoryData)(i).RemoveItem(context.Background(), args.ItemID)
}

type EquipItemArgs struct{ ItemID int64 }

func (i *inventoryRPC) EquipItem(args EquipItemArgs, reply *struct{}) error {
	return (*InventoryData)(i).EquipItem(context.Background(), args.ItemID)
}

func (i *inventoryRPC) UnequipItem(args EquipItemArgs, reply *struct{}) error {
	return (*InventoryData)(i).UnequipItem(context.Background(), args.ItemID)
}

// --- GameData ---

type gameDataRPC GameData

type NoArgs struct{}

type GetAllItemsReply struct{ Items []ItemTemplate }

func (g *gameDataRPC) GetAllItems(args NoArgs, reply *GetAllItemsReply) error {
	items, err := (*GameData)(g).GetAllItems(context.Background())
	if err != nil {
		return err
	}
	reply.Items = items
	return nil
}

type GetAllMonstersReply struct{ Monsters []MonsterTemplate }

func (g *gameDataRPC) GetAllMonsters(args NoArgs, reply *GetAllMonstersReply) error {
	monsters, err := (*GameData)(g).GetAllMonsters(context.Background())
	if err != nil {
		return err
	}
	reply.Monsters = monsters
	return nil
}

type GetAllSpawnsReply struct{ Spawns []SpawnPoint }

func (g *gameDataRPC) GetAllSpawns(args NoArgs, reply *GetAllSpawnsReply) error {
	spawns, err := (*GameData)(g).GetAllSpawns(context.Background())
	if err != nil {
		return err
	}
	reply.Spawns = spawns
	return nil
}

type GetAllSkillsReply struct{ Skills []SkillTemplate }

func (g *gameDataRPC) GetAllSkills(args NoArgs, reply *GetAllSkillsReply) error {
	skills, err := (*GameData)(g).GetAllSkills(context.Background())
	if err != nil {
		return err
	}
	reply.Skills = skills
	return nil
}

type GetAllLootTablesReply struct{ Entries []LootEntry }

func (g *gameDataRPC) GetAllLootTables(args NoArgs, reply *GetAllLootTablesReply) error {
	entries, err := (*GameData)(g).GetAllLootTables(context.Background())
	if err != nil {
		return err
	}
	reply.Entries = entries
	return nil
}
