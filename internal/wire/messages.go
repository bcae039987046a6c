package wire

// Message payload structs exchanged between client and the three gateway
// services. Every exported struct here is registered with gob at package
// init (see codec.go) so it can be round-tripped through EncodePayload /
// DecodePayload regardless of which opcode carries it.

// LoginRequest is carried by OpLoginRequest.
type LoginRequest struct {
	Username string
	Password string
}

// CharacterSummary is one entry of the character list returned on login.
type CharacterSummary struct {
	CharacterID int64
	Name        string
	ClassName   string
	Level       int32
}

// LoginResponse is carried by OpLoginResponse.
type LoginResponse struct {
	OK                 bool
	ErrorMessage       string
	Token              string
	HMACSecret         string
	Characters         []CharacterSummary
	AccountServiceAddr string
}

// RegisterRequest is carried by OpRegisterRequest.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
}

// RegisterResponse is carried by OpRegisterResponse.
type RegisterResponse struct {
	OK           bool
	ErrorMessage string
}

// CharacterCreate is carried by OpCharacterCreate. Token authenticates the
// connection on its first frame; AccountService caches the resulting
// account id afterward, so later frames on the same connection may omit it.
type CharacterCreate struct {
	Token string
	Name  string
	Class string
}

// CharacterSelect is carried by OpCharacterSelect. See CharacterCreate for
// the Token caching rule.
type CharacterSelect struct {
	Token       string
	CharacterID int64
}

// CharacterSelectResponse answers a CharacterSelect on success, or carries
// an error via ErrorResponse on failure.
type CharacterSelectResponse struct {
	CharacterID  int64
	Name         string
	ClassName    string
	Level        int32
	X, Y, Z      int32
	WorldTCPAddr string
	WorldUDPAddr string
}

// EnterWorld is carried by OpEnterWorld, both directions: the client sends
// Token+CharacterID; the server reuses the struct is not required, ZoneData
// answers success.
type EnterWorld struct {
	Token       string
	CharacterID int64
}

// ZoneData is carried by OpZoneData, sent once on successful world entry.
type ZoneData struct {
	ZoneID    int
	ZoneName  string
	ChannelID int
	EntityID  uint32
	Entities  []EntitySpawn
}

// EntitySpawn is carried by OpEntitySpawn.
type EntitySpawn struct {
	EntityID  uint32
	IsMonster bool
	Name      string
	X, Y, Z   int32
	Heading   uint16
	Level     int32
	CurrentHP int32
	MaxHP     int32
}

// EntityDespawn is carried by OpEntityDespawn.
type EntityDespawn struct {
	EntityID uint32
}

// MovementInput is carried by OpMovementInput, over UDP primarily, TCP as
// fallback.
type MovementInput struct {
	DX, DY, DZ float64
	Moving     bool
	Flying     bool
	Heading    uint16
}

// PositionCorrection is carried by OpPositionCorrection.
type PositionCorrection struct {
	X, Y, Z int32
	Heading uint16
	Reason  string
}

// SelectTarget is carried by OpSelectTarget. SkillID, when nonzero, asks
// the tick loop to resolve the next auto-attack through that skill's
// damage formula instead of a plain melee hit; the client sends a fresh
// SelectTarget with the same TargetEntityID to queue each skill use.
type SelectTarget struct {
	TargetEntityID uint32
	AutoAttack     bool
	SkillID        int32
}

// DamageResult reports a single damage application, broadcast alongside
// EntitySpawn/EntityDespawn during combat.
type DamageResult struct {
	AttackerEntityID uint32
	TargetEntityID   uint32
	Damage           int32
	Critical         bool
	TargetDied       bool
	TargetCurrentHP  int32
}

// RespawnEvent announces a monster returning to IDLE at its spawn point.
type RespawnEvent struct {
	EntityID  uint32
	X, Y, Z   int32
	CurrentHP int32
}

// ChatMessage is carried by OpChatMessage.
type ChatMessage struct {
	FromEntityID uint32
	FromName     string
	Text         string
}

// Heartbeat is carried by OpHeartbeat, both directions; the server echoes
// ClientTimestampMs back alongside its own wall clock.
type Heartbeat struct {
	ClientTimestampMs int64
	ServerTimestampMs int64
}

// ChannelSwitch is carried by OpChannelSwitch.
type ChannelSwitch struct {
	ZoneID    int
	ChannelID int
}

// ChannelInfo is one entry of a ChannelList response.
type ChannelInfo struct {
	ChannelID  int
	Population int
	MaxPlayers int
}

// ChannelList is carried by OpChannelList.
type ChannelList struct {
	ZoneID   int
	Channels []ChannelInfo
}

// ErrorResponse is carried by OpErrorResponse, shared by all services.
type ErrorResponse struct {
	Code    ErrorCode
	Message string
}

func init() {
	registerGobTypes(
		LoginRequest{}, LoginResponse{}, RegisterRequest{}, RegisterResponse{},
		CharacterCreate{}, CharacterSelect{}, CharacterSelectResponse{},
		EnterWorld{}, ZoneData{}, EntitySpawn{}, EntityDespawn{},
		MovementInput{}, PositionCorrection{}, SelectTarget{}, DamageResult{},
		RespawnEvent{}, ChatMessage{}, Heartbeat{}, ChannelSwitch{},
		ChannelList{}, ErrorResponse{},
	)
}
