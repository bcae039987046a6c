package wire

// Opcode identifies a frame's payload type. The canonical set the core must
// handle.
type Opcode uint16

const (
	OpLoginRequest       Opcode = 0x0001
	OpLoginResponse      Opcode = 0x0002
	OpCharacterSelect    Opcode = 0x0003
	OpEnterWorld         Opcode = 0x0004
	OpCharacterCreate    Opcode = 0x0005
	OpRegisterRequest    Opcode = 0x0006
	OpRegisterResponse   Opcode = 0x0007
	OpMovementInput      Opcode = 0x0101
	OpSelectTarget       Opcode = 0x0201
	OpEntitySpawn        Opcode = 0x0301
	OpEntityDespawn      Opcode = 0x0302
	OpDamageResult       Opcode = 0x0303
	OpRespawnEvent       Opcode = 0x0304
	OpMoveItem           Opcode = 0x0401
	OpChatMessage        Opcode = 0x0501
	OpHeartbeat          Opcode = 0x0601
	OpZoneData           Opcode = 0x0701
	OpChannelSwitch      Opcode = 0x0702
	OpChannelList        Opcode = 0x0703
	OpPositionCorrection Opcode = 0x07FE
	OpErrorResponse      Opcode = 0x07FF
)

// Name returns a human-readable opcode name for logging. Returns "unknown"
// for anything not in the table below.
func (o Opcode) Name() string {
	switch o {
	case OpLoginRequest:
		return "LoginRequest"
	case OpLoginResponse:
		return "LoginResponse"
	case OpCharacterSelect:
		return "CharacterSelect"
	case OpEnterWorld:
		return "EnterWorld"
	case OpCharacterCreate:
		return "CharacterCreate"
	case OpRegisterRequest:
		return "RegisterRequest"
	case OpRegisterResponse:
		return "RegisterResponse"
	case OpMovementInput:
		return "MovementInput"
	case OpSelectTarget:
		return "SelectTarget"
	case OpEntitySpawn:
		return "EntitySpawn"
	case OpEntityDespawn:
		return "EntityDespawn"
	case OpDamageResult:
		return "DamageResult"
	case OpRespawnEvent:
		return "RespawnEvent"
	case OpMoveItem:
		return "MoveItem"
	case OpChatMessage:
		return "ChatMessage"
	case OpHeartbeat:
		return "Heartbeat"
	case OpZoneData:
		return "ZoneData"
	case OpChannelSwitch:
		return "ChannelSwitch"
	case OpChannelList:
		return "ChannelList"
	case OpPositionCorrection:
		return "PositionCorrection"
	case OpErrorResponse:
		return "ErrorResponse"
	default:
		return "unknown"
	}
}

// ErrorCode values used in ErrorResponse payloads.
type ErrorCode int32

const (
	ErrProtocolViolation ErrorCode = 400
	ErrAuthentication    ErrorCode = 401
	ErrAuthorization     ErrorCode = 403
	ErrRateLimit         ErrorCode = 429
	ErrBusiness          ErrorCode = 409
	ErrTransient         ErrorCode = 503
)
