package rules

import "errors"

// Code is a machine-readable rejection reason.
type Code string

const (
	// Authorization
	CodeNotInGame      Code = "NOT_IN_GAME"
	CodeNotPlayersTurn Code = "NOT_PLAYERS_TURN"
	CodeNotActive      Code = "NOT_ACTIVE"

	// Join
	CodeGameFull            Code = "GAME_FULL"
	CodePlayerAlreadyInGame Code = "PLAYER_ALREADY_IN_GAME"
	CodeGameAlreadyStarted  Code = "GAME_ALREADY_STARTED"
	CodeInvalidFaction      Code = "INVALID_FACTION"

	// Validation
	CodePositionOutOfBounds  Code = "POSITION_OUT_OF_BOUNDS"
	CodePositionOccupied     Code = "POSITION_OCCUPIED"
	CodeZoneNotAdjacent      Code = "ZONE_NOT_ADJACENT"
	CodeZoneNotControlled    Code = "ZONE_NOT_CONTROLLED"
	CodeUnitTypeNotUnlocked  Code = "UNIT_TYPE_NOT_UNLOCKED"
	CodeUnitNotFound         Code = "UNIT_NOT_FOUND"
	CodeInvalidMove          Code = "INVALID_MOVE"
	CodeInvalidAction        Code = "INVALID_ACTION"
	CodeInvalidZoneType      Code = "INVALID_ZONE_TYPE"
	CodeInvalidExpansionType Code = "INVALID_EXPANSION_TYPE"
	CodeExpansionNotPossible Code = "EXPANSION_NOT_POSSIBLE"

	// Economic
	CodeInsufficientResources Code = "INSUFFICIENT_RESOURCES"

	// Capacity
	CodeMaxZonesReached       Code = "MAX_ZONES_REACHED"
	CodeZoneAlreadyControlled Code = "ZONE_ALREADY_CONTROLLED"
)

// Category groups codes by the kind of precondition that failed.
type Category string

const (
	CategoryAuthorization Category = "authorization"
	CategoryValidation    Category = "validation"
	CategoryEconomic      Category = "economic"
	CategoryCapacity      Category = "capacity"
)

// Category returns the group a code belongs to.
func (c Code) Category() Category {
	switch c {
	case CodeNotInGame, CodeNotPlayersTurn, CodeNotActive,
		CodePlayerAlreadyInGame, CodeGameAlreadyStarted:
		return CategoryAuthorization
	case CodeInsufficientResources:
		return CategoryEconomic
	case CodeMaxZonesReached, CodeZoneAlreadyControlled, CodeGameFull:
		return CategoryCapacity
	default:
		return CategoryValidation
	}
}

// Error is a rejected action. No entity was modified.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code, so errors.Is(err, ErrNotActive) holds for any NOT_ACTIVE rejection.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func withMetadata(base *Error, kv ...string) *Error {
	md := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		md[kv[i]] = kv[i+1]
	}
	return &Error{Code: base.Code, Message: base.Message, Metadata: md}
}

var (
	ErrNotInGame             = newError(CodeNotInGame, "player is not in the game")
	ErrNotPlayersTurn        = newError(CodeNotPlayersTurn, "not player's turn")
	ErrNotActive             = newError(CodeNotActive, "game is not active")
	ErrGameFull              = newError(CodeGameFull, "game is full")
	ErrPlayerAlreadyInGame   = newError(CodePlayerAlreadyInGame, "player already in game")
	ErrGameAlreadyStarted    = newError(CodeGameAlreadyStarted, "game already started")
	ErrInvalidFaction        = newError(CodeInvalidFaction, "invalid faction choice")
	ErrPositionOutOfBounds   = newError(CodePositionOutOfBounds, "position out of bounds")
	ErrPositionOccupied      = newError(CodePositionOccupied, "position already occupied")
	ErrZoneNotAdjacent       = newError(CodeZoneNotAdjacent, "zone not adjacent")
	ErrZoneNotControlled     = newError(CodeZoneNotControlled, "zone not controlled")
	ErrUnitTypeNotUnlocked   = newError(CodeUnitTypeNotUnlocked, "unit type not unlocked")
	ErrUnitNotFound          = newError(CodeUnitNotFound, "unit not found")
	ErrInvalidMove           = newError(CodeInvalidMove, "invalid move")
	ErrInvalidAction         = newError(CodeInvalidAction, "invalid action")
	ErrInvalidZoneType       = newError(CodeInvalidZoneType, "invalid zone type")
	ErrInvalidExpansionType  = newError(CodeInvalidExpansionType, "invalid expansion type")
	ErrExpansionNotPossible  = newError(CodeExpansionNotPossible, "expansion not possible")
	ErrInsufficientResources = newError(CodeInsufficientResources, "insufficient resources")
	ErrMaxZonesReached       = newError(CodeMaxZonesReached, "max zones reached")
	ErrZoneAlreadyControlled = newError(CodeZoneAlreadyControlled, "zone already controlled")
)

// CodeOf extracts the rejection code from err, or "" when err is not a rules error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
