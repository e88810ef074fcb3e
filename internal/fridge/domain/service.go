package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateFridgeRequest struct {
	Name   string
	UserID snowflake.ID
}

type AddMemberRequest struct {
	FridgeID snowflake.ID
	UserID   snowflake.ID // acting user, must be owner
	MemberID snowflake.ID
}

type RemoveMemberRequest struct {
	FridgeID snowflake.ID
	UserID   snowflake.ID
	MemberID snowflake.ID
}

type Service interface {
	Create(context.Context, CreateFridgeRequest) (Fridge, error)
	ListForUser(ctx context.Context, userID snowflake.ID) ([]Fridge, error)
	AddMember(context.Context, AddMemberRequest) error
	RemoveMember(context.Context, RemoveMemberRequest) error

	// CheckAccess returns the caller's role, or ErrNoAccess.
	CheckAccess(ctx context.Context, fridgeID, userID snowflake.ID) (Role, error)
	// CheckOwner fails with ErrNotOwner unless the caller owns the fridge.
	CheckOwner(ctx context.Context, fridgeID, userID snowflake.ID) error
	// MemberIDs returns every user with access to the fridge. The
	// availability simulator uses it to scope meal-plan demand.
	MemberIDs(ctx context.Context, fridgeID snowflake.ID) ([]snowflake.ID, error)
}

var (
	ErrNotFound      = errors.New("fridge_not_found")
	ErrNoAccess      = errors.New("fridge_no_access")
	ErrNotOwner      = errors.New("fridge_not_owner")
	ErrAlreadyMember = errors.New("fridge_already_member")
	ErrInvalidName   = errors.New("invalid_name")
)
