package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/homefridge/fridgely/internal/fridge/domain"
	"github.com/homefridge/fridgely/internal/migration"
	"github.com/homefridge/fridgely/pkg/db"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fridgeFixture struct {
	svc  domain.Service
	node *snowflake.Node
}

func setupFridge(t *testing.T) *fridgeFixture {
	t.Helper()

	conn, err := db.NewTest()
	assert.NoError(t, err)
	assert.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	return &fridgeFixture{
		svc:  New(Params{DB: conn, Log: zap.NewNop(), GenID: node}),
		node: node,
	}
}

func TestCreateFridgeGrantsOwnership(t *testing.T) {
	f := setupFridge(t)
	ctx := context.Background()
	owner := f.node.Generate()

	fridge, err := f.svc.Create(ctx, domain.CreateFridgeRequest{Name: "Kitchen", UserID: owner})
	assert.NoError(t, err)

	role, err := f.svc.CheckAccess(ctx, fridge.ID, owner)
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, role)

	stranger := f.node.Generate()
	_, err = f.svc.CheckAccess(ctx, fridge.ID, stranger)
	assert.ErrorIs(t, err, domain.ErrNoAccess)
}

func TestAddMemberRequiresOwner(t *testing.T) {
	f := setupFridge(t)
	ctx := context.Background()
	owner := f.node.Generate()
	member := f.node.Generate()
	outsider := f.node.Generate()

	fridge, err := f.svc.Create(ctx, domain.CreateFridgeRequest{Name: "Kitchen", UserID: owner})
	assert.NoError(t, err)

	err = f.svc.AddMember(ctx, domain.AddMemberRequest{FridgeID: fridge.ID, UserID: owner, MemberID: member})
	assert.NoError(t, err)

	role, err := f.svc.CheckAccess(ctx, fridge.ID, member)
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleMember, role)

	// Members cannot invite further members.
	err = f.svc.AddMember(ctx, domain.AddMemberRequest{FridgeID: fridge.ID, UserID: member, MemberID: outsider})
	assert.ErrorIs(t, err, domain.ErrNotOwner)

	err = f.svc.AddMember(ctx, domain.AddMemberRequest{FridgeID: fridge.ID, UserID: owner, MemberID: member})
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)
}

func TestRemoveMemberKeepsOwner(t *testing.T) {
	f := setupFridge(t)
	ctx := context.Background()
	owner := f.node.Generate()
	member := f.node.Generate()

	fridge, err := f.svc.Create(ctx, domain.CreateFridgeRequest{Name: "Kitchen", UserID: owner})
	assert.NoError(t, err)
	assert.NoError(t, f.svc.AddMember(ctx, domain.AddMemberRequest{FridgeID: fridge.ID, UserID: owner, MemberID: member}))

	err = f.svc.RemoveMember(ctx, domain.RemoveMemberRequest{FridgeID: fridge.ID, UserID: owner, MemberID: member})
	assert.NoError(t, err)
	_, err = f.svc.CheckAccess(ctx, fridge.ID, member)
	assert.ErrorIs(t, err, domain.ErrNoAccess)

	// Removal only matches the member role, so an owner cannot delete
	// their own access row this way.
	err = f.svc.RemoveMember(ctx, domain.RemoveMemberRequest{FridgeID: fridge.ID, UserID: owner, MemberID: owner})
	assert.NoError(t, err)
	role, err := f.svc.CheckAccess(ctx, fridge.ID, owner)
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleOwner, role)
}

func TestListForUserAndMemberIDs(t *testing.T) {
	f := setupFridge(t)
	ctx := context.Background()
	owner := f.node.Generate()
	member := f.node.Generate()

	kitchen, err := f.svc.Create(ctx, domain.CreateFridgeRequest{Name: "Kitchen", UserID: owner})
	assert.NoError(t, err)
	_, err = f.svc.Create(ctx, domain.CreateFridgeRequest{Name: "Garage", UserID: owner})
	assert.NoError(t, err)
	assert.NoError(t, f.svc.AddMember(ctx, domain.AddMemberRequest{FridgeID: kitchen.ID, UserID: owner, MemberID: member}))

	ownerFridges, err := f.svc.ListForUser(ctx, owner)
	assert.NoError(t, err)
	assert.Len(t, ownerFridges, 2)

	memberFridges, err := f.svc.ListForUser(ctx, member)
	assert.NoError(t, err)
	assert.Len(t, memberFridges, 1)
	assert.Equal(t, kitchen.ID, memberFridges[0].ID)

	ids, err := f.svc.MemberIDs(ctx, kitchen.ID)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []snowflake.ID{owner, member}, ids)
}
