package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbourn/go-api-base/internal/apperr"
)

func TestProjectService_Create(t *testing.T) {
	db := newServiceDB(t)
	users := NewUserService(db)
	svc := NewProjectService(db)
	ctx := context.Background()

	owner, err := users.Create(ctx, UserInput{Email: strp("owner@example.com")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, nil, "Apollo")
	assert.True(t, errors.Is(err, apperr.ErrAuthentication))

	_, err = svc.Create(ctx, owner, "   ")
	fields := fieldsOf(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "name", fields[0].Field)
	assert.Equal(t, []string{msgBlank}, fields[0].Messages)

	_, err = svc.Create(ctx, owner, strings.Repeat("x", 256))
	fields = fieldsOf(t, err)
	require.Len(t, fields, 1)
	assert.Contains(t, fields[0].Messages[0], "maximum is 255")

	p, err := svc.Create(ctx, owner, " Apollo ")
	require.NoError(t, err)
	assert.Equal(t, "Apollo", p.Name)
	assert.Equal(t, owner.ID, p.OwnerID)
	assert.Equal(t, owner.EID, p.Owner.EID)
	assert.NotEmpty(t, p.EID)
	assert.NotEqual(t, owner.EID, p.EID)
}

func TestProjectService_ListPage(t *testing.T) {
	db := newServiceDB(t)
	users := NewUserService(db)
	svc := NewProjectService(db)
	ctx := context.Background()

	owner, err := users.Create(ctx, UserInput{Email: strp("lister@example.com")})
	require.NoError(t, err)
	for _, n := range []string{"a", "b", "c"} {
		_, err := svc.Create(ctx, owner, n)
		require.NoError(t, err)
	}

	items, total, err := svc.ListPage(ctx, owner, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].Name)
	assert.Equal(t, owner.EID, items[0].Owner.EID)

	items, _, err = svc.ListPage(ctx, owner, 2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Name)
}
