package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/social-feed-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"username": "alice"})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "username"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		fieldVerifiedEmail:   true,
		fieldPreferredMethod: "email",
		fieldUpdatedAt:       "2026-01-01T00:00:00Z",
	}
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, fieldPreferredMethod, ue1.Names["#f0"])
	assert.Equal(t, fieldUpdatedAt, ue1.Names["#f1"])
	assert.Equal(t, fieldVerifiedEmail, ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldEnable: true})
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestMarshalUser_PasscodeIsSingleMapAttribute(t *testing.T) {
	exp := time.Date(2026, 3, 1, 9, 10, 0, 0, time.UTC)
	u := &domain.User{
		UserID:   "U1",
		Username: "alice",
		Passcode: &domain.Passcode{Secret: "004213", ExpiresAt: exp},
	}

	item, err := marshalUser(u)
	require.NoError(t, err)

	m, ok := item[fieldPasscode].(*types.AttributeValueMemberM)
	require.True(t, ok)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "004213"}, m.Value[fieldPasscodeSecret])
	assert.Equal(t, millis(exp), m.Value[fieldPasscodeExpiry])

	// optional identifiers stay absent so the GSIs skip the item
	assert.NotContains(t, item, fieldEmail)
	assert.NotContains(t, item, fieldPhoneNumber)

	back, err := unmarshalUser(item)
	require.NoError(t, err)
	require.NotNil(t, back.Passcode)
	assert.Equal(t, "004213", back.Passcode.Secret)
	assert.True(t, exp.Equal(back.Passcode.ExpiresAt))
}

func TestUnmarshalUser_MissingPasscodeIsNil(t *testing.T) {
	item, err := marshalUser(&domain.User{UserID: "U1", Username: "alice"})
	require.NoError(t, err)

	back, err := unmarshalUser(item)
	require.NoError(t, err)
	assert.Nil(t, back.Passcode)
}
