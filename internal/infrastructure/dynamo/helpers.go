package dynamo

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/social-feed-api/internal/domain"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

type updateExpr struct {
	Expr   string
	Names  map[string]string
	Values map[string]types.AttributeValue
}

// buildUpdateExpr converts a map of field->value into a DynamoDB SET
// expression. Keys are sorted so the output is deterministic.
func buildUpdateExpr(updates map[string]interface{}) (updateExpr, error) {
	if len(updates) == 0 {
		return updateExpr{}, fmt.Errorf("no fields to update")
	}
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ue := updateExpr{
		Expr:   "SET ",
		Names:  make(map[string]string, len(keys)),
		Values: make(map[string]types.AttributeValue, len(keys)),
	}
	for i, k := range keys {
		nameKey := fmt.Sprintf("#f%d", i)
		valueKey := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(updates[k])
		if err != nil {
			return updateExpr{}, fmt.Errorf("marshal field %s: %w", k, err)
		}
		ue.Names[nameKey] = k
		ue.Values[valueKey] = av
		if i > 0 {
			ue.Expr += ", "
		}
		ue.Expr += fmt.Sprintf("%s = %s", nameKey, valueKey)
	}
	return ue, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func millis(t time.Time) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(t.UnixMilli(), 10)}
}

func marshalPasscode(p domain.Passcode) types.AttributeValue {
	return &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
		fieldPasscodeSecret: &types.AttributeValueMemberS{Value: p.Secret},
		fieldPasscodeExpiry: millis(p.ExpiresAt),
	}}
}

// unmarshalPasscode returns nil when the attribute is missing or malformed.
func unmarshalPasscode(av types.AttributeValue) *domain.Passcode {
	m, ok := av.(*types.AttributeValueMemberM)
	if !ok {
		return nil
	}
	secret, ok := m.Value[fieldPasscodeSecret].(*types.AttributeValueMemberS)
	if !ok {
		return nil
	}
	exp, ok := m.Value[fieldPasscodeExpiry].(*types.AttributeValueMemberN)
	if !ok {
		return nil
	}
	ms, err := strconv.ParseInt(exp.Value, 10, 64)
	if err != nil {
		return nil
	}
	return &domain.Passcode{Secret: secret.Value, ExpiresAt: time.UnixMilli(ms).UTC()}
}

func marshalUser(u *domain.User) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return nil, fmt.Errorf("marshal user: %w", err)
	}
	if u.Passcode != nil {
		item[fieldPasscode] = marshalPasscode(*u.Passcode)
	}
	return item, nil
}

func unmarshalUser(item map[string]types.AttributeValue) (*domain.User, error) {
	var u domain.User
	if err := attributevalue.UnmarshalMap(item, &u); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	u.Passcode = unmarshalPasscode(item[fieldPasscode])
	return &u, nil
}
