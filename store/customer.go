package store

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// PartitionKey is the DynamoDB partition key attribute name.
	PartitionKey = "PK"

	// SortKey is the DynamoDB sort key attribute name.
	SortKey = "SK"

	// customerPK is the partition key shared by all primary records;
	// the sort key is the customerId, so primaries list in creation order.
	customerPK = "CUSTOMER"

	// phoneLookupPK is the partition key for phone lookup records.
	phoneLookupPK = "CUSTOMER_PHONE"

	// nameLookupPK is the partition key for normalized-name lookup records.
	nameLookupPK = "CUSTOMER_NAME"

	// phoneLockPrefix prefixes the partition key of a phone lock record.
	// Each lock gets its own partition, so two registrations for the same
	// phone always collide on the same key.
	phoneLockPrefix = "CUSTOMER_PHONE#"

	// lockSK is the fixed sort key of every lock record.
	lockSK = "LOCK"
)

// conditionNotExists is the precondition attached to every put in a
// registration transaction. It turns the multi-put into a
// uniqueness-and-no-overwrite guard at the storage layer.
const conditionNotExists = "attribute_not_exists(" + PartitionKey + ")"

// Customer is the logical registration entity. All fields except
// CustomerID are free text supplied by the caller; Phone doubles as the
// uniqueness discriminant.
type Customer struct {
	CustomerID string `json:"customerId" dynamodbav:"customerId"`
	Name       string `json:"name"       dynamodbav:"name"`
	Address    string `json:"address"    dynamodbav:"address"`
	Email      string `json:"email"      dynamodbav:"email"`
	Phone      string `json:"phone"      dynamodbav:"phone"`
}

// NormalizeName derives the name-lookup sort key from a free-text name:
// leading and trailing whitespace is stripped, the result is upper-cased,
// and every interior run of whitespace collapses to a single underscore.
// It is pure and idempotent, and never overwrites the stored name.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToUpper(name)), "_")
}

// conditionalPut is a single item in the registration transaction: a
// composite key plus the attributes to write under it. Every put carries
// the must-not-exist precondition when committed.
type conditionalPut struct {
	pk   string
	sk   string
	item map[string]types.AttributeValue
}

// keyed returns a copy of the item with the key attributes attached. The
// source map is shared between puts and must not be mutated.
func (p conditionalPut) keyed() map[string]types.AttributeValue {
	item := make(map[string]types.AttributeValue, len(p.item)+2)
	for k, v := range p.item {
		item[k] = v
	}
	item[PartitionKey] = &types.AttributeValueMemberS{Value: p.pk}
	item[SortKey] = &types.AttributeValueMemberS{Value: p.sk}
	return item
}

// projectRecords decomposes a customer into its physical records: primary,
// phone lookup, name lookup, and the phone lock, in that fixed order. The
// lock record carries only the customerId; its existence is the uniqueness
// token. Inputs are not validated here — that is the caller's boundary.
func projectRecords(c Customer) ([]conditionalPut, error) {
	full, err := attributevalue.MarshalMap(c)
	if err != nil {
		return nil, fmt.Errorf("marshal customer: %w", err)
	}

	return []conditionalPut{
		{pk: customerPK, sk: c.CustomerID, item: full},
		{pk: phoneLookupPK, sk: c.Phone, item: full},
		{pk: nameLookupPK, sk: NormalizeName(c.Name), item: full},
		{pk: phoneLockPrefix + c.Phone, sk: lockSK, item: map[string]types.AttributeValue{
			"customerId": &types.AttributeValueMemberS{Value: c.CustomerID},
		}},
	}, nil
}
