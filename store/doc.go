// Package store provides customer registration over a single DynamoDB table.
//
// Enroll decomposes each customer into a small set of physical records that
// share one table and are written together as a single all-or-nothing
// transaction. A synthetic lock record enforces phone-number uniqueness in a
// store that has no native unique secondary indexes.
//
// # Record Layout
//
// Every record is addressed by a composite key (PK, SK):
//
//   - Primary:      CUSTOMER / <customerId>            - canonical entity
//   - Phone lookup: CUSTOMER_PHONE / <phone>           - search by phone
//   - Name lookup:  CUSTOMER_NAME / <normalizedName>   - search by name
//   - Phone lock:   CUSTOMER_PHONE#<phone> / LOCK      - uniqueness token
//
// The lock record carries only the customerId; its existence, not its
// content, is what enforces the one-phone-per-customer constraint. All four
// records are written with an attribute_not_exists(PK) precondition, so two
// registrations racing on the same phone number collide on the lock key and
// at most one commits.
//
// # Getting Started
//
// Create a [Store] with [New], supplying a DynamoDB client and a [Config]
// naming the table:
//
//	s := store.New(dynamodb.NewFromConfig(awsCfg), store.Config{
//	    TableName: "customers",
//	})
//	customerID, err := s.CreateCustomer(ctx, name, address, email, phone)
//
// Any value satisfying [API] can stand in for the DynamoDB client, which
// keeps the transaction path mockable in tests.
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrPhoneExists] - a registration collided with an existing record set
//   - [ErrNotFound] - no customer at the requested key
//
// Any other DynamoDB failure is returned unmodified.
//
// # Concurrency
//
// [Store] holds no mutable state; it is safe for concurrent use. Conflict
// resolution between concurrent registrations is delegated entirely to
// DynamoDB's transaction engine.
package store
