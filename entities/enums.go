package entities

import (
	"errors"
	"fmt"

	"github.com/adorsys-gis/bankstore/bankstore_errors"
)

// Each enum persists as its string name through one bidirectional
// table built here; no per-enum switch pairs anywhere else.

type enumCodec[E ~uint8] struct {
	names  []string
	byName map[string]E
}

func newEnumCodec[E ~uint8](names ...string) *enumCodec[E] {
	c := &enumCodec[E]{names: names, byName: make(map[string]E, len(names))}
	for i, n := range names {
		c.byName[n] = E(i)
	}
	return c
}

func (c *enumCodec[E]) Name(e E) (string, error) {
	if int(e) >= len(c.names) {
		return "", errors.Join(bankstore_errors.ErrSerializationFailure,
			fmt.Errorf("enum value %d out of range", e))
	}
	return c.names[e], nil
}

func (c *enumCodec[E]) Parse(name string) (E, error) {
	e, ok := c.byName[name]
	if !ok {
		return 0, errors.Join(bankstore_errors.ErrBadRow,
			fmt.Errorf("unknown enum name %q", name))
	}
	return e, nil
}

type PersonType uint8

const (
	PersonNatural PersonType = iota
	PersonLegal
)

var personTypes = newEnumCodec[PersonType]("natural", "legal")

type LocationType uint8

const (
	LocationResidential LocationType = iota
	LocationBusiness
	LocationMailing
)

var locationTypes = newEnumCodec[LocationType]("residential", "business", "mailing")

type MessagingType uint8

const (
	MessagingEmail MessagingType = iota
	MessagingPhone
	MessagingSms
	MessagingSwift
)

var messagingTypes = newEnumCodec[MessagingType]("email", "phone", "sms", "swift")

type ReferenceRole uint8

const (
	RoleCustomer ReferenceRole = iota
	RoleAccountHolder
	RoleSignatory
	RoleGuarantor
	RoleBeneficiary
)

var referenceRoles = newEnumCodec[ReferenceRole](
	"customer", "account_holder", "signatory", "guarantor", "beneficiary")

type AccountStatus uint8

const (
	AccountPendingApproval AccountStatus = iota
	AccountActive
	AccountDormant
	AccountFrozen
	AccountClosed
)

var accountStatuses = newEnumCodec[AccountStatus](
	"pending_approval", "active", "dormant", "frozen", "closed")
