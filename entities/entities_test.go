package entities

import (
	"testing"

	"github.com/adorsys-gis/bankstore/bankstore_errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindLifecycles(t *testing.T) {
	assert.Equal(t, MutableVersioned, KindPerson.Lifecycle())
	assert.Equal(t, MutableVersioned, KindReference.Lifecycle())
	assert.Equal(t, MutableVersioned, KindAccount.Lifecycle())
	assert.Equal(t, ImmutableShared, KindLocation.Lifecycle())
	assert.Equal(t, ImmutableShared, KindMessaging.Lifecycle())
	assert.Equal(t, ImmutableReference, KindCountry.Lifecycle())
	assert.Equal(t, ImmutableReference, KindSubdivision.Lifecycle())
	assert.Equal(t, ImmutableReference, KindLocality.Lifecycle())
	assert.Equal(t, "person", KindPerson.String())
	assert.Equal(t, "unknown", Kind('?').String())
}

func TestEnumCodec(t *testing.T) {
	name, err := personTypes.Name(PersonLegal)
	require.NoError(t, err)
	assert.Equal(t, "legal", name)

	v, err := personTypes.Parse("legal")
	require.NoError(t, err)
	assert.Equal(t, PersonLegal, v)

	_, err = personTypes.Name(PersonType(99))
	assert.ErrorIs(t, err, bankstore_errors.ErrSerializationFailure)

	_, err = personTypes.Parse("martian")
	assert.ErrorIs(t, err, bankstore_errors.ErrBadRow)
}

func TestPersonRowRoundTrip(t *testing.T) {
	p := Person{
		ID:                 uuid.New(),
		Versioned:          Versioned{Ver: 3},
		Type:               PersonLegal,
		DisplayName:        "ACME Holdings",
		ExternalIdentifier: "EXT-001",
		LocalityID:         uuid.New(),
	}
	row, err := p.EncodeRow(nil)
	require.NoError(t, err)

	var got Person
	require.NoError(t, got.DecodeRow(row))
	assert.Equal(t, p, got)
}

func TestAccountRowRoundTrip(t *testing.T) {
	a := Account{
		ID:           uuid.New(),
		Versioned:    Versioned{Ver: 7},
		Number:       "DE02-0042",
		HolderID:     uuid.New(),
		Currency:     "EUR",
		Status:       AccountFrozen,
		ProductCode:  "SAV-01",
		BalanceMinor: -125000,
	}
	row, err := a.EncodeRow(nil)
	require.NoError(t, err)

	var got Account
	require.NoError(t, got.DecodeRow(row))
	assert.Equal(t, a, got)
}

func TestEncodeRowRejectsBadEnum(t *testing.T) {
	p := Person{ID: uuid.New(), Type: PersonType(200)}
	_, err := p.EncodeRow(nil)
	assert.ErrorIs(t, err, bankstore_errors.ErrSerializationFailure)
}

func TestDecodeRowRejectsGarbage(t *testing.T) {
	var p Person
	assert.Error(t, p.DecodeRow([]byte("definitely not a row")))

	a := Account{}
	row, err := a.EncodeRow(nil)
	require.NoError(t, err)
	var got Person
	assert.Error(t, got.DecodeRow(row))
}

func TestCanonicalExcludesVersion(t *testing.T) {
	p := Person{ID: uuid.New(), DisplayName: "Ada", ExternalIdentifier: "EXT-1"}
	before := p.AppendCanonical(nil)
	p.SetVersion(42)
	assert.Equal(t, before, p.AppendCanonical(nil))

	p.DisplayName = "Ada L."
	assert.NotEqual(t, before, p.AppendCanonical(nil))
}

func TestCanonicalExcludesRepointableKeys(t *testing.T) {
	loc := Location{
		ID:         uuid.New(),
		Type:       LocationResidential,
		Line1:      "1 Main St",
		PostalCode: "10115",
		LocalityID: uuid.New(),
	}
	before := loc.AppendCanonical(nil)
	beforeKeys := loc.IndexKeys()

	loc.LocalityID = uuid.New()
	assert.Equal(t, before, loc.AppendCanonical(nil))
	assert.NotEqual(t, beforeKeys.Nonunique, loc.IndexKeys().Nonunique)

	msg := Messaging{ID: uuid.New(), Type: MessagingEmail, Value: "a@b.io", HolderID: uuid.New()}
	mbefore := msg.AppendCanonical(nil)
	msg.HolderID = uuid.New()
	assert.Equal(t, mbefore, msg.AppendCanonical(nil))
}

func TestCanonicalOrdinalStableUnderRename(t *testing.T) {
	// the canonical form carries the ordinal, not the label, so two
	// values of the same enum never collide and labels may be reworded
	a := Messaging{Type: MessagingEmail, Value: "x"}
	b := Messaging{Type: MessagingPhone, Value: "x"}
	assert.NotEqual(t, a.AppendCanonical(nil), b.AppendCanonical(nil))
}

func TestIndexKeysComposite(t *testing.T) {
	country := uuid.New()
	s1 := CountrySubdivision{ID: uuid.New(), CountryID: country, Code: "BE"}
	s2 := CountrySubdivision{ID: uuid.New(), CountryID: uuid.New(), Code: "BE"}
	assert.NotEqual(t, s1.IndexKeys().Unique, s2.IndexKeys().Unique,
		"same code under different countries must not collide")

	m1 := Messaging{Type: MessagingEmail, Value: "+4930"}
	m2 := Messaging{Type: MessagingPhone, Value: "+4930"}
	assert.NotEqual(t, m1.IndexKeys().Unique, m2.IndexKeys().Unique,
		"same value under different endpoint types must not collide")
}
