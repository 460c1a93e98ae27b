package pdata

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Keys and traits only used by tests.
var (
	testKeyMana     = NewKey[int]("test_mana")
	testKeyManaMax  = NewKey[int]("test_mana_max")
	testKeyNickname = NewKey[string]("test_nickname")
	testTraitMana   = NewTrait("test_mana",
		Default(testKeyMana, 50),
		Default(testKeyManaMax, 100),
	)
)

func TestNewKeyRegistersByNameAndID(t *testing.T) {
	k, ok := KeyByName("test_mana")
	require.True(t, ok)
	assert.Equal(t, testKeyMana.ID(), k.ID())
	assert.Equal(t, reflect.TypeOf(0), k.Type())

	byID, ok := KeyByID(testKeyMana.ID())
	require.True(t, ok)
	assert.Equal(t, "test_mana", byID.Name())

	_, ok = KeyByName("test_missing")
	assert.False(t, ok)
	_, ok = KeyByID(KeyID(MaxKeys))
	assert.False(t, ok)
	assert.GreaterOrEqual(t, RegisteredKeyCount(), 3)
}

func TestNewKeyPanicsOnDuplicateName(t *testing.T) {
	assert.Panics(t, func() { NewKey[bool]("health") })
}

func TestKeyWithoutCodec(t *testing.T) {
	assert.True(t, KeyActiveItem.Valid())
	assert.False(t, Key[int]{}.Valid())
	_, err := KeyActiveItem.encode(item.Stack{})
	assert.ErrorIs(t, err, ErrNoCodec)
	_, err = KeyActiveItem.decode(nil)
	assert.ErrorIs(t, err, ErrNoCodec)
}

func TestKeyCodecs(t *testing.T) {
	_, err := KeyFireDuration.encode(20)
	require.Error(t, err, "an int is not a duration")

	raw, err := KeyFuseDuration.encode(4 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), raw)

	v, err := KeyFuseDuration.decode(int32(1500))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, v)

	v, err = KeyGlowing.decode(uint8(1))
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = KeyDisplayName.decode(3)
	assert.Error(t, err)
}

func TestKeyDecodeIntegers(t *testing.T) {
	n, err := KeyFoodLevel.decode(20.0)
	require.NoError(t, err, "JSON numbers decode as floats")
	assert.Equal(t, 20, n)

	n, err = KeyFoodLevel.decode(uint64(7))
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	for _, raw := range []any{20.7, float32(-0.5), math.NaN(), math.Inf(1), 1e19, uint64(math.MaxUint64)} {
		_, err := KeyFoodLevel.decode(raw)
		assert.Error(t, err, "%v", raw)
	}

	_, err = KeyFuseDuration.decode(1500.5)
	assert.Error(t, err)

	f, err := KeyHealth.decode(uint64(12))
	require.NoError(t, err)
	assert.Equal(t, 12.0, f)
}

func TestKeySet(t *testing.T) {
	var s KeySet
	assert.True(t, s.IsZero())

	s.Add(3)
	s.Add(200)
	assert.True(t, s.Has(3))
	assert.True(t, s.Has(200))
	assert.False(t, s.Has(4))
	assert.Equal(t, 2, s.Len())

	other := KeySetOf(testKeyMana, testKeyManaMax)
	assert.False(t, s.ContainsAny(other))
	u := s.Union(other)
	assert.True(t, u.ContainsAny(other))
	assert.True(t, u.Has(testKeyMana.ID()))
	assert.True(t, u.Has(200))
	assert.Equal(t, 4, u.Len())

	s.Delete(3)
	assert.False(t, s.Has(3))
	assert.Equal(t, 1, s.Len())
}
