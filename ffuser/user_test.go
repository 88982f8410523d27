package ffuser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffvalue"
)

func TestNewUserHasKeyOnly(t *testing.T) {
	u := NewUser("user-key")
	assert.Equal(t, "user-key", u.Key())
	assert.False(t, u.Anonymous())
	v, ok := u.GetAttribute("email")
	assert.False(t, ok)
	assert.True(t, v.IsNull())
}

func TestNewAnonymousUser(t *testing.T) {
	u := NewAnonymousUser("anon-key")
	assert.True(t, u.Anonymous())
}

func TestBuilderSetsAttributes(t *testing.T) {
	u := NewUserBuilder("user-key").
		Name("Bob").
		Email("bob@example.com").AsPrivateAttribute().
		Custom("plan", ffvalue.String("enterprise")).
		Build()

	assert.Equal(t, "user-key", u.Key())
	name, ok := u.GetAttribute("name")
	assert.True(t, ok)
	assert.Equal(t, "Bob", name.String())

	assert.True(t, u.IsPrivateAttribute("email"))
	assert.False(t, u.IsPrivateAttribute("name"))

	custom, ok := u.GetCustom("plan")
	assert.True(t, ok)
	assert.Equal(t, "enterprise", custom.String())
}

func TestMissingAttributeIsAbsentNotNull(t *testing.T) {
	u := NewUser("user-key")
	_, ok := u.GetAttribute("nickname")
	assert.False(t, ok)
}

func TestEqualComparesCustomAttributesAndPrivateNames(t *testing.T) {
	a := NewUserBuilder("k").Custom("x", ffvalue.Int(1)).AsPrivateAttribute().Build()
	b := NewUserBuilder("k").Custom("x", ffvalue.Int(1)).AsPrivateAttribute().Build()
	assert.True(t, a.Equal(b))

	c := NewUserBuilder("k").Custom("x", ffvalue.Int(2)).Build()
	assert.False(t, a.Equal(c))
}
