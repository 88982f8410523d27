// Package ffuser defines the evaluation context attached to a flag lookup: a required key, a fixed
// set of built-in optional attributes, and an open-ended set of custom attributes.
package ffuser

import (
	"encoding/json"

	"github.com/fluxflag/go-server-sdk/ffvalue"
)

// UserAttribute identifies one of the built-in user attributes, for use with private-attribute
// configuration and attribute lookups.
type UserAttribute string

// Built-in user attributes.
const (
	KeyAttribute       UserAttribute = "key"
	SecondaryKeyAttribute UserAttribute = "secondary"
	IPAttribute        UserAttribute = "ip"
	EmailAttribute     UserAttribute = "email"
	FirstNameAttribute UserAttribute = "firstName"
	LastNameAttribute  UserAttribute = "lastName"
	AvatarAttribute    UserAttribute = "avatar"
	NameAttribute      UserAttribute = "name"
	AnonymousAttribute UserAttribute = "anonymous"
)

// User is the set of attributes evaluation is performed against. Construct one with NewUser or
// NewUserBuilder; the zero value has an empty key and is not valid for evaluation.
type User struct {
	key                   string
	secondary             ffvalue.OptionalString
	ip                    ffvalue.OptionalString
	email                 ffvalue.OptionalString
	firstName             ffvalue.OptionalString
	lastName              ffvalue.OptionalString
	avatar                ffvalue.OptionalString
	name                  ffvalue.OptionalString
	anonymous             bool
	hasAnonymous          bool
	custom                map[string]ffvalue.Value
	privateAttributeNames []string
}

// NewUser creates a user identified only by key.
func NewUser(key string) User {
	return User{key: key}
}

// NewAnonymousUser creates an anonymous user identified by key.
func NewAnonymousUser(key string) User {
	return User{key: key, anonymous: true, hasAnonymous: true}
}

// Key returns the user's key.
func (u User) Key() string { return u.key }

// Secondary returns the secondary bucketing key, if any.
func (u User) Secondary() ffvalue.OptionalString { return u.secondary }

// IP returns the ip attribute, if any.
func (u User) IP() ffvalue.OptionalString { return u.ip }

// Email returns the email attribute, if any.
func (u User) Email() ffvalue.OptionalString { return u.email }

// FirstName returns the firstName attribute, if any.
func (u User) FirstName() ffvalue.OptionalString { return u.firstName }

// LastName returns the lastName attribute, if any.
func (u User) LastName() ffvalue.OptionalString { return u.lastName }

// Avatar returns the avatar attribute, if any.
func (u User) Avatar() ffvalue.OptionalString { return u.avatar }

// Name returns the name attribute, if any.
func (u User) Name() ffvalue.OptionalString { return u.name }

// Anonymous returns the anonymous attribute. If it was never set, this is false.
func (u User) Anonymous() bool { return u.hasAnonymous && u.anonymous }

// PrivateAttributeNames returns the list of attribute names to redact from emitted events.
func (u User) PrivateAttributeNames() []string { return u.privateAttributeNames }

// GetCustom returns a custom attribute by name, with a second value indicating presence.
func (u User) GetCustom(name string) (ffvalue.Value, bool) {
	v, ok := u.custom[name]
	return v, ok
}

// CustomKeys returns the names of all custom attributes set on the user.
func (u User) CustomKeys() []string {
	if len(u.custom) == 0 {
		return nil
	}
	keys := make([]string, 0, len(u.custom))
	for k := range u.custom {
		keys = append(keys, k)
	}
	return keys
}

// GetAttribute looks up a built-in attribute by name, falling through to custom attributes. This is
// the projection the evaluator uses for clause.attribute lookups: it returns (value, false) if the
// attribute was never set for the user, which is distinct from a null/empty value.
func (u User) GetAttribute(attr string) (ffvalue.Value, bool) {
	switch UserAttribute(attr) {
	case KeyAttribute:
		return ffvalue.String(u.key), true
	case SecondaryKeyAttribute:
		return optionalStringValue(u.secondary)
	case IPAttribute:
		return optionalStringValue(u.ip)
	case EmailAttribute:
		return optionalStringValue(u.email)
	case FirstNameAttribute:
		return optionalStringValue(u.firstName)
	case LastNameAttribute:
		return optionalStringValue(u.lastName)
	case AvatarAttribute:
		return optionalStringValue(u.avatar)
	case NameAttribute:
		return optionalStringValue(u.name)
	case AnonymousAttribute:
		if !u.hasAnonymous {
			return ffvalue.Null(), false
		}
		return ffvalue.Bool(u.anonymous), true
	default:
		return u.GetCustom(attr)
	}
}

func optionalStringValue(o ffvalue.OptionalString) (ffvalue.Value, bool) {
	if !o.IsDefined() {
		return ffvalue.Null(), false
	}
	return ffvalue.String(o.StringValue()), true
}

// IsPrivateAttribute reports whether the given attribute name is in this user's private-attribute
// list. It does not account for configuration-level AllAttributesPrivate/PrivateAttributeNames.
func (u User) IsPrivateAttribute(name string) bool {
	for _, n := range u.privateAttributeNames {
		if n == name {
			return true
		}
	}
	return false
}

// Equal reports whether two users have equal attributes. Implemented field-by-field rather than
// with reflect.DeepEqual so map/slice ordering differences don't cause false negatives.
func (u User) Equal(other User) bool {
	if u.key != other.key ||
		u.secondary != other.secondary ||
		u.ip != other.ip ||
		u.email != other.email ||
		u.firstName != other.firstName ||
		u.lastName != other.lastName ||
		u.avatar != other.avatar ||
		u.name != other.name ||
		u.Anonymous() != other.Anonymous() {
		return false
	}
	if len(u.custom) != len(other.custom) {
		return false
	}
	for k, v := range u.custom {
		ov, ok := other.custom[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return stringSlicesEqualUnordered(u.privateAttributeNames, other.privateAttributeNames)
}

func stringSlicesEqualUnordered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
	}
	for _, c := range counts {
		if c != 0 {
			return false
		}
	}
	return true
}

// String returns a JSON representation of the user, for debugging.
func (u User) String() string {
	bytes, _ := json.Marshal(u)
	return string(bytes)
}

// MarshalJSON writes the user's JSON wire representation.
func (u User) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{"key": u.key}
	if u.secondary.IsDefined() {
		m["secondary"] = u.secondary.StringValue()
	}
	if u.ip.IsDefined() {
		m["ip"] = u.ip.StringValue()
	}
	if u.email.IsDefined() {
		m["email"] = u.email.StringValue()
	}
	if u.firstName.IsDefined() {
		m["firstName"] = u.firstName.StringValue()
	}
	if u.lastName.IsDefined() {
		m["lastName"] = u.lastName.StringValue()
	}
	if u.avatar.IsDefined() {
		m["avatar"] = u.avatar.StringValue()
	}
	if u.name.IsDefined() {
		m["name"] = u.name.StringValue()
	}
	if u.hasAnonymous {
		m["anonymous"] = u.anonymous
	}
	if len(u.custom) > 0 {
		custom := make(map[string]interface{}, len(u.custom))
		for k, v := range u.custom {
			custom[k] = v.InnerValue()
		}
		m["custom"] = custom
	}
	if len(u.privateAttributeNames) > 0 {
		m["privateAttributeNames"] = u.privateAttributeNames
	}
	return json.Marshal(m)
}
