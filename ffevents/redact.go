package ffevents

import (
	"sort"

	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

// Redaction is the configuration-level redaction policy: AllAttributesPrivate forces every
// attribute (other than key) to be redacted regardless of the user's own private-attribute list;
// GlobalPrivateAttributeNames adds to whatever the user itself marked private.
type Redaction struct {
	AllAttributesPrivate       bool
	GlobalPrivateAttributeNames []string
}

// RedactedUser is the user projection actually attached to an emitted event: redacted attribute
// values are omitted from Attributes and their names recorded in PrivateAttrs, so a collector can
// tell the difference between "absent" and "redacted".
type RedactedUser struct {
	Key          string                   `json:"key"`
	Anonymous    bool                     `json:"anonymous,omitempty"`
	Attributes   map[string]ffvalue.Value `json:"attributes,omitempty"`
	PrivateAttrs []string                 `json:"privateAttrs,omitempty"`
}

// RedactUser builds a redacted projection of user. It never mutates user: User is an immutable
// value and the projection is built fresh from its accessors.
func RedactUser(user ffuser.User, redaction Redaction) RedactedUser {
	private := map[string]bool{}
	for _, name := range user.PrivateAttributeNames() {
		private[name] = true
	}
	for _, name := range redaction.GlobalPrivateAttributeNames {
		private[name] = true
	}

	out := RedactedUser{Key: user.Key(), Anonymous: user.Anonymous(), Attributes: map[string]ffvalue.Value{}}
	var redacted []string

	addAttr := func(name string, value ffvalue.OptionalString) {
		if !value.IsDefined() {
			return
		}
		if redaction.AllAttributesPrivate || private[name] {
			redacted = append(redacted, name)
			return
		}
		out.Attributes[name] = ffvalue.String(value.StringValue())
	}

	for _, b := range []struct {
		name  ffuser.UserAttribute
		value ffvalue.OptionalString
	}{
		{ffuser.SecondaryKeyAttribute, user.Secondary()},
		{ffuser.IPAttribute, user.IP()},
		{ffuser.EmailAttribute, user.Email()},
		{ffuser.FirstNameAttribute, user.FirstName()},
		{ffuser.LastNameAttribute, user.LastName()},
		{ffuser.AvatarAttribute, user.Avatar()},
		{ffuser.NameAttribute, user.Name()},
	} {
		addAttr(string(b.name), b.value)
	}

	for _, name := range user.CustomKeys() {
		value, ok := user.GetCustom(name)
		if !ok {
			continue
		}
		if redaction.AllAttributesPrivate || private[name] {
			redacted = append(redacted, name)
			continue
		}
		out.Attributes[name] = value
	}

	sort.Strings(redacted)
	out.PrivateAttrs = redacted
	return out
}
