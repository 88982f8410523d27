package ffuser

import "github.com/fluxflag/go-server-sdk/ffvalue"

// Builder is a mutable builder for constructing a User. Obtain one with NewUserBuilder, call
// setters, then Build(). A Builder should not be used from more than one goroutine at a time.
type Builder interface {
	Secondary(value string) BuilderCanMakeAttributePrivate
	IP(value string) BuilderCanMakeAttributePrivate
	Email(value string) BuilderCanMakeAttributePrivate
	FirstName(value string) BuilderCanMakeAttributePrivate
	LastName(value string) BuilderCanMakeAttributePrivate
	Avatar(value string) BuilderCanMakeAttributePrivate
	Name(value string) BuilderCanMakeAttributePrivate
	Anonymous(value bool) Builder
	Custom(name string, value ffvalue.Value) BuilderCanMakeAttributePrivate
	Build() User
}

// BuilderCanMakeAttributePrivate extends Builder with AsPrivateAttribute, available only from the
// setter for an attribute that is allowed to be private (everything except key and anonymous).
type BuilderCanMakeAttributePrivate interface {
	Builder
	AsPrivateAttribute() Builder
}

type builderImpl struct {
	key          string
	secondary    ffvalue.OptionalString
	ip           ffvalue.OptionalString
	email        ffvalue.OptionalString
	firstName    ffvalue.OptionalString
	lastName     ffvalue.OptionalString
	avatar       ffvalue.OptionalString
	name         ffvalue.OptionalString
	anonymous    bool
	hasAnonymous bool
	custom       map[string]ffvalue.Value
	privateAttrs map[string]bool
}

type builderCanMakeAttributePrivate struct {
	builder  *builderImpl
	attrName string
}

// NewUserBuilder constructs a Builder for a user identified by key.
func NewUserBuilder(key string) Builder {
	return &builderImpl{key: key}
}

// NewUserBuilderFromUser constructs a Builder pre-populated from an existing User.
func NewUserBuilderFromUser(from User) Builder {
	b := &builderImpl{
		key:          from.key,
		secondary:    from.secondary,
		ip:           from.ip,
		email:        from.email,
		firstName:    from.firstName,
		lastName:     from.lastName,
		avatar:       from.avatar,
		name:         from.name,
		anonymous:    from.anonymous,
		hasAnonymous: from.hasAnonymous,
	}
	if len(from.custom) > 0 {
		b.custom = make(map[string]ffvalue.Value, len(from.custom))
		for k, v := range from.custom {
			b.custom[k] = v
		}
	}
	if len(from.privateAttributeNames) > 0 {
		b.privateAttrs = make(map[string]bool, len(from.privateAttributeNames))
		for _, name := range from.privateAttributeNames {
			b.privateAttrs[name] = true
		}
	}
	return b
}

func (b *builderImpl) canMakeAttributePrivate(attrName string) BuilderCanMakeAttributePrivate {
	return &builderCanMakeAttributePrivate{builder: b, attrName: attrName}
}

func (b *builderImpl) Secondary(value string) BuilderCanMakeAttributePrivate {
	b.secondary = ffvalue.NewOptionalStringWithValue(value)
	return b.canMakeAttributePrivate(string(SecondaryKeyAttribute))
}

func (b *builderImpl) IP(value string) BuilderCanMakeAttributePrivate {
	b.ip = ffvalue.NewOptionalStringWithValue(value)
	return b.canMakeAttributePrivate(string(IPAttribute))
}

func (b *builderImpl) Email(value string) BuilderCanMakeAttributePrivate {
	b.email = ffvalue.NewOptionalStringWithValue(value)
	return b.canMakeAttributePrivate(string(EmailAttribute))
}

func (b *builderImpl) FirstName(value string) BuilderCanMakeAttributePrivate {
	b.firstName = ffvalue.NewOptionalStringWithValue(value)
	return b.canMakeAttributePrivate(string(FirstNameAttribute))
}

func (b *builderImpl) LastName(value string) BuilderCanMakeAttributePrivate {
	b.lastName = ffvalue.NewOptionalStringWithValue(value)
	return b.canMakeAttributePrivate(string(LastNameAttribute))
}

func (b *builderImpl) Avatar(value string) BuilderCanMakeAttributePrivate {
	b.avatar = ffvalue.NewOptionalStringWithValue(value)
	return b.canMakeAttributePrivate(string(AvatarAttribute))
}

func (b *builderImpl) Name(value string) BuilderCanMakeAttributePrivate {
	b.name = ffvalue.NewOptionalStringWithValue(value)
	return b.canMakeAttributePrivate(string(NameAttribute))
}

func (b *builderImpl) Anonymous(value bool) Builder {
	b.anonymous = value
	b.hasAnonymous = true
	return b
}

func (b *builderImpl) Custom(name string, value ffvalue.Value) BuilderCanMakeAttributePrivate {
	if b.custom == nil {
		b.custom = make(map[string]ffvalue.Value)
	}
	b.custom[name] = value
	return b.canMakeAttributePrivate(name)
}

func (b *builderImpl) Build() User {
	u := User{
		key:          b.key,
		secondary:    b.secondary,
		ip:           b.ip,
		email:        b.email,
		firstName:    b.firstName,
		lastName:     b.lastName,
		avatar:       b.avatar,
		name:         b.name,
		anonymous:    b.anonymous,
		hasAnonymous: b.hasAnonymous,
	}
	if len(b.custom) > 0 {
		c := make(map[string]ffvalue.Value, len(b.custom))
		for k, v := range b.custom {
			c[k] = v
		}
		u.custom = c
	}
	if len(b.privateAttrs) > 0 {
		a := make([]string, 0, len(b.privateAttrs))
		for name, on := range b.privateAttrs {
			if on {
				a = append(a, name)
			}
		}
		u.privateAttributeNames = a
	}
	return u
}

// AsPrivateAttribute marks the attribute most recently set on this builder as private: its value
// will be redacted from emitted events. Key and Anonymous cannot be made private, which is enforced
// by the compiler since only the setters for attributes that can be private return this type.
func (b *builderCanMakeAttributePrivate) AsPrivateAttribute() Builder {
	if b.builder.privateAttrs == nil {
		b.builder.privateAttrs = make(map[string]bool)
	}
	b.builder.privateAttrs[b.attrName] = true
	return b.builder
}

func (b *builderCanMakeAttributePrivate) Secondary(value string) BuilderCanMakeAttributePrivate {
	return b.builder.Secondary(value)
}
func (b *builderCanMakeAttributePrivate) IP(value string) BuilderCanMakeAttributePrivate {
	return b.builder.IP(value)
}
func (b *builderCanMakeAttributePrivate) Email(value string) BuilderCanMakeAttributePrivate {
	return b.builder.Email(value)
}
func (b *builderCanMakeAttributePrivate) FirstName(value string) BuilderCanMakeAttributePrivate {
	return b.builder.FirstName(value)
}
func (b *builderCanMakeAttributePrivate) LastName(value string) BuilderCanMakeAttributePrivate {
	return b.builder.LastName(value)
}
func (b *builderCanMakeAttributePrivate) Avatar(value string) BuilderCanMakeAttributePrivate {
	return b.builder.Avatar(value)
}
func (b *builderCanMakeAttributePrivate) Name(value string) BuilderCanMakeAttributePrivate {
	return b.builder.Name(value)
}
func (b *builderCanMakeAttributePrivate) Anonymous(value bool) Builder {
	return b.builder.Anonymous(value)
}
func (b *builderCanMakeAttributePrivate) Custom(name string, value ffvalue.Value) BuilderCanMakeAttributePrivate {
	return b.builder.Custom(name, value)
}
func (b *builderCanMakeAttributePrivate) Build() User {
	return b.builder.Build()
}
