package ffevents

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

func TestRedactUserOmitsPrivateAttributesAndListsThem(t *testing.T) {
	user := ffuser.NewUserBuilder("user-1").
		Email("bob@example.com").AsPrivateAttribute().
		Name("Bob").
		Custom("plan", ffvalue.String("gold")).AsPrivateAttribute().
		Build()

	redacted := RedactUser(user, Redaction{})

	assert.Equal(t, "user-1", redacted.Key)
	_, hasEmail := redacted.Attributes["email"]
	assert.False(t, hasEmail)
	_, hasPlan := redacted.Attributes["plan"]
	assert.False(t, hasPlan)
	assert.Equal(t, "Bob", redacted.Attributes["name"].String())
	assert.Equal(t, []string{"email", "plan"}, redacted.PrivateAttrs)
}

func TestRedactUserAllAttributesPrivate(t *testing.T) {
	user := ffuser.NewUserBuilder("user-1").Name("Bob").Build()

	redacted := RedactUser(user, Redaction{AllAttributesPrivate: true})

	assert.Empty(t, redacted.Attributes)
	assert.Equal(t, []string{"name"}, redacted.PrivateAttrs)
}

func TestRedactUserGlobalPrivateAttributeNames(t *testing.T) {
	user := ffuser.NewUserBuilder("user-1").Name("Bob").Email("bob@example.com").Build()

	redacted := RedactUser(user, Redaction{GlobalPrivateAttributeNames: []string{"email"}})

	assert.Equal(t, "Bob", redacted.Attributes["name"].String())
	_, hasEmail := redacted.Attributes["email"]
	assert.False(t, hasEmail)
}

func TestNewFeatureRequestEventCopiesFlagMetadata(t *testing.T) {
	user := ffuser.NewUser("user-1")
	debugUntil := int64(12345)

	event := NewFeatureRequestEvent(
		1000, "flag-a", user, 1, ffvalue.Bool(true), ffvalue.Bool(false),
		ffreason.NewEvalReasonFallthrough(), 3, true, &debugUntil, "", Redaction{},
	)

	assert.Equal(t, "feature", event.GetKind())
	assert.Equal(t, int64(1000), event.GetCreationDate())
	assert.Equal(t, "flag-a", event.Key)
	assert.Equal(t, 3, event.Version)
	assert.True(t, event.TrackEvents)
	assert.Equal(t, &debugUntil, event.DebugEventsUntilDate)
	assert.Empty(t, event.PrereqOf)
}

func TestNewFeatureRequestEventSetsPrereqOf(t *testing.T) {
	event := NewFeatureRequestEvent(
		1000, "prereq-a", ffuser.NewUser("u"), 0, ffvalue.Bool(true), ffvalue.Bool(false),
		ffreason.NewEvalReasonFallthrough(), 1, false, nil, "dependent-flag", Redaction{},
	)
	assert.Equal(t, "dependent-flag", event.PrereqOf)
}
