package ffclient

import (
	"github.com/fluxflag/go-server-sdk/ffreason"
	"github.com/fluxflag/go-server-sdk/ffuser"
	"github.com/fluxflag/go-server-sdk/ffvalue"
)

// BoolVariation returns the value of a boolean flag for the given user, or defaultVal if the flag
// doesn't exist, isn't a boolean, or evaluation otherwise fails.
func (c *Client) BoolVariation(key string, user ffuser.User, defaultVal bool) bool {
	v, _ := c.BoolVariationDetail(key, user, defaultVal)
	return v
}

// BoolVariationDetail is BoolVariation plus the EvaluationDetail describing how the value was
// chosen.
func (c *Client) BoolVariationDetail(key string, user ffuser.User, defaultVal bool) (bool, ffreason.EvaluationDetail) {
	detail := c.evaluate(key, user, ffvalue.Bool(defaultVal), true)
	return detail.Value.Bool(), detail
}

// IntVariation returns the value of a numeric flag for the given user, truncated toward zero, or
// defaultVal if the flag doesn't exist, isn't numeric, or evaluation otherwise fails.
func (c *Client) IntVariation(key string, user ffuser.User, defaultVal int) int {
	v, _ := c.IntVariationDetail(key, user, defaultVal)
	return v
}

// IntVariationDetail is IntVariation plus the EvaluationDetail describing how the value was chosen.
func (c *Client) IntVariationDetail(key string, user ffuser.User, defaultVal int) (int, ffreason.EvaluationDetail) {
	detail := c.evaluate(key, user, ffvalue.Int(defaultVal), true)
	return detail.Value.Int(), detail
}

// Float64Variation returns the value of a numeric flag for the given user, or defaultVal if the
// flag doesn't exist, isn't numeric, or evaluation otherwise fails.
func (c *Client) Float64Variation(key string, user ffuser.User, defaultVal float64) float64 {
	v, _ := c.Float64VariationDetail(key, user, defaultVal)
	return v
}

// Float64VariationDetail is Float64Variation plus the EvaluationDetail describing how the value
// was chosen.
func (c *Client) Float64VariationDetail(key string, user ffuser.User, defaultVal float64) (float64, ffreason.EvaluationDetail) {
	detail := c.evaluate(key, user, ffvalue.Float64(defaultVal), true)
	return detail.Value.Float64(), detail
}

// StringVariation returns the value of a string flag for the given user, or defaultVal if the flag
// doesn't exist, isn't a string, or evaluation otherwise fails.
func (c *Client) StringVariation(key string, user ffuser.User, defaultVal string) string {
	v, _ := c.StringVariationDetail(key, user, defaultVal)
	return v
}

// StringVariationDetail is StringVariation plus the EvaluationDetail describing how the value was
// chosen.
func (c *Client) StringVariationDetail(key string, user ffuser.User, defaultVal string) (string, ffreason.EvaluationDetail) {
	detail := c.evaluate(key, user, ffvalue.String(defaultVal), true)
	return detail.Value.String(), detail
}

// JSONVariation returns the value of a flag of any JSON type for the given user, or defaultVal if
// the flag doesn't exist or evaluation otherwise fails. Unlike the typed variations, no type check
// is performed against defaultVal.
func (c *Client) JSONVariation(key string, user ffuser.User, defaultVal ffvalue.Value) ffvalue.Value {
	v, _ := c.JSONVariationDetail(key, user, defaultVal)
	return v
}

// JSONVariationDetail is JSONVariation plus the EvaluationDetail describing how the value was
// chosen.
func (c *Client) JSONVariationDetail(key string, user ffuser.User, defaultVal ffvalue.Value) (ffvalue.Value, ffreason.EvaluationDetail) {
	detail := c.evaluate(key, user, defaultVal, false)
	return detail.Value, detail
}
